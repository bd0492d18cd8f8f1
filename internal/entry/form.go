// Package entry - состояние формы «добавить отсутствие» в памяти: календарь,
// выбор категорий и текстовые поля. Живет до отправки или очистки формы.
package entry

import (
	"absence-bot/internal/calendar"
	"absence-bot/internal/models"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxCommentLength - ограничение длины комментария (в символах)
const MaxCommentLength = 200

var (
	ErrNoDates        = errors.New("выберите хотя бы одну дату")
	ErrReasonRequired = errors.New("укажите причину (другая причина)")
	ErrCommentTooLong = fmt.Errorf("комментарий длиннее %d символов", MaxCommentLength)
)

// Form - состояние формы добавления отсутствия
type Form struct {
	selector *calendar.Selector
	picker   *calendar.Picker

	reason   string
	comment  string
	callable bool

	notices []calendar.Notice
}

// New создает форму, показывающую месяц, в котором находится now
func New(now time.Time, opts ...calendar.Option) *Form {
	f := &Form{picker: calendar.NewPicker(calendar.MultiSelect)}
	opts = append(opts,
		calendar.WithOnNotice(func(n calendar.Notice) { f.notices = append(f.notices, n) }),
		calendar.WithOnChange(func(calendar.Selection) { f.syncReason() }),
	)
	f.selector = calendar.NewSelector(now, opts...)
	return f
}

func (f *Form) Selector() *calendar.Selector {
	return f.selector
}

func (f *Form) Picker() *calendar.Picker {
	return f.picker
}

// PressCategory передает нажатие в выбор категорий и взводит активную категорию в календаре
func (f *Form) PressCategory(key calendar.CategoryKey) error {
	if err := f.picker.Press(key); err != nil {
		return err
	}
	if active, ok := f.picker.Active(); ok {
		if err := f.selector.SetActive(active); err != nil {
			return err
		}
	} else {
		f.selector.ClearActive()
	}
	f.syncReason()
	return nil
}

// TakeNotices возвращает накопленные сообщения и очищает очередь
func (f *Form) TakeNotices() []calendar.Notice {
	n := f.notices
	f.notices = nil
	return n
}

func (f *Form) Reason() string {
	return f.reason
}

func (f *Form) Comment() string {
	return f.comment
}

func (f *Form) Callable() bool {
	return f.callable
}

// NeedsReason - активная категория или одна из выбранных дат требует причину
func (f *Form) NeedsReason() bool {
	if active, ok := f.selector.Active(); ok && active.RequiresReason() {
		return true
	}
	for _, key := range f.selector.AssignedCategories() {
		if key.RequiresReason() {
			return true
		}
	}
	return false
}

// SetReason сохраняет причину. Причина без категории, которой она нужна, не сохраняется.
func (f *Form) SetReason(reason string) error {
	if !f.NeedsReason() {
		return errors.New("причина нужна только для категории «Другая причина»")
	}
	f.reason = strings.TrimSpace(reason)
	return nil
}

func (f *Form) SetComment(comment string) error {
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return ErrCommentTooLong
	}
	f.comment = comment
	return nil
}

func (f *Form) ToggleCallable() bool {
	f.callable = !f.callable
	return f.callable
}

// CanSubmit - можно показывать кнопку отправки
func (f *Form) CanSubmit() bool {
	return f.selector.Len() > 0
}

// Validate проверяет форму перед отправкой
func (f *Form) Validate() error {
	if f.selector.Len() == 0 {
		return ErrNoDates
	}
	for _, key := range f.selector.AssignedCategories() {
		if key.RequiresReason() && f.reason == "" {
			return ErrReasonRequired
		}
	}
	if utf8.RuneCountInString(f.comment) > MaxCommentLength {
		return ErrCommentTooLong
	}
	return nil
}

// Rows переводит выбор в записи: одна запись на дату
func (f *Form) Rows(userID uint, batchID string) ([]models.Absence, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	var comment *string
	if f.comment != "" {
		c := f.comment
		comment = &c
	}

	selection := f.selector.Selection()
	rows := make([]models.Absence, 0, len(selection))
	for _, iso := range selection.Dates() {
		key := selection[iso]
		date, err := calendar.ParseISODate(iso, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("некорректная дата %s: %w", iso, err)
		}

		var reason *string
		if key.RequiresReason() {
			r := f.reason
			reason = &r
		}

		rows = append(rows, models.Absence{
			UserID:   userID,
			Category: string(key),
			Reason:   reason,
			Comment:  comment,
			Date:     date,
			Callable: f.callable,
			BatchID:  batchID,
		})
	}
	return rows, nil
}

// Reset очищает форму после отправки или по кнопке «Очистить»
func (f *Form) Reset() {
	f.selector.Clear()
	f.picker.Reset()
	f.reason = ""
	f.comment = ""
	f.callable = false
	f.notices = nil
}

// syncReason стирает причину, когда ни активная категория, ни выбранные даты ее не требуют
func (f *Form) syncReason() {
	if !f.NeedsReason() {
		f.reason = ""
	}
}
