package calendar

import (
	"fmt"
	"sort"
	"time"
)

// TapPolicy определяет, что делает нажатие на уже занятую дату
type TapPolicy int

const (
	// ToggleOff - нажатие на занятую дату всегда снимает выбор
	ToggleOff TapPolicy = iota
	// Overwrite - другая активная категория перезаписывает дату, та же самая снимает выбор
	Overwrite
)

// Notice - сообщение для пользователя, которое не является ошибкой системы
type Notice string

const NoticeChooseCategory Notice = "Сначала выберите категорию"

// Selection - отображение ISO-даты в категорию (не больше одной категории на дату)
type Selection map[string]CategoryKey

// Dates возвращает отсортированные ключи
func (s Selection) Dates() []string {
	dates := make([]string, 0, len(s))
	for d := range s {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// dragGesture живет от BeginDrag до EndDrag
type dragGesture struct {
	touched map[string]struct{}
}

// Selector - машина состояний выбора дат в сетке месяца.
// Все методы вызываются последовательно из одного обработчика событий.
type Selector struct {
	policy    TapPolicy
	grid      MonthGrid
	selection Selection
	active    CategoryKey
	size      GridSize
	gesture   *dragGesture

	onChange func(Selection)
	onNotice func(Notice)
}

type Option func(*Selector)

func WithPolicy(p TapPolicy) Option {
	return func(s *Selector) { s.policy = p }
}

// WithOnChange - callback на каждое изменение выбора (получает копию)
func WithOnChange(fn func(Selection)) Option {
	return func(s *Selector) { s.onChange = fn }
}

// WithOnNotice - callback для сообщений пользователю
func WithOnNotice(fn func(Notice)) Option {
	return func(s *Selector) { s.onNotice = fn }
}

func NewSelector(anchor time.Time, opts ...Option) *Selector {
	s := &Selector{
		policy:    ToggleOff,
		grid:      BuildMonthGrid(anchor),
		selection: make(Selection),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Selector) Anchor() time.Time {
	return s.grid.Anchor
}

func (s *Selector) Grid() MonthGrid {
	return s.grid
}

// Navigate переключает отображаемый месяц. Выбор сохраняется.
func (s *Selector) Navigate(delta int) {
	s.grid = BuildMonthGrid(AddMonths(s.grid.Anchor, delta))
	s.gesture = nil
}

// SetAnchor показывает месяц, содержащий дату
func (s *Selector) SetAnchor(t time.Time) {
	s.grid = BuildMonthGrid(t)
	s.gesture = nil
}

// SetActive взводит категорию для следующих назначений. Существующие назначения не меняются.
func (s *Selector) SetActive(key CategoryKey) error {
	if _, ok := LookupCategory(key); !ok {
		return fmt.Errorf("неизвестная категория: %s", key)
	}
	s.active = key
	return nil
}

func (s *Selector) ClearActive() {
	s.active = ""
}

func (s *Selector) Active() (CategoryKey, bool) {
	return s.active, s.active != ""
}

// SetGridSize запоминает размер сетки после раскладки
func (s *Selector) SetGridSize(width, height float64) {
	s.size = GridSize{Width: width, Height: height}
}

func (s *Selector) GridSize() GridSize {
	return s.size
}

// Tap обрабатывает нажатие на ячейку сетки. Возвращает true, если выбор изменился.
func (s *Selector) Tap(index int) bool {
	cell, ok := s.grid.Cell(index)
	if !ok || cell.IsPadding() {
		return false
	}
	return s.TapDate(*cell.Date)
}

// TapDate обрабатывает нажатие на конкретную дату
func (s *Selector) TapDate(date time.Time) bool {
	if s.active == "" {
		s.notify(NoticeChooseCategory)
		return false
	}

	iso := ISODate(date)
	existing, assigned := s.selection[iso]
	switch {
	case !assigned:
		s.selection[iso] = s.active
	case s.policy == Overwrite && existing != s.active:
		s.selection[iso] = s.active
	default:
		delete(s.selection, iso)
	}

	s.changed()
	return true
}

// BeginDrag начинает жест протягивания
func (s *Selector) BeginDrag() {
	s.gesture = &dragGesture{touched: make(map[string]struct{})}
}

// DragMove обрабатывает перемещение указателя. Протягивание только добавляет даты:
// повторный заход в ячейку в рамках одного жеста ничего не делает.
func (s *Selector) DragMove(x, y float64) bool {
	if s.gesture == nil || s.active == "" || !s.size.Measured() {
		return false
	}

	_, _, index := CellAt(x, y, s.size)
	cell, ok := s.grid.Cell(index)
	if !ok || cell.IsPadding() {
		return false
	}

	iso := ISODate(*cell.Date)
	if _, seen := s.gesture.touched[iso]; seen {
		return false
	}
	s.gesture.touched[iso] = struct{}{}

	if _, assigned := s.selection[iso]; assigned {
		return false
	}
	s.selection[iso] = s.active
	s.changed()
	return true
}

// EndDrag завершает жест. Даты, выбранные до этого момента, остаются.
func (s *Selector) EndDrag() {
	s.gesture = nil
}

func (s *Selector) Dragging() bool {
	return s.gesture != nil
}

// Selection возвращает копию выбора
func (s *Selector) Selection() Selection {
	out := make(Selection, len(s.selection))
	for k, v := range s.selection {
		out[k] = v
	}
	return out
}

// CategoryOf возвращает категорию, назначенную дате
func (s *Selector) CategoryOf(date time.Time) (CategoryKey, bool) {
	key, ok := s.selection[ISODate(date)]
	return key, ok
}

func (s *Selector) Dates() []string {
	return s.selection.Dates()
}

func (s *Selector) Len() int {
	return len(s.selection)
}

// AssignedCategories - уникальные категории выбранных дат в порядке справочника
func (s *Selector) AssignedCategories() []CategoryKey {
	used := make(map[CategoryKey]bool)
	for _, key := range s.selection {
		used[key] = true
	}
	var out []CategoryKey
	for _, c := range categories {
		if used[c.Key] {
			out = append(out, c.Key)
		}
	}
	return out
}

// Clear сбрасывает выбор, активную категорию и текущий жест
func (s *Selector) Clear() {
	hadSelection := len(s.selection) > 0
	s.selection = make(Selection)
	s.active = ""
	s.gesture = nil
	if hadSelection {
		s.changed()
	}
}

func (s *Selector) changed() {
	if s.onChange != nil {
		s.onChange(s.Selection())
	}
}

func (s *Selector) notify(n Notice) {
	if s.onNotice != nil {
		s.onNotice(n)
	}
}
