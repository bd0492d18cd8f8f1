package handler

import (
	"absence-bot/internal/calendar"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Данные inline-кнопок формы
const (
	cbCategory = "cat"
	cbDay      = "day"
	cbNav      = "nav"
	cbRange    = "range"
	cbCallable = "callable"
	cbClear    = "clear"
	cbSubmit   = "submit"
	cbDelete   = "delabs"
	cbNoop     = "noop"
)

var monthNames = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

var weekdayNames = [calendar.Columns]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

// parseCallback разбирает данные кнопки вида "kind:arg"
func parseCallback(data string) (kind, arg string) {
	kind, arg, _ = strings.Cut(data, ":")
	return kind, arg
}

// dayLabel - подпись ячейки: номер дня, эмодзи категории для выбранных, скобки для выходных
func dayLabel(day int, key calendar.CategoryKey, assigned, nonWorking bool) string {
	label := strconv.Itoa(day)
	if nonWorking {
		label = "(" + label + ")"
	}
	if assigned {
		if cat, ok := calendar.LookupCategory(key); ok {
			label = cat.Emoji + label
		}
	}
	return label
}

func categoryButtonLabel(cat calendar.Category, active, selected bool) string {
	switch {
	case active:
		return "✔️ " + cat.Emoji + " " + cat.Label
	case selected:
		return cat.Emoji + " " + cat.Label + " •"
	default:
		return cat.Emoji + " " + cat.Label
	}
}

func noopButton(text string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, cbNoop)
}

// renderFormKeyboard строит клавиатуру формы: категории, опции, навигация, сетка 6x7, действия
func renderFormKeyboard(s *formSession, nonWorking map[string]bool) tgbotapi.InlineKeyboardMarkup {
	sel := s.form.Selector()
	picker := s.form.Picker()
	active, hasActive := picker.Active()

	var rows [][]tgbotapi.InlineKeyboardButton

	var catRow []tgbotapi.InlineKeyboardButton
	for _, cat := range calendar.Categories() {
		label := categoryButtonLabel(cat, hasActive && active == cat.Key, picker.IsSelected(cat.Key))
		catRow = append(catRow, tgbotapi.NewInlineKeyboardButtonData(label, cbCategory+":"+string(cat.Key)))
		if len(catRow) == 2 {
			rows = append(rows, catRow)
			catRow = nil
		}
	}
	if len(catRow) > 0 {
		rows = append(rows, catRow)
	}

	callable := "📞 На связи: нет"
	if s.form.Callable() {
		callable = "📞 На связи: да"
	}
	rangeLabel := "↔️ Диапазон: выкл"
	if s.rangeMode {
		rangeLabel = "↔️ Диапазон: вкл"
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(callable, cbCallable),
		tgbotapi.NewInlineKeyboardButtonData(rangeLabel, cbRange),
	))

	anchor := sel.Anchor()
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️", cbNav+":-1"),
		noopButton(fmt.Sprintf("%s %d", monthNames[anchor.Month()-1], anchor.Year())),
		tgbotapi.NewInlineKeyboardButtonData("▶️", cbNav+":1"),
	))

	header := make([]tgbotapi.InlineKeyboardButton, 0, calendar.Columns)
	for _, name := range weekdayNames {
		header = append(header, noopButton(name))
	}
	rows = append(rows, header)

	selection := sel.Selection()
	for r, week := range sel.Grid().Rows() {
		row := make([]tgbotapi.InlineKeyboardButton, 0, calendar.Columns)
		for c, cell := range week {
			if cell.IsPadding() {
				row = append(row, noopButton("·"))
				continue
			}
			iso := cell.ISO()
			key, assigned := selection[iso]
			label := dayLabel(cell.Date.Day(), key, assigned, nonWorking[iso])
			index := r*calendar.Columns + c
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s:%d", cbDay, index)))
		}
		rows = append(rows, row)
	}

	actions := []tgbotapi.InlineKeyboardButton{tgbotapi.NewInlineKeyboardButtonData("🧹 Очистить", cbClear)}
	if s.form.CanSubmit() {
		actions = append(actions, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("📤 Отправить (%d)", sel.Len()), cbSubmit))
	}
	rows = append(rows, actions)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// renderFormText - текст сообщения над клавиатурой формы
func renderFormText(s *formSession) string {
	var lines []string
	lines = append(lines, "📝 Новая запись об отсутствии", "")

	if key, ok := s.form.Picker().Active(); ok {
		cat, _ := calendar.LookupCategory(key)
		lines = append(lines, fmt.Sprintf("Категория: %s %s", cat.Emoji, cat.Label))
	} else {
		lines = append(lines, "Категория: не выбрана")
	}

	sel := s.form.Selector()
	lines = append(lines, fmt.Sprintf("Выбрано дней: %d", sel.Len()))
	for _, key := range sel.AssignedCategories() {
		cat, _ := calendar.LookupCategory(key)
		count := 0
		for _, k := range sel.Selection() {
			if k == key {
				count++
			}
		}
		lines = append(lines, fmt.Sprintf("  %s %s: %d", cat.Emoji, cat.Label, count))
	}

	if s.form.NeedsReason() {
		if s.form.Reason() == "" {
			lines = append(lines, "⚠️ Причина не указана. Отправьте /reason <текст>")
		} else {
			lines = append(lines, "Причина: "+s.form.Reason())
		}
	}
	if s.form.Comment() != "" {
		lines = append(lines, "💬 "+s.form.Comment())
	} else {
		lines = append(lines, "Комментарий: /comment <текст>")
	}

	if s.rangeMode {
		if s.rangeStart >= 0 {
			lines = append(lines, "", "↔️ Выберите последний день диапазона")
		} else {
			lines = append(lines, "", "↔️ Выберите первый день диапазона")
		}
	}
	return strings.Join(lines, "\n")
}

// renderBatchesKeyboard - кнопки удаления отправок
func renderBatchesKeyboard(batchIDs []string, labels []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(batchIDs))
	for i, id := range batchIDs {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 "+labels[i], cbDelete+":"+id),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
