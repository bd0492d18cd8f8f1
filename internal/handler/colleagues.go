package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// showDay - /day [дата]: кто отсутствует в выбранный день
func (h *Handler) showDay(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	date := h.today()
	if strings.TrimSpace(args) != "" {
		parsed, err := parseDate(strings.TrimSpace(args), date)
		if err != nil {
			h.sendText(chatID, "❌ "+err.Error())
			return
		}
		date = parsed
	}

	entries, err := h.absenceService.ByDate(date)
	if err != nil {
		logrus.WithField("chat_id", chatID).Errorf("Failed to get day view: %v", err)
		h.sendText(chatID, "❌ Ошибка получения данных: "+err.Error())
		return
	}

	text := h.absenceService.FormatDay(date, entries)
	if off, err := h.nonWorkingDayService.IsNonWorkingDay(date); err == nil && off {
		text += "\n\n🏖 Выходной день"
	}
	h.sendText(chatID, text)
}

func (h *Handler) showColleagues(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	text, err := h.userService.FormatColleagues()
	if err != nil {
		h.sendText(chatID, "❌ Ошибка получения списка коллег: "+err.Error())
		return
	}
	h.sendText(chatID, text)
}

// showColleague - профиль коллеги и статистика по категориям
func (h *Handler) showColleague(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	targetChatID, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		h.sendText(chatID, "❌ Укажите ID коллеги.\nПример: /colleague 123456789\nСписок: /colleagues")
		return
	}

	user, err := h.userService.GetUser(targetChatID)
	if err != nil {
		h.sendText(chatID, "❌ "+err.Error())
		return
	}

	text := h.userService.FormatUserInfo(user)
	stats, err := h.statsService.CategoryStats(user.ID)
	if err != nil {
		logrus.WithField("chat_id", chatID).Warnf("Failed to get stats: %v", err)
	} else {
		text += "\n\n" + h.statsService.FormatStats(stats)
	}
	h.sendText(chatID, text)
}

// parseDate парсит дату из строки; без года берется год из now
func parseDate(dateStr string, now time.Time) (time.Time, error) {
	formats := []string{
		"02.01.2006",
		"02-01-2006",
		"2006-01-02",
		"02.01",
		"02-01",
	}

	for _, format := range formats {
		t, err := time.Parse(format, dateStr)
		if err != nil {
			continue
		}
		year := t.Year()
		if !strings.Contains(format, "2006") {
			year = now.Year()
		}
		return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, now.Location()), nil
	}

	return time.Time{}, fmt.Errorf("неверный формат даты. Используйте ДД.ММ.ГГГГ или ДД.ММ")
}
