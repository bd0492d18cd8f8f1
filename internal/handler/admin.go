package handler

import (
	"absence-bot/internal/models"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// requireAdmin проверяет права и сообщает об отказе
func (h *Handler) requireAdmin(chatID int64) bool {
	isAdmin, err := h.userService.IsAdmin(chatID)
	if err != nil {
		h.sendText(chatID, "❌ Ошибка проверки прав доступа: "+err.Error())
		return false
	}
	if !isAdmin {
		h.sendText(chatID, "❌ Доступ запрещен. Эта команда только для администраторов.")
		return false
	}
	return true
}

// showAllUsers показывает всех пользователей
func (h *Handler) showAllUsers(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	allUsers, err := h.userService.FormatAllUsers()
	if err != nil {
		h.sendText(chatID, "❌ Ошибка получения списка пользователей: "+err.Error())
		return
	}
	h.sendText(chatID, allUsers)
}

// showAdmins показывает всех администраторов
func (h *Handler) showAdmins(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	admins, err := h.userService.GetAdmins()
	if err != nil {
		h.sendText(chatID, "❌ Ошибка получения списка администраторов: "+err.Error())
		return
	}
	if len(admins) == 0 {
		h.sendText(chatID, "👑 Список администраторов пуст.")
		return
	}

	lines := []string{"👑 Администраторы:", ""}
	for i, admin := range admins {
		line := fmt.Sprintf("%d. %s ", i+1, admin.FullName())
		if admin.Username != "" {
			line += fmt.Sprintf("(@%s) ", admin.Username)
		}
		line += fmt.Sprintf("- ID: %d", admin.ChatID)
		lines = append(lines, line)
	}
	h.sendText(chatID, strings.Join(lines, "\n"))
}

// changeRole - /promote и /demote
func (h *Handler) changeRole(message *tgbotapi.Message, args, role string) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	command := "/promote"
	if role == models.RoleClient {
		command = "/demote"
	}
	args = strings.TrimSpace(args)
	if args == "" {
		h.sendText(chatID, fmt.Sprintf("❌ Укажите ID пользователя.\nПример: %s 123456789", command))
		return
	}

	targetChatID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		h.sendText(chatID, "❌ Неверный формат ID.\nID должен быть числом.")
		return
	}
	if role == models.RoleClient && targetChatID == h.config.BaseAdminChatID {
		h.sendText(chatID, "❌ Нельзя снять права с основного администратора.")
		return
	}

	if err := h.userService.UpdateRole(chatID, targetChatID, role); err != nil {
		h.sendText(chatID, "❌ Ошибка изменения роли: "+err.Error())
		return
	}

	if role == models.RoleAdmin {
		h.sendText(chatID, fmt.Sprintf("✅ Пользователь с ID %d теперь администратор!", targetChatID))
	} else {
		h.sendText(chatID, fmt.Sprintf("✅ Пользователь с ID %d больше не администратор.", targetChatID))
	}
}

// loadHolidays загружает производственный календарь
func (h *Handler) loadHolidays(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if !h.requireAdmin(chatID) {
		return
	}

	path := strings.TrimSpace(args)
	if path == "" {
		path = h.config.HolidaysFile
	}
	if path == "" {
		text := "❌ Укажите путь к файлу.\nПример: /loadholidays data/calendar_2026.json"
		if total, err := h.nonWorkingDayService.CountNonWorkingDays(); err == nil {
			text += fmt.Sprintf("\n\nСейчас в базе выходных дней: %d", total)
		}
		h.sendText(chatID, text)
		return
	}

	count, err := h.nonWorkingDayService.LoadFromJSON(path)
	if err != nil {
		logrus.WithField("chat_id", chatID).Errorf("Failed to load holidays: %v", err)
		h.sendText(chatID, "❌ "+err.Error())
		return
	}
	h.sendText(chatID, fmt.Sprintf("✅ Загружено выходных дней: %d", count))
}
