package handler

import (
	"absence-bot/internal/config"
	"absence-bot/internal/service"
	"absence-bot/pkg/telegram"
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	client               *telegram.Client
	userService          *service.UserService
	absenceService       *service.AbsenceService
	statsService         *service.StatsService
	nonWorkingDayService *service.NonWorkingDayService
	forms                map[int64]*formSession
	userStates           map[int64]string
	config               *config.BotConfig
	now                  func() time.Time
}

func NewHandler(
	client *telegram.Client,
	userService *service.UserService,
	absenceService *service.AbsenceService,
	statsService *service.StatsService,
	nonWorkingDayService *service.NonWorkingDayService,
	cfg *config.BotConfig,
) *Handler {
	return &Handler{
		client:               client,
		userService:          userService,
		absenceService:       absenceService,
		statsService:         statsService,
		nonWorkingDayService: nonWorkingDayService,
		forms:                make(map[int64]*formSession),
		userStates:           make(map[int64]string),
		config:               cfg,
		now:                  time.Now,
	}
}

// HandleUpdates обрабатывает обновления последовательно, по одному, до отмены контекста
func (h *Handler) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			if update.CallbackQuery != nil {
				h.handleCallbackQuery(ctx, update.CallbackQuery)
				continue
			}

			if update.Message == nil {
				continue
			}

			h.handleMessage(update.Message)
		}
	}
}

// handleCallbackQuery обрабатывает inline кнопки
func (h *Handler) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	kind, arg := parseCallback(callback.Data)

	switch kind {
	case cbNoop:
		h.answerCallback(callback, "")
	case "confirm_delete":
		h.removeKeyboard(chatID, callback.Message.MessageID)
		delete(h.forms, chatID)
		if err := h.userService.DeleteUser(chatID); err != nil {
			h.sendText(chatID, "❌ Ошибка удаления профиля: "+err.Error())
		} else {
			h.sendText(chatID, "✅ Ваш профиль успешно удален!")
		}
		h.answerCallback(callback, "")
	case "cancel_delete":
		h.removeKeyboard(chatID, callback.Message.MessageID)
		h.sendText(chatID, "❌ Удаление профиля отменено.")
		h.answerCallback(callback, "")
	case cbDelete:
		h.deleteBatch(callback, arg)
	default:
		h.handleFormCallback(ctx, callback, kind, arg)
	}
}

func (h *Handler) handleMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	log := logrus.WithField("chat_id", chatID)
	if message.From != nil {
		log = log.WithField("username", message.From.UserName)
	}
	log.Debugf("message: %s", message.Text)

	// Команды прерывают пошаговый ввод
	if message.IsCommand() {
		delete(h.userStates, chatID)
		h.handleCommand(message)
		return
	}

	if state, exists := h.userStates[chatID]; exists {
		h.handleProfileState(message, state)
		return
	}

	h.sendText(chatID, "🤔 Не понимаю. Используйте /help для списка команд.")
}

func (h *Handler) sendText(chatID int64, text string) {
	if _, err := h.client.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logrus.WithField("chat_id", chatID).Errorf("Failed to send message: %v", err)
	}
}

// answerCallback убирает "часики" у кнопки; непустой текст показывается как alert
func (h *Handler) answerCallback(callback *tgbotapi.CallbackQuery, text string) {
	var cfg tgbotapi.CallbackConfig
	if text == "" {
		cfg = tgbotapi.NewCallback(callback.ID, "")
	} else {
		cfg = tgbotapi.NewCallbackWithAlert(callback.ID, text)
	}
	if _, err := h.client.Bot.Request(cfg); err != nil {
		logrus.WithField("chat_id", callback.Message.Chat.ID).Warnf("Failed to answer callback: %v", err)
	}
}

func (h *Handler) removeKeyboard(chatID int64, messageID int) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	h.client.Bot.Send(edit)
}

func (h *Handler) today() time.Time {
	now := h.now()
	if h.config != nil && h.config.Location != nil {
		now = now.In(h.config.Location)
	}
	return now
}
