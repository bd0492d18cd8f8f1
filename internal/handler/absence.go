package handler

import (
	"absence-bot/internal/calendar"
	"absence-bot/internal/entry"
	"absence-bot/internal/service"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// openForm открывает новую форму добавления отсутствия
func (h *Handler) openForm(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if _, err := h.userService.GetUser(chatID); err != nil {
		h.sendText(chatID, "❌ Профиль не найден.\nИспользуйте /createprofile чтобы создать профиль.")
		return
	}

	// старая форма заменяется новой
	if old, ok := h.forms[chatID]; ok {
		h.removeKeyboard(chatID, old.messageID)
	}

	session := newFormSession(h.today())
	msg := tgbotapi.NewMessage(chatID, renderFormText(session))
	msg.ReplyMarkup = renderFormKeyboard(session, h.monthHolidays(session))
	sent, err := h.client.Bot.Send(msg)
	if err != nil {
		logrus.WithField("chat_id", chatID).Errorf("Failed to send form: %v", err)
		return
	}
	session.messageID = sent.MessageID
	h.forms[chatID] = session
}

// handleFormCallback обрабатывает нажатия на кнопки формы
func (h *Handler) handleFormCallback(ctx context.Context, callback *tgbotapi.CallbackQuery, kind, arg string) {
	chatID := callback.Message.Chat.ID
	session, ok := h.forms[chatID]
	if !ok || session.messageID != callback.Message.MessageID {
		h.answerCallback(callback, "Форма устарела. Откройте новую командой /add")
		return
	}

	var alert string
	switch kind {
	case cbCategory:
		key, err := calendar.ParseCategoryKey(arg)
		if err == nil {
			err = session.pressCategory(key)
		}
		if err != nil {
			alert = "❌ " + err.Error()
		}
	case cbDay:
		index, err := strconv.Atoi(arg)
		if err != nil {
			h.answerCallback(callback, "")
			return
		}
		alert = joinNotices(session.pressDay(index))
	case cbNav:
		delta, err := strconv.Atoi(arg)
		if err != nil {
			h.answerCallback(callback, "")
			return
		}
		session.navigate(delta)
	case cbRange:
		session.toggleRange()
	case cbCallable:
		session.form.ToggleCallable()
	case cbClear:
		session.clear()
	case cbSubmit:
		h.submitForm(ctx, callback, session)
		return
	default:
		logrus.WithField("chat_id", chatID).Warnf("Unknown callback data: %s", callback.Data)
		h.answerCallback(callback, "")
		return
	}

	h.renderForm(chatID, session)
	h.answerCallback(callback, alert)
}

func (h *Handler) submitForm(ctx context.Context, callback *tgbotapi.CallbackQuery, session *formSession) {
	chatID := callback.Message.Chat.ID
	log := logrus.WithField("chat_id", chatID)

	user, err := h.userService.GetUser(chatID)
	if err != nil {
		h.answerCallback(callback, "❌ "+err.Error())
		return
	}

	result, err := h.absenceService.Submit(ctx, user, session.form)
	if err != nil {
		switch {
		case errors.Is(err, entry.ErrNoDates), errors.Is(err, entry.ErrReasonRequired),
			errors.Is(err, entry.ErrCommentTooLong), errors.Is(err, service.ErrDateTaken):
			log.Infof("Submit rejected: %v", err)
		default:
			log.Errorf("Submit failed: %v", err)
		}
		h.answerCallback(callback, "❌ "+err.Error())
		return
	}

	delete(h.forms, chatID)

	lines := []string{fmt.Sprintf("✅ Сохранено дней: %d", len(result.Rows)), ""}
	for _, row := range result.Rows {
		cat, _ := calendar.LookupCategory(calendar.CategoryKey(row.Category))
		lines = append(lines, fmt.Sprintf("%s %s - %s", cat.Emoji, row.Date.Format("02.01.2006"), cat.Label))
	}
	lines = append(lines, "", "Мои записи: /myabsences")

	edit := tgbotapi.NewEditMessageText(chatID, session.messageID, strings.Join(lines, "\n"))
	if _, err := h.client.Bot.Send(edit); err != nil {
		log.Warnf("Failed to update form message: %v", err)
	}
	h.answerCallback(callback, "")
}

// renderForm перерисовывает сообщение формы на месте
func (h *Handler) renderForm(chatID int64, session *formSession) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID,
		session.messageID,
		renderFormText(session),
		renderFormKeyboard(session, h.monthHolidays(session)),
	)
	if _, err := h.client.Bot.Send(edit); err != nil && !strings.Contains(err.Error(), "message is not modified") {
		logrus.WithField("chat_id", chatID).Warnf("Failed to render form: %v", err)
	}
}

func (h *Handler) monthHolidays(session *formSession) map[string]bool {
	anchor := session.form.Selector().Anchor()
	return h.nonWorkingDayService.MonthSet(anchor.Year(), anchor.Month())
}

// setFormComment - /comment <текст>
func (h *Handler) setFormComment(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	session, ok := h.forms[chatID]
	if !ok {
		h.sendText(chatID, "❌ Нет открытой формы. Откройте ее командой /add")
		return
	}
	if strings.TrimSpace(args) == "" {
		h.userStates[chatID] = stateAwaitingComment
		h.sendText(chatID, "✏️ Отправьте комментарий (до 200 символов):")
		return
	}
	h.applyComment(chatID, session, args)
}

func (h *Handler) applyComment(chatID int64, session *formSession, text string) {
	if err := session.form.SetComment(text); err != nil {
		h.sendText(chatID, "❌ "+err.Error())
		return
	}
	h.renderForm(chatID, session)
	h.sendText(chatID, "✅ Комментарий сохранен.")
}

// setFormReason - /reason <текст>
func (h *Handler) setFormReason(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	session, ok := h.forms[chatID]
	if !ok {
		h.sendText(chatID, "❌ Нет открытой формы. Откройте ее командой /add")
		return
	}
	if strings.TrimSpace(args) == "" {
		h.userStates[chatID] = stateAwaitingReason
		h.sendText(chatID, "✏️ Отправьте причину отсутствия:")
		return
	}
	h.applyReason(chatID, session, args)
}

func (h *Handler) applyReason(chatID int64, session *formSession, text string) {
	if err := session.form.SetReason(text); err != nil {
		h.sendText(chatID, "❌ "+err.Error())
		return
	}
	h.renderForm(chatID, session)
	h.sendText(chatID, "✅ Причина сохранена.")
}

// showMyAbsences показывает отправки пользователя с кнопками удаления
func (h *Handler) showMyAbsences(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	user, err := h.userService.GetUser(chatID)
	if err != nil {
		logrus.WithField("chat_id", chatID).Warn("User not found for absences")
		h.sendText(chatID, "❌ Профиль не найден.\nИспользуйте /createprofile чтобы создать профиль.")
		return
	}

	batches, err := h.absenceService.Batches(user.ID)
	if err != nil {
		logrus.WithError(err).Error("Failed to get user absences")
		h.sendText(chatID, "❌ Ошибка получения данных: "+err.Error())
		return
	}
	if len(batches) == 0 {
		h.sendText(chatID, "📭 У вас нет записей об отсутствии.\nДобавить: /add")
		return
	}

	lines := []string{"📋 Мои записи об отсутствии:", ""}
	ids := make([]string, 0, len(batches))
	labels := make([]string, 0, len(batches))
	for i, b := range batches {
		label := h.absenceService.FormatBatch(b)
		line := fmt.Sprintf("%d. %s", i+1, label)
		if b.Callable {
			line += " 📞"
		}
		lines = append(lines, line)
		if b.Comment != nil {
			lines = append(lines, "   💬 "+*b.Comment)
		}
		ids = append(ids, b.BatchID)
		labels = append(labels, fmt.Sprintf("%d. %s", i+1, label))
	}

	stats, err := h.statsService.CategoryStats(user.ID)
	if err == nil {
		lines = append(lines, "", h.statsService.FormatStats(stats))
	}

	msg := tgbotapi.NewMessage(chatID, strings.Join(lines, "\n"))
	msg.ReplyMarkup = renderBatchesKeyboard(ids, labels)
	h.client.Bot.Send(msg)
}

// deleteBatch удаляет отправку по кнопке
func (h *Handler) deleteBatch(callback *tgbotapi.CallbackQuery, batchID string) {
	chatID := callback.Message.Chat.ID

	user, err := h.userService.GetUser(chatID)
	if err != nil {
		h.answerCallback(callback, "❌ "+err.Error())
		return
	}
	if err := h.absenceService.DeleteBatch(user.ID, batchID); err != nil {
		h.answerCallback(callback, "❌ "+err.Error())
		return
	}

	h.removeKeyboard(chatID, callback.Message.MessageID)
	h.answerCallback(callback, "")
	h.sendText(chatID, "🗑 Запись удалена.")
	h.showMyAbsences(&tgbotapi.Message{Chat: callback.Message.Chat})
}

func joinNotices(notices []calendar.Notice) string {
	parts := make([]string, 0, len(notices))
	for _, n := range notices {
		parts = append(parts, string(n))
	}
	return strings.Join(parts, "\n")
}
