package handler

import (
	"absence-bot/internal/models"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Состояния пошагового ввода
const (
	stateAwaitingFirstName = "awaiting_first_name"
	stateAwaitingLastName  = "awaiting_last_name:"
	stateAwaitingUpdate    = "awaiting_update"
	stateAwaitingPosition  = "awaiting_position"
	stateAwaitingPhone     = "awaiting_phone"
	stateAwaitingEmail     = "awaiting_email"
	stateAwaitingAvatar    = "awaiting_avatar"
	stateAwaitingComment   = "awaiting_comment"
	stateAwaitingReason    = "awaiting_reason"
)

// startProfileCreation начинает процесс создания профиля
func (h *Handler) startProfileCreation(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if user, err := h.userService.GetUser(chatID); err == nil && user != nil {
		h.sendText(chatID, "❌ У вас уже есть профиль!\nИспользуйте /myprofile чтобы посмотреть его или /updateprofile чтобы изменить.")
		return
	}

	h.userStates[chatID] = stateAwaitingFirstName

	h.sendText(chatID, `👤 Создание профиля

Шаг 1 из 2:
✏️ Пожалуйста, отправьте ваше имя:`)
}

// handleProfileState обрабатывает пошаговый ввод
func (h *Handler) handleProfileState(message *tgbotapi.Message, state string) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	switch {
	case state == stateAwaitingFirstName:
		if text == "" {
			h.sendText(chatID, "❌ Имя не может быть пустым. Отправьте ваше имя:")
			return
		}
		h.userStates[chatID] = stateAwaitingLastName + text
		h.sendText(chatID, fmt.Sprintf(`Шаг 2 из 2:
✅ Имя сохранено: %s
✏️ Теперь отправьте вашу фамилию (если нет фамилии, отправьте "-"):`, text))

	case strings.HasPrefix(state, stateAwaitingLastName):
		delete(h.userStates, chatID)
		firstName := strings.TrimPrefix(state, stateAwaitingLastName)
		lastName := text
		if lastName == "-" {
			lastName = ""
		}

		user, err := h.userService.CreateUser(chatID, usernameOf(message), firstName, lastName)
		if err != nil {
			h.sendText(chatID, "❌ Ошибка создания профиля: "+err.Error())
			return
		}

		h.sendText(chatID, fmt.Sprintf(`🎉 Профиль успешно создан!

%s

Добавьте должность и контакты: /setposition, /setphone, /setemail, /setavatar
Отметить отсутствие: /add`, h.userService.FormatUserInfo(user)))

	case state == stateAwaitingUpdate:
		delete(h.userStates, chatID)

		parts := strings.Fields(text)
		if len(parts) < 1 {
			h.sendText(chatID, "❌ Неверный формат. Пожалуйста, отправьте имя и фамилию.")
			return
		}
		firstName := parts[0]
		lastName := ""
		if len(parts) > 1 {
			lastName = strings.Join(parts[1:], " ")
		}

		user, err := h.userService.UpdateUser(chatID, usernameOf(message), firstName, lastName)
		h.replyProfileUpdate(chatID, user, err)

	case state == stateAwaitingPosition, state == stateAwaitingPhone,
		state == stateAwaitingEmail, state == stateAwaitingAvatar:
		delete(h.userStates, chatID)
		h.applyProfileField(chatID, state, text)

	case state == stateAwaitingComment, state == stateAwaitingReason:
		delete(h.userStates, chatID)
		session, ok := h.forms[chatID]
		if !ok {
			h.sendText(chatID, "❌ Нет открытой формы. Откройте ее командой /add")
			return
		}
		if state == stateAwaitingComment {
			h.applyComment(chatID, session, text)
		} else {
			h.applyReason(chatID, session, text)
		}

	default:
		delete(h.userStates, chatID)
	}
}

// setProfileField - /setposition, /setphone, /setemail, /setavatar
func (h *Handler) setProfileField(message *tgbotapi.Message, state, prompt, args string) {
	chatID := message.Chat.ID
	if _, err := h.userService.GetUser(chatID); err != nil {
		h.sendText(chatID, "❌ Профиль не найден.\nИспользуйте /createprofile чтобы создать профиль.")
		return
	}
	if strings.TrimSpace(args) == "" {
		h.userStates[chatID] = state
		h.sendText(chatID, prompt)
		return
	}
	h.applyProfileField(chatID, state, args)
}

func (h *Handler) applyProfileField(chatID int64, state, value string) {
	var (
		user *models.User
		err  error
	)
	switch state {
	case stateAwaitingPosition:
		user, err = h.userService.SetPosition(chatID, value)
	case stateAwaitingPhone:
		user, err = h.userService.SetPhone(chatID, value)
	case stateAwaitingEmail:
		user, err = h.userService.SetEmail(chatID, value)
	case stateAwaitingAvatar:
		user, err = h.userService.SetAvatar(chatID, value)
	}
	h.replyProfileUpdate(chatID, user, err)
}

func (h *Handler) replyProfileUpdate(chatID int64, user *models.User, err error) {
	if err != nil {
		h.sendText(chatID, "❌ Ошибка обновления профиля: "+err.Error())
		return
	}
	h.sendText(chatID, "✅ Профиль успешно обновлен!\n\n"+h.userService.FormatUserInfo(user))
}

// showProfile показывает профиль пользователя
func (h *Handler) showProfile(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	user, err := h.userService.GetUser(chatID)
	if err != nil {
		h.sendText(chatID, "❌ Профиль не найден.\nИспользуйте /createprofile чтобы создать профиль.")
		return
	}

	h.sendText(chatID, h.userService.FormatUserInfo(user))
}

// startProfileUpdate начинает процесс обновления профиля
func (h *Handler) startProfileUpdate(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if _, err := h.userService.GetUser(chatID); err != nil {
		h.sendText(chatID, "❌ Профиль не найден.\nИспользуйте /createprofile чтобы создать профиль.")
		return
	}

	h.sendText(chatID, `✏️ Обновление профиля

Отправьте новые данные в формате:
Имя Фамилия

Например: Иван Иванов
Или просто: Иван (если нужно обновить только имя)`)

	h.userStates[chatID] = stateAwaitingUpdate
}

// deleteProfile спрашивает подтверждение удаления профиля
func (h *Handler) deleteProfile(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Да, удалить", "confirm_delete"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Нет, отменить", "cancel_delete"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, "⚠️ Вы уверены, что хотите удалить свой профиль?\nВсе ваши записи об отсутствии тоже будут удалены.")
	msg.ReplyMarkup = keyboard
	h.client.Bot.Send(msg)
}

func usernameOf(message *tgbotapi.Message) string {
	if message.From == nil {
		return ""
	}
	return message.From.UserName
}
