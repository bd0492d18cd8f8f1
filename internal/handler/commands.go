package handler

import (
	"absence-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `📋 Доступные команды:

👤 Профиль:
/createprofile - Создать профиль (имя и фамилия)
/myprofile - Показать мой профиль
/updateprofile - Обновить имя и фамилию
/deleteprofile - Удалить профиль
/setposition [должность] - Указать должность
/setphone [телефон] - Указать телефон
/setemail [email] - Указать email
/setavatar [путь или ссылка] - Указать аватар

🗓 Отсутствия:
/add - Отметить отсутствие в календаре
/comment [текст] - Комментарий к открытой форме
/reason [текст] - Причина для категории «Другая причина»
/myabsences - Мои записи (с удалением)

👥 Коллеги:
/day [дата] - Кто отсутствует в день (по умолчанию сегодня)
    Пример: /day 15.08.2026 или /day 15.08
/colleagues - Список коллег
/colleague ID - Профиль и статистика коллеги

🛠 Утилиты:
/start - Начать работу с ботом
/help - Показать это сообщение

💡 Как отметить отсутствие:
1. Откройте календарь командой /add
2. Выберите категорию (можно несколько, активна последняя)
3. Нажимайте на дни. Повторное нажатие снимает день
4. Для диапазона включите «Диапазон» и нажмите первый и последний день
5. Нажмите «Отправить»`

const adminHelpText = `👑 Команды администратора:

/allusers - Все пользователи
/admins - Администраторы
/promote ID - Назначить администратором
/demote ID - Снять права администратора
/loadholidays [путь] - Загрузить производственный календарь из JSON`

func (h *Handler) handleCommand(message *tgbotapi.Message) {
	command := message.Command()
	args := message.CommandArguments()

	switch command {
	case "start":
		h.sendStartMessage(message)
	case "help":
		h.sendText(message.Chat.ID, helpText)
	case "helpadmin":
		h.sendAdminHelpMessage(message)

	case "createprofile":
		h.startProfileCreation(message)
	case "myprofile":
		h.showProfile(message)
	case "updateprofile":
		h.startProfileUpdate(message)
	case "deleteprofile":
		h.deleteProfile(message)
	case "setposition":
		h.setProfileField(message, stateAwaitingPosition, "✏️ Отправьте вашу должность:", args)
	case "setphone":
		h.setProfileField(message, stateAwaitingPhone, "✏️ Отправьте номер телефона:", args)
	case "setemail":
		h.setProfileField(message, stateAwaitingEmail, "✏️ Отправьте email:", args)
	case "setavatar":
		h.setProfileField(message, stateAwaitingAvatar, "✏️ Отправьте путь к аватару в хранилище или ссылку:", args)

	case "add":
		h.openForm(message)
	case "comment":
		h.setFormComment(message, args)
	case "reason":
		h.setFormReason(message, args)
	case "myabsences":
		h.showMyAbsences(message)

	case "day":
		h.showDay(message, args)
	case "colleagues":
		h.showColleagues(message)
	case "colleague":
		h.showColleague(message, args)

	// Команды администратора
	case "allusers":
		h.showAllUsers(message)
	case "admins":
		h.showAdmins(message)
	case "promote":
		h.changeRole(message, args, models.RoleAdmin)
	case "demote":
		h.changeRole(message, args, models.RoleClient)
	case "loadholidays":
		h.loadHolidays(message, args)

	default:
		h.sendUnknownCommand(message)
	}
}

func (h *Handler) sendUnknownCommand(message *tgbotapi.Message) {
	h.sendText(message.Chat.ID, "❌ Неизвестная команда. Используйте /help для списка команд.")
}

func (h *Handler) sendStartMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if _, err := h.userService.GetUser(chatID); err != nil {
		h.sendText(chatID, "👋 Привет! Я помогаю отмечать отсутствия и видеть, кого нет на месте.\n\nДля начала создайте профиль: /createprofile\nВсе команды: /help")
		return
	}
	h.sendText(chatID, helpText)
}

func (h *Handler) sendAdminHelpMessage(message *tgbotapi.Message) {
	if !h.requireAdmin(message.Chat.ID) {
		return
	}
	h.sendText(message.Chat.ID, adminHelpText)
}
