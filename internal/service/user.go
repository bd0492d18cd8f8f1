package service

import (
	"absence-bot/internal/logger"
	"absence-bot/internal/models"
	"absence-bot/internal/repository"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

const avatarBucket = "avatars"

type UserService struct {
	repo        repository.UserRepository
	absenceRepo repository.AbsenceRepository
	storageURL  string
	logger      *logrus.Logger
}

func NewUserService(repo repository.UserRepository, absenceRepo repository.AbsenceRepository, storageURL string) *UserService {
	return &UserService{
		repo:        repo,
		absenceRepo: absenceRepo,
		storageURL:  strings.TrimRight(storageURL, "/"),
		logger:      logger.Get(),
	}
}

// CreateUser создает нового пользователя с ролью client по умолчанию
func (s *UserService) CreateUser(chatID int64, username, firstName, lastName string) (*models.User, error) {
	if strings.TrimSpace(firstName) == "" {
		return nil, fmt.Errorf("имя не может быть пустым")
	}

	user := &models.User{
		ChatID:    chatID,
		Username:  username,
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Role:      models.RoleClient,
	}

	if err := s.repo.Create(user); err != nil {
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	s.logger.WithField("chat_id", chatID).Info("User created")
	return user, nil
}

// GetUser возвращает пользователя по chatID
func (s *UserService) GetUser(chatID int64) (*models.User, error) {
	user, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	if user == nil {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

// GetUserByID возвращает пользователя по первичному ключу
func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	if user == nil {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

// UpdateUser обновляет имя и никнейм (пустые значения не меняются)
func (s *UserService) UpdateUser(chatID int64, username, firstName, lastName string) (*models.User, error) {
	return s.update(chatID, func(user *models.User) error {
		if username != "" {
			user.Username = username
		}
		if firstName != "" {
			user.FirstName = strings.TrimSpace(firstName)
		}
		if lastName != "" {
			user.LastName = strings.TrimSpace(lastName)
		}
		return nil
	})
}

// SetPosition задает должность
func (s *UserService) SetPosition(chatID int64, position string) (*models.User, error) {
	position = strings.TrimSpace(position)
	return s.update(chatID, func(user *models.User) error {
		if utf8.RuneCountInString(position) > 100 {
			return fmt.Errorf("должность слишком длинная")
		}
		user.Position = position
		return nil
	})
}

// SetPhone задает телефон
func (s *UserService) SetPhone(chatID int64, phone string) (*models.User, error) {
	phone = strings.TrimSpace(phone)
	return s.update(chatID, func(user *models.User) error {
		digits := 0
		for _, r := range phone {
			switch {
			case r >= '0' && r <= '9':
				digits++
			case strings.ContainsRune("+-() ", r):
			default:
				return fmt.Errorf("некорректный номер телефона: %s", phone)
			}
		}
		if phone != "" && (digits < 5 || digits > 15) {
			return fmt.Errorf("некорректный номер телефона: %s", phone)
		}
		user.Phone = phone
		return nil
	})
}

// SetEmail задает email
func (s *UserService) SetEmail(chatID int64, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	return s.update(chatID, func(user *models.User) error {
		if email != "" {
			addr, err := mail.ParseAddress(email)
			if err != nil || addr.Address != email {
				return fmt.Errorf("некорректный email: %s", email)
			}
		}
		user.Email = email
		return nil
	})
}

// SetAvatar сохраняет путь к аватару в хранилище или полный URL
func (s *UserService) SetAvatar(chatID int64, avatar string) (*models.User, error) {
	avatar = strings.TrimSpace(avatar)
	return s.update(chatID, func(user *models.User) error {
		user.Avatar = avatar
		return nil
	})
}

func (s *UserService) update(chatID int64, apply func(user *models.User) error) (*models.User, error) {
	user, err := s.GetUser(chatID)
	if err != nil {
		return nil, err
	}
	if err := apply(user); err != nil {
		return nil, err
	}
	if err := s.repo.Update(user); err != nil {
		return nil, fmt.Errorf("ошибка обновления пользователя: %w", err)
	}
	return user, nil
}

// AvatarURL превращает путь в хранилище в публичную ссылку
func (s *UserService) AvatarURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if s.storageURL == "" {
		return ""
	}
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimPrefix(path, avatarBucket+"/")
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.storageURL, avatarBucket, path)
}

// UpdateRole меняет роль пользователя (только для админов)
func (s *UserService) UpdateRole(adminChatID, targetChatID int64, role string) error {
	admin, err := s.repo.GetByChatID(adminChatID)
	if err != nil {
		return fmt.Errorf("ошибка проверки админа: %w", err)
	}
	if admin == nil || !admin.IsAdmin() {
		return fmt.Errorf("доступ запрещен: только администраторы могут менять роли")
	}
	if role != models.RoleAdmin && role != models.RoleClient {
		return fmt.Errorf("неизвестная роль: %s", role)
	}

	target, err := s.repo.GetByChatID(targetChatID)
	if err != nil {
		return fmt.Errorf("ошибка поиска пользователя: %w", err)
	}
	if target == nil {
		return repository.ErrUserNotFound
	}

	s.logger.WithFields(logrus.Fields{"admin": adminChatID, "target": targetChatID, "role": role}).Info("Role updated")
	return s.repo.UpdateRole(targetChatID, role)
}

// FormatUserInfo форматирует информацию о пользователе для вывода
func (s *UserService) FormatUserInfo(user *models.User) string {
	var lines []string

	lines = append(lines, "👤 Профиль пользователя:")
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("🆔 ID чата: %d", user.ChatID))
	if user.Username != "" {
		lines = append(lines, fmt.Sprintf("📛 Никнейм: @%s", user.Username))
	}
	lines = append(lines, fmt.Sprintf("👨‍💼 Имя: %s", user.FullName()))
	if user.Position != "" {
		lines = append(lines, fmt.Sprintf("💼 Должность: %s", user.Position))
	}
	if user.Phone != "" {
		lines = append(lines, fmt.Sprintf("📞 Телефон: %s", user.Phone))
	}
	if user.Email != "" {
		lines = append(lines, fmt.Sprintf("✉️ Email: %s", user.Email))
	}
	if url := s.AvatarURL(user.Avatar); url != "" {
		lines = append(lines, fmt.Sprintf("🖼 Аватар: %s", url))
	}

	roleEmoji := "👤"
	if user.IsAdmin() {
		roleEmoji = "👑"
	}
	lines = append(lines, fmt.Sprintf("%s Роль: %s", roleEmoji, user.Role))

	return strings.Join(lines, "\n")
}

// DeleteUser удаляет пользователя вместе с его записями об отсутствии
func (s *UserService) DeleteUser(chatID int64) error {
	user, err := s.GetUser(chatID)
	if err != nil {
		return err
	}
	if err := s.absenceRepo.DeleteByUserID(user.ID); err != nil {
		return fmt.Errorf("ошибка удаления записей: %w", err)
	}
	return s.repo.Delete(chatID)
}

// GetAllUsers возвращает всех пользователей
func (s *UserService) GetAllUsers() ([]*models.User, error) {
	return s.repo.GetAll()
}

// GetAdmins возвращает всех администраторов
func (s *UserService) GetAdmins() ([]*models.User, error) {
	return s.repo.GetAdmins()
}

// FormatColleagues - список коллег с должностями
func (s *UserService) FormatColleagues() (string, error) {
	users, err := s.GetAllUsers()
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "📭 Список коллег пуст.", nil
	}

	lines := []string{"👥 Коллеги:", ""}
	for i, user := range users {
		line := fmt.Sprintf("%d. %s", i+1, user.FullName())
		if user.Position != "" {
			line += " - " + user.Position
		}
		line += fmt.Sprintf(" (ID: %d)", user.ChatID)
		lines = append(lines, line)
	}
	lines = append(lines, "", "Профиль коллеги: /colleague <ID>")
	return strings.Join(lines, "\n"), nil
}

// FormatAllUsers форматирует список всех пользователей для админа
func (s *UserService) FormatAllUsers() (string, error) {
	users, err := s.GetAllUsers()
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "📭 Список пользователей пуст.", nil
	}

	var lines []string
	lines = append(lines, "📋 Все пользователи:")
	lines = append(lines, "")

	for i, user := range users {
		roleEmoji := "👤"
		if user.IsAdmin() {
			roleEmoji = "👑"
		}

		userInfo := fmt.Sprintf("%d. %s %s ", i+1, roleEmoji, user.FullName())
		if user.Username != "" {
			userInfo += fmt.Sprintf("(@%s) ", user.Username)
		}
		userInfo += fmt.Sprintf("- ID: %d", user.ChatID)
		lines = append(lines, userInfo)
	}

	total, admins, err := s.repo.GetStats()
	if err != nil {
		s.logger.Warnf("Failed to get user stats: %v", err)
	} else {
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("📊 Всего пользователей: %d", total))
		lines = append(lines, fmt.Sprintf("👑 Администраторов: %d", admins))
	}

	return strings.Join(lines, "\n"), nil
}

// IsAdmin проверяет, является ли пользователь администратором
func (s *UserService) IsAdmin(chatID int64) (bool, error) {
	user, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return false, err
	}
	return user != nil && user.IsAdmin(), nil
}

// InitializeAdmin инициализирует администратора из конфига
func (s *UserService) InitializeAdmin(adminChatID int64) error {
	if adminChatID == 0 {
		return nil
	}

	existing, err := s.repo.GetByChatID(adminChatID)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.repo.UpdateRole(adminChatID, models.RoleAdmin)
	}

	return s.repo.Create(&models.User{
		ChatID:    adminChatID,
		Username:  "admin",
		FirstName: "Администратор",
		Role:      models.RoleAdmin,
	})
}
