package models

const (
	RoleClient string = "client"
	RoleAdmin  string = "admin"
)

type User struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
	ChatID    int64  `gorm:"uniqueIndex;not null" json:"chat_id"`
	Username  string `json:"username"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Avatar    string `json:"avatar"` // путь в хранилище или полный URL
	Role      string `gorm:"default:'client'" json:"role"`
}

// IsAdmin проверяет, является ли пользователь администратором
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FullName - имя и фамилия через пробел
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// TableName задает имя таблицы в БД
func (User) TableName() string {
	return "users"
}
