// internal/models/absence.go
package models

import (
	"time"
)

// Absence - одна запись отсутствия на одну дату
type Absence struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_absence_user_date" json:"user_id"`
	Category  string    `gorm:"type:varchar(20);not null;index" json:"category"`
	Reason    *string   `gorm:"type:text" json:"reason"`
	Comment   *string   `gorm:"type:varchar(200)" json:"comment"`
	Date      time.Time `gorm:"type:date;not null;index;uniqueIndex:idx_absence_user_date" json:"date"`
	Callable  bool      `gorm:"not null;default:false" json:"callable"`
	BatchID   string    `gorm:"type:varchar(36);not null;index" json:"batch_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}

func (Absence) TableName() string {
	return "absences"
}

// ISODate возвращает дату записи в формате YYYY-MM-DD
func (a *Absence) ISODate() string {
	return a.Date.Format("2006-01-02")
}

// IsValid проверяет валидность данных
func (a *Absence) IsValid() bool {
	if a.UserID == 0 {
		return false
	}
	if a.Date.IsZero() {
		return false
	}
	if a.Category == "" || a.BatchID == "" {
		return false
	}
	return true
}

// CategoryCount - количество записей по категории
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// AbsenceBatch - одна отправка формы (несколько дат)
type AbsenceBatch struct {
	BatchID    string    `json:"batch_id"`
	Categories []string  `json:"categories"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Days       int       `json:"days"`
	Callable   bool      `json:"callable"`
	Comment    *string   `json:"comment"`
}
