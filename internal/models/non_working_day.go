package models

import (
	"time"
)

// NonWorkingDay - выходной или праздничный день производственного календаря
type NonWorkingDay struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Date        time.Time `gorm:"uniqueIndex" json:"date"`
	Year        int       `gorm:"index" json:"year"`
	Month       int       `gorm:"index" json:"month"`
	Day         int       `json:"day"`
	Transferred bool      `json:"transferred"` // перенесенный выходной
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DateOnly приводит время к полуночи UTC того же календарного дня.
// Все даты в таблицах хранятся в этом виде, чтобы сравнение в SQLite было строковым.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
