package repository

import (
	"absence-bot/internal/models"
	"time"

	"gorm.io/gorm"
)

type NonWorkingDayRepository interface {
	GetByYearMonth(year, month int) ([]models.NonWorkingDay, error)
	GetAll() ([]models.NonWorkingDay, error)
	ReplaceAll(days []models.NonWorkingDay) error
	IsNonWorkingDay(date time.Time) (bool, error)
}

type GormNonWorkingDayRepository struct {
	db *gorm.DB
}

func NewGormNonWorkingDayRepository(db *gorm.DB) (NonWorkingDayRepository, error) {
	// Автомиграция для таблицы non_working_days
	if err := db.AutoMigrate(&models.NonWorkingDay{}); err != nil {
		return nil, err
	}

	return &GormNonWorkingDayRepository{db: db}, nil
}

// ReplaceAll заменяет календарь целиком в одной транзакции
func (r *GormNonWorkingDayRepository) ReplaceAll(days []models.NonWorkingDay) error {
	for i := range days {
		days[i].Date = models.DateOnly(days[i].Date)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM non_working_days").Error; err != nil {
			return err
		}
		if len(days) == 0 {
			return nil
		}
		return tx.Create(&days).Error
	})
}

func (r *GormNonWorkingDayRepository) GetByYearMonth(year, month int) ([]models.NonWorkingDay, error) {
	var days []models.NonWorkingDay
	err := r.db.Where("year = ? AND month = ?", year, month).Order("day ASC").Find(&days).Error
	return days, err
}

func (r *GormNonWorkingDayRepository) GetAll() ([]models.NonWorkingDay, error) {
	var days []models.NonWorkingDay
	err := r.db.Order("date ASC").Find(&days).Error
	return days, err
}

func (r *GormNonWorkingDayRepository) IsNonWorkingDay(date time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.NonWorkingDay{}).
		Where("date = ?", models.DateOnly(date)).
		Count(&count).Error
	return count > 0, err
}
