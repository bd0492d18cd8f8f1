// internal/repository/absence_repo.go
package repository

import (
	"absence-bot/internal/models"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type AbsenceRepository interface {
	CreateBatch(absences []models.Absence) error
	GetByDate(date time.Time) ([]models.Absence, error)
	GetByDateRange(from, to time.Time) ([]models.Absence, error)
	GetByUserID(userID uint) ([]models.Absence, error)
	FindTakenDates(userID uint, dates []time.Time) ([]time.Time, error)
	CountByCategory(userID uint) ([]models.CategoryCount, error)
	DeleteBatch(userID uint, batchID string) (int64, error)
	DeleteByUserID(userID uint) error
}

type GormAbsenceRepository struct {
	db *gorm.DB
}

func NewGormAbsenceRepository(db *gorm.DB) (AbsenceRepository, error) {
	if err := db.AutoMigrate(&models.Absence{}); err != nil {
		return nil, err
	}
	return &GormAbsenceRepository{db: db}, nil
}

// CreateBatch сохраняет все записи одной транзакцией: либо все даты, либо ни одной
func (r *GormAbsenceRepository) CreateBatch(absences []models.Absence) error {
	if len(absences) == 0 {
		return nil
	}
	for i := range absences {
		if !absences[i].IsValid() {
			return fmt.Errorf("некорректные данные отсутствия на %s", absences[i].Date.Format("02.01.2006"))
		}
		absences[i].Date = models.DateOnly(absences[i].Date)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Omit("User").Create(&absences).Error
	})
}

func (r *GormAbsenceRepository) GetByDate(date time.Time) ([]models.Absence, error) {
	var absences []models.Absence
	err := r.db.Preload("User").
		Where("date = ?", models.DateOnly(date)).
		Order("category ASC, user_id ASC").
		Find(&absences).Error
	return absences, err
}

func (r *GormAbsenceRepository) GetByDateRange(from, to time.Time) ([]models.Absence, error) {
	var absences []models.Absence
	err := r.db.Preload("User").
		Where("date BETWEEN ? AND ?", models.DateOnly(from), models.DateOnly(to)).
		Order("date ASC, user_id ASC").
		Find(&absences).Error
	return absences, err
}

func (r *GormAbsenceRepository) GetByUserID(userID uint) ([]models.Absence, error) {
	var absences []models.Absence
	err := r.db.Where("user_id = ?", userID).
		Order("date ASC").
		Find(&absences).Error
	return absences, err
}

// FindTakenDates возвращает даты из списка, на которые у пользователя уже есть запись
func (r *GormAbsenceRepository) FindTakenDates(userID uint, dates []time.Time) ([]time.Time, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	normalized := make([]time.Time, len(dates))
	for i, d := range dates {
		normalized[i] = models.DateOnly(d)
	}

	var taken []models.Absence
	err := r.db.Select("date").
		Where("user_id = ? AND date IN ?", userID, normalized).
		Order("date ASC").
		Find(&taken).Error
	if err != nil {
		return nil, err
	}

	result := make([]time.Time, 0, len(taken))
	for _, a := range taken {
		result = append(result, a.Date)
	}
	return result, nil
}

func (r *GormAbsenceRepository) CountByCategory(userID uint) ([]models.CategoryCount, error) {
	var counts []models.CategoryCount
	err := r.db.Model(&models.Absence{}).
		Select("category, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("category").
		Scan(&counts).Error
	return counts, err
}

func (r *GormAbsenceRepository) DeleteBatch(userID uint, batchID string) (int64, error) {
	result := r.db.Where("user_id = ? AND batch_id = ?", userID, batchID).Delete(&models.Absence{})
	return result.RowsAffected, result.Error
}

func (r *GormAbsenceRepository) DeleteByUserID(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Absence{}).Error
}
