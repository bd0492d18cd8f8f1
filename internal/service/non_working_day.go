package service

import (
	"absence-bot/internal/logger"
	"absence-bot/internal/models"
	"absence-bot/internal/repository"
	"absence-bot/pkg/holidays"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

type NonWorkingDayService struct {
	repo   repository.NonWorkingDayRepository
	logger *logrus.Logger
}

func NewNonWorkingDayService(repo repository.NonWorkingDayRepository) *NonWorkingDayService {
	return &NonWorkingDayService{repo: repo, logger: logger.Get()}
}

// LoadFromJSON загружает производственный календарь из файла и заменяет сохраненный
func (s *NonWorkingDayService) LoadFromJSON(filePath string) (int, error) {
	days, err := holidays.ParseFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения календаря: %w", err)
	}

	nonWorkingDays := make([]models.NonWorkingDay, 0, len(days))
	for _, d := range days {
		nonWorkingDays = append(nonWorkingDays, models.NonWorkingDay{
			Date:        d.Date,
			Year:        d.Year,
			Month:       d.Month,
			Day:         d.Day,
			Transferred: d.Transferred,
		})
	}

	if err := s.repo.ReplaceAll(nonWorkingDays); err != nil {
		return 0, fmt.Errorf("ошибка сохранения календаря: %w", err)
	}

	s.logger.Infof("Loaded %d non-working days from %s", len(nonWorkingDays), filePath)
	return len(nonWorkingDays), nil
}

// GetNonWorkingDaysForMonth возвращает выходные дни для указанного месяца
func (s *NonWorkingDayService) GetNonWorkingDaysForMonth(year, month int) ([]models.NonWorkingDay, error) {
	return s.repo.GetByYearMonth(year, month)
}

// MonthSet - множество выходных дней месяца в формате YYYY-MM-DD.
// Ошибка БД не мешает показать календарь, поэтому она только логируется.
func (s *NonWorkingDayService) MonthSet(year int, month time.Month) map[string]bool {
	days, err := s.repo.GetByYearMonth(year, int(month))
	if err != nil {
		s.logger.Warnf("Failed to load non-working days for %d-%02d: %v", year, month, err)
		return map[string]bool{}
	}
	set := make(map[string]bool, len(days))
	for _, d := range days {
		set[d.Date.Format("2006-01-02")] = true
	}
	return set
}

// IsNonWorkingDay проверяет, является ли дата выходным днем
func (s *NonWorkingDayService) IsNonWorkingDay(date time.Time) (bool, error) {
	return s.repo.IsNonWorkingDay(date)
}

// CountNonWorkingDays возвращает количество выходных дней
func (s *NonWorkingDayService) CountNonWorkingDays() (int, error) {
	days, err := s.repo.GetAll()
	if err != nil {
		return 0, err
	}
	return len(days), nil
}
