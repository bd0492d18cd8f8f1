package service

import (
	"absence-bot/internal/calendar"
	"absence-bot/internal/repository"
	"fmt"
	"strings"
)

// CategoryStat - количество дней отсутствия по категории
type CategoryStat struct {
	Category calendar.Category `json:"category"`
	Count    int64             `json:"count"`
}

type StatsService struct {
	absenceRepo repository.AbsenceRepository
}

func NewStatsService(absenceRepo repository.AbsenceRepository) *StatsService {
	return &StatsService{absenceRepo: absenceRepo}
}

// CategoryStats возвращает счетчики по всем категориям, включая нулевые
func (s *StatsService) CategoryStats(userID uint) ([]CategoryStat, error) {
	counts, err := s.absenceRepo.CountByCategory(userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчета статистики: %w", err)
	}

	byKey := make(map[string]int64, len(counts))
	for _, c := range counts {
		byKey[c.Category] = c.Count
	}

	categories := calendar.Categories()
	stats := make([]CategoryStat, 0, len(categories))
	for _, cat := range categories {
		stats = append(stats, CategoryStat{Category: cat, Count: byKey[string(cat.Key)]})
	}
	return stats, nil
}

func (s *StatsService) FormatStats(stats []CategoryStat) string {
	lines := []string{"📊 Статистика отсутствий:"}
	for _, st := range stats {
		lines = append(lines, fmt.Sprintf("%s %s: %d", st.Category.Emoji, st.Category.Label, st.Count))
	}
	return strings.Join(lines, "\n")
}
