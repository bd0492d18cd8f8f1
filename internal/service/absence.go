// internal/service/absence.go
package service

import (
	"absence-bot/internal/calendar"
	"absence-bot/internal/entry"
	"absence-bot/internal/logger"
	"absence-bot/internal/models"
	"absence-bot/internal/repository"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrDateTaken = errors.New("на выбранные даты уже есть записи")

const publishTimeout = 5 * time.Second

type AbsenceService struct {
	absenceRepo repository.AbsenceRepository
	publisher   Publisher
	logger      *logrus.Logger
	newBatchID  func() string
}

func NewAbsenceService(absenceRepo repository.AbsenceRepository, publisher Publisher) *AbsenceService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &AbsenceService{
		absenceRepo: absenceRepo,
		publisher:   publisher,
		logger:      logger.Get(),
		newBatchID:  uuid.NewString,
	}
}

// SubmitResult - итог отправки формы
type SubmitResult struct {
	BatchID string
	Rows    []models.Absence
}

// Submit сохраняет все даты формы одной транзакцией и очищает форму.
// Занятые даты отклоняются целиком, ни одна запись при этом не создается.
func (s *AbsenceService) Submit(ctx context.Context, user *models.User, form *entry.Form) (*SubmitResult, error) {
	if user == nil {
		return nil, repository.ErrUserNotFound
	}

	batchID := s.newBatchID()
	rows, err := form.Rows(user.ID, batchID)
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, len(rows))
	for i, r := range rows {
		dates[i] = r.Date
	}
	taken, err := s.absenceRepo.FindTakenDates(user.ID, dates)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки дат: %w", err)
	}
	if len(taken) > 0 {
		formatted := make([]string, len(taken))
		for i, d := range taken {
			formatted[i] = d.Format("02.01.2006")
		}
		return nil, fmt.Errorf("%w: %s", ErrDateTaken, strings.Join(formatted, ", "))
	}

	if err := s.absenceRepo.CreateBatch(rows); err != nil {
		return nil, fmt.Errorf("ошибка сохранения: %w", err)
	}

	log := s.logger.WithFields(logrus.Fields{"user_id": user.ID, "batch_id": batchID})
	log.Infof("Submitted %d absence days", len(rows))
	form.Reset()

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.publisher.PublishAbsenceSubmitted(pubCtx, user, batchID, rows); err != nil {
		log.Warnf("Failed to publish absence.submitted: %v", err)
	}

	return &SubmitResult{BatchID: batchID, Rows: rows}, nil
}

// DayEntry - запись о коллеге, отсутствующем в выбранный день
type DayEntry struct {
	Date     time.Time
	User     models.User
	Category calendar.Category
	Reason   string
	Comment  string
	Callable bool
}

// ErrInvalidRange - начало периода позже конца
var ErrInvalidRange = errors.New("начало периода позже конца")

// ByDate возвращает отсутствующих коллег на дату
func (s *AbsenceService) ByDate(date time.Time) ([]DayEntry, error) {
	absences, err := s.absenceRepo.GetByDate(date)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения записей: %w", err)
	}
	return s.toEntries(absences), nil
}

// ByRange возвращает отсутствия за период включительно, по датам
func (s *AbsenceService) ByRange(from, to time.Time) ([]DayEntry, error) {
	if models.DateOnly(from).After(models.DateOnly(to)) {
		return nil, ErrInvalidRange
	}
	absences, err := s.absenceRepo.GetByDateRange(from, to)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения записей: %w", err)
	}
	return s.toEntries(absences), nil
}

func (s *AbsenceService) toEntries(absences []models.Absence) []DayEntry {
	entries := make([]DayEntry, 0, len(absences))
	for _, a := range absences {
		cat, ok := calendar.LookupCategory(calendar.CategoryKey(a.Category))
		if !ok {
			s.logger.Warnf("Unknown category %q in absence %d", a.Category, a.ID)
			continue
		}
		e := DayEntry{Date: a.Date, User: a.User, Category: cat, Callable: a.Callable}
		if a.Reason != nil {
			e.Reason = *a.Reason
		}
		if a.Comment != nil {
			e.Comment = *a.Comment
		}
		entries = append(entries, e)
	}
	return entries
}

// FormatDay форматирует список отсутствующих на дату
func (s *AbsenceService) FormatDay(date time.Time, entries []DayEntry) string {
	header := fmt.Sprintf("📅 %s", date.Format("02.01.2006"))
	if len(entries) == 0 {
		return header + "\n\n✅ Все на месте."
	}

	lines := []string{header, ""}
	for _, e := range entries {
		line := fmt.Sprintf("%s %s - %s", e.Category.Emoji, e.User.FullName(), e.Category.Label)
		if e.Reason != "" {
			line += fmt.Sprintf(" (%s)", e.Reason)
		}
		if e.Callable {
			line += " 📞"
		}
		lines = append(lines, line)
		if e.Comment != "" {
			lines = append(lines, "   💬 "+e.Comment)
		}
	}
	return strings.Join(lines, "\n")
}

// ForUser возвращает все записи пользователя
func (s *AbsenceService) ForUser(userID uint) ([]models.Absence, error) {
	return s.absenceRepo.GetByUserID(userID)
}

// Batches группирует записи пользователя по отправкам, новые отправки сначала
func (s *AbsenceService) Batches(userID uint) ([]models.AbsenceBatch, error) {
	absences, err := s.absenceRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var batches []models.AbsenceBatch
	for _, a := range absences {
		i, ok := index[a.BatchID]
		if !ok {
			i = len(batches)
			index[a.BatchID] = i
			batches = append(batches, models.AbsenceBatch{
				BatchID:   a.BatchID,
				StartDate: a.Date,
				EndDate:   a.Date,
				Callable:  a.Callable,
				Comment:   a.Comment,
			})
		}
		b := &batches[i]
		b.Days++
		if a.Date.Before(b.StartDate) {
			b.StartDate = a.Date
		}
		if a.Date.After(b.EndDate) {
			b.EndDate = a.Date
		}
		if !containsString(b.Categories, a.Category) {
			b.Categories = append(b.Categories, a.Category)
		}
	}

	sort.SliceStable(batches, func(i, j int) bool {
		return batches[i].StartDate.After(batches[j].StartDate)
	})
	return batches, nil
}

// FormatBatch - одна строка для списка отправок
func (s *AbsenceService) FormatBatch(b models.AbsenceBatch) string {
	var emojis []string
	for _, c := range b.Categories {
		if cat, ok := calendar.LookupCategory(calendar.CategoryKey(c)); ok {
			emojis = append(emojis, cat.Emoji)
		}
	}
	period := b.StartDate.Format("02.01.2006")
	if !b.EndDate.Equal(b.StartDate) {
		period += " - " + b.EndDate.Format("02.01.2006")
	}
	return fmt.Sprintf("%s %s (дней: %d)", strings.Join(emojis, ""), period, b.Days)
}

// DeleteBatch удаляет одну отправку пользователя
func (s *AbsenceService) DeleteBatch(userID uint, batchID string) error {
	deleted, err := s.absenceRepo.DeleteBatch(userID, batchID)
	if err != nil {
		return fmt.Errorf("ошибка удаления: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("запись не найдена")
	}
	s.logger.WithFields(logrus.Fields{"user_id": userID, "batch_id": batchID}).Infof("Deleted %d absence days", deleted)
	return nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
