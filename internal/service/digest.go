package service

import (
	"fmt"
	"time"
)

// DigestService собирает утреннюю сводку отсутствующих
type DigestService struct {
	absences   *AbsenceService
	nonWorking  *NonWorkingDayService
}

func NewDigestService(absences *AbsenceService, nonWorking *NonWorkingDayService) *DigestService {
	return &DigestService{absences: absences, nonWorking: nonWorking}
}

// TodayDigest возвращает текст сводки. skip=true для выходных дней производственного календаря.
func (s *DigestService) TodayDigest(date time.Time) (text string, skip bool, err error) {
	if s.nonWorking != nil {
		off, err := s.nonWorking.IsNonWorkingDay(date)
		if err != nil {
			return "", false, fmt.Errorf("ошибка проверки календаря: %w", err)
		}
		if off {
			return "", true, nil
		}
	}

	entries, err := s.absences.ByDate(date)
	if err != nil {
		return "", false, err
	}
	return "☀️ Сводка на сегодня\n\n" + s.absences.FormatDay(date, entries), false, nil
}
