package holidays

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CalendarJSON - структура исходного JSON производственного календаря
type CalendarJSON struct {
	Year        int          `json:"year"`
	Months      []MonthDays  `json:"months"`
	Transitions []Transition `json:"transitions"`
	Statistic   Statistic    `json:"statistic"`
}

type MonthDays struct {
	Month int    `json:"month"`
	Days  string `json:"days"`
}

type Transition struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Statistic struct {
	Workdays int     `json:"workdays"`
	Holidays int     `json:"holidays"`
	Hours40  float64 `json:"hours40"`
	Hours36  float64 `json:"hours36"`
	Hours24  float64 `json:"hours24"`
}

// Day - нерабочий день календаря
type Day struct {
	Date        time.Time
	Year        int
	Month       int
	Day         int
	Transferred bool
}

// ParseFile читает календарь из файла
func ParseFile(filePath string) ([]Day, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse разбирает JSON календаря. Дни со звездочкой - сокращенные рабочие дни,
// они не попадают в результат. Плюс означает перенесенный выходной.
func Parse(r io.Reader) ([]Day, error) {
	var cal CalendarJSON
	if err := json.NewDecoder(r).Decode(&cal); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	if cal.Year == 0 {
		return nil, fmt.Errorf("calendar year is missing")
	}

	days := []Day{}
	for _, monthData := range cal.Months {
		if monthData.Month < 1 || monthData.Month > 12 {
			return nil, fmt.Errorf("invalid month %d", monthData.Month)
		}

		for _, dayStr := range strings.Split(monthData.Days, ",") {
			dayStr = strings.TrimSpace(dayStr)
			if dayStr == "" || strings.HasSuffix(dayStr, "*") {
				continue
			}

			transferred := strings.HasSuffix(dayStr, "+")
			dayStr = strings.TrimSuffix(dayStr, "+")

			d, err := strconv.Atoi(dayStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse day '%s' in month %d: %w",
					dayStr, monthData.Month, err)
			}

			date := time.Date(cal.Year, time.Month(monthData.Month), d, 0, 0, 0, 0, time.UTC)
			if date.Month() != time.Month(monthData.Month) {
				return nil, fmt.Errorf("day %d does not exist in month %d", d, monthData.Month)
			}

			days = append(days, Day{
				Date:        date,
				Year:        cal.Year,
				Month:       monthData.Month,
				Day:         d,
				Transferred: transferred,
			})
		}
	}

	return days, nil
}

// ForMonth возвращает нерабочие дни месяца
func ForMonth(days []Day, year, month int) []Day {
	result := []Day{}
	for _, day := range days {
		if day.Year == year && day.Month == month {
			result = append(result, day)
		}
	}
	return result
}
