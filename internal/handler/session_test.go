package handler

import (
	"absence-bot/internal/calendar"
	"testing"
	"time"
)

// апрель 2024: индекс ячейки = день - 1
func newAprilSession() *formSession {
	return newFormSession(time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC))
}

func TestPressDayTap(t *testing.T) {
	s := newAprilSession()
	if notices := s.pressDay(0); len(notices) != 1 || notices[0] != calendar.NoticeChooseCategory {
		t.Fatalf("expected choose-category notice, got %v", notices)
	}

	s.pressCategory(calendar.CategoryVacation)
	s.pressDay(0)
	s.pressDay(1)
	s.pressDay(0)
	if got := s.form.Selector().Dates(); len(got) != 1 || got[0] != "2024-04-02" {
		t.Fatalf("unexpected dates: %v", got)
	}
}

func TestPressDayRange(t *testing.T) {
	s := newAprilSession()
	s.pressCategory(calendar.CategoryBusinessTrip)
	s.toggleRange()

	s.pressDay(9)
	if s.rangeStart != 9 || !s.form.Selector().Dragging() {
		t.Fatalf("first press must start the gesture")
	}
	if s.form.Selector().Len() != 1 {
		t.Fatalf("first day must be assigned immediately")
	}

	// конец раньше начала - диапазон все равно от меньшей даты
	s.pressDay(5)
	if s.rangeStart != -1 || s.form.Selector().Dragging() {
		t.Fatalf("second press must finish the gesture")
	}
	dates := s.form.Selector().Dates()
	if len(dates) != 5 || dates[0] != "2024-04-06" || dates[4] != "2024-04-10" {
		t.Fatalf("unexpected range: %v", dates)
	}
}

func TestRangeAcrossWeeksKeepsAssignedDays(t *testing.T) {
	s := newAprilSession()
	s.pressCategory(calendar.CategoryIllness)
	s.pressDay(3)

	s.pressCategory(calendar.CategoryTraining)
	s.toggleRange()
	s.pressDay(1)
	s.pressDay(12)

	sel := s.form.Selector().Selection()
	if len(sel) != 12 {
		t.Fatalf("expected 12 dates, got %d", len(sel))
	}
	if sel["2024-04-04"] != calendar.CategoryIllness {
		t.Fatalf("range must not overwrite an assigned day")
	}
	if sel["2024-04-08"] != calendar.CategoryTraining {
		t.Fatalf("range must cross the week boundary")
	}
}

func TestRangeWithoutCategory(t *testing.T) {
	s := newAprilSession()
	s.toggleRange()
	if notices := s.pressDay(3); len(notices) != 1 {
		t.Fatalf("expected notice, got %v", notices)
	}
	if s.rangeStart != -1 {
		t.Fatalf("range must not start without category")
	}
}

func TestNavigateCancelsRange(t *testing.T) {
	s := newAprilSession()
	s.pressCategory(calendar.CategoryVacation)
	s.toggleRange()
	s.pressDay(2)
	s.navigate(1)
	if s.rangeStart != -1 || s.form.Selector().Dragging() {
		t.Fatalf("navigation must cancel the pending range")
	}
	if s.form.Selector().Len() != 1 {
		t.Fatalf("selection must survive navigation")
	}
	if got := s.form.Selector().Anchor().Month(); got != time.May {
		t.Fatalf("expected May, got %s", got)
	}
}

func TestRangePaddingIgnored(t *testing.T) {
	// сентябрь 2024 начинается с воскресенья: ячейки 0-5 пустые
	s := newFormSession(time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC))
	s.pressCategory(calendar.CategoryVacation)
	s.toggleRange()
	s.pressDay(0)
	if s.rangeStart != -1 {
		t.Fatalf("padding cell must not start a range")
	}
}

func TestRangePaddingWithoutCategoryIsSilent(t *testing.T) {
	// февраль 2024 начинается с четверга: ячейки 0-2 пустые
	s := newFormSession(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	s.toggleRange()
	if notices := s.pressDay(0); len(notices) != 0 {
		t.Fatalf("padding cell must not raise notices in range mode, got %v", notices)
	}
	if notices := s.pressDay(3); len(notices) != 1 || notices[0] != calendar.NoticeChooseCategory {
		t.Fatalf("real day without category must raise a notice, got %v", notices)
	}
}

func TestClearSession(t *testing.T) {
	s := newAprilSession()
	s.pressCategory(calendar.CategoryVacation)
	s.toggleRange()
	s.pressDay(2)
	s.clear()
	if s.form.Selector().Len() != 0 || s.rangeStart != -1 {
		t.Fatalf("clear must reset selection and range")
	}
	if !s.rangeMode {
		t.Fatalf("clear keeps the range mode switch")
	}
}
