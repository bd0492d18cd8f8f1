package handler

import (
	"absence-bot/internal/calendar"
	"absence-bot/internal/entry"
	"time"
)

// виртуальный размер ячейки: у inline-клавиатуры нет координат, жест строится по центрам ячеек
const virtualCellSize = 100

// formSession - открытая форма добавления отсутствия в чате
type formSession struct {
	form       *entry.Form
	messageID  int
	rangeMode  bool
	rangeStart int
}

func newFormSession(now time.Time) *formSession {
	s := &formSession{form: entry.New(now), rangeStart: -1}
	s.form.Selector().SetGridSize(calendar.Columns*virtualCellSize, calendar.GridRows*virtualCellSize)
	return s
}

// pressDay обрабатывает нажатие на день. В режиме диапазона первое нажатие начинает
// протягивание, второе проводит его по всем ячейкам до выбранной и завершает.
func (s *formSession) pressDay(index int) []calendar.Notice {
	sel := s.form.Selector()
	if !s.rangeMode {
		sel.Tap(index)
		return s.form.TakeNotices()
	}

	cell, ok := sel.Grid().Cell(index)
	if !ok || cell.IsPadding() {
		return nil
	}
	if _, ok := sel.Active(); !ok {
		return []calendar.Notice{calendar.NoticeChooseCategory}
	}

	size := sel.GridSize()
	if s.rangeStart < 0 {
		sel.BeginDrag()
		sel.DragMove(calendar.CellCenter(index, size))
		s.rangeStart = index
		return nil
	}

	from, to := s.rangeStart, index
	if from > to {
		from, to = to, from
	}
	for i := from; i <= to; i++ {
		sel.DragMove(calendar.CellCenter(i, size))
	}
	sel.EndDrag()
	s.rangeStart = -1
	return nil
}

func (s *formSession) toggleRange() {
	s.rangeMode = !s.rangeMode
	if !s.rangeMode {
		s.cancelRange()
	}
}

func (s *formSession) cancelRange() {
	s.form.Selector().EndDrag()
	s.rangeStart = -1
}

func (s *formSession) navigate(delta int) {
	s.cancelRange()
	s.form.Selector().Navigate(delta)
}

func (s *formSession) pressCategory(key calendar.CategoryKey) error {
	return s.form.PressCategory(key)
}

func (s *formSession) clear() {
	s.cancelRange()
	s.form.Reset()
}
