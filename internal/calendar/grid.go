package calendar

import (
	"fmt"
	"math"
	"time"
)

const (
	Columns   = 7
	GridRows  = 6
	GridCells = Columns * GridRows

	// ISODateLayout - формат ключа выбранной даты
	ISODateLayout = "2006-01-02"
)

// CalendarDay - ячейка сетки месяца. Date == nil для ячеек-заполнителей.
type CalendarDay struct {
	Date *time.Time `json:"date"`
	Key  string     `json:"key"`
}

// IsPadding - ячейка не соответствует дню месяца
func (d CalendarDay) IsPadding() bool {
	return d.Date == nil
}

// ISO возвращает дату ячейки в формате YYYY-MM-DD или пустую строку для заполнителя
func (d CalendarDay) ISO() string {
	if d.Date == nil {
		return ""
	}
	return ISODate(*d.Date)
}

// MonthGrid - 42 ячейки (6 недель по 7 дней), неделя начинается с понедельника
type MonthGrid struct {
	Anchor time.Time     `json:"anchor"`
	Cells  []CalendarDay `json:"cells"`
}

// GridSize - измеренный размер сетки на поверхности отрисовки
type GridSize struct {
	Width  float64
	Height float64
}

// Measured - размер известен и не нулевой
func (s GridSize) Measured() bool {
	return s.Width > 0 && s.Height > 0
}

// ISODate форматирует дату как YYYY-MM-DD
func ISODate(t time.Time) string {
	return t.Format(ISODateLayout)
}

// ParseISODate разбирает дату YYYY-MM-DD в указанной зоне
func ParseISODate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(ISODateLayout, s, loc)
}

// MonthAnchor обрезает дату до первого числа месяца
func MonthAnchor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// AddMonths сдвигает якорь на delta месяцев. Результат всегда первое число,
// чтобы длина месяца не влияла на навигацию (31 января + 1 месяц = 1 февраля).
func AddMonths(anchor time.Time, delta int) time.Time {
	return time.Date(anchor.Year(), anchor.Month()+time.Month(delta), 1, 0, 0, 0, 0, anchor.Location())
}

// DaysInMonth - количество дней в месяце якоря (нулевой день следующего месяца)
func DaysInMonth(anchor time.Time) int {
	return time.Date(anchor.Year(), anchor.Month()+1, 0, 0, 0, 0, 0, anchor.Location()).Day()
}

// MondayWeekday переводит воскресный отсчет (Sunday=0) в понедельничный (Monday=0 .. Sunday=6)
func MondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// BuildMonthGrid строит сетку месяца для якорной даты
func BuildMonthGrid(anchor time.Time) MonthGrid {
	first := MonthAnchor(anchor)
	loc := first.Location()
	startWeekday := MondayWeekday(first)
	daysInMonth := DaysInMonth(first)

	cells := make([]CalendarDay, 0, GridCells)
	for i := 0; i < startWeekday; i++ {
		cells = append(cells, CalendarDay{Key: fmt.Sprintf("pad-%d", i)})
	}
	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, loc)
		cells = append(cells, CalendarDay{Date: &date, Key: "d-" + ISODate(date)})
	}
	// Дополняем последнюю неделю, затем до 6 полных строк
	for len(cells)%Columns != 0 {
		cells = append(cells, CalendarDay{Key: fmt.Sprintf("trail-%d", len(cells))})
	}
	for len(cells) < GridCells {
		cells = append(cells, CalendarDay{Key: fmt.Sprintf("trail-%d", len(cells))})
	}

	return MonthGrid{Anchor: first, Cells: cells}
}

// Rows разбивает сетку на 6 строк по 7 ячеек
func (g MonthGrid) Rows() [][]CalendarDay {
	rows := make([][]CalendarDay, 0, GridRows)
	for i := 0; i+Columns <= len(g.Cells); i += Columns {
		rows = append(rows, g.Cells[i:i+Columns])
	}
	return rows
}

// Cell возвращает ячейку по индексу
func (g MonthGrid) Cell(index int) (CalendarDay, bool) {
	if index < 0 || index >= len(g.Cells) {
		return CalendarDay{}, false
	}
	return g.Cells[index], true
}

// IndexOf возвращает индекс ячейки с датой или -1, если дата не в этом месяце
func (g MonthGrid) IndexOf(date time.Time) int {
	iso := ISODate(date)
	for i, c := range g.Cells {
		if c.Date != nil && ISODate(*c.Date) == iso {
			return i
		}
	}
	return -1
}

// RealDays - количество ячеек с датами
func (g MonthGrid) RealDays() int {
	n := 0
	for _, c := range g.Cells {
		if c.Date != nil {
			n++
		}
	}
	return n
}

// CellAt переводит локальные координаты указателя в ячейку сетки.
// Координаты за границами прижимаются к крайним строкам/столбцам.
func CellAt(x, y float64, size GridSize) (row, col, index int) {
	col = clamp(int(math.Floor(x/size.Width*Columns)), 0, Columns-1)
	row = clamp(int(math.Floor(y/size.Height*GridRows)), 0, GridRows-1)
	return row, col, row*Columns + col
}

// CellCenter - координаты центра ячейки для заданного размера сетки
func CellCenter(index int, size GridSize) (x, y float64) {
	row, col := index/Columns, index%Columns
	cellW := size.Width / Columns
	cellH := size.Height / GridRows
	return (float64(col) + 0.5) * cellW, (float64(row) + 0.5) * cellH
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
