package calendar

import "fmt"

// CategoryKey - ключ категории отсутствия
type CategoryKey string

const (
	CategoryIllness      CategoryKey = "illness"       // Больничный лист
	CategoryBusinessTrip CategoryKey = "business_trip" // Командировка
	CategoryTraining     CategoryKey = "training"      // Обучение
	CategoryShortAbsence CategoryKey = "short_absence" // Кратковременное отсутствие
	CategoryVacation     CategoryKey = "vacation"      // Отпуск
	CategoryOther        CategoryKey = "other"         // Другая причина (нужно указать)
)

// Category - справочная запись категории отсутствия
type Category struct {
	Key            CategoryKey `json:"key"`
	Label          string      `json:"label"`
	Color          string      `json:"color"`
	Emoji          string      `json:"emoji"`
	RequiresReason bool        `json:"requires_reason"`
}

var categories = []Category{
	{Key: CategoryIllness, Label: "Больничный лист", Color: "#e11d48", Emoji: "🟥"},
	{Key: CategoryBusinessTrip, Label: "Командировка", Color: "#0ea5e9", Emoji: "🟦"},
	{Key: CategoryTraining, Label: "Обучение", Color: "#a855f7", Emoji: "🟪"},
	{Key: CategoryShortAbsence, Label: "Кратковременное отсутствие", Color: "#f59e0b", Emoji: "🟧"},
	{Key: CategoryVacation, Label: "Отпуск", Color: "#22c55e", Emoji: "🟩"},
	{Key: CategoryOther, Label: "Другая причина", Color: "#64748b", Emoji: "⬜", RequiresReason: true},
}

// Categories возвращает копию фиксированного набора категорий в порядке отображения
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// LookupCategory ищет категорию по ключу
func LookupCategory(key CategoryKey) (Category, bool) {
	for _, c := range categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// ParseCategoryKey проверяет строку и возвращает ключ категории
func ParseCategoryKey(s string) (CategoryKey, error) {
	key := CategoryKey(s)
	if _, ok := LookupCategory(key); !ok {
		return "", fmt.Errorf("неизвестная категория: %s", s)
	}
	return key, nil
}

// RequiresReason - нужна ли для категории текстовая причина
func (k CategoryKey) RequiresReason() bool {
	c, ok := LookupCategory(k)
	return ok && c.RequiresReason
}

func (k CategoryKey) String() string {
	return string(k)
}
