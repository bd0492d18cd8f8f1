package calendar

// PickerMode - вариант выбора категорий на экране
type PickerMode int

const (
	// SingleSelect - нажатие просто взводит категорию
	SingleSelect PickerMode = iota
	// MultiSelect - нажатие добавляет/убирает категорию из рабочего набора
	MultiSelect
)

// Picker - выбор активной категории
type Picker struct {
	mode     PickerMode
	selected []CategoryKey
	active   CategoryKey
}

func NewPicker(mode PickerMode) *Picker {
	return &Picker{mode: mode}
}

// Press обрабатывает нажатие на категорию
func (p *Picker) Press(key CategoryKey) error {
	if _, err := ParseCategoryKey(string(key)); err != nil {
		return err
	}

	if p.mode == SingleSelect {
		p.selected = []CategoryKey{key}
		p.active = key
		return nil
	}

	for i, k := range p.selected {
		if k != key {
			continue
		}
		p.selected = append(p.selected[:i:i], p.selected[i+1:]...)
		if p.active == key {
			p.active = ""
			if n := len(p.selected); n > 0 {
				p.active = p.selected[n-1]
			}
		}
		return nil
	}

	p.selected = append(p.selected, key)
	p.active = key
	return nil
}

// Active возвращает взведенную категорию
func (p *Picker) Active() (CategoryKey, bool) {
	return p.active, p.active != ""
}

func (p *Picker) IsSelected(key CategoryKey) bool {
	for _, k := range p.selected {
		if k == key {
			return true
		}
	}
	return false
}

func (p *Picker) Selected() []CategoryKey {
	out := make([]CategoryKey, len(p.selected))
	copy(out, p.selected)
	return out
}

func (p *Picker) Reset() {
	p.selected = nil
	p.active = ""
}
