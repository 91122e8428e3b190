package validate

import (
	"HomeLedger/internal/cli/model"
)

// Form хранит числовой ввод формы item вместе с единицей измерения.
// Отклонённое значение сбрасывает поле в пустое, требуя повторного ввода.
type Form struct {
	uom    model.UOM
	values map[Field]string
}

// NewForm создаёт пустую форму для uom (пока не выбрана, может быть пустой).
func NewForm(uom model.UOM) *Form {
	return &Form{uom: uom, values: map[Field]string{}}
}

// UOM возвращает текущую единицу.
func (f *Form) UOM() model.UOM { return f.uom }

// Get возвращает сырое значение поля ("", если не введено или сброшено).
func (f *Form) Get(field Field) string { return f.values[field] }

// Set проверяет ввод числового поля. При отклонении поле сбрасывается
// и возвращается FieldError.
func (f *Form) Set(field Field, raw string) error {
	if _, _, err := Number(field, raw, f.uom); err != nil {
		f.values[field] = ""
		return err
	}
	f.values[field] = raw
	return nil
}

// SetUOM меняет единицу. Переход на UNITS отклоняется, пока введённое
// количество не целое; единица при этом не меняется.
func (f *Form) SetUOM(u model.UOM) error {
	if err := UOM(u); err != nil {
		return err
	}
	if u == model.UOMUnits {
		if q := f.values[FieldQty]; q != "" && !wholeNumberRe.MatchString(q) {
			return reject(FieldQty, msgWhole)
		}
	}
	f.uom = u
	return nil
}

// Value разбирает принятое поле; ok=false, если поле пустое.
func (f *Form) Value(field Field) (float64, bool, error) {
	return Number(field, f.values[field], f.uom)
}
