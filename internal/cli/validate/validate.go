// Package validate - правила ввода числовых, текстовых полей и дат
// в формах учёта и ленты.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"HomeLedger/internal/cli/model"
)

// Field - имя проверяемого поля формы.
type Field string

const (
	FieldQty           Field = "qty"
	FieldPrice         Field = "price"
	FieldReorderLevel  Field = "reorderLevel"
	FieldExpDate       Field = "expDate"
	FieldPurchasedDate Field = "purchasedDate"
	FieldName          Field = "name"
	FieldTitle         Field = "title"
	FieldDescription   Field = "description"
	FieldSkills        Field = "skills"
	FieldUOM           Field = "uom"
	FieldType          Field = "type"
)

// Display возвращает подпись поля для сообщений.
func (f Field) Display() string {
	switch f {
	case FieldQty:
		return "Quantity"
	case FieldPrice:
		return "Price"
	case FieldReorderLevel:
		return "Reorder Level"
	case FieldExpDate:
		return "Expiry Date"
	case FieldPurchasedDate:
		return "Purchased Date"
	case FieldName:
		return "Name"
	case FieldTitle:
		return "Title"
	case FieldDescription:
		return "Description"
	case FieldSkills:
		return "Skill"
	case FieldUOM:
		return "Unit of Measure"
	case FieldType:
		return "Type"
	}
	return string(f)
}

// Шаблоны сообщений; %s - подпись поля.
const (
	msgPositive   = "%s must be a valid positive number."
	msgWhole      = "%s must be a positive whole number when UOM is 'UNITS'."
	msgRequired   = "%s is required."
	msgPastExpiry = "%s cannot be in the past."
	msgFuture     = "%s cannot be in the future."
	msgDate       = "%s must be a date in YYYY-MM-DD format."
	msgOneOf      = "%s must be one of: %s."
	msgSkills     = "At least one skill must be selected."
)

// FieldError - отклонённый ввод одного поля.
type FieldError struct {
	Field   Field
	Message string
}

func (e *FieldError) Error() string { return e.Message }

func reject(f Field, tmpl string, args ...any) *FieldError {
	return &FieldError{Field: f, Message: fmt.Sprintf(tmpl, append([]any{f.Display()}, args...)...)}
}

var (
	positiveNumberRe = regexp.MustCompile(`^\d+(\.\d+)?$`)
	wholeNumberRe    = regexp.MustCompile(`^\d+$`)
)

// wholeOnly сообщает, что f при uom должно быть целым.
// Цена допускает дробь при любой единице.
func wholeOnly(f Field, uom model.UOM) bool {
	return uom == model.UOMUnits && (f == FieldQty || f == FieldReorderLevel)
}

// Number проверяет числовой ввод. Пустой ввод допустим (ещё не введено)
// и возвращается с ok=false.
func Number(f Field, raw string, uom model.UOM) (v float64, ok bool, err error) {
	if raw == "" {
		return 0, false, nil
	}
	if wholeOnly(f, uom) {
		if !wholeNumberRe.MatchString(raw) {
			return 0, false, reject(f, msgWhole)
		}
	} else if !positiveNumberRe.MatchString(raw) {
		return 0, false, reject(f, msgPositive)
	}
	v, perr := strconv.ParseFloat(raw, 64)
	if perr != nil {
		return 0, false, reject(f, msgPositive)
	}
	return v, true, nil
}

// RequiredNumber - Number для отправляемой формы: пустой ввод отклоняется.
func RequiredNumber(f Field, raw string, uom model.UOM) (float64, error) {
	v, ok, err := Number(f, raw, uom)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, reject(f, msgRequired)
	}
	return v, nil
}

// Date разбирает ввод даты для f.
func Date(f Field, raw string) (model.Date, error) {
	d, err := model.ParseDate(raw)
	if err != nil {
		return model.Date{}, reject(f, msgDate)
	}
	return d, nil
}

// ExpiryDate отклоняет срок годности раньше сегодняшнего; нулевая дата допустима.
func ExpiryDate(d, today model.Date) error {
	if !d.IsZero() && d.Before(today) {
		return reject(FieldExpDate, msgPastExpiry)
	}
	return nil
}

// PurchasedDate отклоняет дату покупки позже сегодняшней.
func PurchasedDate(d, today model.Date) error {
	if d.After(today) {
		return reject(FieldPurchasedDate, msgFuture)
	}
	return nil
}

// Required отклоняет пустой текст.
func Required(f Field, value string) error {
	if strings.TrimSpace(value) == "" {
		return reject(f, msgRequired)
	}
	return nil
}

// Skills требует хотя бы один навык.
func Skills(skills []string) error {
	for _, s := range skills {
		if strings.TrimSpace(s) != "" {
			return nil
		}
	}
	return &FieldError{Field: FieldSkills, Message: msgSkills}
}

// UOM проверяет принадлежность к набору единиц.
func UOM(u model.UOM) error {
	if !u.Valid() {
		names := make([]string, 0, len(model.UOMs))
		for _, x := range model.UOMs {
			names = append(names, string(x))
		}
		return reject(FieldUOM, msgOneOf, strings.Join(names, ", "))
	}
	return nil
}

// ItemType проверяет принадлежность к набору категорий.
func ItemType(t string) error {
	if !model.ValidItemType(t) {
		return reject(FieldType, msgOneOf, strings.Join(model.ItemTypes, ", "))
	}
	return nil
}
