package model

import (
	"strconv"
	"strings"
)

// UOM - единица измерения, определяющая допустимость дробного количества.
type UOM string

const (
	UOMKilograms UOM = "KG"
	UOMLiters    UOM = "LTR"
	UOMUnits     UOM = "UNITS"
)

// UOMs - поддерживаемые единицы в порядке отображения.
var UOMs = []UOM{UOMKilograms, UOMLiters, UOMUnits}

// Valid сообщает, что u - поддерживаемая единица.
func (u UOM) Valid() bool {
	for _, x := range UOMs {
		if x == u {
			return true
		}
	}
	return false
}

// Display возвращает читаемое название единицы.
func (u UOM) Display() string {
	switch u {
	case UOMKilograms:
		return "Kilograms"
	case UOMLiters:
		return "Liters"
	case UOMUnits:
		return "Units"
	}
	return string(u)
}

// ItemTypes - закрытый набор категорий.
var ItemTypes = []string{
	"Food",
	"Dairy",
	"Personal Care",
	"Beverages",
	"Clothing",
	"Electronics",
	"Household",
	"Health & Wellness",
	"Cleaning Supplies",
	"Furniture",
}

// ValidItemType сообщает, что t входит в ItemTypes.
func ValidItemType(t string) bool {
	for _, x := range ItemTypes {
		if x == t {
			return true
		}
	}
	return false
}

// Item - одна позиция запасов в удалённом хранилище.
type Item struct {
	ID            string  `json:"_id,omitempty"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Desc          string  `json:"desc"`
	Type          string  `json:"type"`
	UOM           UOM     `json:"uom"`
	Qty           float64 `json:"qty"`
	Price         float64 `json:"price"`
	ReorderLevel  float64 `json:"reorderLevel"`
	ExpDate       *Date   `json:"expDate,omitempty"`
	PurchasedDate Date    `json:"purchasedDate"`
	OwnerID       string  `json:"user_id"`
}

// LowStock сообщает, что остаток не выше уровня дозаказа.
func (it Item) LowStock() bool {
	return it.Qty <= it.ReorderLevel
}

// IsWhole сообщает, что у v нет дробной части.
func IsWhole(v float64) bool {
	return v == float64(int64(v))
}

// FormatNumber выводит количество или цену без хвостовых нулей.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Fields возвращает строковые значения всех полей для полнотекстового поиска.
func (it Item) Fields() []string {
	exp := ""
	if it.ExpDate != nil {
		exp = it.ExpDate.String()
	}
	return []string{
		it.ID,
		it.Code,
		it.Name,
		it.Desc,
		it.Type,
		string(it.UOM),
		FormatNumber(it.Qty),
		FormatNumber(it.Price),
		FormatNumber(it.ReorderLevel),
		exp,
		it.PurchasedDate.String(),
		it.OwnerID,
	}
}

// Matches сообщает, что какое-то поле содержит query (без учёта регистра).
func (it Item) Matches(query string) bool {
	q := strings.ToLower(query)
	for _, f := range it.Fields() {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
