package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"HomeLedger/internal/cli/api"
	"HomeLedger/internal/cli/codegen"
	"HomeLedger/internal/cli/model"
	"HomeLedger/internal/cli/validate"
)

// ErrItemNotFound - транзакция ссылается на id, которого нет в кэше.
var ErrItemNotFound = errors.New("item not found")

// StockTransaction - одна из Increase, Decrease, Edit, Delete.
type StockTransaction interface {
	ItemID() string
	stockTx()
}

// Increase добавляет Amount. Нулевая PurchasedDate означает сегодня; nil
// ExpDate оставляет текущий срок годности.
type Increase struct {
	ID            string
	Amount        float64
	PurchasedDate model.Date
	ExpDate       *model.Date
}

// Decrease вычитает Amount. Может ли qty уйти в минус, решает хранилище.
type Decrease struct {
	ID     string
	Amount float64
}

// Edit заменяет описательные поля item; qty не меняется.
type Edit struct {
	ID    string
	Patch ItemPatch
}

// Delete удаляет item.
type Delete struct {
	ID string
}

func (t Increase) ItemID() string { return t.ID }
func (t Decrease) ItemID() string { return t.ID }
func (t Edit) ItemID() string     { return t.ID }
func (t Delete) ItemID() string   { return t.ID }

func (Increase) stockTx() {}
func (Decrease) stockTx() {}
func (Edit) stockTx()     {}
func (Delete) stockTx()   {}

// ItemPatch - редактируемые поля; nil оставляет значение из кэша.
// Ненулевой ExpDate с нулевой датой очищает срок годности.
type ItemPatch struct {
	Name          *string
	Desc          *string
	UOM           *model.UOM
	Type          *string
	Price         *float64
	ReorderLevel  *float64
	ExpDate       *model.Date
	PurchasedDate *model.Date
}

// Empty сообщает, что патч ничего не меняет.
func (p ItemPatch) Empty() bool {
	return p == ItemPatch{}
}

// ItemDraft - содержимое формы создания. Code не меняется за время жизни черновика.
type ItemDraft struct {
	Code          string
	Name          string
	Desc          string
	Type          string
	UOM           model.UOM
	Qty           float64
	Price         float64
	ReorderLevel  float64
	ExpDate       *model.Date
	PurchasedDate model.Date
}

// NewItemDraft начинает форму создания с новым кодом.
func NewItemDraft(g *codegen.Generator) ItemDraft {
	return ItemDraft{Code: g.NewCode()}
}

// Engine применяет правила каждого вида транзакций.
type Engine struct {
	Now func() time.Time
}

// NewEngine создаёт движок с системными часами.
func NewEngine() *Engine {
	return &Engine{Now: time.Now}
}

func (e *Engine) today() model.Date {
	if e == nil {
		return model.Today(nil)
	}
	return model.Today(e.Now)
}

func positive(f validate.Field, v float64, uom model.UOM) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return &validate.FieldError{Field: f, Message: fmt.Sprintf("%s must be a valid positive number.", f.Display())}
	}
	if uom == model.UOMUnits && f != validate.FieldPrice && !model.IsWhole(v) {
		return &validate.FieldError{Field: f, Message: fmt.Sprintf("%s must be a positive whole number when UOM is 'UNITS'.", f.Display())}
	}
	return nil
}

// ValidateDraft проверяет форму создания перед отправкой.
func (e *Engine) ValidateDraft(d ItemDraft) error {
	if !codegen.Valid(d.Code) {
		return fmt.Errorf("invalid item code %q", d.Code)
	}
	if err := validate.Required(validate.FieldName, d.Name); err != nil {
		return err
	}
	if err := validate.UOM(d.UOM); err != nil {
		return err
	}
	if err := validate.ItemType(d.Type); err != nil {
		return err
	}
	if err := positive(validate.FieldQty, d.Qty, d.UOM); err != nil {
		return err
	}
	if err := positive(validate.FieldPrice, d.Price, d.UOM); err != nil {
		return err
	}
	if err := positive(validate.FieldReorderLevel, d.ReorderLevel, d.UOM); err != nil {
		return err
	}
	today := e.today()
	if d.ExpDate != nil {
		if err := validate.ExpiryDate(*d.ExpDate, today); err != nil {
			return err
		}
	}
	return validate.PurchasedDate(d.PurchasedDate, today)
}

// Record собирает полную запись черновика для владельца; нулевая дата покупки - сегодня.
func (e *Engine) Record(d ItemDraft, ownerID string) model.Item {
	it := model.Item{
		Code:          d.Code,
		Name:          d.Name,
		Desc:          d.Desc,
		Type:          d.Type,
		UOM:           d.UOM,
		Qty:           d.Qty,
		Price:         d.Price,
		ReorderLevel:  d.ReorderLevel,
		ExpDate:       d.ExpDate,
		PurchasedDate: d.PurchasedDate,
		OwnerID:       ownerID,
	}
	if it.PurchasedDate.IsZero() {
		it.PurchasedDate = e.today()
	}
	return it
}

// Prepare проверяет tx относительно item из кэша и заполняет значения по умолчанию.
// Для отклонённого ввода возвращает *validate.FieldError.
func (e *Engine) Prepare(tx StockTransaction, cur model.Item) (StockTransaction, error) {
	switch t := tx.(type) {
	case Increase:
		if t.Amount <= 0 {
			return nil, &validate.FieldError{Field: validate.FieldQty, Message: "Quantity must be a valid positive number."}
		}
		if err := positive(validate.FieldQty, t.Amount, cur.UOM); err != nil {
			return nil, err
		}
		today := e.today()
		if t.PurchasedDate.IsZero() {
			t.PurchasedDate = today
		}
		if err := validate.PurchasedDate(t.PurchasedDate, today); err != nil {
			return nil, err
		}
		if t.ExpDate == nil {
			// дата истечения по умолчанию - текущая у item, повторно не проверяется
			t.ExpDate = cur.ExpDate
		} else if err := validate.ExpiryDate(*t.ExpDate, today); err != nil {
			return nil, err
		}
		return t, nil
	case Decrease:
		if t.Amount < 0 {
			return nil, &validate.FieldError{Field: validate.FieldQty, Message: "Quantity cannot be less than zero"}
		}
		if err := positive(validate.FieldQty, t.Amount, cur.UOM); err != nil {
			return nil, err
		}
		return t, nil
	case Edit:
		if _, err := e.replacement(t.Patch, cur); err != nil {
			return nil, err
		}
		return t, nil
	case Delete:
		return t, nil
	}
	return nil, fmt.Errorf("unsupported transaction %T", tx)
}

// replacement строит полную запись для замены при редактировании.
func (e *Engine) replacement(p ItemPatch, cur model.Item) (model.Item, error) {
	it := cur
	today := e.today()
	if p.Name != nil {
		if err := validate.Required(validate.FieldName, *p.Name); err != nil {
			return model.Item{}, err
		}
		it.Name = *p.Name
	}
	if p.Desc != nil {
		it.Desc = *p.Desc
	}
	if p.UOM != nil {
		if err := validate.UOM(*p.UOM); err != nil {
			return model.Item{}, err
		}
		if *p.UOM == model.UOMUnits && !model.IsWhole(cur.Qty) {
			return model.Item{}, &validate.FieldError{Field: validate.FieldUOM,
				Message: "Quantity must be a positive whole number when UOM is 'UNITS'."}
		}
		if *p.UOM == model.UOMUnits && p.ReorderLevel == nil && !model.IsWhole(cur.ReorderLevel) {
			return model.Item{}, &validate.FieldError{Field: validate.FieldReorderLevel,
				Message: "Reorder Level must be a positive whole number when UOM is 'UNITS'."}
		}
		it.UOM = *p.UOM
	}
	if p.Type != nil {
		if err := validate.ItemType(*p.Type); err != nil {
			return model.Item{}, err
		}
		it.Type = *p.Type
	}
	if p.Price != nil {
		if err := positive(validate.FieldPrice, *p.Price, it.UOM); err != nil {
			return model.Item{}, err
		}
		it.Price = *p.Price
	}
	if p.ReorderLevel != nil {
		if err := positive(validate.FieldReorderLevel, *p.ReorderLevel, it.UOM); err != nil {
			return model.Item{}, err
		}
		it.ReorderLevel = *p.ReorderLevel
	}
	if p.ExpDate != nil {
		if p.ExpDate.IsZero() {
			it.ExpDate = nil
		} else {
			if err := validate.ExpiryDate(*p.ExpDate, today); err != nil {
				return model.Item{}, err
			}
			exp := *p.ExpDate
			it.ExpDate = &exp
		}
	}
	if p.PurchasedDate != nil {
		if err := validate.PurchasedDate(*p.PurchasedDate, today); err != nil {
			return model.Item{}, err
		}
		it.PurchasedDate = *p.PurchasedDate
	}
	return it, nil
}

// ItemWriter - пишущая часть удалённого хранилища items.
type ItemWriter interface {
	ReplaceItem(ctx context.Context, it model.Item) error
	DeleteItem(ctx context.Context, id string) error
	IncreaseItem(ctx context.Context, id string, req api.IncreaseRequest) error
	DecreaseItem(ctx context.Context, id string, req api.DecreaseRequest) error
}

// Execute проверяет tx и отправляет её в хранилище. Отклонённый ввод
// до хранилища не доходит.
func (e *Engine) Execute(ctx context.Context, w ItemWriter, cur model.Item, tx StockTransaction) error {
	tx, err := e.Prepare(tx, cur)
	if err != nil {
		return err
	}
	switch t := tx.(type) {
	case Increase:
		return w.IncreaseItem(ctx, cur.ID, api.IncreaseRequest{
			Quantity:      t.Amount,
			PurchasedDate: t.PurchasedDate,
			ExpDate:       t.ExpDate,
		})
	case Decrease:
		return w.DecreaseItem(ctx, cur.ID, api.DecreaseRequest{Quantity: t.Amount})
	case Edit:
		it, err := e.replacement(t.Patch, cur)
		if err != nil {
			return err
		}
		return w.ReplaceItem(ctx, it)
	case Delete:
		return w.DeleteItem(ctx, cur.ID)
	}
	return fmt.Errorf("unsupported transaction %T", tx)
}

// SuccessText - текст уведомления об успешной tx над cur.
func SuccessText(tx StockTransaction, cur model.Item) string {
	switch t := tx.(type) {
	case Increase:
		return fmt.Sprintf("Added quantity to %s (Code: %s)\nIncreased Quantity By: %s", cur.Name, cur.Code, model.FormatNumber(t.Amount))
	case Decrease:
		return fmt.Sprintf("Removed quantity from %s (Code: %s)\nDecreased Quantity By: %s", cur.Name, cur.Code, model.FormatNumber(t.Amount))
	case Edit:
		return fmt.Sprintf("Edited item %s (Code: %s) Successfully", cur.Name, cur.Code)
	case Delete:
		return fmt.Sprintf("Item %s (Code: %s) Deleted Successfully", cur.Name, cur.Code)
	}
	return ""
}

// FailureText - текст уведомления, когда хранилище отклонило tx.
func FailureText(tx StockTransaction, cur model.Item) string {
	switch tx.(type) {
	case Increase:
		return "There was an error increasing the item quantity."
	case Decrease:
		return "There was an error decreasing the item quantity."
	case Edit:
		return fmt.Sprintf("There was an error editing item %s (Code: %s).", cur.Name, cur.Code)
	case Delete:
		return fmt.Sprintf("There was an error deleting item %s (Code: %s).", cur.Name, cur.Code)
	}
	return "There was an error updating the item."
}

// Action - имя tx для логов.
func Action(tx StockTransaction) string {
	switch tx.(type) {
	case Increase:
		return "increase"
	case Decrease:
		return "decrease"
	case Edit:
		return "edit"
	case Delete:
		return "delete"
	}
	return "unknown"
}
