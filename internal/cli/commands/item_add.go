package commands

import (
	"context"
	"fmt"

	"HomeLedger/internal/cli/codegen"
	"HomeLedger/internal/cli/model"
	"HomeLedger/internal/cli/service"
	"HomeLedger/internal/cli/validate"
	"HomeLedger/internal/config"
)

// codes - генератор кодов на время процесса.
var codes = codegen.New(nil)

type itemAddCmd struct{}

func (itemAddCmd) Name() string {
	return "item-add"
}

func (itemAddCmd) Description() string {
	return "Добавить item; код ITM_XXXXX генерируется автоматически"
}

func (itemAddCmd) Usage() string {
	return "item-add --name <name> --type <type> --uom KG|LTR|UNITS --qty <n> --price <n> [--reorder <n>] [--exp YYYY-MM-DD] [--purchased YYYY-MM-DD] [--desc <text>]"
}

func (itemAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("item-add")
	name := fs.String("name", "", "")
	typ := fs.String("type", "", "")
	uom := fs.String("uom", "", "")
	qty := fs.String("qty", "", "")
	price := fs.String("price", "", "")
	reorder := fs.String("reorder", "", "")
	exp := fs.String("exp", "", "")
	purchased := fs.String("purchased", "", "")
	desc := fs.String("desc", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}

	env, err := openEnv(cfg)
	if err != nil {
		return err
	}
	defer env.Close()
	p, err := env.RequirePrincipal()
	if err != nil {
		return err
	}

	draft := service.NewItemDraft(codes)
	draft.Name, draft.Type, draft.Desc = *name, *typ, *desc
	if err := fillDraft(&draft, model.UOM(*uom), *qty, *price, *reorder, *exp, *purchased); err != nil {
		return warn(err)
	}

	created, err := env.Ledger.Create(ctx, p, draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "  id:   %s\n", created.ID)
	fmt.Fprintf(Out, "  code: %s\n", created.Code)
	return nil
}

// fillDraft переносит сырой ввод в черновик через форму: отклонённое поле сбрасывается.
func fillDraft(d *service.ItemDraft, uom model.UOM, qty, price, reorder, exp, purchased string) error {
	form := validate.NewForm("")
	if err := form.SetUOM(uom); err != nil {
		return err
	}
	// порядок полей формы: первой сообщается ошибка верхнего поля
	inputs := []struct {
		field validate.Field
		raw   string
	}{
		{validate.FieldQty, qty},
		{validate.FieldPrice, price},
		{validate.FieldReorderLevel, reorder},
	}
	for _, in := range inputs {
		if err := form.Set(in.field, in.raw); err != nil {
			return err
		}
	}
	var err error
	if d.Qty, err = validate.RequiredNumber(validate.FieldQty, form.Get(validate.FieldQty), uom); err != nil {
		return err
	}
	if d.Price, err = validate.RequiredNumber(validate.FieldPrice, form.Get(validate.FieldPrice), uom); err != nil {
		return err
	}
	if v, ok, err := form.Value(validate.FieldReorderLevel); err != nil {
		return err
	} else if ok {
		d.ReorderLevel = v
	}
	d.UOM = form.UOM()
	if exp != "" {
		e, err := validate.Date(validate.FieldExpDate, exp)
		if err != nil {
			return err
		}
		d.ExpDate = &e
	}
	if purchased != "" {
		if d.PurchasedDate, err = validate.Date(validate.FieldPurchasedDate, purchased); err != nil {
			return err
		}
	}
	return nil
}

func init() { RegisterCmd(itemAddCmd{}) }
