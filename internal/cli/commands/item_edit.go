package commands

import (
	"context"
	"fmt"

	"HomeLedger/internal/cli/model"
	"HomeLedger/internal/cli/service"
	"HomeLedger/internal/cli/validate"
	"HomeLedger/internal/config"
)

type itemEditCmd struct{}

func (itemEditCmd) Name() string {
	return "item-edit"
}

func (itemEditCmd) Description() string {
	return "Отредактировать item целиком (количество не меняется); --exp none очищает срок годности"
}

func (itemEditCmd) Usage() string {
	return "item-edit [--name N] [--desc D] [--type T] [--uom U] [--price P] [--reorder R] [--exp YYYY-MM-DD|none] [--purchased YYYY-MM-DD] <id|code>"
}

func (itemEditCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("item-edit")
	var name, desc, typ, uom, price, reorder, exp, purchased optString
	fs.Var(&name, "name", "")
	fs.Var(&desc, "desc", "")
	fs.Var(&typ, "type", "")
	fs.Var(&uom, "uom", "")
	fs.Var(&price, "price", "")
	fs.Var(&reorder, "reorder", "")
	fs.Var(&exp, "exp", "")
	fs.Var(&purchased, "purchased", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return ErrUsage
	}

	env, err := openEnv(cfg)
	if err != nil {
		return err
	}
	defer env.Close()
	p, err := loadLedger(ctx, env)
	if err != nil {
		return err
	}
	cur, err := resolveItem(env.Ledger, fs.Arg(0))
	if err != nil {
		return err
	}

	patch := service.ItemPatch{Name: name.ptr(), Desc: desc.ptr(), Type: typ.ptr()}
	unit := cur.UOM
	if uom.set {
		u := model.UOM(uom.value)
		patch.UOM, unit = &u, u
	}
	if patch.Price, err = optNumber(validate.FieldPrice, price, unit); err != nil {
		return warn(err)
	}
	if patch.ReorderLevel, err = optNumber(validate.FieldReorderLevel, reorder, unit); err != nil {
		return warn(err)
	}
	if exp.set {
		d := model.Date{}
		if exp.value != "none" && exp.value != "" {
			if d, err = validate.Date(validate.FieldExpDate, exp.value); err != nil {
				return warn(err)
			}
		}
		patch.ExpDate = &d
	}
	if purchased.set {
		d, err := validate.Date(validate.FieldPurchasedDate, purchased.value)
		if err != nil {
			return warn(err)
		}
		patch.PurchasedDate = &d
	}
	if patch.Empty() {
		return ErrUsage
	}

	if err := env.Ledger.Apply(ctx, p, service.Edit{ID: cur.ID, Patch: patch}); err != nil {
		return err
	}
	if it, ok := env.Ledger.Find(cur.ID); ok {
		fmt.Fprintln(Out, "Updated:")
		printItems([]model.Item{it})
	}
	return nil
}

// optNumber разбирает заданный числовой флаг; незаданный даёт nil.
func optNumber(f validate.Field, o optString, uom model.UOM) (*float64, error) {
	if !o.set {
		return nil, nil
	}
	v, err := validate.RequiredNumber(f, o.value, uom)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// warn показывает отказ валидации так же, как его показывают сервисы.
func warn(err error) error {
	cliNotifier.Notify(service.Notice{Level: service.LevelWarning, Title: "Warning", Text: err.Error()})
	return err
}

func init() { RegisterCmd(itemEditCmd{}) }
