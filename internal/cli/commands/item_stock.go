package commands

import (
	"context"
	"fmt"
	"strings"

	"HomeLedger/internal/cli/model"
	"HomeLedger/internal/cli/service"
	"HomeLedger/internal/cli/validate"
	"HomeLedger/internal/config"
)

// parseAmount разбирает количество транзакции по правилам поля qty в единицах item.
// Ведущий минус сохраняется: отрицательное количество отклоняет движок.
func parseAmount(raw string, uom model.UOM) (float64, error) {
	digits, negative := strings.CutPrefix(raw, "-")
	v, err := validate.RequiredNumber(validate.FieldQty, digits, uom)
	if err != nil {
		return 0, warn(err)
	}
	if negative {
		v = -v
	}
	return v, nil
}

// applyTx выполняет транзакцию над item, найденным по id или коду.
func applyTx(ctx context.Context, cfg *config.Config, ref string, build func(model.Item) (service.StockTransaction, error)) error {
	env, err := openEnv(cfg)
	if err != nil {
		return err
	}
	defer env.Close()
	p, err := loadLedger(ctx, env)
	if err != nil {
		return err
	}
	cur, err := resolveItem(env.Ledger, ref)
	if err != nil {
		return err
	}
	tx, err := build(cur)
	if err != nil {
		return err
	}
	if err := env.Ledger.Apply(ctx, p, tx); err != nil {
		return err
	}
	if it, ok := env.Ledger.Find(cur.ID); ok && it.LowStock() {
		fmt.Fprintf(Out, "! %s is at or below its reorder level (%s %s left)\n",
			it.Name, model.FormatNumber(it.Qty), it.UOM.Display())
	}
	return nil
}

type itemIncreaseCmd struct{}

func (itemIncreaseCmd) Name() string {
	return "item-increase"
}

func (itemIncreaseCmd) Description() string {
	return "Докупить: увеличить количество item"
}

func (itemIncreaseCmd) Usage() string {
	return "item-increase [--purchased YYYY-MM-DD] [--exp YYYY-MM-DD] <id|code> <amount>"
}

func (itemIncreaseCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("item-increase")
	purchased := fs.String("purchased", "", "")
	exp := fs.String("exp", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 2 {
		return ErrUsage
	}
	tx := service.Increase{}
	var err error
	if *purchased != "" {
		if tx.PurchasedDate, err = validate.Date(validate.FieldPurchasedDate, *purchased); err != nil {
			return warn(err)
		}
	}
	if *exp != "" {
		d, err := validate.Date(validate.FieldExpDate, *exp)
		if err != nil {
			return warn(err)
		}
		tx.ExpDate = &d
	}
	return applyTx(ctx, cfg, fs.Arg(0), func(cur model.Item) (service.StockTransaction, error) {
		amount, err := parseAmount(fs.Arg(1), cur.UOM)
		if err != nil {
			return nil, err
		}
		tx.ID, tx.Amount = cur.ID, amount
		return tx, nil
	})
}

type itemDecreaseCmd struct{}

func (itemDecreaseCmd) Name() string {
	return "item-decrease"
}

func (itemDecreaseCmd) Description() string {
	return "Израсходовать: уменьшить количество item"
}

func (itemDecreaseCmd) Usage() string {
	return "item-decrease <id|code> <amount>"
}

func (itemDecreaseCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	// отрицательное количество не должно разбираться как флаг
	if len(args) != 2 {
		return ErrUsage
	}
	return applyTx(ctx, cfg, args[0], func(cur model.Item) (service.StockTransaction, error) {
		amount, err := parseAmount(args[1], cur.UOM)
		if err != nil {
			return nil, err
		}
		return service.Decrease{ID: cur.ID, Amount: amount}, nil
	})
}

type itemDeleteCmd struct{}

func (itemDeleteCmd) Name() string {
	return "item-delete"
}

func (itemDeleteCmd) Description() string {
	return "Удалить item"
}

func (itemDeleteCmd) Usage() string {
	return "item-delete <id|code>"
}

func (itemDeleteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 || args[0] == "" {
		return ErrUsage
	}
	return applyTx(ctx, cfg, args[0], func(cur model.Item) (service.StockTransaction, error) {
		return service.Delete{ID: cur.ID}, nil
	})
}

type itemSearchCmd struct{}

func (itemSearchCmd) Name() string {
	return "item-search"
}

func (itemSearchCmd) Description() string {
	return "Найти items по подстроке в любом поле"
}

func (itemSearchCmd) Usage() string {
	return "item-search <query>"
}

func (itemSearchCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	env, err := openEnv(cfg)
	if err != nil {
		return err
	}
	defer env.Close()
	if _, err := loadLedger(ctx, env); err != nil {
		return err
	}
	printItems(env.Ledger.Search(args[0]))
	return nil
}

type itemFilterCmd struct{}

func (itemFilterCmd) Name() string {
	return "item-filter"
}

func (itemFilterCmd) Description() string {
	return "Показать items одного типа (all - все)"
}

func (itemFilterCmd) Usage() string {
	return "item-filter <type|all>"
}

func (itemFilterCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 || args[0] == "" {
		return ErrUsage
	}
	env, err := openEnv(cfg)
	if err != nil {
		return err
	}
	defer env.Close()
	if _, err := loadLedger(ctx, env); err != nil {
		return err
	}
	printItems(env.Ledger.FilterByType(args[0]))
	return nil
}

func init() {
	RegisterCmd(itemIncreaseCmd{})
	RegisterCmd(itemDecreaseCmd{})
	RegisterCmd(itemDeleteCmd{})
	RegisterCmd(itemSearchCmd{})
	RegisterCmd(itemFilterCmd{})
}
