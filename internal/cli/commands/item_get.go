package commands

import (
	"context"
	"fmt"

	"HomeLedger/internal/cli/model"
	"HomeLedger/internal/config"
)

type itemGetCmd struct{}

func (itemGetCmd) Name() string {
	return "item-get"
}

func (itemGetCmd) Description() string {
	return "Показать item по id или коду"
}

func (itemGetCmd) Usage() string {
	return "item-get <id|code>"
}

func (itemGetCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
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
	it, err := resolveItem(env.Ledger, args[0])
	if err != nil {
		return err
	}
	exp := "<not set>"
	if it.ExpDate != nil && !it.ExpDate.IsZero() {
		exp = it.ExpDate.String()
	}
	fmt.Fprintf(Out, "ID:             %s\n", it.ID)
	fmt.Fprintf(Out, "Code:           %s\n", it.Code)
	fmt.Fprintf(Out, "Name:           %s\n", it.Name)
	fmt.Fprintf(Out, "Description:    %s\n", it.Desc)
	fmt.Fprintf(Out, "Type:           %s\n", it.Type)
	fmt.Fprintf(Out, "Quantity:       %s %s\n", model.FormatNumber(it.Qty), it.UOM.Display())
	fmt.Fprintf(Out, "Price:          %s\n", model.FormatNumber(it.Price))
	fmt.Fprintf(Out, "Reorder Level:  %s\n", model.FormatNumber(it.ReorderLevel))
	fmt.Fprintf(Out, "Expiry Date:    %s\n", exp)
	fmt.Fprintf(Out, "Purchased Date: %s\n", it.PurchasedDate)
	if it.LowStock() {
		fmt.Fprintln(Out, "! Low stock")
	}
	return nil
}

func init() { RegisterCmd(itemGetCmd{}) }
