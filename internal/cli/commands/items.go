package commands

import (
	"context"
	"fmt"
	"strings"

	"HomeLedger/internal/config"
)

type itemsCmd struct{}

func (itemsCmd) Name() string {
	return "items"
}

func (itemsCmd) Description() string {
	return "Показать все items пользователя (--offline: из локального снимка)"
}

func (itemsCmd) Usage() string {
	return "items [--offline]"
}

func (itemsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("items")
	offline := fs.Bool("offline", false, "read the local snapshot")
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
	if *offline {
		_, err = env.Ledger.LoadSnapshot(ctx, p)
	} else {
		_, err = env.Ledger.List(ctx, p)
	}
	if err != nil {
		return err
	}
	printItems(env.Ledger.View())
	if types := env.Ledger.Types(); len(types) > 0 {
		fmt.Fprintf(Out, "Types: %s\n", strings.Join(types, ", "))
	}
	return nil
}

func init() { RegisterCmd(itemsCmd{}) }
