package commands

import (
	"context"
	"fmt"

	"HomeLedger/internal/config"
)

type statusCmd struct{}

func (statusCmd) Name() string {
	return "status"
}

func (statusCmd) Description() string {
	return "Проверить доступность хранилища и локального снимка"
}

func (statusCmd) Usage() string {
	return "status"
}

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	env, err := openEnv(cfg)
	if err != nil {
		return err
	}
	defer env.Close()

	fmt.Fprintf(Out, "Server:    %s\n", cfg.ServerURL)
	if p, err := env.RequirePrincipal(); err == nil {
		fmt.Fprintf(Out, "User:      %s\n", p.ID)
	} else {
		fmt.Fprintln(Out, "User:      <not set>")
	}
	if env.Snapshots {
		fmt.Fprintf(Out, "Snapshots: %s\n", cfg.CacheDSN)
	} else {
		fmt.Fprintln(Out, "Snapshots: disabled")
	}

	// лента доступна без пользователя, поэтому служит проверкой связи
	if _, err := env.Client.ListPosts(ctx); err != nil {
		fmt.Fprintln(Out, "Store:     unreachable")
		return fmt.Errorf("store check: %w", err)
	}
	fmt.Fprintln(Out, "Store:     ok")
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
