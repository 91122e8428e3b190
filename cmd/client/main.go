package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"HomeLedger/internal/cli/commands"
	"HomeLedger/internal/config"

	"go.uber.org/zap"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// Load unified config (env + flags)
	cfg := config.NewConfig()

	if cfg.Version {
		printVersion()
		return
	}

	log, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	commands.SetLogger(log.Sugar())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// dispatcher
	exitCode := commands.Dispatch(ctx, cfg, flag.Args())
	if exitCode == 0 {
		return
	}
	_ = log.Sync()
	cancel()
	os.Exit(exitCode)
}

// newLogger пишет в stderr, чтобы не смешиваться с выводом команд.
func newLogger(debug bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if debug {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}

func printVersion() {
	fmt.Printf("HomeLedger CLI\nVersion: %s\nBuild date: %s\n", version, buildDate)
}
