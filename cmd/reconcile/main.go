package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eshaffer321/ledger-reconcile/internal/cli"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/config"
)

func main() {
	flags, err := cli.ParseReconcileFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg := config.LoadOrEnv_WithPath(flags.ConfigPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.RunReconcile(ctx, cfg, flags, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
