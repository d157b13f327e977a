package main

import (
	"fmt"
	"os"

	"github.com/eshaffer321/ledger-reconcile/internal/cli"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/config"
)

func main() {
	flags := cli.ParseServeFlags()
	cfg := config.LoadOrEnv_WithPath(flags.ConfigPath)

	if err := cli.RunDashboard(cfg, flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
