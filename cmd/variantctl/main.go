package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jafarshop/productvariant/internal/app"
	"github.com/jafarshop/productvariant/internal/cli"
	"github.com/jafarshop/productvariant/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(loadServices)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadServices wires the Shopify-backed services without a database, so saves are not audited
func loadServices(ctx context.Context) (*cli.Services, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	// Logs go to stderr so stdout stays machine-readable
	logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.New(ctx, cfg, nil, logger)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() error {
		_ = logger.Sync()
		return a.Close()
	}
	return &cli.Services{
		Schemas:     a.Schemas,
		Reader:      a.Reader,
		Saver:       a.Orchestrator,
		Cleaner:     a.Cleaner,
		Collections: a.Collections,
		Access:      a.Access,
	}, closeFn, nil
}
