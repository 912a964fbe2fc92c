// Command server runs the catalog reference backend: login, profile and the
// category/product HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"catalogadmin/catalog-panel/internal/app"
	"catalogadmin/catalog-panel/internal/config"
	"catalogadmin/catalog-panel/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := serve(ctx)
	stop()
	if err != nil {
		observability.NewLogger().Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}
	return a.Run(ctx)
}
