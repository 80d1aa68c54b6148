package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/llkb/internal/analytics"
	"github.com/fyrsmithlabs/llkb/internal/httpapi"
	"github.com/fyrsmithlabs/llkb/internal/learnbank"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the knowledge base read-only over HTTP",
	Long: `serve exposes the learned-pattern store and analytics snapshot as a
read-only HTTP API, plus Prometheus metrics on /metrics.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := learnbank.NewStore(cfg.Root, logger)
	if err != nil {
		return err
	}
	svc, err := analytics.NewService(cfg.Root, logger)
	if err != nil {
		return err
	}

	server, err := httpapi.NewServer(store, svc, logger, &httpapi.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
