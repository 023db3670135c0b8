package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/sagarc03/docrepo/config"
	docrepohttp "github.com/sagarc03/docrepo/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a local HTTP server",
	Long: `Serve the gateway over plain HTTP. Requests are converted into the
events API Gateway would send, so the same handler runs outside Lambda.
/healthz and /metrics are served alongside.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5708, "HTTP server port")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	gw, closeStorage, err := newGateway(ctx, cfg, reg)
	if err != nil {
		return err
	}
	defer closeStorage()

	handlerConfig := docrepohttp.HandlerConfig{
		MaxBodySize: cfg.Server.MaxBodySize,
	}
	if cfg.Metrics.Enabled {
		handlerConfig.Gatherer = reg
	}

	handler := docrepohttp.NewHandler(&handlerConfig, gw)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr, "backend", cfg.Storage.Backend)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
