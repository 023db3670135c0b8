package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/sagarc03/docrepo"
	"github.com/sagarc03/docrepo/config"
	"github.com/sagarc03/docrepo/gateway"
	"github.com/sagarc03/docrepo/metrics"
)

// newGateway wires storage, service, metrics and the dispatcher. reg may be
// nil when metrics are not exported.
func newGateway(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*gateway.Handler, func(), error) {
	storage, closeStorage, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}

	service := docrepo.NewDocumentService(storage, docrepo.ServiceConfig{
		KeyPrefix:         cfg.Upload.KeyPrefix,
		AllowedExtensions: cfg.Upload.AllowedExtensions,
	})

	var observer gateway.Observer
	if cfg.Metrics.Enabled && reg != nil {
		o, err := metrics.NewObserver(cfg.Metrics.Namespace, reg)
		if err != nil {
			closeStorage()
			return nil, nil, fmt.Errorf("create metrics observer: %w", err)
		}
		observer = o
	}

	handler := gateway.NewHandler(service, gateway.HandlerConfig{
		MaxFileSize: cfg.Upload.MaxFileSize,
		ChunkSize:   cfg.Upload.ChunkSize,
	}, observer)

	return handler, closeStorage, nil
}

func runLambda(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	// Nothing scrapes a Lambda instance, so metrics stay off.
	handler, closeStorage, err := newGateway(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer closeStorage()

	slog.Info("starting lambda handler", "backend", cfg.Storage.Backend, "bucket", cfg.Storage.Bucket)
	lambda.Start(handler.Handle)
	return nil
}
