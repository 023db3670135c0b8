package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sagarc03/docrepo"
	"github.com/sagarc03/docrepo/config"
	"github.com/sagarc03/docrepo/filesystem"
	"github.com/sagarc03/docrepo/miniostore"
	"github.com/sagarc03/docrepo/s3store"
)

// openStorage builds the configured backend. The returned close function
// is never nil.
func openStorage(ctx context.Context, cfg config.StorageConfig) (docrepo.Storage, func(), error) {
	switch cfg.Backend {
	case config.BackendS3:
		client, err := s3store.NewClient(ctx, s3Config(cfg))
		if err != nil {
			return nil, nil, err
		}
		slog.Debug("using s3 storage", "bucket", cfg.Bucket, "region", cfg.Region, "endpoint", cfg.Endpoint)
		return s3store.New(client, cfg.Bucket), func() {}, nil

	case config.BackendMinio:
		client, err := miniostore.NewClient(minioConfig(cfg))
		if err != nil {
			return nil, nil, err
		}
		slog.Debug("using minio storage", "bucket", cfg.Bucket, "endpoint", cfg.Endpoint)
		return miniostore.New(client, cfg.Bucket), func() {}, nil

	case config.BackendFilesystem:
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, nil, fmt.Errorf("create storage directory: %w", err)
		}
		root, err := os.OpenRoot(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open storage root: %w", err)
		}
		slog.Debug("using filesystem storage", "path", cfg.Path)
		return filesystem.NewFileStorage(root), func() { _ = root.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func s3Config(cfg config.StorageConfig) s3store.Config {
	return s3store.Config{
		Region:    cfg.Region,
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		UseSSL:    cfg.UseSSL,
	}
}

func minioConfig(cfg config.StorageConfig) miniostore.Config {
	return miniostore.Config{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Region:    cfg.Region,
		UseSSL:    cfg.UseSSL,
	}
}
