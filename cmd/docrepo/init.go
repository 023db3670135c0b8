package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/docrepo/config"
	"github.com/sagarc03/docrepo/miniostore"
	"github.com/sagarc03/docrepo/s3store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Prepare the storage backend",
	Long: `Create the bucket (s3, minio) or the storage directory (filesystem)
when it does not exist yet. The gateway itself never creates buckets; run
this once when setting up a new environment.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}
	storage := cfg.Storage

	switch storage.Backend {
	case config.BackendS3:
		if storage.Bucket == "" {
			return fmt.Errorf("bucket is required for %s", storage.Backend)
		}
		client, err := s3store.NewClient(ctx, s3Config(storage))
		if err != nil {
			return err
		}
		if err := s3store.EnsureBucket(ctx, client, storage.Bucket, storage.Region); err != nil {
			return err
		}

	case config.BackendMinio:
		if storage.Bucket == "" {
			return fmt.Errorf("bucket is required for %s", storage.Backend)
		}
		client, err := miniostore.NewClient(minioConfig(storage))
		if err != nil {
			return err
		}
		if err := miniostore.New(client, storage.Bucket).EnsureBucket(ctx, storage.Region); err != nil {
			return err
		}

	case config.BackendFilesystem:
		if err := os.MkdirAll(storage.Path, 0o750); err != nil {
			return fmt.Errorf("create storage directory: %w", err)
		}
	}

	slog.Info("storage ready", "backend", storage.Backend, "bucket", storage.Bucket, "path", storage.Path)
	return nil
}
