package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/docrepo/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "docrepo",
	Short:   "Serverless document repository gateway",
	Long: `docrepo serves upload, list and download of documents kept in a
blob storage bucket. Without a subcommand it runs as an AWS Lambda function
behind an API Gateway proxy integration.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
	RunE:         runLambda,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file paths, later files override earlier ones (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("backend", "", "storage backend: s3, minio, filesystem (default: s3, env: DOCREPO_STORAGE_BACKEND)")
	rootCmd.PersistentFlags().String("bucket", "", "bucket name (env: BUCKET_NAME, DOCREPO_STORAGE_BUCKET)")
	rootCmd.PersistentFlags().String("region", "", "storage region (env: AWS_REGION, DOCREPO_STORAGE_REGION)")
	rootCmd.PersistentFlags().String("endpoint", "", "custom S3 or MinIO endpoint (env: DOCREPO_STORAGE_ENDPOINT)")
	rootCmd.PersistentFlags().String("storage-path", "", "directory for the filesystem backend (default: ./data, env: DOCREPO_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: DOCREPO_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: json, text (default: json in prod and Lambda, env: DOCREPO_LOG_FORMAT)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
