// Package config provides configuration loading and validation for docrepo.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (DOCREPO_ prefix, plus AWS_REGION and BUCKET_NAME)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with DOCREPO_ prefix:
//   - server.port → DOCREPO_SERVER_PORT
//   - storage.backend → DOCREPO_STORAGE_BACKEND
//   - upload.allowed_extensions → DOCREPO_UPLOAD_ALLOWED_EXTENSIONS (comma separated)
//
// storage.region also reads AWS_REGION and storage.bucket also reads
// BUCKET_NAME, the variables a Lambda deployment provides. The DOCREPO_
// names win when both are set.
//
// # Configuration Structure
//
// The Config struct contains:
//   - Env: deployment environment, "prod" or "production" selects JSON logs
//   - Server: port and request body limit for local HTTP mode
//   - Storage: backend (s3, minio, filesystem) and its connection settings
//   - Upload: multipart size limit, chunk size, extension allow-list, key prefix
//   - Metrics: Prometheus toggle and namespace
//   - Log: logging level
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Backend must be s3, minio, or filesystem
//   - The minio backend requires an endpoint, the filesystem backend a path
//   - Log level must be debug, info, warn, or error when set
package config
