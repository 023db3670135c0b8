package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/docrepo"
	"github.com/sagarc03/docrepo/formdata"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Storage backends.
const (
	BackendS3         = "s3"
	BackendMinio      = "minio"
	BackendFilesystem = "filesystem"
)

// Config is the root configuration struct for docrepo.
type Config struct {
	Env     string        `mapstructure:"env"`
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Log     LogConfig     `mapstructure:"log"`
}

// InLambda reports whether the process runs under the Lambda runtime.
func InLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// IsProduction reports whether env names a production deployment. A Lambda
// deployment always counts as production.
func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production" || InLambda()
}

// LogLevel returns the configured level, or info in production and debug
// otherwise.
func (c *Config) LogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if c.IsProduction() {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// JSONLogs reports whether logs are written as JSON lines. Without an
// explicit format, production writes JSON for CloudWatch.
func (c *Config) JSONLogs() bool {
	if c.Log.Format != "" {
		return c.Log.Format == "json"
	}
	return c.IsProduction()
}

// ServerConfig holds settings for the local HTTP mode.
type ServerConfig struct {
	Port        int   `mapstructure:"port" validate:"required,min=1,max=65535"`
	MaxBodySize int64 `mapstructure:"max_body_size" validate:"min=0"`
}

// StorageConfig selects and configures the blob store. The bucket is not
// checked here; a wrong bucket surfaces as a backend error per request.
type StorageConfig struct {
	Backend   string `mapstructure:"backend" validate:"required,oneof=s3 minio filesystem"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint" validate:"required_if=Backend minio"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Path      string `mapstructure:"path" validate:"required_if=Backend filesystem"`
}

// UploadConfig holds upload policy settings.
type UploadConfig struct {
	MaxFileSize       int64    `mapstructure:"max_file_size" validate:"min=0"`
	ChunkSize         int      `mapstructure:"chunk_size" validate:"min=0"`
	AllowedExtensions []string `mapstructure:"allowed_extensions" validate:"dive,required"`
	KeyPrefix         string   `mapstructure:"key_prefix" validate:"required"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":         "server.port",
	"backend":      "storage.backend",
	"bucket":       "storage.bucket",
	"region":       "storage.region",
	"endpoint":     "storage.endpoint",
	"storage-path": "storage.path",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// envAliases are variables read in addition to the DOCREPO_ ones. The
// Lambda runtime sets AWS_REGION; BUCKET_NAME is the deployment's bucket.
var envAliases = map[string][]string{
	"storage.region": {"DOCREPO_STORAGE_REGION", "AWS_REGION"},
	"storage.bucket": {"DOCREPO_STORAGE_BUCKET", "BUCKET_NAME"},
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.port", 5708)
	v.SetDefault("server.max_body_size", 0) // 0 means no limit

	v.SetDefault("storage.backend", BackendS3)
	v.SetDefault("storage.path", "./data")

	v.SetDefault("upload.max_file_size", formdata.DefaultMaxFileSize)
	v.SetDefault("upload.chunk_size", formdata.DefaultChunkSize)
	v.SetDefault("upload.allowed_extensions", slices.Clone(docrepo.DefaultAllowedExtensions))
	v.SetDefault("upload.key_prefix", docrepo.DefaultKeyPrefix)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "docrepo")

	// empty selects by environment, see LogLevel and JSONLogs
	v.SetDefault("log.level", "")
	v.SetDefault("log.format", "")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("DOCREPO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
