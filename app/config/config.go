package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	DriverDisk  = "disk"
	DriverMinio = "minio"
)

type (
	Config struct {
		Environment  string        `env:"ENVIRONMENT" envDefault:"dev"`
		Port         string        `env:"PORT" envDefault:"8080"`
		LogLevel     string        `env:"LOG_LEVEL"`
		SigningKey   string        `env:"SIGNING_SECRET,required"`
		TokenTTL     time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
		DatabasePath string        `env:"DATABASE_PATH" envDefault:"data/badger"`
		BackupDir    string        `env:"BACKUP_DIR" envDefault:"data/backups"`
		PostsPerPage int           `env:"POSTS_PER_PAGE" envDefault:"2"`
		BcryptCost   int           `env:"BCRYPT_COST" envDefault:"12"`
		CORSOrigins  []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

		StorageDriver string `env:"STORAGE_DRIVER" envDefault:"disk"`
		ImagesDir     string `env:"IMAGES_DIR" envDefault:"images"`

		S3     S3Properties     `envPrefix:"S3_"`
		Server ServerProperties `envPrefix:"HTTP_"`
	}

	S3Properties struct {
		Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
		AccessKey string `env:"ACCESS_KEY"`
		SecretKey string `env:"SECRET_KEY"`
		Bucket    string `env:"BUCKET" envDefault:"inkfeed"`
		UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
	}

	ServerProperties struct {
		ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	}
)

// Load reads .env (outside production) and then the process environment.
func Load() (*Config, error) {
	if !strings.EqualFold(os.Getenv("ENVIRONMENT"), "production") {
		// A missing .env file is fine.
		_ = godotenv.Load()
	}
	return Parse(env.Options{})
}

// Parse builds a Config from the environment described by opts.
func Parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg, opts); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if strings.TrimSpace(c.SigningKey) == "" {
		errs = append(errs, errors.New("SIGNING_SECRET must not be empty"))
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		errs = append(errs, errors.New("DATABASE_PATH must not be empty"))
	}
	switch c.StorageDriver {
	case DriverDisk:
	case DriverMinio:
		if c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			errs = append(errs, errors.New("S3_ACCESS_KEY and S3_SECRET_KEY are required for the minio driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Level picks the log level: LOG_LEVEL wins, then debug in dev, info otherwise.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if c.IsDev() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// NewLogger returns a JSON logger writing to w at the configured level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: c.Level(),
	}))
}
