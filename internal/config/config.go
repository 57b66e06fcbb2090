package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Daftar"`
		Port     int    `envconfig:"PORT" default:"8080"`
		Timezone string `envconfig:"APP_TIMEZONE" default:"Asia/Aden"`
	}

	Store struct {
		// Driver is postgres or memory. memory keeps nothing across restarts.
		Driver string `envconfig:"STORE_DRIVER" default:"postgres"`
		// Seed is a backup file loaded into the memory driver at startup.
		Seed string `envconfig:"STORE_SEED"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"daftar"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	}

	Gate struct {
		// ClaimTTL is how long a pending action may block other processes
		// before its claim can be taken over.
		ClaimTTL time.Duration `envconfig:"GATE_CLAIM_TTL" default:"30m"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Backup struct {
		Dir          string `envconfig:"BACKUP_DIR" default:"backups"`
		Bucket       string `envconfig:"BACKUP_S3_BUCKET"`
		Region       string `envconfig:"BACKUP_S3_REGION" default:"us-east-1"`
		Endpoint     string `envconfig:"BACKUP_S3_ENDPOINT"`
		AccessKey    string `envconfig:"BACKUP_S3_ACCESS_KEY"`
		SecretKey    string `envconfig:"BACKUP_S3_SECRET_KEY"`
		UsePathStyle bool   `envconfig:"BACKUP_S3_PATH_STYLE" default:"false"`
	}

	Log struct {
		Level string `envconfig:"LOG_LEVEL" default:"info"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

// Location falls back to UTC when the configured zone is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}

	return loc
}

func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}

	return level
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))

	switch cfg.Store.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	return &cfg, nil
}
