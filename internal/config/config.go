package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	WindowAnchorNow    = "now"
	WindowAnchorLatest = "latest"
)

type Config struct {
	AppEnv   string     `envconfig:"APP_ENV" yaml:"app_env"`
	LogLevel slog.Level `ignored:"true" yaml:"-"`
	// LogLevelName is the raw LOG_LEVEL value; LogLevel is derived from it.
	LogLevelName string `envconfig:"LOG_LEVEL" yaml:"log_level"`

	HTTPAddr         string        `envconfig:"HTTP_ADDR" yaml:"http_addr"`
	HTTPReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" yaml:"http_read_timeout"`
	HTTPWriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" yaml:"http_write_timeout"`
	HTTPIdleTimeout  time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" yaml:"http_idle_timeout"`
	ShutdownTimeout  time.Duration `envconfig:"SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`

	// SQLitePath points at the pre-populated dataset. It is opened read-only
	// and never created.
	SQLitePath string `envconfig:"SQLITE_PATH" yaml:"sqlite_path"`
	// SQLiteDSN overrides SQLitePath verbatim when set.
	SQLiteDSN             string        `envconfig:"DB_DSN" yaml:"db_dsn"`
	SQLiteMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" yaml:"db_max_open_conns"`
	SQLiteMaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" yaml:"db_max_idle_conns"`
	SQLiteConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" yaml:"db_conn_max_lifetime"`
	SQLiteLogQueries      bool          `envconfig:"DB_LOG_SQL" yaml:"db_log_sql"`

	// WindowAnchor selects what "the last 365 days" is measured from:
	// the server clock ("now") or the newest observation in the dataset ("latest").
	WindowAnchor string `envconfig:"WINDOW_ANCHOR" yaml:"window_anchor"`
}

func defaults() Config {
	return Config{
		AppEnv:                "dev",
		LogLevelName:          "info",
		HTTPAddr:              ":8080",
		HTTPReadTimeout:       5 * time.Second,
		HTTPWriteTimeout:      10 * time.Second,
		HTTPIdleTimeout:       60 * time.Second,
		ShutdownTimeout:       10 * time.Second,
		SQLitePath:            "Resources/hawaii.sqlite",
		SQLiteMaxOpenConns:    4,
		SQLiteMaxIdleConns:    4,
		SQLiteConnMaxLifetime: 0,
		WindowAnchor:          WindowAnchorNow,
	}
}

// LoadFromEnv builds the configuration from defaults, then the optional YAML
// file named by CONFIG_FILE, then environment variables.
func LoadFromEnv() (Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config env: %w", err)
	}

	return normalize(cfg)
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("CONFIG_FILE %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("CONFIG_FILE %q: parse yaml: %w", path, err)
	}
	return nil
}

func normalize(cfg Config) (Config, error) {
	def := defaults()

	cfg.AppEnv = orDefault(cfg.AppEnv, def.AppEnv)
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	cfg.LogLevelName = orDefault(cfg.LogLevelName, def.LogLevelName)
	level, err := parseLogLevel(cfg.LogLevelName)
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	cfg.HTTPAddr = orDefault(cfg.HTTPAddr, def.HTTPAddr)
	cfg.SQLitePath = orDefault(cfg.SQLitePath, def.SQLitePath)
	cfg.SQLiteDSN = strings.TrimSpace(cfg.SQLiteDSN)

	cfg.WindowAnchor = strings.ToLower(orDefault(cfg.WindowAnchor, def.WindowAnchor))
	switch cfg.WindowAnchor {
	case WindowAnchorNow, WindowAnchorLatest:
	default:
		return Config{}, fmt.Errorf("invalid WINDOW_ANCHOR %q (allowed: now, latest)", cfg.WindowAnchor)
	}

	if cfg.SQLiteMaxOpenConns < 0 {
		return Config{}, fmt.Errorf("invalid DB_MAX_OPEN_CONNS %d: must be >= 0", cfg.SQLiteMaxOpenConns)
	}
	if cfg.SQLiteMaxIdleConns < 0 {
		return Config{}, fmt.Errorf("invalid DB_MAX_IDLE_CONNS %d: must be >= 0", cfg.SQLiteMaxIdleConns)
	}
	if cfg.SQLiteConnMaxLifetime < 0 {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %s: must be >= 0", cfg.SQLiteConnMaxLifetime)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}

	return cfg, nil
}

func orDefault(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
