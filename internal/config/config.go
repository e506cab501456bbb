package config

import (
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the full application configuration, loaded from an optional
// YAML file and overridden by environment variables.
type Config struct {
	Environment string `yaml:"environment" env:"APP_ENV" env-default:"development"`

	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Storage  StorageConfig  `yaml:"storage"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Limits   LimitsConfig   `yaml:"limits"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	DSN    string `yaml:"dsn" env:"DB_DSN" env-default:"host=localhost user=jamescrm dbname=jamescrm sslmode=disable"`
}

type SMTPConfig struct {
	Host     string        `yaml:"host" env:"SMTP_HOST" env-default:"localhost"`
	Port     int           `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username string        `yaml:"username" env:"SMTP_USERNAME"`
	Password string        `yaml:"password" env:"SMTP_PASSWORD"`
	From     string        `yaml:"from" env:"SMTP_FROM" env-default:"noreply@jamescrm.local"`
	Timeout  time.Duration `yaml:"timeout" env:"SMTP_TIMEOUT" env-default:"15s"`
}

type StorageConfig struct {
	RootDir string `yaml:"root_dir" env:"STORAGE_ROOT_DIR" env-default:"./data/documents"`
}

type TracingConfig struct {
	Enabled          bool    `yaml:"enabled" env:"TRACING_ENABLED" env-default:"false"`
	ExporterEndpoint string  `yaml:"exporter_endpoint" env:"TRACING_EXPORTER_ENDPOINT"`
	ExporterProtocol string  `yaml:"exporter_protocol" env:"TRACING_EXPORTER_PROTOCOL" env-default:"grpc"`
	SamplingRatio    float64 `yaml:"sampling_ratio" env:"TRACING_SAMPLING_RATIO" env-default:"0.1"`
}

type LimitsConfig struct {
	SendQuoteLimit  int           `yaml:"send_quote_limit" env:"SEND_QUOTE_LIMIT" env-default:"30"`
	SendQuoteWindow time.Duration `yaml:"send_quote_window" env:"SEND_QUOTE_WINDOW" env-default:"1m"`
}

// IsProduction reports whether the app runs with production hardening.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

// Load reads configuration from CONFIG_PATH (if set) and the environment.
func Load() (Config, error) {
	var cfg Config
	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
