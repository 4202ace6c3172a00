package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port           string `yaml:"port"`
	Environment    string `yaml:"environment"`
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
	AllowedOrigin  string `yaml:"allowed_origin"`

	Database DatabaseConfig `yaml:"database"`
	RedisURL string         `yaml:"redis_url"`

	MetricsPort  string `yaml:"metrics_port"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	EnforceHTTPS bool `yaml:"enforce_https"`

	RateLimitEnabled bool            `yaml:"rate_limit_enabled"`
	RateLimit        RateLimitConfig `yaml:"rate_limit"`

	CacheEnabled bool          `yaml:"cache_enabled"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

type DatabaseConfig struct {
	Driver      string `yaml:"driver"`
	Path        string `yaml:"path"`
	URL         string `yaml:"url"`
	SQLLogLevel string `yaml:"sql_log_level"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Port:           "8080",
		Environment:    "development",
		ServiceName:    "todoapi",
		ServiceVersion: "1.0.0",
		AllowedOrigin:  "http://localhost:5173",
		Database: DatabaseConfig{
			Driver:      "sqlite",
			Path:        "todos.db",
			SQLLogLevel: "info",
		},
		MetricsPort:      "9091",
		EnforceHTTPS:     false,
		RateLimitEnabled: true,
		RateLimit: RateLimitConfig{
			Requests: 100,
			Window:   time.Minute,
		},
		CacheEnabled: false,
		CacheTTL:     3 * time.Second,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE, then environment variables (.env included).
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found")
	}

	cfg := GetDefaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := LoadYAML(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func LoadYAML(path string, target any) error {
	data, err := os.ReadFile(path)

	if err != nil {
		return fmt.Errorf("failed to read YAML file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return nil
}

func (c *AppConfig) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("DATABASE_PATH is required for the sqlite driver")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}

	if c.RateLimitEnabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("rate limit requests and window must be positive")
	}

	return nil
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

func (c *AppConfig) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.Environment, "APP_ENV")
	setString(&c.ServiceName, "SERVICE_NAME")
	setString(&c.ServiceVersion, "SERVICE_VERSION")
	setString(&c.AllowedOrigin, "ALLOWED_ORIGIN")
	setString(&c.Database.Driver, "DATABASE_DRIVER")
	setString(&c.Database.Path, "DATABASE_PATH")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Database.SQLLogLevel, "SQL_LOG_LEVEL")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.MetricsPort, "METRICS_PORT")
	setString(&c.OTLPEndpoint, "OTLP_ENDPOINT")

	if err := setBool(&c.EnforceHTTPS, "ENFORCE_HTTPS"); err != nil {
		return err
	}

	if err := setBool(&c.RateLimitEnabled, "RATE_LIMIT_ENABLED"); err != nil {
		return err
	}

	if err := setInt(&c.RateLimit.Requests, "RATE_LIMIT_REQUESTS"); err != nil {
		return err
	}

	if err := setDuration(&c.RateLimit.Window, "RATE_LIMIT_WINDOW"); err != nil {
		return err
	}

	if err := setBool(&c.CacheEnabled, "CACHE_ENABLED"); err != nil {
		return err
	}

	return setDuration(&c.CacheTTL, "CACHE_TTL")
}

func setString(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func setBool(target *bool, key string) error {
	value := os.Getenv(key)

	if value == "" {
		return nil
	}

	parsed, err := strconv.ParseBool(value)

	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}

	*target = parsed

	return nil
}

func setInt(target *int, key string) error {
	value := os.Getenv(key)

	if value == "" {
		return nil
	}

	parsed, err := strconv.Atoi(value)

	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}

	*target = parsed

	return nil
}

func setDuration(target *time.Duration, key string) error {
	value := os.Getenv(key)

	if value == "" {
		return nil
	}

	parsed, err := time.ParseDuration(value)

	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}

	*target = parsed

	return nil
}
