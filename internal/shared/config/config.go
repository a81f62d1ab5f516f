package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration, loaded from
// CONFIG_DIR/config.yml with environment variables taking precedence.
type Config struct {
	Database DBConfig      `yaml:"database"`
	RabbitMQ MQConfig      `yaml:"rabbitmq"`
	HTTP     HTTPConfig    `yaml:"http" validate:"required"`
	JWT      JWTConfig     `yaml:"jwt"`
	Tracker  TrackerConfig `yaml:"tracker"`
	Logging  LogConfig     `yaml:"logging"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"gt=0"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN renders the pgx connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

type MQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"gt=0"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
}

// AMQPURL renders the amqp connection string.
func (c MQConfig) AMQPURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d%s", c.User, c.Password, c.Host, c.Port, c.VHost)
}

type HTTPConfig struct {
	Port int `yaml:"port" validate:"gt=0"`
}

type JWTConfig struct {
	Secret        string `yaml:"secret" validate:"required"`
	ExpiryMinutes int    `yaml:"expiry_minutes" validate:"gt=0"`
}

// TrackerConfig carries the deployment-level tuning of the location
// pipeline: traffic speed assumption for ETA and hub limits.
type TrackerConfig struct {
	AvgSpeedKMH      float64 `yaml:"avg_speed_kmh" validate:"gt=0"`
	SubscriberBuffer int     `yaml:"subscriber_buffer" validate:"gt=0"`
	MaxSubscribers   int     `yaml:"max_subscribers" validate:"gt=0"`
	DefaultVehicleID string  `yaml:"default_vehicle_id"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"` // empty = stdout only
}

// Load reads CONFIG_DIR/config.yml (default ./config), applies env
// overrides and defaults, and validates the result.
func Load() (Config, error) {
	cfg := defaults()

	configDir := getEnv("CONFIG_DIR", "./config")
	path := filepath.Join(configDir, "config.yml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Database: DBConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "bustracker_user",
			Password: "bustracker_pass",
			Database: "bustracker_db",
			SSLMode:  "disable",
		},
		RabbitMQ: MQConfig{
			Enabled:  false,
			Host:     "localhost",
			Port:     5672,
			User:     "guest",
			Password: "guest",
			VHost:    "/",
		},
		HTTP: HTTPConfig{Port: 8000},
		JWT:  JWTConfig{Secret: "dev_secret", ExpiryMinutes: 30},
		Tracker: TrackerConfig{
			AvgSpeedKMH:      25.0,
			SubscriberBuffer: 64,
			MaxSubscribers:   256,
			DefaultVehicleID: "bus_001",
		},
		Logging: LogConfig{Level: "INFO"},
	}
}

func applyEnv(cfg *Config) {
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Database = getEnv("DB_NAME", cfg.Database.Database)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.RabbitMQ.Host = getEnv("RABBITMQ_HOST", cfg.RabbitMQ.Host)
	cfg.RabbitMQ.Port = getEnvInt("RABBITMQ_PORT", cfg.RabbitMQ.Port)
	cfg.RabbitMQ.User = getEnv("RABBITMQ_USER", cfg.RabbitMQ.User)
	cfg.RabbitMQ.Password = getEnv("RABBITMQ_PASSWORD", cfg.RabbitMQ.Password)
	cfg.RabbitMQ.VHost = getEnv("RABBITMQ_VHOST", cfg.RabbitMQ.VHost)
	if v := os.Getenv("RABBITMQ_ENABLED"); v != "" {
		cfg.RabbitMQ.Enabled = v == "true" || v == "1"
	}

	cfg.HTTP.Port = getEnvInt("HTTP_PORT", cfg.HTTP.Port)

	cfg.JWT.Secret = getEnv("JWT_SECRET", cfg.JWT.Secret)
	cfg.JWT.ExpiryMinutes = getEnvInt("JWT_EXPIRY_MINUTES", cfg.JWT.ExpiryMinutes)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Dir = getEnv("LOG_DIR", cfg.Logging.Dir)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
