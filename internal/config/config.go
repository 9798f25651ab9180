package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Политики разрешения конфликтов при синхронизации
const (
	PolicyServerWins = "server_wins"
	PolicyNewerWins  = "newer_wins"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	// Пустой DATABASE_URL включает хранилище в памяти
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries uint          `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"500ms"`

	// MQTT Config
	MQTTBroker      string `env:"MQTT_BROKER"`
	MQTTClientID    string `env:"MQTT_CLIENT_ID" envDefault:"civic-response"`
	MQTTUsername    string `env:"MQTT_USERNAME"`
	MQTTPassword    string `env:"MQTT_PASSWORD"`
	MQTTTopicPrefix string `env:"MQTT_TOPIC_PREFIX" envDefault:"civic/alerts"`

	// Notification Config
	NotifyDedupeTTL time.Duration `env:"NOTIFY_DEDUPE_TTL" envDefault:"10m"`
	NotifyTimeout   time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"3s"`

	GridCellDegrees float64       `env:"GRID_CELL_DEGREES" envDefault:"0.01"`
	ReconcilePolicy string        `env:"RECONCILE_POLICY" envDefault:"server_wins"`
	ResumeInterval  time.Duration `env:"RESUME_INTERVAL" envDefault:"15s"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS" envSeparator:","`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	keys := cfg.APIKeys[:0]
	for _, key := range cfg.APIKeys {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	cfg.APIKeys = keys

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate собирает все ошибки конфигурации разом
func (c *Config) Validate() error {
	var errs []error
	if c.HTTPPort == "" {
		errs = append(errs, errors.New("HTTP_PORT must not be empty"))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat))
	}
	if c.ReconcilePolicy != PolicyServerWins && c.ReconcilePolicy != PolicyNewerWins {
		errs = append(errs, fmt.Errorf("RECONCILE_POLICY must be %s or %s, got %q", PolicyServerWins, PolicyNewerWins, c.ReconcilePolicy))
	}
	if c.DatabaseURL != "" && c.RedisAddr == "" {
		errs = append(errs, errors.New("DATABASE_URL requires REDIS_ADDR for the change feed"))
	}
	if c.WebhookURL != "" && c.RedisAddr == "" {
		errs = append(errs, errors.New("WEBHOOK_URL requires REDIS_ADDR"))
	}
	if c.WebhookMaxRetries == 0 {
		errs = append(errs, errors.New("WEBHOOK_MAX_RETRIES must be positive"))
	}
	if c.GridCellDegrees <= 0 || c.GridCellDegrees > 90 {
		errs = append(errs, fmt.Errorf("GRID_CELL_DEGREES must be in (0, 90], got %v", c.GridCellDegrees))
	}
	if c.ResumeInterval <= 0 {
		errs = append(errs, errors.New("RESUME_INTERVAL must be positive"))
	}
	return errors.Join(errs...)
}
