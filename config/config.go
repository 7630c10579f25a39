package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string `env:"DATABASE_URL,required,notEmpty"`
	JWTSecretKey string `env:"JWT_SECRET_KEY,required,notEmpty"`
	ServerPort   int    `env:"SERVER_PORT" envDefault:"8080"`
	PublicURL    string `env:"PUBLIC_URL" envDefault:"http://localhost:3000"`
	AppEnv       string `env:"APP_ENV" envDefault:"development"`
	AutoMigrate  bool   `env:"AUTO_MIGRATE" envDefault:"false"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	Redis  RedisConfig
	Resend ResendConfig
	SMTP   SMTPConfig
	R2     R2Config
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// ResendConfig: при заданном ключе письма уходят через Resend API, SMTP не используется.
type ResendConfig struct {
	APIKey string `env:"AUTH_RESEND_KEY"`
	From   string `env:"RESEND_FROM_EMAIL"`
}

func (c ResendConfig) Enabled() bool {
	return c.APIKey != ""
}

// SMTPConfig может быть пустым: отправка писем тогда недоступна, но сервер работает.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	From     string `env:"SMTP_FROM"`
}

type R2Config struct {
	AccountID       string `env:"R2_ACCOUNT_ID"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	BucketName      string `env:"R2_BUCKET_NAME"`
	PublicBaseURL   string `env:"R2_PUBLIC_BASE_URL"`
}

func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.BucketName != "" && c.PublicBaseURL != ""
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("SMTP_PORT must be between 1 and 65535, got %d", c.SMTP.Port)
	}
	if c.PublicURL == "" {
		return errors.New("PUBLIC_URL must not be empty")
	}
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")
	return nil
}
