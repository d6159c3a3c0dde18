package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings, sourced from the environment.
type Config struct {
	Environment string `validate:"oneof=development staging testing production"`
	Port        string `validate:"required"`

	ShopAPIURL     string        `validate:"required,url"`
	ShopAPITimeout time.Duration `validate:"gt=0"`
	LoginURL       string        `validate:"required"`

	AdminUsername     string `validate:"required"`
	AdminPasswordHash string

	ModerationSource    string        `validate:"oneof=static database"`
	ModerationLoadDelay time.Duration `validate:"gte=0"`
	DatabaseDriver      string        `validate:"oneof=sqlite postgres"`
	DatabaseDSN         string        `validate:"required_if=ModerationSource database"`

	RedisURL    string
	RabbitMQURL string

	SessionExpiration time.Duration `validate:"gt=0"`
	CookieSecure      bool
	CSRFEnabled       bool
}

// SetDefaults registers the default for every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("SHOP_API_URL", "http://localhost:3000")
	v.SetDefault("SHOP_API_TIMEOUT", "10s")
	v.SetDefault("LOGIN_URL", "/login")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("MODERATION_SOURCE", "static")
	v.SetDefault("MODERATION_LOAD_DELAY", "1s")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "tokodash.db")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("SESSION_EXPIRATION", "24h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("CSRF_ENABLED", true)
}

// LoadDotEnv loads a .env file into the process environment if it exists.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from v, applying defaults and validating the result.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Environment:         v.GetString("APP_ENV"),
		Port:                v.GetString("APP_PORT"),
		ShopAPIURL:          v.GetString("SHOP_API_URL"),
		ShopAPITimeout:      v.GetDuration("SHOP_API_TIMEOUT"),
		LoginURL:            v.GetString("LOGIN_URL"),
		AdminUsername:       v.GetString("ADMIN_USERNAME"),
		AdminPasswordHash:   v.GetString("ADMIN_PASSWORD_HASH"),
		ModerationSource:    v.GetString("MODERATION_SOURCE"),
		ModerationLoadDelay: v.GetDuration("MODERATION_LOAD_DELAY"),
		DatabaseDriver:      v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:         v.GetString("DATABASE_DSN"),
		RedisURL:            v.GetString("REDIS_URL"),
		RabbitMQURL:         v.GetString("RABBITMQ_URL"),
		SessionExpiration:   v.GetDuration("SESSION_EXPIRATION"),
		CookieSecure:        v.GetBool("COOKIE_SECURE"),
		CSRFEnabled:         v.GetBool("CSRF_ENABLED"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AdminLoginEnabled reports whether an admin password hash was configured.
func (c *Config) AdminLoginEnabled() bool {
	return c.AdminPasswordHash != ""
}
