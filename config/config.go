package config

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the process settings read from the environment.
type Config struct {
	BindAddr         string        `mapstructure:"BIND_ADDR"`
	DBURL            string        `mapstructure:"DB_URL"`
	SecretKey        string        `mapstructure:"SECRET_KEY"`
	JWTSecretSalt    string        `mapstructure:"JWT_SECRET_SALT"`
	TokenTTL         time.Duration `mapstructure:"TOKEN_TTL"`
	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	RedisPassword    string        `mapstructure:"REDIS_PASSWORD"`
	RedisCachePrefix string        `mapstructure:"REDIS_BILLING_CACHE_PREFIX"`
	NATSURL          string        `mapstructure:"NATS_URL"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	LogFormat        string        `mapstructure:"LOG_FORMAT"`
}

var (
	ErrMissingDBURL     = errors.New("DB_URL is not set")
	ErrMissingSecretKey = errors.New("SECRET_KEY is not set")
	ErrMissingJWTSalt   = errors.New("JWT_SECRET_SALT is not set")
)

var keys = []string{
	"BIND_ADDR", "DB_URL", "SECRET_KEY", "JWT_SECRET_SALT", "TOKEN_TTL",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_BILLING_CACHE_PREFIX",
	"NATS_URL", "LOG_LEVEL", "LOG_FORMAT",
}

// Load читает .env (если он есть) и переменные окружения.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Не удалось загрузить файл .env, используем переменные окружения", "error", err)
	}

	v := viper.New()
	v.SetDefault("BIND_ADDR", ":8000")
	v.SetDefault("TOKEN_TTL", "144h")
	v.SetDefault("REDIS_BILLING_CACHE_PREFIX", "billing")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.AutomaticEnv()
	// Unmarshal only sees keys viper knows about.
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RequireDB checks the settings needed to reach the database.
func (c *Config) RequireDB() error {
	if c.DBURL == "" {
		return ErrMissingDBURL
	}
	return nil
}

// RequireServe checks everything the HTTP server needs.
func (c *Config) RequireServe() error {
	if err := c.RequireDB(); err != nil {
		return err
	}
	if c.SecretKey == "" {
		return ErrMissingSecretKey
	}
	if c.JWTSecretSalt == "" {
		return ErrMissingJWTSalt
	}
	return nil
}
