package config

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil when REDIS_ADDR is unset or the server does not
// answer; callers treat a nil client as "caching disabled".
func ConnectRedis(ctx context.Context, cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		slog.Warn("Переменная окружения REDIS_ADDR не установлена, кэширование будет отключено.")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	// Проверяем соединение
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		slog.Error("Не удалось подключиться к Redis", "error", err)
		rdb.Close()
		return nil
	}

	slog.Info("Успешное подключение к Redis!")
	return rdb
}
