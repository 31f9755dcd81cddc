package config

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDB opens the postgres ledger database.
func ConnectDB(cfg *Config) (*gorm.DB, error) {
	if err := cfg.RequireDB(); err != nil {
		slog.Error("Критическая ошибка: переменная окружения DB_URL не установлена.")
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(cfg.DBURL), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		slog.Error("Ошибка подключения к БД", "error", err)
		return nil, fmt.Errorf("connect db: %w", err)
	}

	slog.Info("Успешное подключение к базе данных!")
	return db, nil
}
