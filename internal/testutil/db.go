// Package testutil provides a throwaway SQLite ledger for tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Siellph/DimaTech-Ltd-test/models"
)

// NewDB opens a migrated SQLite database in a temp dir. Foreign keys are
// enforced and the pool holds a single connection, so concurrent database
// transactions run one after another like row-locked writes on postgres.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", filepath.Join(t.TempDir(), "ledger.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

// SeedUser inserts a user with the given id and role.
func SeedUser(t *testing.T, db *gorm.DB, userID int64, role string) *models.User {
	t.Helper()

	user := &models.User{
		UserID:         userID,
		Username:       fmt.Sprintf("user%d", userID),
		Email:          fmt.Sprintf("user%d@example.com", userID),
		FullName:       fmt.Sprintf("User %d", userID),
		HashedPassword: "x",
		Role:           role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed user %d: %v", userID, err)
	}
	return user
}
