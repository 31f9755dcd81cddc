package models

import "gorm.io/gorm"

// Migrate creates or updates the user, account and transaction tables together
// with their foreign keys.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Account{}, &Transaction{})
}
