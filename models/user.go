// FILE: models/user.go
package models

// User is a billing customer or an administrator. Deleting a user cascades to
// its accounts and transactions at the database level.
type User struct {
	UserID         int64  `json:"user_id" gorm:"column:user_id;primaryKey;autoIncrement"`
	Username       string `json:"username" gorm:"unique;not null"`
	Email          string `json:"email" gorm:"unique;not null"`
	FullName       string `json:"full_name"`
	HashedPassword string `json:"-" gorm:"not null"`
	Role           string `json:"role" gorm:"not null;default:user"`

	Accounts     []Account     `json:"-" gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE"`
	Transactions []Transaction `json:"-" gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string { return "user" }
