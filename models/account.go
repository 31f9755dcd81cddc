// FILE: models/account.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a user's sub-account. Balance is a cached aggregate of the
// account's transactions and is only ever changed together with a ledger insert.
type Account struct {
	AccountID   int64           `json:"account_id" gorm:"column:account_id;primaryKey;autoIncrement"`
	AccountName *string         `json:"account_name" gorm:"unique"`
	UserID      int64           `json:"user_id" gorm:"not null;index"`
	AccountDate time.Time       `json:"account_date" gorm:"autoCreateTime"`
	Balance     decimal.Decimal `json:"balance" gorm:"type:numeric(18,2);not null;default:0"`

	Transactions []Transaction `json:"-" gorm:"foreignKey:AccountID;references:AccountID;constraint:OnDelete:CASCADE"`
}

func (Account) TableName() string { return "account" }
