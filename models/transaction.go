// FILE: models/transaction.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction представляет один платёж, полученный через webhook.
// TransactionID приходит от платёжной системы и служит ключом идемпотентности.
type Transaction struct {
	ID            int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	TransactionID string          `json:"transaction_id" gorm:"unique;not null"`
	AccountID     int64           `json:"account_id" gorm:"not null;index"`
	UserID        int64           `json:"user_id" gorm:"not null;index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(18,2);not null"`
	Timestamp     time.Time       `json:"timestamp" gorm:"autoCreateTime"`
	Signature     string          `json:"signature" gorm:"not null"`
}

func (Transaction) TableName() string { return "transaction" }
