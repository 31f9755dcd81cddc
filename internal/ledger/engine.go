package ledger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Siellph/DimaTech-Ltd-test/internal/events"
	"github.com/Siellph/DimaTech-Ltd-test/models"
)

// Notice is a payment notification whose signature has already been checked.
type Notice struct {
	TransactionID string
	AccountID     int64
	UserID        int64
	Amount        decimal.Decimal
	Signature     string
}

// Engine applies payment notices to the ledger.
type Engine struct {
	store     *Store
	publisher events.Publisher

	// credit applies the balance change; replaced in tests.
	credit func(tx *gorm.DB, accountID int64, amount decimal.Decimal) error
}

func NewEngine(store *Store, publisher events.Publisher) *Engine {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Engine{
		store:     store,
		publisher: publisher,
		credit:    CreditAccount,
	}
}

// Ingest records the notice and credits the account in one database
// transaction, opening the account first if it does not exist yet.
//
// A transaction_id that is already in the ledger yields
// ErrDuplicateTransaction and leaves every row untouched, including an
// account that this attempt would have opened. Any other failure rolls back
// the whole unit and is returned as *IngestionError.
func (e *Engine) Ingest(ctx context.Context, n Notice) (*models.Transaction, error) {
	record := &models.Transaction{
		TransactionID: n.TransactionID,
		AccountID:     n.AccountID,
		UserID:        n.UserID,
		Amount:        n.Amount,
		Signature:     n.Signature,
	}

	var provisioned bool
	err := e.store.WithTx(ctx, func(tx *gorm.DB) error {
		account, err := FindAccountForUpdate(tx, n.AccountID, n.UserID)
		if err != nil {
			return &IngestionError{Op: "find account", Err: err}
		}
		if account == nil {
			if _, err := CreateAccount(tx, n.AccountID, n.UserID); err != nil {
				return &IngestionError{Op: "create account", Err: err}
			}
			provisioned = true
		}

		if err := tx.Create(record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateTransaction
			}
			return &IngestionError{Op: "insert transaction", Err: err}
		}

		if err := e.credit(tx, n.AccountID, n.Amount); err != nil {
			return &IngestionError{Op: "update balance", Err: err}
		}
		return nil
	})
	if err != nil {
		var ingestErr *IngestionError
		if !errors.Is(err, ErrDuplicateTransaction) && !errors.As(err, &ingestErr) {
			// commit failures surface here unwrapped
			err = &IngestionError{Op: "commit", Err: err}
		}
		return nil, err
	}

	if provisioned {
		slog.Info("Account auto-provisioned", "account_id", n.AccountID, "user_id", n.UserID)
	}

	if err := e.publisher.PublishTransactionCreated(ctx, record); err != nil {
		slog.Warn("Failed to publish transaction event", "error", err, "transaction_id", record.TransactionID)
	}
	return record, nil
}
