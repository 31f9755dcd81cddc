package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Siellph/DimaTech-Ltd-test/models"
)

// FindAccount looks up an account by id and owner inside tx. It returns nil
// without error when no such account exists.
func FindAccount(tx *gorm.DB, accountID, userID int64) (*models.Account, error) {
	return findAccount(tx, accountID, userID)
}

// FindAccountForUpdate is FindAccount holding a row lock until tx ends.
func FindAccountForUpdate(tx *gorm.DB, accountID, userID int64) (*models.Account, error) {
	return findAccount(tx.Clauses(clause.Locking{Strength: "UPDATE"}), accountID, userID)
}

func findAccount(tx *gorm.DB, accountID, userID int64) (*models.Account, error) {
	var account models.Account
	err := tx.Where("account_id = ? AND user_id = ?", accountID, userID).Take(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateAccount opens an account with the given id for userID with a zero
// balance. If a concurrent transaction created the same account first, that
// row is returned locked instead. ErrAccountOwnership is returned when the
// id is taken by another user.
func CreateAccount(tx *gorm.DB, accountID, userID int64) (*models.Account, error) {
	account := &models.Account{
		AccountID: accountID,
		UserID:    userID,
		Balance:   decimal.Zero,
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		DoNothing: true,
	}).Create(account)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		if err := advanceAccountSequence(tx, accountID); err != nil {
			return nil, err
		}
		return account, nil
	}

	existing, err := FindAccountForUpdate(tx, accountID, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrAccountOwnership
	}
	return existing, nil
}

// CreditAccount adds amount to the account balance. The increment is done by
// the database under the row lock, never as read-modify-write.
func CreditAccount(tx *gorm.DB, accountID int64, amount decimal.Decimal) error {
	res := tx.Model(&models.Account{}).
		Where("account_id = ?", accountID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("credit account %d: %d rows updated", accountID, res.RowsAffected)
	}
	return nil
}

// openAccountAttempts bounds retries when the serial collides with an id
// that a webhook assigned explicitly.
const openAccountAttempts = 5

// OpenAccount creates an account on behalf of its owner with a database
// assigned id.
func (s *Store) OpenAccount(ctx context.Context, userID int64, name *string) (*models.Account, error) {
	for attempt := 1; ; attempt++ {
		account := &models.Account{
			AccountName: name,
			UserID:      userID,
			Balance:     decimal.Zero,
		}
		err := s.DB(ctx).Create(account).Error
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create account: %w", err)
		}

		taken, lookupErr := s.accountNameTaken(ctx, name)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if taken {
			return nil, ErrAccountNameTaken
		}
		if attempt == openAccountAttempts {
			return nil, fmt.Errorf("create account: id collision after %d attempts: %w", attempt, err)
		}
	}
}

func (s *Store) accountNameTaken(ctx context.Context, name *string) (bool, error) {
	if name == nil {
		return false, nil
	}
	var n int64
	if err := s.DB(ctx).Model(&models.Account{}).Where("account_name = ?", *name).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check account name: %w", err)
	}
	return n > 0, nil
}

// accountSequenceLock is the pg_advisory_xact_lock key that serialises
// sequence bumps between concurrent provisioning transactions.
const accountSequenceLock = "billing.account.account_id_seq"

// advanceAccountSequence moves the postgres serial past an explicitly
// assigned account id. setval is not transactional, so the read and the
// write happen under an advisory lock held until tx ends; otherwise two
// provisionings could apply their setval in reverse order.
func advanceAccountSequence(tx *gorm.DB, accountID int64) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", accountSequenceLock).Error; err != nil {
		return fmt.Errorf("lock account sequence: %w", err)
	}
	err := tx.Exec(`SELECT setval(s::regclass, GREATEST(?, COALESCE(pg_sequence_last_value(s::regclass), 0)))
		FROM pg_get_serial_sequence('account', 'account_id') AS s`, accountID).Error
	if err != nil {
		return fmt.Errorf("advance account sequence: %w", err)
	}
	return nil
}

// GetAccount returns the account only if it belongs to userID.
func (s *Store) GetAccount(ctx context.Context, accountID, userID int64) (*models.Account, error) {
	account, err := FindAccount(s.DB(ctx), accountID, userID)
	if err != nil {
		return nil, fmt.Errorf("get account %d: %w", accountID, err)
	}
	if account == nil {
		return nil, ErrNotFound
	}
	return account, nil
}

func (s *Store) ListAccountsByUser(ctx context.Context, userID int64, scopes ...Scope) ([]models.Account, int64, error) {
	var total int64
	if err := s.DB(ctx).Model(&models.Account{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	var accounts []models.Account
	err := s.DB(ctx).
		Where("user_id = ?", userID).
		Order("account_id").
		Scopes(scopes...).
		Find(&accounts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, total, nil
}

// RenameAccount sets the account name. Names are unique across all accounts.
func (s *Store) RenameAccount(ctx context.Context, accountID, userID int64, name string) (*models.Account, error) {
	var account *models.Account
	err := s.WithTx(ctx, func(tx *gorm.DB) error {
		found, err := FindAccountForUpdate(tx, accountID, userID)
		if err != nil {
			return err
		}
		if found == nil {
			return ErrNotFound
		}
		if err := tx.Model(found).Update("account_name", name).Error; err != nil {
			return err
		}
		found.AccountName = &name
		account = found
		return nil
	})
	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, ErrNotFound):
		return nil, err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, ErrAccountNameTaken
	default:
		return nil, fmt.Errorf("rename account %d: %w", accountID, err)
	}
}
