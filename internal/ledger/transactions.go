package ledger

import (
	"context"
	"fmt"

	"github.com/Siellph/DimaTech-Ltd-test/models"
)

func (s *Store) ListTransactionsByUser(ctx context.Context, userID int64, scopes ...Scope) ([]models.Transaction, int64, error) {
	return s.listTransactions(ctx, "user_id = ?", []any{userID}, scopes)
}

// ListTransactionsByAccount returns transactions of the account only when the
// account belongs to userID; both conditions must hold for every row.
func (s *Store) ListTransactionsByAccount(ctx context.Context, accountID, userID int64, scopes ...Scope) ([]models.Transaction, int64, error) {
	return s.listTransactions(ctx, "account_id = ? AND user_id = ?", []any{accountID, userID}, scopes)
}

func (s *Store) listTransactions(ctx context.Context, cond string, args []any, scopes []Scope) ([]models.Transaction, int64, error) {
	var total int64
	if err := s.DB(ctx).Model(&models.Transaction{}).Where(cond, args...).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	var txs []models.Transaction
	err := s.DB(ctx).
		Where(cond, args...).
		Order("id").
		Scopes(scopes...).
		Find(&txs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return txs, total, nil
}
