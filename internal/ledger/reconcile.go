package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Drift describes an account whose cached balance disagrees with the sum of
// its transactions.
type Drift struct {
	AccountID int64
	UserID    int64
	Balance   decimal.Decimal
	Ledger    decimal.Decimal
}

// Reconcile compares every account balance with its ledger and returns the
// accounts that drifted. It only reads.
func (s *Store) Reconcile(ctx context.Context) ([]Drift, error) {
	var rows []struct {
		AccountID int64
		UserID    int64
		Balance   decimal.Decimal
		Ledger    decimal.Decimal
	}
	err := s.DB(ctx).
		Table("account AS a").
		Select("a.account_id, a.user_id, a.balance, COALESCE(SUM(t.amount), 0) AS ledger").
		Joins(`LEFT JOIN "transaction" t ON t.account_id = a.account_id`).
		Group("a.account_id, a.user_id, a.balance").
		Order("a.account_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("reconcile balances: %w", err)
	}

	var drifts []Drift
	for _, r := range rows {
		if r.Balance.Equal(r.Ledger) {
			continue
		}
		drifts = append(drifts, Drift{
			AccountID: r.AccountID,
			UserID:    r.UserID,
			Balance:   r.Balance,
			Ledger:    r.Ledger,
		})
	}
	return drifts, nil
}
