// Package ledger persists users, accounts and the transaction ledger and
// applies incoming payments to account balances.
package ledger

import (
	"context"

	"gorm.io/gorm"
)

// Scope is a reusable query modifier such as pagination.
type Scope = func(*gorm.DB) *gorm.DB

// Store gives access to the relational ledger.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying handle bound to ctx.
func (s *Store) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// WithTx runs fn inside a single database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise, including on panic.
func (s *Store) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}
