package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateTransaction is returned when a transaction_id has already been
	// recorded. Under at-least-once webhook delivery this is expected.
	ErrDuplicateTransaction = errors.New("Transaction with this ID already exists")
	// ErrAccountOwnership means the referenced account id exists but belongs to
	// a different user.
	ErrAccountOwnership = errors.New("account belongs to another user")
	ErrNotFound         = errors.New("record not found")
	ErrAccountNameTaken = errors.New("Account with this name already exists")
	ErrUserExists       = errors.New("User with this username or email already exists")
)

// IngestionError wraps an unexpected persistence failure during ingestion. The
// whole unit has been rolled back when it is returned.
type IngestionError struct {
	Op  string
	Err error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest transaction: %s: %v", e.Op, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }
