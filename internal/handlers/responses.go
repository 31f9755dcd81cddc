package handlers

import (
	"time"

	"github.com/Siellph/DimaTech-Ltd-test/models"
)

// TransactionResponse is the API view of a ledger entry.
type TransactionResponse struct {
	ID            int64     `json:"id"`
	TransactionID string    `json:"transaction_id"`
	AccountID     int64     `json:"account_id"`
	UserID        int64     `json:"user_id"`
	Amount        string    `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
	Signature     string    `json:"signature"`
}

type AccountResponse struct {
	AccountID    int64                 `json:"account_id"`
	AccountName  *string               `json:"account_name"`
	AccountDate  time.Time             `json:"account_date"`
	Balance      string                `json:"balance"`
	Transactions []TransactionResponse `json:"transactions,omitempty"`
}

// UserResponse never exposes the password hash.
type UserResponse struct {
	UserID   int64             `json:"user_id"`
	Username string            `json:"username"`
	Email    string            `json:"email"`
	FullName string            `json:"full_name"`
	Role     string            `json:"role"`
	Accounts []AccountResponse `json:"accounts"`
}

func newTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		TransactionID: t.TransactionID,
		AccountID:     t.AccountID,
		UserID:        t.UserID,
		Amount:        t.Amount.StringFixed(2),
		Timestamp:     t.Timestamp,
		Signature:     t.Signature,
	}
}

func newTransactionResponses(txs []models.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for i := range txs {
		out = append(out, newTransactionResponse(&txs[i]))
	}
	return out
}

func newAccountResponse(a *models.Account) AccountResponse {
	return AccountResponse{
		AccountID:   a.AccountID,
		AccountName: a.AccountName,
		AccountDate: a.AccountDate,
		Balance:     a.Balance.StringFixed(2),
	}
}

func newUserResponse(u *models.User, accounts []models.Account) UserResponse {
	resp := UserResponse{
		UserID:   u.UserID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
		Accounts: make([]AccountResponse, 0, len(accounts)),
	}
	for i := range accounts {
		resp.Accounts = append(resp.Accounts, newAccountResponse(&accounts[i]))
	}
	return resp
}
