package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Siellph/DimaTech-Ltd-test/internal/ledger"
)

type AccountNameInput struct {
	AccountName string `json:"account_name" binding:"required"`
}

type CreateAccountInput struct {
	AccountName *string `json:"account_name"`
}

// ListMyAccounts returns the caller's accounts.
func (h *Handler) ListMyAccounts(c *gin.Context) {
	page := newPageRequest(c)
	accounts, total, err := h.store.ListAccountsByUser(c.Request.Context(), currentUserID(c), page.Scope())
	if err != nil {
		internalError(c, "Could not fetch accounts", err)
		return
	}
	responseData := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		responseData = append(responseData, newAccountResponse(&accounts[i]))
	}
	c.JSON(http.StatusOK, page.Response(responseData, total))
}

// GetMyAccount returns one of the caller's accounts with its transactions.
// Accounts of other users are reported as not found.
func (h *Handler) GetMyAccount(c *gin.Context) {
	accountID, ok := paramID(c, "account_id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	userID := currentUserID(c)
	account, err := h.store.GetAccount(ctx, accountID, userID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		internalError(c, "Could not fetch account", err)
		return
	}

	txs, _, err := h.store.ListTransactionsByAccount(ctx, accountID, userID)
	if err != nil {
		internalError(c, "Could not fetch account transactions", err)
		return
	}

	resp := newAccountResponse(account)
	resp.Transactions = newTransactionResponses(txs)
	c.JSON(http.StatusOK, resp)
}

// CreateMyAccount opens a new empty account for the caller.
func (h *Handler) CreateMyAccount(c *gin.Context) {
	var input CreateAccountInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if input.AccountName != nil {
		name := strings.TrimSpace(*input.AccountName)
		if name == "" {
			input.AccountName = nil
		} else {
			input.AccountName = &name
		}
	}

	userID := currentUserID(c)
	account, err := h.store.OpenAccount(c.Request.Context(), userID, input.AccountName)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNameTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		internalError(c, "Failed to open account", err)
		return
	}

	slog.Info("Account opened", "user_id", userID, "account_id", account.AccountID)
	c.JSON(http.StatusCreated, newAccountResponse(account))
}

// UpdateMyAccount renames one of the caller's accounts.
func (h *Handler) UpdateMyAccount(c *gin.Context) {
	accountID, ok := paramID(c, "account_id")
	if !ok {
		return
	}

	var input AccountNameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := strings.TrimSpace(input.AccountName)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account_name must not be empty"})
		return
	}

	account, err := h.store.RenameAccount(c.Request.Context(), accountID, currentUserID(c), name)
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	case errors.Is(err, ledger.ErrAccountNameTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		internalError(c, "Failed to rename account", err)
		return
	}
	c.JSON(http.StatusOK, newAccountResponse(account))
}
