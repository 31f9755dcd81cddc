package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Siellph/DimaTech-Ltd-test/internal/ledger"
)

// ListMyTransactions returns the caller's transactions across all accounts.
func (h *Handler) ListMyTransactions(c *gin.Context) {
	page := newPageRequest(c)
	txs, total, err := h.store.ListTransactionsByUser(c.Request.Context(), currentUserID(c), page.Scope())
	if err != nil {
		internalError(c, "Could not fetch transactions", err)
		return
	}
	c.JSON(http.StatusOK, page.Response(newTransactionResponses(txs), total))
}

// ListAccountTransactions returns transactions of one of the caller's accounts.
func (h *Handler) ListAccountTransactions(c *gin.Context) {
	accountID, ok := paramID(c, "account_id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	userID := currentUserID(c)
	if _, err := h.store.GetAccount(ctx, accountID, userID); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		internalError(c, "Could not fetch account", err)
		return
	}

	page := newPageRequest(c)
	txs, total, err := h.store.ListTransactionsByAccount(ctx, accountID, userID, page.Scope())
	if err != nil {
		internalError(c, "Could not fetch transactions", err)
		return
	}
	c.JSON(http.StatusOK, page.Response(newTransactionResponses(txs), total))
}
