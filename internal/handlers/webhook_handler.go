// internal/handlers/webhook_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Siellph/DimaTech-Ltd-test/internal/ledger"
	"github.com/Siellph/DimaTech-Ltd-test/internal/signature"
)

// wireValue keeps the literal text of a JSON string or number. The payment
// provider signs the textual form, so "100.00" must not become "100".
type wireValue string

func (v *wireValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = wireValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = wireValue(n.String())
	return nil
}

// PaymentWebhookInput is the body the payment provider posts to the webhook.
type PaymentWebhookInput struct {
	TransactionID wireValue `json:"transaction_id"`
	AccountID     wireValue `json:"account_id"`
	UserID        wireValue `json:"user_id"`
	Amount        wireValue `json:"amount"`
	Signature     string    `json:"signature"`
}

func (in *PaymentWebhookInput) payload() signature.Payload {
	return signature.Payload{
		AccountID:     string(in.AccountID),
		Amount:        string(in.Amount),
		TransactionID: string(in.TransactionID),
		UserID:        string(in.UserID),
		Signature:     in.Signature,
	}
}

// notice validates field formats of an authenticated payload.
func (in *PaymentWebhookInput) notice() (ledger.Notice, error) {
	accountID, err := json.Number(in.AccountID).Int64()
	if err != nil || accountID <= 0 {
		return ledger.Notice{}, errors.New("account_id must be a positive integer")
	}
	userID, err := json.Number(in.UserID).Int64()
	if err != nil || userID <= 0 {
		return ledger.Notice{}, errors.New("user_id must be a positive integer")
	}
	amount, err := decimal.NewFromString(string(in.Amount))
	if err != nil {
		return ledger.Notice{}, errors.New("amount must be a decimal number")
	}
	if !amount.Equal(amount.Round(2)) {
		return ledger.Notice{}, errors.New("amount must have at most two decimal places")
	}
	// The id is stored exactly as signed; it is the idempotency key.
	txID := string(in.TransactionID)
	if txID == "" {
		return ledger.Notice{}, errors.New("transaction_id is required")
	}
	if strings.TrimSpace(txID) != txID {
		return ledger.Notice{}, errors.New("transaction_id must not have surrounding whitespace")
	}
	return ledger.Notice{
		TransactionID: txID,
		AccountID:     accountID,
		UserID:        userID,
		Amount:        amount,
		Signature:     in.Signature,
	}, nil
}

// PaymentWebhook принимает уведомление о платеже: проверяет подпись,
// записывает транзакцию и пополняет счёт. Повторная доставка того же
// transaction_id не меняет баланс и возвращает 400.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	var input PaymentWebhookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		slog.Warn("Invalid webhook payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	if !h.verifier.Verify(input.payload()) {
		slog.Warn("Invalid signature for transaction data",
			"transaction_id", string(input.TransactionID),
			"account_id", string(input.AccountID),
			"user_id", string(input.UserID),
			"remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	notice, err := input.notice()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.engine.Ingest(c.Request.Context(), notice)
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateTransaction) {
			slog.Info("Duplicate transaction delivery", "transaction_id", notice.TransactionID)
			c.JSON(http.StatusBadRequest, gin.H{"error": ledger.ErrDuplicateTransaction.Error()})
			return
		}
		slog.Error("Transaction creation failed", "error", err, "transaction_id", notice.TransactionID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction could not be recorded"})
		return
	}

	slog.Info("Transaction created successfully", "transaction_id", tx.TransactionID, "account_id", tx.AccountID)
	c.JSON(http.StatusCreated, newTransactionResponse(tx))
}
