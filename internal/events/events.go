// Package events publishes ledger events to the message bus after a
// transaction has been committed.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Siellph/DimaTech-Ltd-test/models"
)

// SubjectTransactionCreated is the NATS subject for newly recorded payments.
const SubjectTransactionCreated = "billing.transaction.created"

// Publisher is notified about ledger changes that have already been committed.
type Publisher interface {
	PublishTransactionCreated(ctx context.Context, tx *models.Transaction) error
	Close()
}

// TransactionCreated is the wire form of SubjectTransactionCreated messages.
type TransactionCreated struct {
	ID            int64     `json:"id"`
	TransactionID string    `json:"transaction_id"`
	AccountID     int64     `json:"account_id"`
	UserID        int64     `json:"user_id"`
	Amount        string    `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
}

func encodeTransactionCreated(tx *models.Transaction) ([]byte, error) {
	return json.Marshal(TransactionCreated{
		ID:            tx.ID,
		TransactionID: tx.TransactionID,
		AccountID:     tx.AccountID,
		UserID:        tx.UserID,
		Amount:        tx.Amount.StringFixed(2),
		Timestamp:     tx.Timestamp,
	})
}

// NATSPublisher sends events to a NATS server.
type NATSPublisher struct {
	nc *nats.Conn
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("billing-service"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSPublisher{nc: nc}, nil
}

func (p *NATSPublisher) PublishTransactionCreated(ctx context.Context, tx *models.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeTransactionCreated(tx)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.nc.Publish(SubjectTransactionCreated, data); err != nil {
		return fmt.Errorf("publish %s: %w", SubjectTransactionCreated, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		slog.Warn("NATS drain failed", "error", err)
		p.nc.Close()
	}
}

// Nop discards every event. It is used when NATS_URL is not configured.
type Nop struct{}

func (Nop) PublishTransactionCreated(context.Context, *models.Transaction) error { return nil }

func (Nop) Close() {}
