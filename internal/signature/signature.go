// Package signature checks the authenticity of payment notifications sent to
// the webhook by the payment provider.
package signature

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Payload holds the string forms of the signed notification fields exactly as
// they arrived on the wire.
type Payload struct {
	AccountID     string
	Amount        string
	TransactionID string
	UserID        string
	Signature     string
}

// Verifier computes and checks notification signatures with a shared secret.
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Sign returns sha256(account_id + amount + transaction_id + user_id + secret)
// as lowercase hex. Field order is fixed by the provider.
func (v *Verifier) Sign(p Payload) string {
	var b strings.Builder
	b.WriteString(p.AccountID)
	b.WriteString(p.Amount)
	b.WriteString(p.TransactionID)
	b.WriteString(p.UserID)
	b.WriteString(v.secret)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether p carries a valid signature. A payload with any
// signed field missing never verifies.
func (v *Verifier) Verify(p Payload) bool {
	if p.AccountID == "" || p.Amount == "" || p.TransactionID == "" || p.UserID == "" || p.Signature == "" {
		return false
	}
	expected := v.Sign(p)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(p.Signature)) == 1
}
