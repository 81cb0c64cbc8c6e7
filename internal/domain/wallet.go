// internal/domain/wallet.go
package domain

import "time"

// Credit amounts are whole, non-negative integers platform-wide.
const (
	// RequestFee is the fixed fee escrowed when a session request is sent.
	RequestFee int64 = 5
	// SessionEscrow is the fixed amount escrowed when a request is accepted.
	SessionEscrow int64 = 40
)

// Wallet holds a user's credit balances across three buckets.
// AvailableBalance is spendable now, OutgoingBalance is escrowed against
// commitments, IncomingBalance is informational and never gates a spend.
type Wallet struct {
	ID               int64     `db:"id" json:"id"`
	UserID           int64     `db:"user_id" json:"user_id"`
	AvailableBalance int64     `db:"available_balance" json:"available_balance"`
	OutgoingBalance  int64     `db:"outgoing_balance" json:"outgoing_balance"`
	IncomingBalance  int64     `db:"incoming_balance" json:"incoming_balance"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// NewWallet creates a zero-balance Wallet for a user.
func NewWallet(userID int64) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
