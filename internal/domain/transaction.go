// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType is the business reason for a ledger entry.
type TransactionType string

const (
	TransactionTypeRequestSent      TransactionType = "REQUEST_SENT"
	TransactionTypeRequestReceived  TransactionType = "REQUEST_RECEIVED"
	TransactionTypeRequestRefunded  TransactionType = "REQUEST_REFUNDED"
	TransactionTypeRequestCancelled TransactionType = "REQUEST_CANCELLED"
	TransactionTypeSessionReserved  TransactionType = "SESSION_RESERVED"
	TransactionTypeSessionCancelled TransactionType = "SESSION_CANCELLED"
	TransactionTypeSessionCompleted TransactionType = "SESSION_COMPLETED"
	TransactionTypeSignupBonus      TransactionType = "SIGNUP_BONUS"
)

// TransactionStatus is the settlement state of a ledger entry. Escrow legs
// start PENDING and transition in place to COMPLETED or REFUNDED; no new
// entry is spawned for the transition.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusRefunded  TransactionStatus = "REFUNDED"
)

// Transaction is one entry in the append-mostly ledger. Amount is signed:
// positive credits the wallet owner, negative debits them.
type Transaction struct {
	ID               int64             `db:"id" json:"id"`
	WalletID         int64             `db:"wallet_id" json:"wallet_id"`
	Amount           int64             `db:"amount" json:"amount"`
	Type             TransactionType   `db:"type" json:"type"`
	Status           TransactionStatus `db:"status" json:"status"`
	RelatedUserID    *int64            `db:"related_user_id" json:"related_user_id"`
	SessionRequestID *int64            `db:"session_request_id" json:"session_request_id"`
	SessionID        *int64            `db:"session_id" json:"session_id"`
	Note             *string           `db:"note" json:"note"`
	Reference        string            `db:"reference" json:"reference"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
}

// NewTransaction creates a ledger entry with a fresh audit reference.
func NewTransaction(walletID, amount int64, txType TransactionType, status TransactionStatus, relatedUserID *int64) *Transaction {
	return &Transaction{
		WalletID:      walletID,
		Amount:        amount,
		Type:          txType,
		Status:        status,
		RelatedUserID: relatedUserID,
		Reference:     uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
	}
}
