// internal/domain/connection.go
package domain

import "time"

// ConnectionStatus is the state of a connection between two users.
type ConnectionStatus string

const (
	ConnectionStatusPending ConnectionStatus = "PENDING"
	ConnectionStatusActive  ConnectionStatus = "ACTIVE"
	ConnectionStatusBlocked ConnectionStatus = "BLOCKED"
)

// Connection is the relationship record the negotiator requires between the
// two parties of a session request. It is managed outside the ledger core;
// the ledger only reads it as a precondition.
type Connection struct {
	ID          int64            `db:"id" json:"id"`
	RequesterID int64            `db:"requester_id" json:"requester_id"`
	RecipientID int64            `db:"recipient_id" json:"recipient_id"`
	Status      ConnectionStatus `db:"status" json:"status"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// NewConnection creates an ACTIVE connection between two users.
func NewConnection(requesterID, recipientID int64) *Connection {
	now := time.Now().UTC()
	return &Connection{
		RequesterID: requesterID,
		RecipientID: recipientID,
		Status:      ConnectionStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
