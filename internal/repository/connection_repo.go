// internal/repository/connection_repo.go
package repository

import (
	"context"

	"skillswap-ledger/internal/domain"
)

// ConnectionRepository reads the connection precondition records the
// negotiator depends on, and creates them for bootstrap flows.
type ConnectionRepository interface {
	// CreateConnection inserts a connection record.
	CreateConnection(ctx context.Context, q DBExecutor, conn *domain.Connection) error
	// GetActiveBetween retrieves the ACTIVE connection between two users in
	// either direction; util.ErrNotFound if none exists.
	GetActiveBetween(ctx context.Context, q DBExecutor, userA, userB int64) (*domain.Connection, error)
}
