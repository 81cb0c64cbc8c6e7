// internal/repository/session_repo.go
package repository

import (
	"context"

	"skillswap-ledger/internal/domain"
)

// SessionRepository defines storage for sessions and their cancellation flags.
type SessionRepository interface {
	// CreateSession inserts a new ACTIVE session.
	CreateSession(ctx context.Context, q DBExecutor, session *domain.Session) error
	// GetByID retrieves a session without locking.
	GetByID(ctx context.Context, q DBExecutor, id int64) (*domain.Session, error)
	// GetByIDForUpdate retrieves a session with a row lock so concurrent
	// cancellation requests serialize.
	GetByIDForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.Session, error)
	// SetCancellationFlag records one party's cancellation request and reason.
	SetCancellationFlag(ctx context.Context, q DBExecutor, session *domain.Session) error
	// MarkCancelled finalizes mutual-consent cancellation.
	MarkCancelled(ctx context.Context, q DBExecutor, session *domain.Session) error
}
