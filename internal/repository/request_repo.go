// internal/repository/request_repo.go
package repository

import (
	"context"

	"skillswap-ledger/internal/domain"
)

// SessionRequestRepository defines storage for pending session requests.
//
// Resolution is first-committer-wins: GetByIDForUpdate row-locks the request
// so concurrent accept/decline/cancel calls serialize, and Delete reports
// whether this caller actually removed the row.
type SessionRequestRepository interface {
	// CreateRequest inserts a pending request.
	CreateRequest(ctx context.Context, q DBExecutor, req *domain.SessionRequest) error
	// GetByID retrieves a request without locking.
	GetByID(ctx context.Context, q DBExecutor, id int64) (*domain.SessionRequest, error)
	// GetByIDForUpdate retrieves a request with a row lock; the losing side
	// of a race observes util.ErrNotFound once the winner commits.
	GetByIDForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.SessionRequest, error)
	// PendingExistsBetween reports whether a pending request exists between
	// the two users in either direction.
	PendingExistsBetween(ctx context.Context, q DBExecutor, userA, userB int64) (bool, error)
	// Delete removes a resolved request; returns util.ErrNotFound if the row
	// was already gone.
	Delete(ctx context.Context, q DBExecutor, id int64) error
}
