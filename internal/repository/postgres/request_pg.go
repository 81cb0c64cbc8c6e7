// internal/repository/postgres/request_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"skillswap-ledger/internal/domain"
	"skillswap-ledger/internal/repository"
	"skillswap-ledger/internal/util"

	"github.com/jmoiron/sqlx"
)

// SessionRequestRepository implements repository.SessionRequestRepository for PostgreSQL.
type SessionRequestRepository struct{}

// NewSessionRequestRepository creates a new SessionRequestRepository.
func NewSessionRequestRepository(db *sqlx.DB) repository.SessionRequestRepository {
	return &SessionRequestRepository{}
}

const requestColumns = `id, sender_id, receiver_id, skill_id, session_name, description, mode, start_date, end_date, credits_held, created_at`

// CreateRequest inserts a pending request using the provided DBExecutor.
func (r *SessionRequestRepository) CreateRequest(ctx context.Context, q repository.DBExecutor, req *domain.SessionRequest) error {
	query := `INSERT INTO session_requests (sender_id, receiver_id, skill_id, session_name, description, mode, start_date, end_date, credits_held, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		req.SenderID,
		req.ReceiverID,
		req.SkillID,
		req.SessionName,
		req.Description,
		req.Mode,
		req.StartDate,
		req.EndDate,
		req.CreditsHeld,
		req.CreatedAt,
	).Scan(&req.ID)
	if err != nil {
		return fmt.Errorf("failed to create session request: %w", err)
	}
	return nil
}

// GetByID retrieves a request without locking.
func (r *SessionRequestRepository) GetByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.SessionRequest, error) {
	return r.get(ctx, q, id, false)
}

// GetByIDForUpdate retrieves a request with a row lock. Concurrent resolvers
// of the same request serialize here; the loser sees the row vanish.
func (r *SessionRequestRepository) GetByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.SessionRequest, error) {
	return r.get(ctx, q, id, true)
}

func (r *SessionRequestRepository) get(ctx context.Context, q repository.DBExecutor, id int64, forUpdate bool) (*domain.SessionRequest, error) {
	var req domain.SessionRequest
	query := `SELECT ` + requestColumns + ` FROM session_requests WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	err := q.GetContext(ctx, &req, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session request %d: %w", id, err)
	}
	return &req, nil
}

// PendingExistsBetween reports whether a pending request exists between the
// two users in either direction.
func (r *SessionRequestRepository) PendingExistsBetween(ctx context.Context, q repository.DBExecutor, userA, userB int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (
                SELECT 1 FROM session_requests
                WHERE (sender_id = $1 AND receiver_id = $2)
                   OR (sender_id = $2 AND receiver_id = $1)
              )`
	err := q.GetContext(ctx, &exists, query, userA, userB)
	if err != nil {
		return false, fmt.Errorf("failed to check pending request between users %d and %d: %w", userA, userB, err)
	}
	return exists, nil
}

// Delete removes a resolved request. Compare-and-delete: zero rows affected
// means a concurrent operation already resolved it.
func (r *SessionRequestRepository) Delete(ctx context.Context, q repository.DBExecutor, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM session_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session request %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected deleting session request %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
