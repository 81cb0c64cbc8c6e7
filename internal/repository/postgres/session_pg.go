// internal/repository/postgres/session_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"skillswap-ledger/internal/domain"
	"skillswap-ledger/internal/repository"
	"skillswap-ledger/internal/util"

	"github.com/jmoiron/sqlx"
)

// SessionRepository implements repository.SessionRepository for PostgreSQL.
type SessionRepository struct{}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &SessionRepository{}
}

const sessionColumns = `id, learner_id, provider_id, skill_id, connection_id, session_name, mode, start_date, end_date,
	request_credits, session_credits, status, learner_cancellation_requested, provider_cancellation_requested,
	cancelled_by, cancel_reason, cancelled_at, created_at, updated_at`

// CreateSession inserts a new session using the provided DBExecutor.
func (r *SessionRepository) CreateSession(ctx context.Context, q repository.DBExecutor, session *domain.Session) error {
	query := `INSERT INTO sessions (learner_id, provider_id, skill_id, connection_id, session_name, mode, start_date, end_date,
                request_credits, session_credits, status, learner_cancellation_requested, provider_cancellation_requested,
                created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		session.LearnerID,
		session.ProviderID,
		session.SkillID,
		session.ConnectionID,
		session.SessionName,
		session.Mode,
		session.StartDate,
		session.EndDate,
		session.RequestCredits,
		session.SessionCredits,
		session.Status,
		session.LearnerCancellationRequested,
		session.ProviderCancellationRequested,
		session.CreatedAt,
		session.UpdatedAt,
	).Scan(&session.ID)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID retrieves a session without locking.
func (r *SessionRepository) GetByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Session, error) {
	return r.get(ctx, q, id, false)
}

// GetByIDForUpdate retrieves a session with a row lock.
func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Session, error) {
	return r.get(ctx, q, id, true)
}

func (r *SessionRepository) get(ctx context.Context, q repository.DBExecutor, id int64, forUpdate bool) (*domain.Session, error) {
	var session domain.Session
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	err := q.GetContext(ctx, &session, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session %d: %w", id, err)
	}
	return &session, nil
}

// SetCancellationFlag records one party's cancellation request and reason.
// The status stays ACTIVE; only the caller's flag changes.
func (r *SessionRepository) SetCancellationFlag(ctx context.Context, q repository.DBExecutor, session *domain.Session) error {
	query := `UPDATE sessions
              SET learner_cancellation_requested  = $1,
                  provider_cancellation_requested = $2,
                  cancel_reason                   = $3,
                  updated_at                      = $4
              WHERE id = $5 AND status = $6`
	return r.execOne(ctx, q, query,
		session.LearnerCancellationRequested,
		session.ProviderCancellationRequested,
		session.CancelReason,
		time.Now().UTC(),
		session.ID,
		domain.SessionStatusActive,
	)
}

// MarkCancelled finalizes mutual-consent cancellation: both flags set, status
// CANCELLED, and the cancellation metadata recorded.
func (r *SessionRepository) MarkCancelled(ctx context.Context, q repository.DBExecutor, session *domain.Session) error {
	query := `UPDATE sessions
              SET status                          = $1,
                  learner_cancellation_requested  = TRUE,
                  provider_cancellation_requested = TRUE,
                  cancelled_by                    = $2,
                  cancel_reason                   = $3,
                  cancelled_at                    = $4,
                  updated_at                      = $5
              WHERE id = $6 AND status = $7`
	return r.execOne(ctx, q, query,
		domain.SessionStatusCancelled,
		session.CancelledBy,
		session.CancelReason,
		session.CancelledAt,
		time.Now().UTC(),
		session.ID,
		domain.SessionStatusActive,
	)
}

func (r *SessionRepository) execOne(ctx context.Context, q repository.DBExecutor, query string, args ...interface{}) error {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected updating session: %w", err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
