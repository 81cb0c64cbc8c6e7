// internal/repository/postgres/connection_pg.go
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

// ConnectionRepository implements repository.ConnectionRepository for PostgreSQL.
type ConnectionRepository struct{}

// NewConnectionRepository creates a new ConnectionRepository.
func NewConnectionRepository(db *sqlx.DB) repository.ConnectionRepository {
	return &ConnectionRepository{}
}

// CreateConnection inserts a connection record using the provided DBExecutor.
func (r *ConnectionRepository) CreateConnection(ctx context.Context, q repository.DBExecutor, conn *domain.Connection) error {
	query := `INSERT INTO connections (requester_id, recipient_id, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		conn.RequesterID,
		conn.RecipientID,
		conn.Status,
		conn.CreatedAt,
		conn.UpdatedAt,
	).Scan(&conn.ID)
	if err != nil {
		return fmt.Errorf("failed to create connection: %w", err)
	}
	return nil
}

// GetActiveBetween retrieves the ACTIVE connection between two users in
// either direction.
func (r *ConnectionRepository) GetActiveBetween(ctx context.Context, q repository.DBExecutor, userA, userB int64) (*domain.Connection, error) {
	var conn domain.Connection
	query := `SELECT id, requester_id, recipient_id, status, created_at, updated_at
              FROM connections
              WHERE status = $1
                AND ((requester_id = $2 AND recipient_id = $3)
                  OR (requester_id = $3 AND recipient_id = $2))
              LIMIT 1`
	err := q.GetContext(ctx, &conn, query, domain.ConnectionStatusActive, userA, userB)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get active connection between users %d and %d: %w", userA, userB, err)
	}
	return &conn, nil
}
