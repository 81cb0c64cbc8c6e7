// internal/repository/postgres/transaction_pg.go
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

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction appends a new ledger entry using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (wallet_id, amount, type, status, related_user_id, session_request_id, session_id, note, reference, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		transaction.WalletID,
		transaction.Amount,
		transaction.Type,
		transaction.Status,
		transaction.RelatedUserID,
		transaction.SessionRequestID,
		transaction.SessionID,
		transaction.Note,
		transaction.Reference,
		transaction.CreatedAt,
	).Scan(&transaction.ID)

	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// UpdateStatus transitions a ledger entry's status in place. The current
// status is part of the WHERE clause so a concurrent transition loses cleanly.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, q repository.DBExecutor, id int64, from, to domain.TransactionStatus) error {
	query := `UPDATE transactions SET status = $1 WHERE id = $2 AND status = $3`
	result, err := q.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update transaction %d status: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected updating transaction %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

// GetPendingByRequestID finds the pending fee leg linked to a session request.
func (r *TransactionRepository) GetPendingByRequestID(ctx context.Context, q repository.DBExecutor, requestID int64) (*domain.Transaction, error) {
	var transaction domain.Transaction
	query := `SELECT id, wallet_id, amount, type, status, related_user_id, session_request_id, session_id, note, reference, created_at
              FROM transactions
              WHERE session_request_id = $1 AND status = $2
              ORDER BY created_at ASC
              LIMIT 1`
	err := q.GetContext(ctx, &transaction, query, requestID, domain.TransactionStatusPending)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pending transaction for request %d: %w", requestID, err)
	}
	return &transaction, nil
}

// GetPendingBySessionID finds the pending escrow leg linked to a session.
func (r *TransactionRepository) GetPendingBySessionID(ctx context.Context, q repository.DBExecutor, sessionID int64) (*domain.Transaction, error) {
	var transaction domain.Transaction
	query := `SELECT id, wallet_id, amount, type, status, related_user_id, session_request_id, session_id, note, reference, created_at
              FROM transactions
              WHERE session_id = $1 AND status = $2
              ORDER BY created_at ASC
              LIMIT 1`
	err := q.GetContext(ctx, &transaction, query, sessionID, domain.TransactionStatusPending)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pending transaction for session %d: %w", sessionID, err)
	}
	return &transaction, nil
}

// GetTransactionsByWalletID retrieves a paginated slice of a wallet's history.
// It performs two queries: one for the data and one for the total count.
func (r *TransactionRepository) GetTransactionsByWalletID(ctx context.Context, q repository.DBExecutor, walletID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	transactions := []domain.Transaction{}

	query := `
		SELECT id, wallet_id, amount, type, status, related_user_id, session_request_id, session_id, note, reference, created_at
		FROM transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	err := q.SelectContext(ctx, &transactions, query, walletID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for wallet %d: %w", walletID, err)
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM transactions WHERE wallet_id = $1`
	err = q.GetContext(ctx, &totalCount, countQuery, walletID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get total transaction count for wallet %d: %w", walletID, err)
	}

	return transactions, totalCount, nil
}

// SettledNetAmountByWalletID sums the signed amounts of every non-PENDING
// entry for a wallet. Used to check the cached buckets against the log:
// available + outgoing must equal this sum at all times.
func (r *TransactionRepository) SettledNetAmountByWalletID(ctx context.Context, q repository.DBExecutor, walletID int64) (int64, error) {
	var net int64
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE wallet_id = $1 AND status <> $2`
	err := q.GetContext(ctx, &net, query, walletID, domain.TransactionStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to sum transactions for wallet %d: %w", walletID, err)
	}
	return net, nil
}
