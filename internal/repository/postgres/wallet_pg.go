// internal/repository/postgres/wallet_pg.go
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

// WalletRepository implements repository.WalletRepository for PostgreSQL.
//
// The escrow primitives are single guarded UPDATE statements: the balance
// precondition lives in the WHERE clause, so a move that would drive a bucket
// negative affects zero rows and the caller's transaction aborts cleanly.
type WalletRepository struct{}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db *sqlx.DB) repository.WalletRepository {
	return &WalletRepository{}
}

// CreateWallet inserts a new wallet using the provided DBExecutor.
func (r *WalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := `INSERT INTO wallets (user_id, available_balance, outgoing_balance, incoming_balance, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		wallet.UserID,
		wallet.AvailableBalance,
		wallet.OutgoingBalance,
		wallet.IncomingBalance,
		wallet.CreatedAt,
		wallet.UpdatedAt,
	).Scan(&wallet.ID)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// GetWalletByUserID retrieves a user's wallet using the provided DBExecutor.
func (r *WalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT id, user_id, available_balance, outgoing_balance, incoming_balance, created_at, updated_at
              FROM wallets WHERE user_id = $1`
	err := q.GetContext(ctx, &wallet, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet for user %d: %w", userID, err)
	}
	return &wallet, nil
}

// Reserve moves amount from available to outgoing.
// Fails with ErrInsufficientFunds when available < amount.
func (r *WalletRepository) Reserve(ctx context.Context, q repository.DBExecutor, userID, amount int64) error {
	query := `UPDATE wallets
              SET available_balance = available_balance - $1,
                  outgoing_balance  = outgoing_balance + $1,
                  updated_at        = $2
              WHERE user_id = $3 AND available_balance >= $1`
	return r.execGuarded(ctx, q, query, userID, amount, "reserve")
}

// Release moves amount from outgoing back to available.
func (r *WalletRepository) Release(ctx context.Context, q repository.DBExecutor, userID, amount int64) error {
	query := `UPDATE wallets
              SET outgoing_balance  = outgoing_balance - $1,
                  available_balance = available_balance + $1,
                  updated_at        = $2
              WHERE user_id = $3 AND outgoing_balance >= $1`
	return r.execGuarded(ctx, q, query, userID, amount, "release")
}

// Settle removes amount from outgoing only; the counterpart wallet is
// credited by a separate Credit call inside the same unit of work.
func (r *WalletRepository) Settle(ctx context.Context, q repository.DBExecutor, userID, amount int64) error {
	query := `UPDATE wallets
              SET outgoing_balance = outgoing_balance - $1,
                  updated_at       = $2
              WHERE user_id = $3 AND outgoing_balance >= $1`
	return r.execGuarded(ctx, q, query, userID, amount, "settle")
}

// Credit increases available directly.
func (r *WalletRepository) Credit(ctx context.Context, q repository.DBExecutor, userID, amount int64) error {
	if amount < 0 {
		return util.ErrInvalidInput
	}
	query := `UPDATE wallets
              SET available_balance = available_balance + $1,
                  updated_at        = $2
              WHERE user_id = $3`
	return r.execUnguarded(ctx, q, query, userID, amount, "credit")
}

// AddIncoming adjusts the informational incoming bucket by a signed amount:
// positive when a request fee is sent towards the wallet owner, negative when
// the request resolves. The SQL clamps at zero; AddIncoming never gates a
// spend and never fails on balance.
func (r *WalletRepository) AddIncoming(ctx context.Context, q repository.DBExecutor, userID, amount int64) error {
	query := `UPDATE wallets
              SET incoming_balance = GREATEST(incoming_balance + $1, 0),
                  updated_at       = $2
              WHERE user_id = $3`
	return r.execUnguarded(ctx, q, query, userID, amount, "add incoming")
}

// execGuarded runs a balance-guarded move. Amounts are always positive
// magnitudes; zero rows affected means the WHERE-clause balance guard
// rejected the move.
func (r *WalletRepository) execGuarded(ctx context.Context, q repository.DBExecutor, query string, userID, amount int64, op string) error {
	if amount < 0 {
		return util.ErrInvalidInput
	}
	result, err := q.ExecContext(ctx, query, amount, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to %s %d credits for user %d: %w", op, amount, userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after %s for user %d: %w", op, userID, err)
	}
	if rowsAffected == 0 {
		// The wallet exists for every authenticated caller, so zero rows
		// means the balance guard rejected the move.
		return util.ErrInsufficientFunds
	}
	return nil
}

// execUnguarded runs a move with no balance precondition. Zero rows affected
// can only mean the wallet row is missing.
func (r *WalletRepository) execUnguarded(ctx context.Context, q repository.DBExecutor, query string, userID, amount int64, op string) error {
	result, err := q.ExecContext(ctx, query, amount, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to %s %d credits for user %d: %w", op, amount, userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after %s for user %d: %w", op, userID, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
