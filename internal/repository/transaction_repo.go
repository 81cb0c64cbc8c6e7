// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"skillswap-ledger/internal/domain"
)

// TransactionRepository defines the interface for ledger entry operations.
type TransactionRepository interface {
	// CreateTransaction appends a new ledger entry using the provided DBExecutor.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// UpdateStatus transitions an entry's status in place, guarded on its
	// current status. Returns util.ErrNotFound if no entry matched.
	UpdateStatus(ctx context.Context, q DBExecutor, id int64, from, to domain.TransactionStatus) error
	// GetPendingByRequestID finds the pending fee leg linked to a session request.
	GetPendingByRequestID(ctx context.Context, q DBExecutor, requestID int64) (*domain.Transaction, error)
	// GetPendingBySessionID finds the pending escrow leg linked to a session.
	GetPendingBySessionID(ctx context.Context, q DBExecutor, sessionID int64) (*domain.Transaction, error)
	// GetTransactionsByWalletID retrieves a page of a wallet's history plus the total count.
	GetTransactionsByWalletID(ctx context.Context, q DBExecutor, walletID int64, limit, offset int) ([]domain.Transaction, int64, error)
	// SettledNetAmountByWalletID sums the signed amounts of every non-PENDING
	// entry for a wallet. A PENDING escrow leg has not changed the wallet's
	// total (available + outgoing) yet, so the settled net equals that total.
	SettledNetAmountByWalletID(ctx context.Context, q DBExecutor, walletID int64) (int64, error)
}
