// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"skillswap-ledger/internal/domain"
)

// WalletRepository defines the wallet store and its escrow primitives.
//
// Reserve, Release and Settle are single guarded UPDATE statements: a move
// that would drive available_balance or outgoing_balance below zero affects
// no rows and returns util.ErrInsufficientFunds. Credit and AddIncoming carry
// no balance guard; for them zero rows affected means the wallet row is
// missing (util.ErrNotFound). AddIncoming is the only primitive that takes a
// signed amount. Every primitive must run on the same transaction-scoped
// DBExecutor as its paired ledger entry and any request/session mutation.
type WalletRepository interface {
	// CreateWallet adds a new wallet using the provided DBExecutor.
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByUserID retrieves a user's wallet.
	GetWalletByUserID(ctx context.Context, q DBExecutor, userID int64) (*domain.Wallet, error)
	// Reserve moves amount from available to outgoing.
	Reserve(ctx context.Context, q DBExecutor, userID, amount int64) error
	// Release moves amount from outgoing back to available (refund path).
	Release(ctx context.Context, q DBExecutor, userID, amount int64) error
	// Settle removes amount from outgoing with no matching credit; the
	// counterpart wallet is credited separately.
	Settle(ctx context.Context, q DBExecutor, userID, amount int64) error
	// Credit increases available directly.
	Credit(ctx context.Context, q DBExecutor, userID, amount int64) error
	// AddIncoming adjusts the informational incoming bucket.
	AddIncoming(ctx context.Context, q DBExecutor, userID, amount int64) error
}
