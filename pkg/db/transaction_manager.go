// pkg/db/transaction_manager.go
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TxController defines methods for controlling a database transaction.
// *sqlx.Tx implicitly implements this interface.
type TxController interface {
	Commit() error
	Rollback() error
}

// DBTxBeginner defines the interface for beginning transactions.
// *sqlx.DB implements this.
type DBTxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// Function types so services can take the transaction lifecycle as injected
// dependencies and tests can substitute them.
type (
	BeginTxFunc    func(ctx context.Context, dbConn DBTxBeginner) (TxController, error)
	CommitTxFunc   func(tx TxController) error
	RollbackTxFunc func(tx TxController)
)

// BeginTx starts a new database transaction.
// It returns a TxController interface, which *sqlx.Tx implements.
func BeginTx(ctx context.Context, dbConn DBTxBeginner) (TxController, error) {
	tx, err := dbConn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// CommitTx commits the transaction.
func CommitTx(tx TxController) error {
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RollbackTx rolls back the transaction. Safe to defer after a commit.
func RollbackTx(tx TxController) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		fmt.Printf("Error rolling back transaction: %v\n", err)
	}
}
