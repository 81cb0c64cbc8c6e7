// internal/service/ledger_service.go
package service

import (
	"context"
	"fmt"

	"skillswap-ledger/internal/domain"
	"skillswap-ledger/internal/repository"
	"skillswap-ledger/internal/util"
	"skillswap-ledger/pkg/db"
)

// LedgerService covers the wallet bootstrap and the read-only query surface
// of the ledger: balances, transaction history and the supporting records
// (connections, skills) the negotiator's preconditions depend on.
type LedgerService interface {
	SignUp(ctx context.Context, username string) (*domain.User, *domain.Wallet, error)
	GetBalance(ctx context.Context, userID int64) (*domain.Wallet, error)
	GetTransactionHistory(ctx context.Context, userID int64, limit, offset int) ([]domain.Transaction, int64, error)
	// VerifyLedgerConsistency checks that a wallet's cached buckets match the
	// settled net of its log entries.
	VerifyLedgerConsistency(ctx context.Context, userID int64) (bool, error)
	Connect(ctx context.Context, userID, otherUserID int64) (*domain.Connection, error)
	AddSkill(ctx context.Context, userID int64, name string) (*domain.Skill, error)
}

// ledgerService implements the LedgerService interface.
type ledgerService struct {
	dbBeginner      db.DBTxBeginner
	dbExecutor      repository.DBExecutor
	userRepo        repository.UserRepository
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	connectionRepo  repository.ConnectionRepository
	skillRepo       repository.SkillRepository
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
	signupGrant     int64
}

// NewLedgerService creates a new instance of LedgerService. signupGrant is
// the initial credit balance granted to every new wallet.
func NewLedgerService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	connectionRepo repository.ConnectionRepository,
	skillRepo repository.SkillRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	signupGrant int64,
) LedgerService {
	return &ledgerService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		userRepo:        userRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		connectionRepo:  connectionRepo,
		skillRepo:       skillRepo,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
		signupGrant:     signupGrant,
	}
}

// SignUp creates a user with a wallet holding the signup grant, logging the
// grant as the wallet's first ledger entry, all in one unit of work.
func (s *ledgerService) SignUp(ctx context.Context, username string) (*domain.User, *domain.Wallet, error) {
	if username == "" {
		return nil, nil, util.ErrInvalidInput
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("sign up: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	tx, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, nil, fmt.Errorf("sign up: transaction controller does not implement DBExecutor")
	}

	_, err = s.userRepo.GetUserByUsername(ctx, tx, username)
	if err == nil {
		return nil, nil, util.ErrConflict
	}
	if !util.IsError(err, util.ErrNotFound) {
		return nil, nil, fmt.Errorf("sign up: failed to check existing user: %w", err)
	}

	user := domain.NewUser(username)
	if err := s.userRepo.CreateUser(ctx, tx, user); err != nil {
		if util.IsError(err, util.ErrDuplicateEntry) {
			return nil, nil, util.ErrConflict
		}
		return nil, nil, fmt.Errorf("sign up: failed to create user: %w", err)
	}

	wallet := domain.NewWallet(user.ID)
	if err := s.walletRepo.CreateWallet(ctx, tx, wallet); err != nil {
		return nil, nil, fmt.Errorf("sign up: failed to create wallet: %w", err)
	}

	if s.signupGrant > 0 {
		if err := s.walletRepo.Credit(ctx, tx, user.ID, s.signupGrant); err != nil {
			return nil, nil, fmt.Errorf("sign up: failed to credit signup grant: %w", err)
		}
		grantEntry := domain.NewTransaction(wallet.ID, s.signupGrant, domain.TransactionTypeSignupBonus, domain.TransactionStatusCompleted, nil)
		if err := s.transactionRepo.CreateTransaction(ctx, tx, grantEntry); err != nil {
			return nil, nil, fmt.Errorf("sign up: failed to create grant transaction: %w", err)
		}
		wallet.AvailableBalance = s.signupGrant
	}

	if err := s.commitTx(txController); err != nil {
		return nil, nil, fmt.Errorf("sign up: failed to commit transaction: %w", err)
	}

	return user, wallet, nil
}

// GetBalance returns a user's wallet.
func (s *ledgerService) GetBalance(ctx context.Context, userID int64) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("get balance: failed to get wallet for user %d: %w", userID, err)
	}
	return wallet, nil
}

// GetTransactionHistory retrieves a paginated slice of a user's ledger history.
func (s *ledgerService) GetTransactionHistory(ctx context.Context, userID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	wallet, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, 0, util.ErrNotFound
		}
		return nil, 0, fmt.Errorf("transaction history: failed to get wallet for user %d: %w", userID, err)
	}

	transactions, totalCount, err := s.transactionRepo.GetTransactionsByWalletID(ctx, s.dbExecutor, wallet.ID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("transaction history: failed to retrieve transactions: %w", err)
	}
	return transactions, totalCount, nil
}

// VerifyLedgerConsistency reports whether available + outgoing equals the
// settled net of the wallet's log entries.
func (s *ledgerService) VerifyLedgerConsistency(ctx context.Context, userID int64) (bool, error) {
	wallet, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return false, fmt.Errorf("ledger consistency: failed to get wallet for user %d: %w", userID, err)
	}
	net, err := s.transactionRepo.SettledNetAmountByWalletID(ctx, s.dbExecutor, wallet.ID)
	if err != nil {
		return false, fmt.Errorf("ledger consistency: failed to sum entries for wallet %d: %w", wallet.ID, err)
	}
	return wallet.AvailableBalance+wallet.OutgoingBalance == net, nil
}

// Connect creates an ACTIVE connection between two users.
func (s *ledgerService) Connect(ctx context.Context, userID, otherUserID int64) (*domain.Connection, error) {
	if userID == otherUserID {
		return nil, util.ErrInvalidInput
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("connect: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	tx, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("connect: transaction controller does not implement DBExecutor")
	}

	if _, err := s.userRepo.GetUserByID(ctx, tx, otherUserID); err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("connect: failed to get user %d: %w", otherUserID, err)
	}

	_, err = s.connectionRepo.GetActiveBetween(ctx, tx, userID, otherUserID)
	if err == nil {
		return nil, util.ErrConflict
	}
	if !util.IsError(err, util.ErrNotFound) {
		return nil, fmt.Errorf("connect: failed to check existing connection: %w", err)
	}

	connection := domain.NewConnection(userID, otherUserID)
	if err := s.connectionRepo.CreateConnection(ctx, tx, connection); err != nil {
		return nil, fmt.Errorf("connect: failed to create connection: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("connect: failed to commit transaction: %w", err)
	}
	return connection, nil
}

// AddSkill registers a skill owned by the caller.
func (s *ledgerService) AddSkill(ctx context.Context, userID int64, name string) (*domain.Skill, error) {
	if name == "" {
		return nil, util.ErrInvalidInput
	}
	skill := domain.NewSkill(userID, name)
	if err := s.skillRepo.CreateSkill(ctx, s.dbExecutor, skill); err != nil {
		return nil, fmt.Errorf("add skill: failed to create skill: %w", err)
	}
	return skill, nil
}
