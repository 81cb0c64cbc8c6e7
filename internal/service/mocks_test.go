// internal/service/mocks_test.go
package service

import (
	"context"
	"database/sql"

	"skillswap-ledger/internal/domain"
	"skillswap-ledger/internal/repository"
	"skillswap-ledger/pkg/db"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockDBBeginner is a mock implementation of db.DBTxBeginner.
type MockDBBeginner struct {
	mock.Mock
}

func (m *MockDBBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	args := m.Called(ctx, opts)
	return &sqlx.Tx{}, args.Error(1)
}

// MockTxController is a mock implementation of db.TxController. It embeds
// MockDBExecutor so the service can use it as the unit-of-work executor.
type MockTxController struct {
	mock.Mock
	MockDBExecutor
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	args := m.Called(ctx, q, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	args := m.Called(ctx, q, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockWalletRepository is a mock implementation of repository.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	args := m.Called(ctx, q, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Reserve(ctx context.Context, q repository.DBExecutor, userID, amount int64) error {
	args := m.Called(ctx, q, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) Release(ctx context.Context, q repository.DBExecutor, userID, amount int64) error {
	args := m.Called(ctx, q, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) Settle(ctx context.Context, q repository.DBExecutor, userID, amount int64) error {
	args := m.Called(ctx, q, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) Credit(ctx context.Context, q repository.DBExecutor, userID, amount int64) error {
	args := m.Called(ctx, q, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) AddIncoming(ctx context.Context, q repository.DBExecutor, userID, amount int64) error {
	args := m.Called(ctx, q, userID, amount)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	args := m.Called(ctx, q, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, q repository.DBExecutor, id int64, from, to domain.TransactionStatus) error {
	args := m.Called(ctx, q, id, from, to)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetPendingByRequestID(ctx context.Context, q repository.DBExecutor, requestID int64) (*domain.Transaction, error) {
	args := m.Called(ctx, q, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetPendingBySessionID(ctx context.Context, q repository.DBExecutor, sessionID int64) (*domain.Transaction, error) {
	args := m.Called(ctx, q, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetTransactionsByWalletID(ctx context.Context, q repository.DBExecutor, walletID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, q, walletID, limit, offset)
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) SettledNetAmountByWalletID(ctx context.Context, q repository.DBExecutor, walletID int64) (int64, error) {
	args := m.Called(ctx, q, walletID)
	return args.Get(0).(int64), args.Error(1)
}

// MockSessionRequestRepository is a mock implementation of repository.SessionRequestRepository.
type MockSessionRequestRepository struct {
	mock.Mock
}

func (m *MockSessionRequestRepository) CreateRequest(ctx context.Context, q repository.DBExecutor, req *domain.SessionRequest) error {
	args := m.Called(ctx, q, req)
	return args.Error(0)
}

func (m *MockSessionRequestRepository) GetByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.SessionRequest, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SessionRequest), args.Error(1)
}

func (m *MockSessionRequestRepository) GetByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.SessionRequest, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SessionRequest), args.Error(1)
}

func (m *MockSessionRequestRepository) PendingExistsBetween(ctx context.Context, q repository.DBExecutor, userA, userB int64) (bool, error) {
	args := m.Called(ctx, q, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRequestRepository) Delete(ctx context.Context, q repository.DBExecutor, id int64) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

// MockSessionRepository is a mock implementation of repository.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) CreateSession(ctx context.Context, q repository.DBExecutor, session *domain.Session) error {
	args := m.Called(ctx, q, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Session, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) GetByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Session, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) SetCancellationFlag(ctx context.Context, q repository.DBExecutor, session *domain.Session) error {
	args := m.Called(ctx, q, session)
	return args.Error(0)
}

func (m *MockSessionRepository) MarkCancelled(ctx context.Context, q repository.DBExecutor, session *domain.Session) error {
	args := m.Called(ctx, q, session)
	return args.Error(0)
}

// MockConnectionRepository is a mock implementation of repository.ConnectionRepository.
type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) CreateConnection(ctx context.Context, q repository.DBExecutor, conn *domain.Connection) error {
	args := m.Called(ctx, q, conn)
	return args.Error(0)
}

func (m *MockConnectionRepository) GetActiveBetween(ctx context.Context, q repository.DBExecutor, userA, userB int64) (*domain.Connection, error) {
	args := m.Called(ctx, q, userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Connection), args.Error(1)
}

// MockSkillRepository is a mock implementation of repository.SkillRepository.
type MockSkillRepository struct {
	mock.Mock
}

func (m *MockSkillRepository) CreateSkill(ctx context.Context, q repository.DBExecutor, skill *domain.Skill) error {
	args := m.Called(ctx, q, skill)
	return args.Error(0)
}

func (m *MockSkillRepository) GetByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Skill, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Skill), args.Error(1)
}

func (m *MockSkillRepository) GetFirstOwnedBy(ctx context.Context, q repository.DBExecutor, ownerID int64) (*domain.Skill, error) {
	args := m.Called(ctx, q, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Skill), args.Error(1)
}

// negotiatorMocks bundles everything a negotiator service test needs.
type negotiatorMocks struct {
	walletRepo   *MockWalletRepository
	txRepo       *MockTransactionRepository
	requestRepo  *MockSessionRequestRepository
	sessionRepo  *MockSessionRepository
	connRepo     *MockConnectionRepository
	skillRepo    *MockSkillRepository
	txController *MockTxController
}

// newNegotiatorService wires a negotiator service against fresh mocks with
// injected transaction lifecycle functions.
func newNegotiatorService(allowSkillFallback bool) (NegotiatorService, *negotiatorMocks) {
	m := &negotiatorMocks{
		walletRepo:   new(MockWalletRepository),
		txRepo:       new(MockTransactionRepository),
		requestRepo:  new(MockSessionRequestRepository),
		sessionRepo:  new(MockSessionRepository),
		connRepo:     new(MockConnectionRepository),
		skillRepo:    new(MockSkillRepository),
		txController: new(MockTxController),
	}
	svc := NewNegotiatorService(
		new(MockDBBeginner),
		new(MockDBExecutor),
		m.walletRepo,
		m.txRepo,
		m.requestRepo,
		m.sessionRepo,
		m.connRepo,
		m.skillRepo,
		func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
			return m.txController, nil
		},
		func(tx db.TxController) error {
			return m.txController.Commit()
		},
		func(tx db.TxController) {
			_ = m.txController.Rollback()
		},
		allowSkillFallback,
	)
	return svc, m
}

// lifecycleMocks bundles everything a lifecycle service test needs.
type lifecycleMocks struct {
	walletRepo   *MockWalletRepository
	txRepo       *MockTransactionRepository
	sessionRepo  *MockSessionRepository
	txController *MockTxController
}

// newLifecycleService wires a lifecycle service against fresh mocks.
func newLifecycleService() (LifecycleService, *lifecycleMocks) {
	m := &lifecycleMocks{
		walletRepo:   new(MockWalletRepository),
		txRepo:       new(MockTransactionRepository),
		sessionRepo:  new(MockSessionRepository),
		txController: new(MockTxController),
	}
	svc := NewLifecycleService(
		new(MockDBBeginner),
		new(MockDBExecutor),
		m.walletRepo,
		m.txRepo,
		m.sessionRepo,
		func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
			return m.txController, nil
		},
		func(tx db.TxController) error {
			return m.txController.Commit()
		},
		func(tx db.TxController) {
			_ = m.txController.Rollback()
		},
	)
	return svc, m
}
