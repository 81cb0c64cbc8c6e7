// internal/service/negotiator_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"skillswap-ledger/internal/domain"
	"skillswap-ledger/internal/repository"
	"skillswap-ledger/internal/util"
	"skillswap-ledger/pkg/db"
)

// SendRequestInput carries the caller-supplied fields of a new session request.
type SendRequestInput struct {
	ReceiverID  int64
	SkillID     *int64
	SessionName string
	Description *string
	Mode        string
	StartDate   time.Time
	EndDate     time.Time
}

// SendRequestResult is returned on a successful send.
type SendRequestResult struct {
	RequestID       int64 `json:"request_id"`
	CreditsDeducted int64 `json:"credits_deducted"`
}

// AcceptRequestResult is returned on a successful accept.
type AcceptRequestResult struct {
	SessionID       int64 `json:"session_id"`
	CreditsReceived int64 `json:"credits_received"`
	CreditsReserved int64 `json:"credits_reserved"`
}

// CancelRequestResult is returned on a successful sender-side cancel.
type CancelRequestResult struct {
	CreditsRefunded int64 `json:"credits_refunded"`
}

// NegotiatorService is the state machine for unconfirmed, fee-bearing session
// requests: (none) → PENDING → {accepted, declined, cancelled} → deleted.
// Every operation is one database transaction; the request row is locked
// before mutation so concurrent resolvers serialize and the loser observes
// NotFound, never a partial write.
type NegotiatorService interface {
	SendRequest(ctx context.Context, senderID int64, input SendRequestInput) (*SendRequestResult, error)
	AcceptRequest(ctx context.Context, callerID, requestID int64) (*AcceptRequestResult, error)
	DeclineRequest(ctx context.Context, callerID, requestID int64) error
	CancelRequest(ctx context.Context, callerID, requestID int64) (*CancelRequestResult, error)
}

// negotiatorService implements the NegotiatorService interface.
type negotiatorService struct {
	dbBeginner        db.DBTxBeginner
	dbExecutor        repository.DBExecutor
	walletRepo        repository.WalletRepository
	transactionRepo   repository.TransactionRepository
	requestRepo       repository.SessionRequestRepository
	sessionRepo       repository.SessionRepository
	connectionRepo    repository.ConnectionRepository
	skillRepo         repository.SkillRepository
	beginTx           db.BeginTxFunc
	commitTx          db.CommitTxFunc
	rollbackTx        db.RollbackTxFunc
	allowSkillFallback bool
}

// NewNegotiatorService creates a new instance of NegotiatorService.
// allowSkillFallback controls whether accepting a request without an explicit
// skill falls back to any skill owned by the receiver, or fails outright.
func NewNegotiatorService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	requestRepo repository.SessionRequestRepository,
	sessionRepo repository.SessionRepository,
	connectionRepo repository.ConnectionRepository,
	skillRepo repository.SkillRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	allowSkillFallback bool,
) NegotiatorService {
	return &negotiatorService{
		dbBeginner:         dbBeginner,
		dbExecutor:         dbExecutor,
		walletRepo:         walletRepo,
		transactionRepo:    transactionRepo,
		requestRepo:        requestRepo,
		sessionRepo:        sessionRepo,
		connectionRepo:     connectionRepo,
		skillRepo:          skillRepo,
		beginTx:            beginTx,
		commitTx:           commitTx,
		rollbackTx:         rollbackTx,
		allowSkillFallback: allowSkillFallback,
	}
}

// beginUnitOfWork starts a transaction and returns it as both controller and
// executor. The caller must defer the rollback.
func (s *negotiatorService) beginUnitOfWork(ctx context.Context) (db.TxController, repository.DBExecutor, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		s.rollbackTx(txController)
		return nil, nil, fmt.Errorf("transaction controller does not implement DBExecutor")
	}
	return txController, txExecutor, nil
}

// SendRequest reserves the request fee from the sender and creates a pending
// session request towards a connected receiver.
func (s *negotiatorService) SendRequest(ctx context.Context, senderID int64, input SendRequestInput) (*SendRequestResult, error) {
	if senderID == input.ReceiverID {
		return nil, util.ErrSelfRequest
	}
	if input.SessionName == "" || input.Mode == "" {
		return nil, util.ErrInvalidInput
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, util.ErrInvalidInput
	}

	txController, tx, err := s.beginUnitOfWork(ctx)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer s.rollbackTx(txController)

	if _, err := s.connectionRepo.GetActiveBetween(ctx, tx, senderID, input.ReceiverID); err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrNoConnection
		}
		return nil, fmt.Errorf("send request: failed to check connection: %w", err)
	}

	exists, err := s.requestRepo.PendingExistsBetween(ctx, tx, senderID, input.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("send request: failed to check pending requests: %w", err)
	}
	if exists {
		return nil, util.ErrConflict
	}

	senderWallet, err := s.walletRepo.GetWalletByUserID(ctx, tx, senderID)
	if err != nil {
		return nil, fmt.Errorf("send request: failed to get sender wallet: %w", err)
	}

	// Guarded move: fails with ErrInsufficientFunds before anything else is
	// written, leaving the transaction empty.
	if err := s.walletRepo.Reserve(ctx, tx, senderID, domain.RequestFee); err != nil {
		if util.IsError(err, util.ErrInsufficientFunds) {
			return nil, util.ErrInsufficientFunds
		}
		return nil, fmt.Errorf("send request: failed to reserve fee: %w", err)
	}

	request := domain.NewSessionRequest(senderID, input.ReceiverID, input.SkillID, input.SessionName, input.Description, input.Mode, input.StartDate, input.EndDate)
	if err := s.requestRepo.CreateRequest(ctx, tx, request); err != nil {
		return nil, fmt.Errorf("send request: failed to create request: %w", err)
	}

	feeEntry := domain.NewTransaction(senderWallet.ID, -domain.RequestFee, domain.TransactionTypeRequestSent, domain.TransactionStatusPending, &input.ReceiverID)
	feeEntry.SessionRequestID = &request.ID
	if err := s.transactionRepo.CreateTransaction(ctx, tx, feeEntry); err != nil {
		return nil, fmt.Errorf("send request: failed to create fee transaction: %w", err)
	}

	// Informational only; the receiver sees credits on the way.
	if err := s.walletRepo.AddIncoming(ctx, tx, input.ReceiverID, domain.RequestFee); err != nil {
		return nil, fmt.Errorf("send request: failed to update receiver incoming balance: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("send request: failed to commit transaction: %w", err)
	}

	return &SendRequestResult{RequestID: request.ID, CreditsDeducted: domain.RequestFee}, nil
}

// AcceptRequest settles the fee to the receiver, escrows the session credits
// from the sender and converts the request into an ACTIVE session.
func (s *negotiatorService) AcceptRequest(ctx context.Context, callerID, requestID int64) (*AcceptRequestResult, error) {
	txController, tx, err := s.beginUnitOfWork(ctx)
	if err != nil {
		return nil, fmt.Errorf("accept request: %w", err)
	}
	defer s.rollbackTx(txController)

	request, err := s.requestRepo.GetByIDForUpdate(ctx, tx, requestID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			// Already resolved by a concurrent accept/decline/cancel.
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("accept request: failed to get request %d: %w", requestID, err)
	}
	if request.ReceiverID != callerID {
		return nil, util.ErrForbidden
	}

	connection, err := s.connectionRepo.GetActiveBetween(ctx, tx, request.SenderID, request.ReceiverID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrNoConnection
		}
		return nil, fmt.Errorf("accept request: failed to check connection: %w", err)
	}

	skillID, err := s.resolveSkill(ctx, tx, request)
	if err != nil {
		return nil, err
	}

	senderWallet, err := s.walletRepo.GetWalletByUserID(ctx, tx, request.SenderID)
	if err != nil {
		return nil, fmt.Errorf("accept request: failed to get sender wallet: %w", err)
	}
	receiverWallet, err := s.walletRepo.GetWalletByUserID(ctx, tx, request.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("accept request: failed to get receiver wallet: %w", err)
	}

	// Escrow the session credits first: the guard rejects an underfunded
	// sender before any balance has moved.
	if err := s.walletRepo.Reserve(ctx, tx, request.SenderID, domain.SessionEscrow); err != nil {
		if util.IsError(err, util.ErrInsufficientFunds) {
			return nil, util.ErrInsufficientFunds
		}
		return nil, fmt.Errorf("accept request: failed to reserve session escrow: %w", err)
	}

	// Fee leaves the sender's escrow and lands in the receiver's available.
	if err := s.walletRepo.Settle(ctx, tx, request.SenderID, request.CreditsHeld); err != nil {
		return nil, fmt.Errorf("accept request: failed to settle fee: %w", err)
	}
	if err := s.walletRepo.Credit(ctx, tx, request.ReceiverID, request.CreditsHeld); err != nil {
		return nil, fmt.Errorf("accept request: failed to credit receiver: %w", err)
	}
	if err := s.walletRepo.AddIncoming(ctx, tx, request.ReceiverID, -request.CreditsHeld); err != nil {
		return nil, fmt.Errorf("accept request: failed to update receiver incoming balance: %w", err)
	}

	session := domain.NewSession(request, skillID, connection.ID)
	if err := s.sessionRepo.CreateSession(ctx, tx, session); err != nil {
		return nil, fmt.Errorf("accept request: failed to create session: %w", err)
	}

	feeEntry, err := s.transactionRepo.GetPendingByRequestID(ctx, tx, request.ID)
	if err != nil {
		return nil, fmt.Errorf("accept request: failed to find fee transaction for request %d: %w", request.ID, err)
	}
	if err := s.transactionRepo.UpdateStatus(ctx, tx, feeEntry.ID, domain.TransactionStatusPending, domain.TransactionStatusCompleted); err != nil {
		return nil, fmt.Errorf("accept request: failed to complete fee transaction: %w", err)
	}

	receivedEntry := domain.NewTransaction(receiverWallet.ID, request.CreditsHeld, domain.TransactionTypeRequestReceived, domain.TransactionStatusCompleted, &request.SenderID)
	receivedEntry.SessionRequestID = &request.ID
	if err := s.transactionRepo.CreateTransaction(ctx, tx, receivedEntry); err != nil {
		return nil, fmt.Errorf("accept request: failed to create receiver transaction: %w", err)
	}

	escrowEntry := domain.NewTransaction(senderWallet.ID, -domain.SessionEscrow, domain.TransactionTypeSessionReserved, domain.TransactionStatusPending, &request.ReceiverID)
	escrowEntry.SessionID = &session.ID
	if err := s.transactionRepo.CreateTransaction(ctx, tx, escrowEntry); err != nil {
		return nil, fmt.Errorf("accept request: failed to create escrow transaction: %w", err)
	}

	if err := s.requestRepo.Delete(ctx, tx, request.ID); err != nil {
		return nil, fmt.Errorf("accept request: failed to delete request %d: %w", request.ID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("accept request: failed to commit transaction: %w", err)
	}

	return &AcceptRequestResult{
		SessionID:       session.ID,
		CreditsReceived: request.CreditsHeld,
		CreditsReserved: domain.SessionEscrow,
	}, nil
}

// resolveSkill anchors the new session to a skill. An explicit skill on the
// request wins when the receiver owns it; otherwise the documented fallback
// picks any skill of the receiver, if the policy allows it.
func (s *negotiatorService) resolveSkill(ctx context.Context, tx repository.DBExecutor, request *domain.SessionRequest) (int64, error) {
	if request.SkillID != nil {
		skill, err := s.skillRepo.GetByID(ctx, tx, *request.SkillID)
		if err == nil && skill.OwnerID == request.ReceiverID {
			return skill.ID, nil
		}
		if err != nil && !util.IsError(err, util.ErrNotFound) {
			return 0, fmt.Errorf("accept request: failed to get skill %d: %w", *request.SkillID, err)
		}
	}
	if !s.allowSkillFallback {
		return 0, util.ErrNoSkillAvailable
	}
	skill, err := s.skillRepo.GetFirstOwnedBy(ctx, tx, request.ReceiverID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return 0, util.ErrNoSkillAvailable
		}
		return 0, fmt.Errorf("accept request: failed to find fallback skill: %w", err)
	}
	return skill.ID, nil
}

// DeclineRequest releases the fee back to the sender and deletes the request.
func (s *negotiatorService) DeclineRequest(ctx context.Context, callerID, requestID int64) error {
	_, err := s.resolveWithRefund(ctx, callerID, requestID, roleReceiver, domain.TransactionTypeRequestRefunded)
	return err
}

// CancelRequest lets the sender withdraw a pending request, refunding the fee.
func (s *negotiatorService) CancelRequest(ctx context.Context, callerID, requestID int64) (*CancelRequestResult, error) {
	refunded, err := s.resolveWithRefund(ctx, callerID, requestID, roleSender, domain.TransactionTypeRequestCancelled)
	if err != nil {
		return nil, err
	}
	return &CancelRequestResult{CreditsRefunded: refunded}, nil
}

type requestRole int

const (
	roleSender requestRole = iota
	roleReceiver
)

// resolveWithRefund is the shared decline/cancel path: both release the held
// fee to the sender, flip the fee entry to REFUNDED, append a refund entry
// and delete the request, differing only in who may call and the entry type.
func (s *negotiatorService) resolveWithRefund(ctx context.Context, callerID, requestID int64, role requestRole, refundType domain.TransactionType) (int64, error) {
	txController, tx, err := s.beginUnitOfWork(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve request: %w", err)
	}
	defer s.rollbackTx(txController)

	request, err := s.requestRepo.GetByIDForUpdate(ctx, tx, requestID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return 0, util.ErrNotFound
		}
		return 0, fmt.Errorf("resolve request: failed to get request %d: %w", requestID, err)
	}
	allowed := request.SenderID
	if role == roleReceiver {
		allowed = request.ReceiverID
	}
	if callerID != allowed {
		return 0, util.ErrForbidden
	}

	if err := s.walletRepo.Release(ctx, tx, request.SenderID, request.CreditsHeld); err != nil {
		return 0, fmt.Errorf("resolve request: failed to release fee: %w", err)
	}
	if err := s.walletRepo.AddIncoming(ctx, tx, request.ReceiverID, -request.CreditsHeld); err != nil {
		return 0, fmt.Errorf("resolve request: failed to update receiver incoming balance: %w", err)
	}

	feeEntry, err := s.transactionRepo.GetPendingByRequestID(ctx, tx, request.ID)
	if err != nil {
		return 0, fmt.Errorf("resolve request: failed to find fee transaction for request %d: %w", request.ID, err)
	}
	if err := s.transactionRepo.UpdateStatus(ctx, tx, feeEntry.ID, domain.TransactionStatusPending, domain.TransactionStatusRefunded); err != nil {
		return 0, fmt.Errorf("resolve request: failed to refund fee transaction: %w", err)
	}

	refundEntry := domain.NewTransaction(feeEntry.WalletID, request.CreditsHeld, refundType, domain.TransactionStatusCompleted, &request.ReceiverID)
	refundEntry.SessionRequestID = &request.ID
	if err := s.transactionRepo.CreateTransaction(ctx, tx, refundEntry); err != nil {
		return 0, fmt.Errorf("resolve request: failed to create refund transaction: %w", err)
	}

	if err := s.requestRepo.Delete(ctx, tx, request.ID); err != nil {
		return 0, fmt.Errorf("resolve request: failed to delete request %d: %w", request.ID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return 0, fmt.Errorf("resolve request: failed to commit transaction: %w", err)
	}

	return request.CreditsHeld, nil
}
