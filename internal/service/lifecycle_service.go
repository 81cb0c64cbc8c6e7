// internal/service/lifecycle_service.go
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

// CancelSessionResult reports the outcome of a cancellation request.
// When the session is not yet cancelled, WaitingFor names the party whose
// agreement is still outstanding ("learner" or "provider").
type CancelSessionResult struct {
	SessionCancelled bool   `json:"session_cancelled"`
	CreditsRefunded  int64  `json:"credits_refunded,omitempty"`
	WaitingFor       string `json:"waiting_for,omitempty"`
}

// LifecycleService is the mutual-consent cancellation state machine for
// active sessions: ACTIVE → one flag set → both flags set → CANCELLED.
// There is no deadline; either party can leave the other waiting.
type LifecycleService interface {
	RequestCancel(ctx context.Context, callerID, sessionID int64, reason *string) (*CancelSessionResult, error)
	GetSession(ctx context.Context, callerID, sessionID int64) (*domain.Session, error)
}

// lifecycleService implements the LifecycleService interface.
type lifecycleService struct {
	dbBeginner      db.DBTxBeginner
	dbExecutor      repository.DBExecutor
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	sessionRepo     repository.SessionRepository
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
}

// NewLifecycleService creates a new instance of LifecycleService.
func NewLifecycleService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	sessionRepo repository.SessionRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) LifecycleService {
	return &lifecycleService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		sessionRepo:     sessionRepo,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
	}
}

// RequestCancel records one party's wish to cancel. The first call only sets
// that party's flag; the second call, from the other party, finalizes the
// cancellation and refunds the escrowed session credits to the learner.
func (s *lifecycleService) RequestCancel(ctx context.Context, callerID, sessionID int64, reason *string) (*CancelSessionResult, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("request cancel: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	tx, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("request cancel: transaction controller does not implement DBExecutor")
	}

	session, err := s.sessionRepo.GetByIDForUpdate(ctx, tx, sessionID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("request cancel: failed to get session %d: %w", sessionID, err)
	}
	if session.Status != domain.SessionStatusActive {
		return nil, util.ErrInvalidState
	}
	if !session.IsParticipant(callerID) {
		return nil, util.ErrForbidden
	}
	if session.HasRequestedCancellation(callerID) {
		// Non-fatal no-op signal; the state already reflects the wish.
		return nil, util.ErrAlreadyRequested
	}

	otherAlreadyRequested := session.LearnerCancellationRequested || session.ProviderCancellationRequested
	if !otherAlreadyRequested {
		if callerID == session.LearnerID {
			session.LearnerCancellationRequested = true
		} else {
			session.ProviderCancellationRequested = true
		}
		if reason != nil {
			session.CancelReason = reason
		}
		if err := s.sessionRepo.SetCancellationFlag(ctx, tx, session); err != nil {
			return nil, fmt.Errorf("request cancel: failed to set cancellation flag: %w", err)
		}
		if err := s.commitTx(txController); err != nil {
			return nil, fmt.Errorf("request cancel: failed to commit transaction: %w", err)
		}
		waitingFor := "provider"
		if callerID == session.ProviderID {
			waitingFor = "learner"
		}
		return &CancelSessionResult{SessionCancelled: false, WaitingFor: waitingFor}, nil
	}

	// The other party already asked; this call finalizes the agreement.
	now := time.Now().UTC()
	session.CancelledBy = &callerID
	if reason != nil {
		session.CancelReason = reason
	}
	session.CancelledAt = &now
	if err := s.sessionRepo.MarkCancelled(ctx, tx, session); err != nil {
		return nil, fmt.Errorf("request cancel: failed to mark session cancelled: %w", err)
	}

	// The refund always lands with the learner, who funded the escrow:
	// outgoing loses the escrow, available regains it.
	if err := s.walletRepo.Release(ctx, tx, session.LearnerID, session.SessionCredits); err != nil {
		return nil, fmt.Errorf("request cancel: failed to release escrow to learner: %w", err)
	}

	escrowEntry, err := s.transactionRepo.GetPendingBySessionID(ctx, tx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("request cancel: failed to find escrow transaction for session %d: %w", session.ID, err)
	}
	if err := s.transactionRepo.UpdateStatus(ctx, tx, escrowEntry.ID, domain.TransactionStatusPending, domain.TransactionStatusRefunded); err != nil {
		return nil, fmt.Errorf("request cancel: failed to refund escrow transaction: %w", err)
	}

	refundEntry := domain.NewTransaction(escrowEntry.WalletID, session.SessionCredits, domain.TransactionTypeSessionCancelled, domain.TransactionStatusCompleted, &session.ProviderID)
	refundEntry.SessionID = &session.ID
	refundEntry.Note = session.CancelReason
	if err := s.transactionRepo.CreateTransaction(ctx, tx, refundEntry); err != nil {
		return nil, fmt.Errorf("request cancel: failed to create refund transaction: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("request cancel: failed to commit transaction: %w", err)
	}

	return &CancelSessionResult{SessionCancelled: true, CreditsRefunded: session.SessionCredits}, nil
}

// GetSession returns a session to one of its participants.
func (s *lifecycleService) GetSession(ctx context.Context, callerID, sessionID int64) (*domain.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, s.dbExecutor, sessionID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("get session: failed to get session %d: %w", sessionID, err)
	}
	if !session.IsParticipant(callerID) {
		return nil, util.ErrForbidden
	}
	return session, nil
}
