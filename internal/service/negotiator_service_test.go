// internal/service/negotiator_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"skillswap-ledger/internal/domain"
	"skillswap-ledger/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validSendInput() SendRequestInput {
	start := time.Now().UTC().Add(24 * time.Hour)
	return SendRequestInput{
		ReceiverID:  2,
		SessionName: "Intro to Woodworking",
		Mode:        "ONLINE",
		StartDate:   start,
		EndDate:     start.Add(time.Hour),
	}
}

func TestSendRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("successful send reserves fee and records pending entry", func(t *testing.T) {
		svc, m := newNegotiatorService(true)
		m.txController.On("Rollback").Return(nil)
		m.txController.On("Commit").Return(nil)

		m.connRepo.On("GetActiveBetween", ctx, mock.Anything, int64(1), int64(2)).Return(&domain.Connection{ID: 9}, nil)
		m.requestRepo.On("PendingExistsBetween", ctx, mock.Anything, int64(1), int64(2)).Return(false, nil)
		m.walletRepo.On("GetWalletByUserID", ctx, mock.Anything, int64(1)).Return(&domain.Wallet{ID: 11, UserID: 1, AvailableBalance: 10}, nil)
		m.walletRepo.On("Reserve", ctx, mock.Anything, int64(1), domain.RequestFee).Return(nil)
		m.requestRepo.On("CreateRequest", ctx, mock.Anything, mock.AnythingOfType("*domain.SessionRequest")).
			Run(func(args mock.Arguments) {
				args.Get(2).(*domain.SessionRequest).ID = 42
			}).Return(nil)
		m.txRepo.On("CreateTransaction", ctx, mock.Anything, mock.MatchedBy(func(tr *domain.Transaction) bool {
			return tr.WalletID == 11 &&
				tr.Amount == -domain.RequestFee &&
				tr.Type == domain.TransactionTypeRequestSent &&
				tr.Status == domain.TransactionStatusPending &&
				tr.SessionRequestID != nil && *tr.SessionRequestID == 42
		})).Return(nil)
		m.walletRepo.On("AddIncoming", ctx, mock.Anything, int64(2), domain.RequestFee).Return(nil)

		result, err := svc.SendRequest(ctx, 1, validSendInput())

		require.NoError(t, err)
		assert.Equal(t, int64(42), result.RequestID)
		assert.Equal(t, domain.RequestFee, result.CreditsDeducted)
		m.walletRepo.AssertExpectations(t)
		m.requestRepo.AssertExpectations(t)
		m.txRepo.AssertExpectations(t)
		m.txController.AssertExpectations(t)
	})

	t.Run("rejects request to self", func(t *testing.T) {
		svc, m := newNegotiatorService(true)

		input := validSendInput()
		input.ReceiverID = 1
		result, err := svc.SendRequest(ctx, 1, input)

		require.ErrorIs(t, err, util.ErrSelfRequest)
		assert.Nil(t, result)
		m.walletRepo.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects end date before start date", func(t *testing.T) {
		svc, _ := newNegotiatorService(true)

		input := validSendInput()
		input.EndDate = input.StartDate.Add(-time.Hour)
		_, err := svc.SendRequest(ctx, 1, input)

		require.ErrorIs(t, err, util.ErrInvalidInput)
	})

	t.Run("rejects sender without active connection", func(t *testing.T) {
		svc, m := newNegotiatorService(true)
		m.txController.On("Rollback").Return(nil)

		m.connRepo.On("GetActiveBetween", ctx, mock.Anything, int64(1), int64(2)).Return(nil, util.ErrNotFound)

		_, err := svc.SendRequest(ctx, 1, validSendInput())

		require.ErrorIs(t, err, util.ErrNoConnection)
		m.walletRepo.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.txController.AssertNotCalled(t, "Commit")
	})

	t.Run("rejects duplicate pending request for the pair", func(t *testing.T) {
		svc, m := newNegotiatorService(true)
		m.txController.On("Rollback").Return(nil)

		m.connRepo.On("GetActiveBetween", ctx, mock.Anything, int64(1), int64(2)).Return(&domain.Connection{ID: 9}, nil)
		m.requestRepo.On("PendingExistsBetween", ctx, mock.Anything, int64(1), int64(2)).Return(true, nil)

		_, err := svc.SendRequest(ctx, 1, validSendInput())

		require.ErrorIs(t, err, util.ErrConflict)
		m.requestRepo.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("insufficient funds aborts before any write", func(t *testing.T) {
		svc, m := newNegotiatorService(true)
		m.txController.On("Rollback").Return(nil)

		m.connRepo.On("GetActiveBetween", ctx, mock.Anything, int64(1), int64(2)).Return(&domain.Connection{ID: 9}, nil)
		m.requestRepo.On("PendingExistsBetween", ctx, mock.Anything, int64(1), int64(2)).Return(false, nil)
		m.walletRepo.On("GetWalletByUserID", ctx, mock.Anything, int64(1)).Return(&domain.Wallet{ID: 11, UserID: 1, AvailableBalance: 3}, nil)
		m.walletRepo.On("Reserve", ctx, mock.Anything, int64(1), domain.RequestFee).Return(util.ErrInsufficientFunds)

		result, err := svc.SendRequest(ctx, 1, validSendInput())

		require.ErrorIs(t, err, util.ErrInsufficientFunds)
		assert.Nil(t, result)
		m.requestRepo.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything, mock.Anything)
		m.txRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
		m.txController.AssertNotCalled(t, "Commit")
	})
}

func TestAcceptRequest(t *testing.T) {
	ctx := context.Background()
	skillID := int64(3)

	pendingRequest := func() *domain.SessionRequest {
		start := time.Now().UTC().Add(24 * time.Hour)
		return &domain.SessionRequest{
			ID:          7,
			SenderID:    1,
			ReceiverID:  2,
			SkillID:     &skillID,
			SessionName: "Intro to Woodworking",
			Mode:        "ONLINE",
			StartDate:   start,
			EndDate:     start.Add(time.Hour),
			CreditsHeld: domain.RequestFee,
		}
	}

	t.Run("successful accept settles fee and escrows session credits", func(t *testing.T) {
		svc, m := newNegotiatorService(true)
		m.txController.On("Rollback").Return(nil)
		m.txController.On("Commit").Return(nil)

		m.requestRepo.On("GetByIDForUpdate", ctx, mock.Anything, int64(7)).Return(pendingRequest(), nil)
		m.connRepo.On("GetActiveBetween", ctx, mock.Anything, int64(1), int64(2)).Return(&domain.Connection{ID: 9}, nil)
		m.skillRepo.On("GetByID", ctx, mock.Anything, skillID).Return(&domain.Skill{ID: skillID, OwnerID: 2}, nil)
		m.walletRepo.On("GetWalletByUserID", ctx, mock.Anything, int64(1)).Return(&domain.Wallet{ID: 11, UserID: 1}, nil)
		m.walletRepo.On("GetWalletByUserID", ctx, mock.Anything, int64(2)).Return(&domain.Wallet{ID: 22, UserID: 2}, nil)
		m.walletRepo.On("Reserve", ctx, mock.Anything, int64(1), domain.SessionEscrow).Return(nil)
		m.walletRepo.On("Settle", ctx, mock.Anything, int64(1), domain.RequestFee).Return(nil)
		m.walletRepo.On("Credit", ctx, mock.Anything, int64(2), domain.RequestFee).Return(nil)
		m.walletRepo.On("AddIncoming", ctx, mock.Anything, int64(2), -domain.RequestFee).Return(nil)
		m.sessionRepo.On("CreateSession", ctx, mock.Anything, mock.AnythingOfType("*domain.Session")).
			Run(func(args mock.Arguments) {
				args.Get(2).(*domain.Session).ID = 77
			}).Return(nil)
		m.txRepo.On("GetPendingByRequestID", ctx, mock.Anything, int64(7)).Return(&domain.Transaction{ID: 101, WalletID: 11}, nil)
		m.txRepo.On("UpdateStatus", ctx, mock.Anything, int64(101), domain.TransactionStatusPending, domain.TransactionStatusCompleted).Return(nil)
		m.txRepo.On("CreateTransaction", ctx, mock.Anything, mock.MatchedBy(func(tr *domain.Transaction) bool {
			return tr.WalletID == 22 &&
				tr.Amount == domain.RequestFee &&
				tr.Type == domain.TransactionTypeRequestReceived &&
				tr.Status == domain.TransactionStatusCompleted
		})).Return(nil)
		m.txRepo.On("CreateTransaction", ctx, mock.Anything, mock.MatchedBy(func(tr *domain.Transaction) bool {
			return tr.WalletID == 11 &&
				tr.Amount == -domain.SessionEscrow &&
				tr.Type == domain.TransactionTypeSessionReserved &&
				tr.Status == domain.TransactionStatusPending &&
				tr.SessionID != nil && *tr.SessionID == 77
		})).Return(nil)
		m.requestRepo.On("Delete", ctx, mock.Anything, int64(7)).Return(nil)

		result, err := svc.AcceptRequest(ctx, 2, 7)

		require.NoError(t, err)
		assert.Equal(t, int64(77), result.SessionID)
		assert.Equal(t, domain.RequestFee, result.CreditsReceived)
		assert.Equal(t, domain.SessionEscrow, result.CreditsReserved)
		m.walletRepo.AssertExpectations(t)
		m.txRepo.AssertExpectations(t)
		m.sessionRepo.AssertExpectations(t)
		m.requestRepo.AssertExpectations(t)
		m.txController.AssertExpectations(t)
	})

	t.Run("only the receiver may accept", func(t *testing.T) {
		svc, m := newNegotiatorService(true)
		m.txController.On("Rollback").Return(nil)

		m.requestRepo.On("GetByIDForUpdate", ctx, mock.Anything, int64(7)).Return(pendingRequest(), nil)

		_, err := svc.AcceptRequest(ctx, 1, 7)

		require.ErrorIs(t, err, util.ErrForbidden)
		m.walletRepo.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("resolved request yields not found", func(t *testing.T) {
		svc, m := newNegotiatorService(true)
		m.txController.On("Rollback").Return(nil)

		m.requestRepo.On("GetByIDForUpdate", ctx, mock.Anything, int64(7)).Return(nil, util.ErrNotFound)

		_, err := svc.AcceptRequest(ctx, 2, 7)

		require.ErrorIs(t, err, util.ErrNotFound)
	})

	t.Run("no skill and fallback disabled fails", func(t *testing.T) {
		svc, m := newNegotiatorService(false)
		m.txController.On("Rollback").Return(nil)

		request := pendingRequest()
		request.SkillID = nil
		m.requestRepo.On("GetByIDForUpdate", ctx, mock.Anything, int64(7)).Return(request, nil)
		m.connRepo.On("GetActiveBetween", ctx, mock.Anything, int64(1), int64(2)).Return(&domain.Connection{ID: 9}, nil)

		_, err := svc.AcceptRequest(ctx, 2, 7)

		require.ErrorIs(t, err, util.ErrNoSkillAvailable)
		m.skillRepo.AssertNotCalled(t, "GetFirstOwnedBy", mock.Anything, mock.Anything, mock.Anything)
		m.walletRepo.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("fallback picks any skill of the receiver", func(t *testing.T) {
		svc, m := newNegotiatorService(true)
		m.txController.On("Rollback").Return(nil)
		m.txController.On("Commit").Return(nil)

		request := pendingRequest()
		request.SkillID = nil
		m.requestRepo.On("GetByIDForUpdate", ctx, mock.Anything, int64(7)).Return(request, nil)
		m.connRepo.On("GetActiveBetween", ctx, mock.Anything, int64(1), int64(2)).Return(&domain.Connection{ID: 9}, nil)
		m.skillRepo.On("GetFirstOwnedBy", ctx, mock.Anything, int64(2)).Return(&domain.Skill{ID: 8, OwnerID: 2}, nil)
		m.walletRepo.On("GetWalletByUserID", ctx, mock.Anything, int64(1)).Return(&domain.Wallet{ID: 11, UserID: 1}, nil)
		m.walletRepo.On("GetWalletByUserID", ctx, mock.Anything, int64(2)).Return(&domain.Wallet{ID: 22, UserID: 2}, nil)
		m.walletRepo.On("Reserve", ctx, mock.Anything, int64(1), domain.SessionEscrow).Return(nil)
		m.walletRepo.On("Settle", ctx, mock.Anything, int64(1), domain.RequestFee).Return(nil)
		m.walletRepo.On("Credit", ctx, mock.Anything, int64(2), domain.RequestFee).Return(nil)
		m.walletRepo.On("AddIncoming", ctx, mock.Anything, int64(2), -domain.RequestFee).Return(nil)
		m.sessionRepo.On("CreateSession", ctx, mock.Anything, mock.MatchedBy(func(sess *domain.Session) bool {
			return sess.SkillID == 8
		})).Run(func(args mock.Arguments) {
			args.Get(2).(*domain.Session).ID = 78
		}).Return(nil)
		m.txRepo.On("GetPendingByRequestID", ctx, mock.Anything, int64(7)).Return(&domain.Transaction{ID: 101, WalletID: 11}, nil)
		m.txRepo.On("UpdateStatus", ctx, mock.Anything, int64(101), domain.TransactionStatusPending, domain.TransactionStatusCompleted).Return(nil)
		m.txRepo.On("CreateTransaction", ctx, mock.Anything, mock.AnythingOfType("*domain.Transaction")).Return(nil)
		m.requestRepo.On("Delete", ctx, mock.Anything, int64(7)).Return(nil)

		result, err := svc.AcceptRequest(ctx, 2, 7)

		require.NoError(t, err)
		assert.Equal(t, int64(78), result.SessionID)
		m.sessionRepo.AssertExpectations(t)
	})

	t.Run("underfunded sender cannot be accepted", func(t *testing.T) {
		svc, m := newNegotiatorService(true)
		m.txController.On("Rollback").Return(nil)

		m.requestRepo.On("GetByIDForUpdate", ctx, mock.Anything, int64(7)).Return(pendingRequest(), nil)
		m.connRepo.On("GetActiveBetween", ctx, mock.Anything, int64(1), int64(2)).Return(&domain.Connection{ID: 9}, nil)
		m.skillRepo.On("GetByID", ctx, mock.Anything, skillID).Return(&domain.Skill{ID: skillID, OwnerID: 2}, nil)
		m.walletRepo.On("GetWalletByUserID", ctx, mock.Anything, int64(1)).Return(&domain.Wallet{ID: 11, UserID: 1}, nil)
		m.walletRepo.On("GetWalletByUserID", ctx, mock.Anything, int64(2)).Return(&domain.Wallet{ID: 22, UserID: 2}, nil)
		m.walletRepo.On("Reserve", ctx, mock.Anything, int64(1), domain.SessionEscrow).Return(util.ErrInsufficientFunds)

		_, err := svc.AcceptRequest(ctx, 2, 7)

		require.ErrorIs(t, err, util.ErrInsufficientFunds)
		m.sessionRepo.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything)
		m.txController.AssertNotCalled(t, "Commit")
	})
}

func TestDeclineRequest(t *testing.T) {
	ctx := context.Background()

	pendingRequest := &domain.SessionRequest{ID: 7, SenderID: 1, ReceiverID: 2, CreditsHeld: domain.RequestFee}

	t.Run("decline releases the fee back to the sender", func(t *testing.T) {
		svc, m := newNegotiatorService(true)
		m.txController.On("Rollback").Return(nil)
		m.txController.On("Commit").Return(nil)

		m.requestRepo.On("GetByIDForUpdate", ctx, mock.Anything, int64(7)).Return(pendingRequest, nil)
		m.walletRepo.On("Release", ctx, mock.Anything, int64(1), domain.RequestFee).Return(nil)
		m.walletRepo.On("AddIncoming", ctx, mock.Anything, int64(2), -domain.RequestFee).Return(nil)
		m.txRepo.On("GetPendingByRequestID", ctx, mock.Anything, int64(7)).Return(&domain.Transaction{ID: 55, WalletID: 11}, nil)
		m.txRepo.On("UpdateStatus", ctx, mock.Anything, int64(55), domain.TransactionStatusPending, domain.TransactionStatusRefunded).Return(nil)
		m.txRepo.On("CreateTransaction", ctx, mock.Anything, mock.MatchedBy(func(tr *domain.Transaction) bool {
			return tr.WalletID == 11 &&
				tr.Amount == domain.RequestFee &&
				tr.Type == domain.TransactionTypeRequestRefunded &&
				tr.Status == domain.TransactionStatusCompleted
		})).Return(nil)
		m.requestRepo.On("Delete", ctx, mock.Anything, int64(7)).Return(nil)

		err := svc.DeclineRequest(ctx, 2, 7)

		require.NoError(t, err)
		m.walletRepo.AssertExpectations(t)
		m.txRepo.AssertExpectations(t)
		m.requestRepo.AssertExpectations(t)
	})

	t.Run("sender may not decline their own request", func(t *testing.T) {
		svc, m := newNegotiatorService(true)
		m.txController.On("Rollback").Return(nil)

		m.requestRepo.On("GetByIDForUpdate", ctx, mock.Anything, int64(7)).Return(pendingRequest, nil)

		err := svc.DeclineRequest(ctx, 1, 7)

		require.ErrorIs(t, err, util.ErrForbidden)
		m.walletRepo.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCancelRequest(t *testing.T) {
	ctx := context.Background()

	pendingRequest := &domain.SessionRequest{ID: 7, SenderID: 1, ReceiverID: 2, CreditsHeld: domain.RequestFee}

	t.Run("sender cancels and is refunded", func(t *testing.T) {
		svc, m := newNegotiatorService(true)
		m.txController.On("Rollback").Return(nil)
		m.txController.On("Commit").Return(nil)

		m.requestRepo.On("GetByIDForUpdate", ctx, mock.Anything, int64(7)).Return(pendingRequest, nil)
		m.walletRepo.On("Release", ctx, mock.Anything, int64(1), domain.RequestFee).Return(nil)
		m.walletRepo.On("AddIncoming", ctx, mock.Anything, int64(2), -domain.RequestFee).Return(nil)
		m.txRepo.On("GetPendingByRequestID", ctx, mock.Anything, int64(7)).Return(&domain.Transaction{ID: 55, WalletID: 11}, nil)
		m.txRepo.On("UpdateStatus", ctx, mock.Anything, int64(55), domain.TransactionStatusPending, domain.TransactionStatusRefunded).Return(nil)
		m.txRepo.On("CreateTransaction", ctx, mock.Anything, mock.MatchedBy(func(tr *domain.Transaction) bool {
			return tr.Type == domain.TransactionTypeRequestCancelled &&
				tr.Amount == domain.RequestFee &&
				tr.Status == domain.TransactionStatusCompleted
		})).Return(nil)
		m.requestRepo.On("Delete", ctx, mock.Anything, int64(7)).Return(nil)

		result, err := svc.CancelRequest(ctx, 1, 7)

		require.NoError(t, err)
		assert.Equal(t, domain.RequestFee, result.CreditsRefunded)
		m.txRepo.AssertExpectations(t)
	})

	t.Run("receiver may not cancel for the sender", func(t *testing.T) {
		svc, m := newNegotiatorService(true)
		m.txController.On("Rollback").Return(nil)

		m.requestRepo.On("GetByIDForUpdate", ctx, mock.Anything, int64(7)).Return(pendingRequest, nil)

		_, err := svc.CancelRequest(ctx, 2, 7)

		require.ErrorIs(t, err, util.ErrForbidden)
	})

	t.Run("already resolved request yields not found", func(t *testing.T) {
		svc, m := newNegotiatorService(true)
		m.txController.On("Rollback").Return(nil)

		m.requestRepo.On("GetByIDForUpdate", ctx, mock.Anything, int64(7)).Return(nil, util.ErrNotFound)

		_, err := svc.CancelRequest(ctx, 1, 7)

		require.ErrorIs(t, err, util.ErrNotFound)
		m.requestRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})
}
