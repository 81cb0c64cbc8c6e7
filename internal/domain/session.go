// internal/domain/session.go
package domain

import "time"

// SessionStatus is the lifecycle state of an active session.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "ACTIVE"
	SessionStatusCancelled SessionStatus = "CANCELLED"
	SessionStatusCompleted SessionStatus = "COMPLETED"
)

// Session is a paid learning session created when a request is accepted.
// The learner funded the escrow; cancellation requires mutual consent and
// refunds SessionCredits to the learner.
type Session struct {
	ID                            int64         `db:"id" json:"id"`
	LearnerID                     int64         `db:"learner_id" json:"learner_id"`
	ProviderID                    int64         `db:"provider_id" json:"provider_id"`
	SkillID                       int64         `db:"skill_id" json:"skill_id"`
	ConnectionID                  int64         `db:"connection_id" json:"connection_id"`
	SessionName                   string        `db:"session_name" json:"session_name"`
	Mode                          string        `db:"mode" json:"mode"`
	StartDate                     time.Time     `db:"start_date" json:"start_date"`
	EndDate                       time.Time     `db:"end_date" json:"end_date"`
	RequestCredits                int64         `db:"request_credits" json:"request_credits"`
	SessionCredits                int64         `db:"session_credits" json:"session_credits"`
	Status                        SessionStatus `db:"status" json:"status"`
	LearnerCancellationRequested  bool          `db:"learner_cancellation_requested" json:"learner_cancellation_requested"`
	ProviderCancellationRequested bool          `db:"provider_cancellation_requested" json:"provider_cancellation_requested"`
	CancelledBy                   *int64        `db:"cancelled_by" json:"cancelled_by"`
	CancelReason                  *string       `db:"cancel_reason" json:"cancel_reason"`
	CancelledAt                   *time.Time    `db:"cancelled_at" json:"cancelled_at"`
	CreatedAt                     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt                     time.Time     `db:"updated_at" json:"updated_at"`
}

// NewSession creates an ACTIVE session from an accepted request.
func NewSession(req *SessionRequest, skillID, connectionID int64) *Session {
	now := time.Now().UTC()
	return &Session{
		LearnerID:      req.SenderID,
		ProviderID:     req.ReceiverID,
		SkillID:        skillID,
		ConnectionID:   connectionID,
		SessionName:    req.SessionName,
		Mode:           req.Mode,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		RequestCredits: req.CreditsHeld,
		SessionCredits: SessionEscrow,
		Status:         SessionStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsParticipant reports whether userID is the learner or the provider.
func (s *Session) IsParticipant(userID int64) bool {
	return userID == s.LearnerID || userID == s.ProviderID
}

// HasRequestedCancellation reports whether userID already asked to cancel.
func (s *Session) HasRequestedCancellation(userID int64) bool {
	if userID == s.LearnerID {
		return s.LearnerCancellationRequested
	}
	if userID == s.ProviderID {
		return s.ProviderCancellationRequested
	}
	return false
}
