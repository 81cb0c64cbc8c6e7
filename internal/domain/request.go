// internal/domain/request.go
package domain

import "time"

// SessionRequest is an unconfirmed, fee-bearing request for a paid session
// between two connected users. It exists only while pending: accepting,
// declining or cancelling deletes the row, and the Transaction log is the
// sole durable record of the outcome.
type SessionRequest struct {
	ID          int64     `db:"id" json:"id"`
	SenderID    int64     `db:"sender_id" json:"sender_id"`
	ReceiverID  int64     `db:"receiver_id" json:"receiver_id"`
	SkillID     *int64    `db:"skill_id" json:"skill_id"`
	SessionName string    `db:"session_name" json:"session_name"`
	Description *string   `db:"description" json:"description"`
	Mode        string    `db:"mode" json:"mode"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	CreditsHeld int64     `db:"credits_held" json:"credits_held"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// NewSessionRequest creates a pending request holding the fixed fee.
func NewSessionRequest(senderID, receiverID int64, skillID *int64, sessionName string, description *string, mode string, startDate, endDate time.Time) *SessionRequest {
	return &SessionRequest{
		SenderID:    senderID,
		ReceiverID:  receiverID,
		SkillID:     skillID,
		SessionName: sessionName,
		Description: description,
		Mode:        mode,
		StartDate:   startDate,
		EndDate:     endDate,
		CreditsHeld: RequestFee,
		CreatedAt:   time.Now().UTC(),
	}
}
