// internal/domain/user.go
package domain

import "time"

// User represents a platform member referenced by the ledger.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewUser creates a new User instance.
func NewUser(username string) *User {
	now := time.Now().UTC()
	return &User{
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
