// internal/domain/skill.go
package domain

import "time"

// Skill anchors a session to something the provider teaches.
type Skill struct {
	ID        int64     `db:"id" json:"id"`
	OwnerID   int64     `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NewSkill creates a Skill owned by a user.
func NewSkill(ownerID int64, name string) *Skill {
	return &Skill{
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}
