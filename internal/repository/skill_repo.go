// internal/repository/skill_repo.go
package repository

import (
	"context"

	"skillswap-ledger/internal/domain"
)

// SkillRepository reads the skill catalogue consumed to anchor sessions.
type SkillRepository interface {
	// CreateSkill inserts a skill record.
	CreateSkill(ctx context.Context, q DBExecutor, skill *domain.Skill) error
	// GetByID retrieves a skill by its ID.
	GetByID(ctx context.Context, q DBExecutor, id int64) (*domain.Skill, error)
	// GetFirstOwnedBy retrieves any skill owned by a user, used as the
	// documented fallback when a request carries no explicit skill.
	GetFirstOwnedBy(ctx context.Context, q DBExecutor, ownerID int64) (*domain.Skill, error)
}
