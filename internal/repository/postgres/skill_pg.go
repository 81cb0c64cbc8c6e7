// internal/repository/postgres/skill_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"skillswap-ledger/internal/domain"
	"skillswap-ledger/internal/repository"
	"skillswap-ledger/internal/util"

	"github.com/jmoiron/sqlx"
)

// SkillRepository implements repository.SkillRepository for PostgreSQL.
type SkillRepository struct{}

// NewSkillRepository creates a new SkillRepository.
func NewSkillRepository(db *sqlx.DB) repository.SkillRepository {
	return &SkillRepository{}
}

// CreateSkill inserts a skill record using the provided DBExecutor.
func (r *SkillRepository) CreateSkill(ctx context.Context, q repository.DBExecutor, skill *domain.Skill) error {
	query := `INSERT INTO skills (owner_id, name, created_at) VALUES ($1, $2, $3) RETURNING id`
	err := q.QueryRowContext(ctx, query, skill.OwnerID, skill.Name, skill.CreatedAt).Scan(&skill.ID)
	if err != nil {
		return fmt.Errorf("failed to create skill: %w", err)
	}
	return nil
}

// GetByID retrieves a skill by its ID.
func (r *SkillRepository) GetByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Skill, error) {
	var skill domain.Skill
	query := `SELECT id, owner_id, name, created_at FROM skills WHERE id = $1`
	err := q.GetContext(ctx, &skill, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get skill %d: %w", id, err)
	}
	return &skill, nil
}

// GetFirstOwnedBy retrieves any skill owned by a user, oldest first.
func (r *SkillRepository) GetFirstOwnedBy(ctx context.Context, q repository.DBExecutor, ownerID int64) (*domain.Skill, error) {
	var skill domain.Skill
	query := `SELECT id, owner_id, name, created_at FROM skills WHERE owner_id = $1 ORDER BY created_at ASC LIMIT 1`
	err := q.GetContext(ctx, &skill, query, ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get a skill owned by user %d: %w", ownerID, err)
	}
	return &skill, nil
}
