package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/catalog_api/internal/models"
)

// UserRepository reads the local replica of identity-service accounts.
type UserRepository struct {
	db Queryer
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db Queryer) *UserRepository {
	return &UserRepository{db: db}
}

// ResolveUser reports whether ownerID names a known user.
func (r *UserRepository) ResolveUser(ctx context.Context, ownerID string) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM users WHERE id = ?`, ownerID)
}

// Upsert inserts or renames a replicated user.
func (r *UserRepository) Upsert(ctx context.Context, u *models.User) error {
	const q = `
        INSERT INTO users (id, username, created_at) VALUES (?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username`
	_, err := exec(ctx, r.db, q, u.ID, u.Username, u.CreatedAt)
	return err
}

// ConditionRepository reads the seeded item conditions.
type ConditionRepository struct {
	db Queryer
}

// NewConditionRepository creates a new ConditionRepository.
func NewConditionRepository(db Queryer) *ConditionRepository {
	return &ConditionRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *ConditionRepository) WithTx(tx *sqlx.Tx) *ConditionRepository {
	return &ConditionRepository{db: tx}
}

// Exists reports whether id is a known condition.
func (r *ConditionRepository) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM conditions WHERE id = ?`, id)
}

// List returns all conditions ordered by id.
func (r *ConditionRepository) List(ctx context.Context) ([]models.Condition, error) {
	var conds []models.Condition
	if err := selectAll(ctx, r.db, &conds, `SELECT id, title FROM conditions ORDER BY id ASC`); err != nil {
		return nil, err
	}
	return conds, nil
}
