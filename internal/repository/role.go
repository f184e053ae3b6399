package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"casino-bot/internal/model"
	"casino-bot/internal/pkg/db"
)

// RoleRepository stores assigned roles. Owners without a row are users.
type RoleRepository struct {
	q db.Querier
}

// NewRoleRepository creates a new RoleRepository instance.
func NewRoleRepository(q db.Querier) *RoleRepository {
	return &RoleRepository{q: q}
}

// Get returns the owner's stored role.
func (r *RoleRepository) Get(ctx context.Context, ownerID int64) (model.Role, error) {
	var name string
	err := r.q.QueryRow(ctx, `SELECT role FROM user_roles WHERE owner_id = $1`, ownerID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RoleUser, nil
		}
		return model.RoleUser, fmt.Errorf("failed to get role: %w", err)
	}
	role, err := model.ParseRole(name)
	if err != nil {
		return model.RoleUser, fmt.Errorf("stored role of %d: %w", ownerID, err)
	}
	return role, nil
}

// Set assigns a role; assigning RoleUser removes the row.
func (r *RoleRepository) Set(ctx context.Context, ownerID int64, role model.Role) error {
	if role == model.RoleUser {
		if _, err := r.q.Exec(ctx, `DELETE FROM user_roles WHERE owner_id = $1`, ownerID); err != nil {
			return fmt.Errorf("failed to clear role: %w", err)
		}
		return nil
	}
	const query = `
		INSERT INTO user_roles (owner_id, role, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (owner_id) DO UPDATE SET role = EXCLUDED.role, updated_at = NOW()
	`
	if _, err := r.q.Exec(ctx, query, ownerID, role.String()); err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	return nil
}
