package repository

import (
	"context"
	"errors"
	"fmt"

	"casino-bot/internal/model"
	"casino-bot/internal/pkg/db"
)

// ErrNegativePool is returned when a pool would go below zero.
var ErrNegativePool = errors.New("pool would become negative")

// PoolRepository stores shared pools such as the lottery jackpot.
type PoolRepository struct {
	q db.Querier
}

// NewPoolRepository creates a new PoolRepository instance.
func NewPoolRepository(q db.Querier) *PoolRepository {
	return &PoolRepository{q: q}
}

// GetForUpdate returns the pool's amount, creating it at floor on first
// use, and row-locks it for the rest of the transaction.
func (r *PoolRepository) GetForUpdate(ctx context.Context, name string, floor int64) (int64, error) {
	const seed = `
		INSERT INTO pools (name, amount, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, seed, name, floor); err != nil {
		return 0, fmt.Errorf("failed to seed pool: %w", err)
	}

	var amount int64
	if err := r.q.QueryRow(ctx, `SELECT amount FROM pools WHERE name = $1 FOR UPDATE`, name).Scan(&amount); err != nil {
		return 0, fmt.Errorf("failed to lock pool: %w", err)
	}
	return amount, nil
}

// Set stores the pool's new amount.
func (r *PoolRepository) Set(ctx context.Context, name string, amount int64) error {
	if amount < 0 {
		return ErrNegativePool
	}
	const query = `UPDATE pools SET amount = $2, updated_at = NOW() WHERE name = $1`
	tag, err := r.q.Exec(ctx, query, name, amount)
	if err != nil {
		if isCheckViolation(err) {
			return ErrNegativePool
		}
		return fmt.Errorf("failed to update pool: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pool %s does not exist", name)
	}
	return nil
}

// List returns every pool by name.
func (r *PoolRepository) List(ctx context.Context) ([]*model.Pool, error) {
	rows, err := r.q.Query(ctx, `SELECT name, amount, updated_at FROM pools ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}
	defer rows.Close()

	var pools []*model.Pool
	for rows.Next() {
		var p model.Pool
		if err := rows.Scan(&p.Name, &p.Amount, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pool: %w", err)
		}
		pools = append(pools, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pools: %w", err)
	}
	return pools, nil
}
