package repository

import (
	"context"
	"fmt"
	"time"

	"casino-bot/internal/model"
	"casino-bot/internal/pkg/db"
)

// BigWinRepository logs wins above the configured floor.
type BigWinRepository struct {
	q db.Querier
}

// NewBigWinRepository creates a new BigWinRepository instance.
func NewBigWinRepository(q db.Querier) *BigWinRepository {
	return &BigWinRepository{q: q}
}

// Record appends a big win. A zero CreatedAt means now.
func (r *BigWinRepository) Record(ctx context.Context, w model.BigWin) error {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	const query = `
		INSERT INTO big_wins (owner_id, game_kind, amount, jackpot, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.q.Exec(ctx, query, w.OwnerID, w.GameKind, w.Amount, w.Jackpot, w.CreatedAt); err != nil {
		return fmt.Errorf("failed to record big win: %w", err)
	}
	return nil
}

// CountSince counts the owner's big wins above floor since the given time.
func (r *BigWinRepository) CountSince(ctx context.Context, ownerID int64, since time.Time, floor int64) (int, error) {
	const query = `SELECT COUNT(*) FROM big_wins WHERE owner_id = $1 AND created_at >= $2 AND amount > $3`

	var n int
	if err := r.q.QueryRow(ctx, query, ownerID, since, floor).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count big wins: %w", err)
	}
	return n, nil
}
