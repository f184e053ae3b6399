package repository

import (
	"context"
	"fmt"

	"casino-bot/internal/model"
	"casino-bot/internal/pkg/db"
)

// AchievementRepository stores unlocked achievements.
type AchievementRepository struct {
	q db.Querier
}

// NewAchievementRepository creates a new AchievementRepository instance.
func NewAchievementRepository(q db.Querier) *AchievementRepository {
	return &AchievementRepository{q: q}
}

// Grant records the achievement once; repeated grants are no-ops. It
// reports whether this call unlocked it.
func (r *AchievementRepository) Grant(ctx context.Context, ownerID int64, achievementType string) (bool, error) {
	const query = `
		INSERT INTO achievements (owner_id, achievement_type, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (owner_id, achievement_type) DO NOTHING
	`
	tag, err := r.q.Exec(ctx, query, ownerID, achievementType)
	if err != nil {
		return false, fmt.Errorf("failed to grant achievement: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List returns the owner's achievements in unlock order.
func (r *AchievementRepository) List(ctx context.Context, ownerID int64) ([]*model.Achievement, error) {
	const query = `
		SELECT owner_id, achievement_type, created_at
		FROM achievements
		WHERE owner_id = $1
		ORDER BY created_at, achievement_type
	`
	rows, err := r.q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	var out []*model.Achievement
	for rows.Next() {
		var a model.Achievement
		if err := rows.Scan(&a.OwnerID, &a.Type, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievements: %w", err)
	}
	return out, nil
}
