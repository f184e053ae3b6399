package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"casino-bot/internal/model"
	"casino-bot/internal/pkg/db"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionIntegrity = errors.New("more than one session for owner and game kind")
)

// SessionRepository persists multi-turn game sessions, at most one per
// (owner, game kind).
type SessionRepository struct {
	q db.Querier
}

// NewSessionRepository creates a new SessionRepository instance.
func NewSessionRepository(q db.Querier) *SessionRepository {
	return &SessionRepository{q: q}
}

// Load returns the owner's session of kind and row-locks it. Duplicate rows
// are reported as ErrSessionIntegrity and never resolved here.
func (r *SessionRepository) Load(ctx context.Context, ownerID int64, kind string) (*model.GameSession, error) {
	const query = `
		SELECT owner_id, game_kind, state, updated_at
		FROM game_sessions
		WHERE owner_id = $1 AND game_kind = $2
		FOR UPDATE
	`
	sessions, err := r.collect(ctx, query, ownerID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	switch len(sessions) {
	case 0:
		return nil, ErrSessionNotFound
	case 1:
		return sessions[0], nil
	default:
		return nil, fmt.Errorf("%w: owner %d kind %s has %d rows", ErrSessionIntegrity, ownerID, kind, len(sessions))
	}
}

// Save stores state, replacing any previous value for the key.
func (r *SessionRepository) Save(ctx context.Context, ownerID int64, kind string, state *model.SessionState) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("refusing to save session: %w", err)
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	const query = `
		INSERT INTO game_sessions (owner_id, game_kind, state, updated_at)
		VALUES ($1, $2, $3::jsonb, NOW())
		ON CONFLICT (owner_id, game_kind)
		DO UPDATE SET state = EXCLUDED.state, updated_at = NOW()
	`
	if _, err := r.q.Exec(ctx, query, ownerID, kind, string(payload)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear deletes the session and reports whether one existed.
func (r *SessionRepository) Clear(ctx context.Context, ownerID int64, kind string) (bool, error) {
	const query = `DELETE FROM game_sessions WHERE owner_id = $1 AND game_kind = $2`

	tag, err := r.q.Exec(ctx, query, ownerID, kind)
	if err != nil {
		return false, fmt.Errorf("failed to clear session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByOwner returns every open session of the owner.
func (r *SessionRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*model.GameSession, error) {
	const query = `
		SELECT owner_id, game_kind, state, updated_at
		FROM game_sessions
		WHERE owner_id = $1
		ORDER BY game_kind
	`
	sessions, err := r.collect(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Stale lists sessions untouched since before, oldest first. Nothing is
// expired automatically.
func (r *SessionRepository) Stale(ctx context.Context, before time.Time, limit int) ([]*model.GameSession, error) {
	const query = `
		SELECT owner_id, game_kind, state, updated_at
		FROM game_sessions
		WHERE updated_at < $1
		ORDER BY updated_at
		LIMIT $2
	`
	sessions, err := r.collect(ctx, query, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale sessions: %w", err)
	}
	return sessions, nil
}

func (r *SessionRepository) collect(ctx context.Context, query string, args ...any) ([]*model.GameSession, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*model.GameSession
	for rows.Next() {
		var s model.GameSession
		var raw []byte
		if err := rows.Scan(&s.OwnerID, &s.GameKind, &raw, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &s.State); err != nil {
			return nil, fmt.Errorf("corrupt session state for owner %d kind %s: %w", s.OwnerID, s.GameKind, err)
		}
		sessions = append(sessions, &s)
	}
	return sessions, rows.Err()
}
