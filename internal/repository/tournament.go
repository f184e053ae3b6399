package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"casino-bot/internal/model"
	"casino-bot/internal/pkg/db"
)

var (
	ErrNoActiveTournament = errors.New("no active tournament")
	ErrTournamentActive   = errors.New("a tournament is already running")
)

// TournamentRepository stores tournaments and their typed score table.
type TournamentRepository struct {
	q db.Querier
}

// NewTournamentRepository creates a new TournamentRepository instance.
func NewTournamentRepository(q db.Querier) *TournamentRepository {
	return &TournamentRepository{q: q}
}

// Active returns the running tournament.
func (r *TournamentRepository) Active(ctx context.Context) (*model.Tournament, error) {
	const query = `SELECT id, started_at, ended_at, winner_id FROM tournaments WHERE ended_at IS NULL`

	var t model.Tournament
	err := r.q.QueryRow(ctx, query).Scan(&t.ID, &t.StartedAt, &t.EndedAt, &t.WinnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoActiveTournament
		}
		return nil, fmt.Errorf("failed to get active tournament: %w", err)
	}
	return &t, nil
}

// Start opens a new tournament. A partial unique index allows only one
// running tournament.
func (r *TournamentRepository) Start(ctx context.Context) (*model.Tournament, error) {
	const query = `
		INSERT INTO tournaments (started_at) VALUES (NOW())
		RETURNING id, started_at, ended_at, winner_id
	`
	var t model.Tournament
	err := r.q.QueryRow(ctx, query).Scan(&t.ID, &t.StartedAt, &t.EndedAt, &t.WinnerID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrTournamentActive
		}
		return nil, fmt.Errorf("failed to start tournament: %w", err)
	}
	return &t, nil
}

// End closes the tournament with an optional winner.
func (r *TournamentRepository) End(ctx context.Context, id int64, winnerID *int64) error {
	const query = `UPDATE tournaments SET ended_at = NOW(), winner_id = $2 WHERE id = $1 AND ended_at IS NULL`

	tag, err := r.q.Exec(ctx, query, id, winnerID)
	if err != nil {
		return fmt.Errorf("failed to end tournament: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoActiveTournament
	}
	return nil
}

// AddPoints adds points to the owner's score in the tournament.
func (r *TournamentRepository) AddPoints(ctx context.Context, tournamentID, ownerID, points int64) error {
	const query = `
		INSERT INTO tournament_scores (tournament_id, owner_id, points)
		VALUES ($1, $2, $3)
		ON CONFLICT (tournament_id, owner_id)
		DO UPDATE SET points = tournament_scores.points + EXCLUDED.points
	`
	if _, err := r.q.Exec(ctx, query, tournamentID, ownerID, points); err != nil {
		return fmt.Errorf("failed to add tournament points: %w", err)
	}
	return nil
}

// Standings returns the tournament's scores, best first. Ties go to the
// lower owner id so the leader is deterministic.
func (r *TournamentRepository) Standings(ctx context.Context, tournamentID int64, limit int) ([]*model.TournamentScore, error) {
	const query = `
		SELECT s.tournament_id, s.owner_id, a.username, s.points
		FROM tournament_scores s
		JOIN accounts a ON a.owner_id = s.owner_id
		WHERE s.tournament_id = $1
		ORDER BY s.points DESC, s.owner_id
		LIMIT $2
	`
	rows, err := r.q.Query(ctx, query, tournamentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get standings: %w", err)
	}
	defer rows.Close()

	var out []*model.TournamentScore
	for rows.Next() {
		var s model.TournamentScore
		if err := rows.Scan(&s.TournamentID, &s.OwnerID, &s.Username, &s.Points); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating standings: %w", err)
	}
	return out, nil
}
