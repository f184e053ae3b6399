// Package repository provides data access layer implementations. Every
// repository runs against a db.Querier, so the same code serves the pool
// and an open transaction.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"casino-bot/internal/model"
	"casino-bot/internal/pkg/db"
)

// Common errors for repository operations.
var (
	ErrAccountNotFound = errors.New("account not found")
)

const accountColumns = `owner_id, username, balance, games_won, games_lost, games_played,
	total_winnings, total_losses, biggest_win, jackpot_wins, poker_wins,
	tournament_points, tournament_wins, last_daily_claim, created_at, updated_at`

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(
		&a.OwnerID,
		&a.Username,
		&a.Balance,
		&a.GamesWon,
		&a.GamesLost,
		&a.GamesPlayed,
		&a.TotalWinnings,
		&a.TotalLosses,
		&a.BiggestWin,
		&a.JackpotWins,
		&a.PokerWins,
		&a.TournamentPoints,
		&a.TournamentWins,
		&a.LastDailyClaim,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// AccountRepository handles account persistence.
type AccountRepository struct {
	q db.Querier
}

// NewAccountRepository creates a new AccountRepository instance.
func NewAccountRepository(q db.Querier) *AccountRepository {
	return &AccountRepository{q: q}
}

// Ensure creates an empty account when none exists and reports whether it
// did. The starting balance is credited through the ledger by the caller.
func (r *AccountRepository) Ensure(ctx context.Context, ownerID int64, username string) (bool, error) {
	const query = `
		INSERT INTO accounts (owner_id, username, balance, created_at, updated_at)
		VALUES ($1, $2, 0, NOW(), NOW())
		ON CONFLICT (owner_id) DO NOTHING
	`
	tag, err := r.q.Exec(ctx, query, ownerID, username)
	if err != nil {
		return false, fmt.Errorf("failed to create account: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Get retrieves an account by owner ID.
// Returns ErrAccountNotFound if the account does not exist.
func (r *AccountRepository) Get(ctx context.Context, ownerID int64) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1`

	a, err := scanAccount(r.q.QueryRow(ctx, query, ownerID))
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, err
}

// GetForUpdate retrieves an account and row-locks it until the enclosing
// transaction ends.
func (r *AccountRepository) GetForUpdate(ctx context.Context, ownerID int64) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 FOR UPDATE`

	a, err := scanAccount(r.q.QueryRow(ctx, query, ownerID))
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return a, err
}

// FindByUsername looks an account up by its username, ignoring case and a
// leading @.
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(username) = LOWER($1) LIMIT 1`

	name := strings.TrimPrefix(strings.TrimSpace(username), "@")
	a, err := scanAccount(r.q.QueryRow(ctx, query, name))
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return a, err
}

// UpdateUsername keeps the stored username current.
func (r *AccountRepository) UpdateUsername(ctx context.Context, ownerID int64, username string) error {
	const query = `
		UPDATE accounts
		SET username = $2, updated_at = NOW()
		WHERE owner_id = $1 AND username <> $2
	`
	if _, err := r.q.Exec(ctx, query, ownerID, username); err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}
	return nil
}

// Result is the counter update one settlement applies.
type Result struct {
	Net        int64
	PokerWin   bool
	JackpotWin bool
}

// RecordResult bumps games_played and, for a nonzero net, the win or loss
// counters. It returns the updated account.
func (r *AccountRepository) RecordResult(ctx context.Context, ownerID int64, res Result) (*model.Account, error) {
	query := `
		UPDATE accounts SET
			games_played   = games_played + 1,
			games_won      = games_won + CASE WHEN $2::BIGINT > 0 THEN 1 ELSE 0 END,
			games_lost     = games_lost + CASE WHEN $2::BIGINT < 0 THEN 1 ELSE 0 END,
			total_winnings = total_winnings + GREATEST($2::BIGINT, 0),
			total_losses   = total_losses + GREATEST(-$2::BIGINT, 0),
			biggest_win    = GREATEST(biggest_win, $2::BIGINT),
			poker_wins     = poker_wins + CASE WHEN $3::BOOLEAN THEN 1 ELSE 0 END,
			jackpot_wins   = jackpot_wins + CASE WHEN $4::BOOLEAN THEN 1 ELSE 0 END,
			updated_at     = NOW()
		WHERE owner_id = $1
		RETURNING ` + accountColumns

	a, err := scanAccount(r.q.QueryRow(ctx, query, ownerID, res.Net, res.PokerWin, res.JackpotWin))
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to record result: %w", err)
	}
	return a, err
}

// AddTournamentPoints adds to the lifetime tournament points counter.
func (r *AccountRepository) AddTournamentPoints(ctx context.Context, ownerID, points int64) error {
	const query = `UPDATE accounts SET tournament_points = tournament_points + $2, updated_at = NOW() WHERE owner_id = $1`
	if _, err := r.q.Exec(ctx, query, ownerID, points); err != nil {
		return fmt.Errorf("failed to add tournament points: %w", err)
	}
	return nil
}

// IncrementTournamentWins records a tournament victory.
func (r *AccountRepository) IncrementTournamentWins(ctx context.Context, ownerID int64) (*model.Account, error) {
	query := `
		UPDATE accounts SET tournament_wins = tournament_wins + 1, updated_at = NOW()
		WHERE owner_id = $1
		RETURNING ` + accountColumns

	a, err := scanAccount(r.q.QueryRow(ctx, query, ownerID))
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to record tournament win: %w", err)
	}
	return a, err
}

// Top retrieves the top N accounts by balance.
func (r *AccountRepository) Top(ctx context.Context, limit int) ([]*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY balance DESC, owner_id LIMIT $1`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// SetDailyClaim stores the last daily claim as a unix timestamp.
func (r *AccountRepository) SetDailyClaim(ctx context.Context, ownerID int64, at time.Time) error {
	const query = `UPDATE accounts SET last_daily_claim = $2, updated_at = NOW() WHERE owner_id = $1`

	tag, err := r.q.Exec(ctx, query, ownerID, at.Unix())
	if err != nil {
		return fmt.Errorf("failed to update daily claim: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// NextDailyClaim returns when the account may claim again; the zero time
// means now.
func NextDailyClaim(a *model.Account, cooldown time.Duration) time.Time {
	if a.LastDailyClaim == 0 {
		return time.Time{}
	}
	return time.Unix(a.LastDailyClaim, 0).Add(cooldown)
}
