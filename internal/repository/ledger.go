package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"casino-bot/internal/model"
	"casino-bot/internal/pkg/db"
)

// ErrNegativeBalance is returned when a delta would take a balance below
// zero. The accounts table enforces it with a CHECK constraint.
var ErrNegativeBalance = errors.New("balance would become negative")

// LedgerRepository moves balances. Every change is one balance update and
// one append-only entry, both in the caller's transaction.
type LedgerRepository struct {
	q db.Querier
}

// NewLedgerRepository creates a new LedgerRepository instance.
func NewLedgerRepository(q db.Querier) *LedgerRepository {
	return &LedgerRepository{q: q}
}

// Apply adds delta to the owner's balance and records the entry. A zero
// delta still writes the entry, so terminal rounds are always visible.
// Returns the new balance.
func (r *LedgerRepository) Apply(ctx context.Context, ownerID int64, kind string, delta int64, entryType string) (int64, error) {
	const update = `
		UPDATE accounts
		SET balance = balance + $2, updated_at = NOW()
		WHERE owner_id = $1
		RETURNING balance
	`
	var balance int64
	if err := r.q.QueryRow(ctx, update, ownerID, delta).Scan(&balance); err != nil {
		if isCheckViolation(err) {
			return 0, ErrNegativeBalance
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to update balance: %w", err)
	}

	if _, err := r.Append(ctx, ownerID, kind, delta, entryType); err != nil {
		return 0, err
	}
	return balance, nil
}

// Append writes an entry without touching the balance. Apply is the normal
// path; Append alone is for backfills and tests.
func (r *LedgerRepository) Append(ctx context.Context, ownerID int64, kind string, amount int64, entryType string) (*model.LedgerEntry, error) {
	return r.AppendAt(ctx, ownerID, kind, amount, entryType, time.Now())
}

// AppendAt writes an entry with an explicit timestamp.
func (r *LedgerRepository) AppendAt(ctx context.Context, ownerID int64, kind string, amount int64, entryType string, at time.Time) (*model.LedgerEntry, error) {
	const query = `
		INSERT INTO ledger_entries (id, owner_id, game_kind, amount, entry_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, owner_id, game_kind, amount, entry_type, created_at
	`

	var e model.LedgerEntry
	err := r.q.QueryRow(ctx, query, ledgerIDs.New(at), ownerID, kind, amount, entryType, at).Scan(
		&e.ID,
		&e.OwnerID,
		&e.GameKind,
		&e.Amount,
		&e.Type,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return &e, nil
}

// RoundStats counts round-opening entries of kind since the given time and
// returns the newest one's timestamp.
func (r *LedgerRepository) RoundStats(ctx context.Context, ownerID int64, kind string, since time.Time) (int, time.Time, error) {
	const query = `
		SELECT COUNT(*), MAX(created_at)
		FROM ledger_entries
		WHERE owner_id = $1 AND game_kind = $2 AND entry_type = ANY($3) AND created_at >= $4
	`
	var count int
	var last *time.Time
	if err := r.q.QueryRow(ctx, query, ownerID, kind, model.RoundEntryTypes(), since).Scan(&count, &last); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to get round stats: %w", err)
	}
	if last == nil {
		return count, time.Time{}, nil
	}
	return count, *last, nil
}

// ListByOwner returns the owner's newest entries first.
func (r *LedgerRepository) ListByOwner(ctx context.Context, ownerID int64, limit int) ([]*model.LedgerEntry, error) {
	const query = `
		SELECT id, owner_id, game_kind, amount, entry_type, created_at
		FROM ledger_entries
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.GameKind, &e.Amount, &e.Type, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}
	return entries, nil
}

// Sum returns the total of all the owner's entries. For a healthy account
// it equals the balance.
func (r *LedgerRepository) Sum(ctx context.Context, ownerID int64) (int64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE owner_id = $1`

	var sum int64
	if err := r.q.QueryRow(ctx, query, ownerID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum ledger: %w", err)
	}
	return sum, nil
}

func dayBounds(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return start, start.Add(24 * time.Hour)
}

// DailyWinners returns owners with a positive net game result on date,
// biggest profit first.
func (r *LedgerRepository) DailyWinners(ctx context.Context, date time.Time, limit int) ([]*model.DailyRank, error) {
	return r.daily(ctx, date, limit, `HAVING SUM(l.amount) > 0 ORDER BY net_profit DESC, l.owner_id`)
}

// DailyLosers returns owners with a negative net game result on date,
// biggest loss first.
func (r *LedgerRepository) DailyLosers(ctx context.Context, date time.Time, limit int) ([]*model.DailyRank, error) {
	return r.daily(ctx, date, limit, `HAVING SUM(l.amount) < 0 ORDER BY net_profit ASC, l.owner_id`)
}

func (r *LedgerRepository) daily(ctx context.Context, date time.Time, limit int, tail string) ([]*model.DailyRank, error) {
	start, end := dayBounds(date)
	query := `
		SELECT l.owner_id, a.username, COALESCE(SUM(l.amount), 0) AS net_profit
		FROM ledger_entries l
		JOIN accounts a ON a.owner_id = l.owner_id
		WHERE l.entry_type = ANY($1)
		  AND l.created_at >= $2
		  AND l.created_at < $3
		GROUP BY l.owner_id, a.username
		` + tail + `
		LIMIT $4
	`

	rows, err := r.q.Query(ctx, query, model.GameEntryTypes(), start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily ranking: %w", err)
	}
	defer rows.Close()

	var ranks []*model.DailyRank
	for rows.Next() {
		var rank model.DailyRank
		if err := rows.Scan(&rank.OwnerID, &rank.Username, &rank.NetProfit); err != nil {
			return nil, fmt.Errorf("failed to scan daily rank: %w", err)
		}
		ranks = append(ranks, &rank)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily ranking: %w", err)
	}
	return ranks, nil
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}
