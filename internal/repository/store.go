package repository

import (
	"context"
	"time"

	"casino-bot/internal/pkg/db"
)

// Store bundles the repositories over one Querier. Build one per
// transaction with New(tx), or one over the pool for plain reads.
type Store struct {
	Accounts     *AccountRepository
	Ledger       *LedgerRepository
	Sessions     *SessionRepository
	Achievements *AchievementRepository
	BigWins      *BigWinRepository
	Pools        *PoolRepository
	Roles        *RoleRepository
	Tournaments  *TournamentRepository
}

// New creates a Store over q.
func New(q db.Querier) *Store {
	return &Store{
		Accounts:     NewAccountRepository(q),
		Ledger:       NewLedgerRepository(q),
		Sessions:     NewSessionRepository(q),
		Achievements: NewAchievementRepository(q),
		BigWins:      NewBigWinRepository(q),
		Pools:        NewPoolRepository(q),
		Roles:        NewRoleRepository(q),
		Tournaments:  NewTournamentRepository(q),
	}
}

// RoundStats lets a Store serve as the guard's activity source.
func (s *Store) RoundStats(ctx context.Context, ownerID int64, kind string, since time.Time) (int, time.Time, error) {
	return s.Ledger.RoundStats(ctx, ownerID, kind, since)
}

// CountBigWins lets a Store serve as the guard's activity source.
func (s *Store) CountBigWins(ctx context.Context, ownerID int64, since time.Time, floor int64) (int, error) {
	return s.BigWins.CountSince(ctx, ownerID, since, floor)
}
