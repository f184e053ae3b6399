package service

import (
	"context"
	"time"

	"casino-bot/internal/model"
	"casino-bot/internal/pkg/db"
	"casino-bot/internal/repository"
)

// StaleSession is an unfinished session that has been idle since
// UpdatedAt. Nothing expires them; the listing exists so operators can
// decide what to do.
type StaleSession struct {
	OwnerID   int64     `json:"owner_id"`
	GameKind  string    `json:"game_kind"`
	RoundID   string    `json:"round_id"`
	Stake     int64     `json:"stake"`
	UpdatedAt time.Time `json:"updated_at"`
	Idle      string    `json:"idle"`
}

// Audit compares an account's balance with the sum of its ledger.
type Audit struct {
	Account    *model.Account       `json:"account"`
	Entries    []*model.LedgerEntry `json:"entries"`
	LedgerSum  int64                `json:"ledger_sum"`
	Consistent bool                 `json:"consistent"`
}

// OpsService backs the operator CLI and HTTP endpoints. It only reads.
type OpsService struct {
	q   db.Querier
	now func() time.Time
}

// NewOpsService creates the operations service.
func NewOpsService(q db.Querier) *OpsService {
	return &OpsService{q: q, now: time.Now}
}

// Ping checks the database answers.
func (s *OpsService) Ping(ctx context.Context) error {
	var one int
	return s.q.QueryRow(ctx, `SELECT 1`).Scan(&one)
}

// StaleSessions lists sessions untouched for at least olderThan, oldest
// first.
func (s *OpsService) StaleSessions(ctx context.Context, olderThan time.Duration, limit int) ([]StaleSession, error) {
	now := s.now()
	sessions, err := repository.New(s.q).Sessions.Stale(ctx, now.Add(-olderThan), limit)
	if err != nil {
		return nil, err
	}
	out := make([]StaleSession, 0, len(sessions))
	for _, gs := range sessions {
		out = append(out, StaleSession{
			OwnerID:   gs.OwnerID,
			GameKind:  gs.GameKind,
			RoundID:   gs.State.RoundID,
			Stake:     gs.State.Stake,
			UpdatedAt: gs.UpdatedAt,
			Idle:      now.Sub(gs.UpdatedAt).Truncate(time.Second).String(),
		})
	}
	return out, nil
}

// Pools lists every shared pool.
func (s *OpsService) Pools(ctx context.Context) ([]*model.Pool, error) {
	return repository.New(s.q).Pools.List(ctx)
}

// Audit loads an account with its newest ledger entries and checks the
// balance equals the sum of all entries.
func (s *OpsService) Audit(ctx context.Context, ownerID int64, limit int) (*Audit, error) {
	st := repository.New(s.q)
	acct, err := st.Accounts.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	entries, err := st.Ledger.ListByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, err
	}
	sum, err := st.Ledger.Sum(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &Audit{
		Account:    acct,
		Entries:    entries,
		LedgerSum:  sum,
		Consistent: sum == acct.Balance,
	}, nil
}
