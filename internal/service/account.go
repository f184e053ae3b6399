// Package service provides business logic implementations. Every command
// that moves coins holds the owner's lock and runs as one transaction.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"casino-bot/internal/config"
	"casino-bot/internal/game"
	"casino-bot/internal/model"
	"casino-bot/internal/pkg/db"
	"casino-bot/internal/pkg/lock"
	"casino-bot/internal/repository"
)

// ensureAccount creates the owner's account on first contact, crediting
// the starting balance through the ledger, and returns it row-locked.
func ensureAccount(ctx context.Context, st *repository.Store, p Player, starting int64) (*model.Account, error) {
	created, err := st.Accounts.Ensure(ctx, p.ID, p.Username)
	if err != nil {
		return nil, err
	}
	if created && starting > 0 {
		if _, err := st.Ledger.Apply(ctx, p.ID, "", starting, model.EntryOpening); err != nil {
			return nil, fmt.Errorf("failed to credit starting balance: %w", err)
		}
	}
	if !created && p.Username != "" {
		if err := st.Accounts.UpdateUsername(ctx, p.ID, p.Username); err != nil {
			return nil, err
		}
	}
	return st.Accounts.GetForUpdate(ctx, p.ID)
}

// Profile is an account with its unlocked achievements and open sessions.
type Profile struct {
	Account      *model.Account
	Achievements []AchievementDef
	Sessions     []*model.GameSession
}

// DailyClaim is the outcome of a daily reward attempt.
type DailyClaim struct {
	Claimed   bool
	Amount    int64
	Balance   int64
	Remaining time.Duration
}

// AccountService handles user account operations.
type AccountService struct {
	db     db.Conn
	locks  *lock.UserLock
	casino *config.CasinoConfig
	daily  config.DailyConfig
	rng    game.Rand
	now    func() time.Time
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(conn db.Conn, locks *lock.UserLock, cfg *config.Config) *AccountService {
	return &AccountService{
		db:     conn,
		locks:  locks,
		casino: &cfg.Casino,
		daily:  cfg.Daily,
		rng:    globalRand{},
		now:    time.Now,
	}
}

// EnsureUser makes sure the player has an account and returns it.
func (s *AccountService) EnsureUser(ctx context.Context, p Player) (*model.Account, error) {
	var acct *model.Account
	err := s.locks.WithLock(ctx, p.ID, s.lockTimeout(), func() error {
		return db.InTx(ctx, s.db, func(tx pgx.Tx) error {
			var err error
			acct, err = ensureAccount(ctx, repository.New(tx), p, s.casino.StartingBalance)
			return err
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	return acct, nil
}

// GetBalance returns the player's balance, opening the account if needed.
func (s *AccountService) GetBalance(ctx context.Context, p Player) (int64, error) {
	acct, err := s.EnsureUser(ctx, p)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

// GetProfile returns the player's counters, achievements and open rounds.
func (s *AccountService) GetProfile(ctx context.Context, p Player) (*Profile, error) {
	acct, err := s.EnsureUser(ctx, p)
	if err != nil {
		return nil, err
	}
	st := repository.New(s.db)

	granted, err := st.Achievements.List(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	sessions, err := st.Sessions.ListByOwner(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	prof := &Profile{Account: acct, Sessions: sessions}
	for _, a := range granted {
		if def, ok := AchievementByType(a.Type); ok {
			prof.Achievements = append(prof.Achievements, def)
		}
	}
	return prof, nil
}

// Lookup finds an account by username.
func (s *AccountService) Lookup(ctx context.Context, username string) (*model.Account, error) {
	acct, err := repository.New(s.db).Accounts.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, ErrUserNotFound
	}
	return acct, err
}

// DailyEligibility reports whether a claim is allowed at now given the last
// claim as a unix timestamp (0 for never), and how long is left if not.
func DailyEligibility(lastClaim int64, cooldown time.Duration, now time.Time) (bool, time.Duration) {
	if lastClaim == 0 {
		return true, 0
	}
	next := time.Unix(lastClaim, 0).Add(cooldown)
	if !now.Before(next) {
		return true, 0
	}
	return false, next.Sub(now)
}

// DailyReward draws a reward in [min, max].
func DailyReward(rng game.Rand, min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + int64(rng.IntN(int(max-min+1)))
}

// ClaimDaily credits the daily reward when the cooldown has passed.
func (s *AccountService) ClaimDaily(ctx context.Context, p Player) (*DailyClaim, error) {
	cooldown := time.Duration(s.daily.CooldownHours) * time.Hour
	var claim DailyClaim

	err := s.locks.WithLock(ctx, p.ID, s.lockTimeout(), func() error {
		return db.InTx(ctx, s.db, func(tx pgx.Tx) error {
			st := repository.New(tx)
			acct, err := ensureAccount(ctx, st, p, s.casino.StartingBalance)
			if err != nil {
				return err
			}

			now := s.now()
			ok, remaining := DailyEligibility(acct.LastDailyClaim, cooldown, now)
			if !ok {
				claim = DailyClaim{Remaining: remaining, Balance: acct.Balance}
				return nil
			}

			amount := DailyReward(s.rng, s.daily.MinReward, s.daily.MaxReward)
			balance, err := st.Ledger.Apply(ctx, p.ID, "", amount, model.EntryDaily)
			if err != nil {
				return err
			}
			if err := st.Accounts.SetDailyClaim(ctx, p.ID, now); err != nil {
				return err
			}
			claim = DailyClaim{Claimed: true, Amount: amount, Balance: balance}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to claim daily reward: %w", err)
	}
	return &claim, nil
}

func (s *AccountService) lockTimeout() time.Duration {
	if s.casino.LockTimeout > 0 {
		return s.casino.LockTimeout
	}
	return defaultLockTimeout
}
