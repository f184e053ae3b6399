// Package guard decides whether an owner may open a new round: it enforces
// per-kind hourly caps and cooldowns counted from the ledger and holds
// accounts whose recent results look suspicious.
package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog/log"

	"casino-bot/internal/config"
	"casino-bot/internal/game"
	"casino-bot/internal/model"
)

// Authorizer resolves an owner's role.
type Authorizer interface {
	Role(ctx context.Context, ownerID int64) (model.Role, error)
}

// Activity is the read side of the ledger and big-win log the guard
// consults. Callers pass one bound to the command's transaction.
type Activity interface {
	// RoundStats counts round-opening entries of kind since the given time
	// and returns the newest one's timestamp (zero when there is none).
	RoundStats(ctx context.Context, ownerID int64, kind string, since time.Time) (int, time.Time, error)
	// CountBigWins counts big wins above floor since the given time.
	CountBigWins(ctx context.Context, ownerID int64, since time.Time, floor int64) (int, error)
}

// Guard is safe for concurrent use.
type Guard struct {
	casino *config.CasinoConfig
	auth   Authorizer
	roles  *ttlcache.Cache[int64, model.Role]
	exempt model.Role
	now    func() time.Time
}

// New creates a guard. Roles resolved through auth are cached for the
// configured TTL.
func New(casino *config.CasinoConfig, auth Authorizer) (*Guard, error) {
	exempt, err := model.ParseRole(casino.Guard.ExemptRole)
	if err != nil {
		return nil, fmt.Errorf("invalid exempt role: %w", err)
	}
	ttl := casino.Guard.RoleCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Guard{
		casino: casino,
		auth:   auth,
		roles: ttlcache.New[int64, model.Role](
			ttlcache.WithTTL[int64, model.Role](ttl),
			ttlcache.WithDisableTouchOnHit[int64, model.Role](),
		),
		exempt: exempt,
		now:    time.Now,
	}, nil
}

// Start runs the cache's expiry loop until Stop is called.
func (g *Guard) Start() { go g.roles.Start() }

// Stop ends the expiry loop.
func (g *Guard) Stop() { g.roles.Stop() }

// Role returns the owner's role, from the cache when possible.
func (g *Guard) Role(ctx context.Context, ownerID int64) (model.Role, error) {
	if item := g.roles.Get(ownerID); item != nil {
		return item.Value(), nil
	}
	role, err := g.auth.Role(ctx, ownerID)
	if err != nil {
		return model.RoleUser, fmt.Errorf("failed to resolve role: %w", err)
	}
	g.roles.Set(ownerID, role, ttlcache.DefaultTTL)
	return role, nil
}

// Forget drops a cached role, e.g. after it was changed.
func (g *Guard) Forget(ownerID int64) { g.roles.Delete(ownerID) }

// Exempt reports whether the owner's role skips every check.
func (g *Guard) Exempt(ctx context.Context, ownerID int64) (bool, error) {
	role, err := g.Role(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return role.AtLeast(g.exempt), nil
}

// Admit runs every check for a new round of kind. It never mutates
// anything, so a rejected command leaves no trace.
func (g *Guard) Admit(ctx context.Context, act Activity, acct *model.Account, kind string) error {
	exempt, err := g.Exempt(ctx, acct.OwnerID)
	if err != nil {
		return err
	}
	if exempt {
		return nil
	}
	if err := g.CheckRate(ctx, act, acct.OwnerID, kind); err != nil {
		return err
	}
	return g.CheckIntegrity(ctx, act, acct)
}

// CheckRate enforces the hourly cap and the cooldown of kind.
func (g *Guard) CheckRate(ctx context.Context, act Activity, ownerID int64, kind string) error {
	limits := g.casino.Limits(kind)
	now := g.now()

	count, last, err := act.RoundStats(ctx, ownerID, kind, now.Add(-time.Hour))
	if err != nil {
		return fmt.Errorf("%w: failed to read round stats: %v", game.ErrInternal, err)
	}
	if limits.PerHour > 0 && count >= limits.PerHour {
		return fmt.Errorf("%w: %d %s rounds in the last hour, the limit is %d", game.ErrRateLimited, count, kind, limits.PerHour)
	}
	if cd := limits.Cooldown(); cd > 0 && !last.IsZero() {
		if wait := last.Add(cd).Sub(now); wait > 0 {
			return fmt.Errorf("%w: wait %d more seconds before the next %s round", game.ErrRateLimited, int(wait.Seconds())+1, kind)
		}
	}
	return nil
}

// CheckIntegrity holds accounts with too many recent big wins or a balance
// far beyond what they ever won.
func (g *Guard) CheckIntegrity(ctx context.Context, act Activity, acct *model.Account) error {
	cfg := g.casino.Guard

	n, err := act.CountBigWins(ctx, acct.OwnerID, g.now().Add(-time.Hour), cfg.BigWinFloor)
	if err != nil {
		return fmt.Errorf("%w: failed to count big wins: %v", game.ErrInternal, err)
	}
	if cfg.MaxBigWinsPerHour > 0 && n > cfg.MaxBigWinsPerHour {
		log.Warn().Int64("owner", acct.OwnerID).Int("big_wins", n).Msg("Integrity hold: too many big wins")
		return fmt.Errorf("%w: unusual winning streak, please contact a moderator", game.ErrIntegrityHold)
	}

	if cfg.BalanceAlarm > 0 && acct.Balance > cfg.BalanceAlarm &&
		acct.Balance > cfg.WinningsMultiplier*acct.TotalWinnings {
		log.Warn().Int64("owner", acct.OwnerID).Int64("balance", acct.Balance).
			Int64("total_winnings", acct.TotalWinnings).Msg("Integrity hold: balance out of proportion")
		return fmt.Errorf("%w: balance under review, please contact a moderator", game.ErrIntegrityHold)
	}
	return nil
}
