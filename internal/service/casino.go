package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"casino-bot/internal/config"
	"casino-bot/internal/game"
	"casino-bot/internal/guard"
	"casino-bot/internal/model"
	"casino-bot/internal/pkg/db"
	"casino-bot/internal/pkg/lock"
	"casino-bot/internal/repository"
	"casino-bot/internal/wager"
)

// Player identifies the owner issuing a command.
type Player struct {
	ID       int64
	Username string
}

// Reply is the result of a casino command.
type Reply struct {
	Text         string
	Balance      int64
	Settled      bool
	Net          int64
	Achievements []AchievementDef
}

// globalRand draws from the goroutine-safe top-level math/rand/v2 source.
type globalRand struct{}

func (globalRand) IntN(n int) int   { return rand.IntN(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

// Casino runs game commands. Each command holds the owner's in-process
// lock and runs as one database transaction, so a failure anywhere leaves
// balances, sessions and pools untouched.
type Casino struct {
	db     db.TxBeginner
	games  *game.Registry
	guard  *guard.Guard
	locks  *lock.UserLock
	stats  *Stats
	casino *config.CasinoConfig
	rng    game.Rand
}

// CasinoOption customises a Casino.
type CasinoOption func(*Casino)

// WithRand replaces the random source engines draw from.
func WithRand(r game.Rand) CasinoOption {
	return func(c *Casino) { c.rng = r }
}

// NewCasino creates the casino service.
func NewCasino(
	pool db.TxBeginner,
	games *game.Registry,
	g *guard.Guard,
	locks *lock.UserLock,
	stats *Stats,
	casino *config.CasinoConfig,
	opts ...CasinoOption,
) *Casino {
	c := &Casino{
		db:     pool,
		games:  games,
		guard:  g,
		locks:  locks,
		stats:  stats,
		casino: casino,
		rng:    globalRand{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Games exposes the registry for help texts.
func (c *Casino) Games() *game.Registry { return c.games }

// Play runs a single-turn round.
func (c *Casino) Play(ctx context.Context, p Player, kind, rawBet string, args []string) (*Reply, error) {
	engine, ok := c.games.Get(kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown game %q", game.ErrInvalidArgument, kind)
	}
	single, ok := engine.(game.SingleTurn)
	if !ok {
		return nil, fmt.Errorf("%w: %s is played with %s", game.ErrInvalidArgument, engine.Name(), engine.Usage())
	}
	bet, err := wager.ValidateString(rawBet, wager.BoundsOf(c.casino.Limits(kind)))
	if err != nil {
		return nil, err
	}

	var reply *Reply
	err = c.run(ctx, p, kind, "play", nil, func(st *repository.Store) error {
		acct, err := ensureAccount(ctx, st, p, c.casino.StartingBalance)
		if err != nil {
			return err
		}
		if err := c.guard.Admit(ctx, st, acct, kind); err != nil {
			return err
		}
		stake := game.StakeFor(engine, bet)
		if acct.Balance < stake {
			return insufficient(acct.Balance, stake)
		}

		pooled, isPooled := engine.(game.Pooled)
		var poolValue int64
		if isPooled {
			if poolValue, err = st.Pools.GetForUpdate(ctx, pooled.PoolName(), pooled.PoolFloor()); err != nil {
				return err
			}
		}

		out, err := single.Play(c.rng, game.Round{Bet: bet, Args: args, Pool: poolValue})
		if err != nil {
			return err
		}

		balance, err := st.Ledger.Apply(ctx, p.ID, kind, out.Net(), model.EntryWager)
		if err != nil {
			return err
		}
		if isPooled {
			if err := st.Pools.Set(ctx, pooled.PoolName(), out.PoolAfter); err != nil {
				return err
			}
		}
		unlocked, err := c.stats.Settle(ctx, st, Settlement{OwnerID: p.ID, Kind: kind, Net: out.Net(), Jackpot: out.Jackpot})
		if err != nil {
			return err
		}

		reply = &Reply{Text: out.Text, Balance: balance, Settled: true, Net: out.Net(), Achievements: unlocked}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// Start opens a multi-turn session. An unfinished session of the same kind
// is forfeited first: its stake stays lost and it counts as a loss.
func (c *Casino) Start(ctx context.Context, p Player, kind, rawBet string, args []string) (*Reply, error) {
	engine, err := c.multiTurn(kind)
	if err != nil {
		return nil, err
	}
	bet, err := wager.ValidateString(rawBet, wager.BoundsOf(c.casino.Limits(kind)))
	if err != nil {
		return nil, err
	}

	var reply *Reply
	err = c.run(ctx, p, kind, "start", nil, func(st *repository.Store) error {
		acct, err := ensureAccount(ctx, st, p, c.casino.StartingBalance)
		if err != nil {
			return err
		}
		if err := c.guard.Admit(ctx, st, acct, kind); err != nil {
			return err
		}
		if acct.Balance < bet {
			return insufficient(acct.Balance, bet)
		}

		var notes []string
		old, err := c.forfeit(ctx, st, p.ID, kind)
		if err != nil {
			return err
		}
		reply = &Reply{}
		if old != nil {
			notes = append(notes, fmt.Sprintf("Your unfinished %s round was forfeited (-%d).", engine.Name(), old.Stake))
			reply.Achievements = append(reply.Achievements, old.unlocked...)
		}

		state, step, err := engine.Start(c.rng, bet, args)
		if err != nil {
			return err
		}
		balance, err := st.Ledger.Apply(ctx, p.ID, kind, -bet, model.EntryStake)
		if err != nil {
			return err
		}
		reply.Balance = balance

		if step.Done {
			if err := c.settle(ctx, st, p.ID, kind, bet, step, reply); err != nil {
				return err
			}
		} else if err := st.Sessions.Save(ctx, p.ID, kind, &state); err != nil {
			return err
		}

		reply.Text = strings.Join(append(notes, step.Text), "\n")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// Act applies an action to the owner's open session of kind. Acts are
// neither rate limited nor held: they only finish rounds the guard
// already admitted.
func (c *Casino) Act(ctx context.Context, p Player, kind, action string, args []string) (*Reply, error) {
	engine, err := c.multiTurn(kind)
	if err != nil {
		return nil, err
	}

	var (
		reply   *Reply
		session *model.SessionState
	)
	err = c.run(ctx, p, kind, action, func() *model.SessionState { return session }, func(st *repository.Store) error {
		acct, err := st.Accounts.GetForUpdate(ctx, p.ID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return noSession(engine)
			}
			return err
		}
		s, err := st.Sessions.Load(ctx, p.ID, kind)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return noSession(engine)
			}
			return err
		}
		session = &s.State

		step, err := engine.Act(c.rng, session, action, args)
		if err != nil {
			return err
		}

		reply = &Reply{Text: step.Text}
		if !step.Done {
			if err := st.Sessions.Save(ctx, p.ID, kind, session); err != nil {
				return err
			}
			reply.Balance = acct.Balance
			return nil
		}

		if _, err := st.Sessions.Clear(ctx, p.ID, kind); err != nil {
			return err
		}
		return c.settle(ctx, st, p.ID, kind, session.Stake, step, reply)
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// settle credits a finished multi-turn round and runs the post-processor.
func (c *Casino) settle(ctx context.Context, st *repository.Store, ownerID int64, kind string, stake int64, step game.Step, reply *Reply) error {
	balance, err := st.Ledger.Apply(ctx, ownerID, kind, step.Payout, model.EntryPayout)
	if err != nil {
		return err
	}
	net := step.Payout - stake
	unlocked, err := c.stats.Settle(ctx, st, Settlement{OwnerID: ownerID, Kind: kind, Net: net})
	if err != nil {
		return err
	}
	reply.Balance = balance
	reply.Settled = true
	reply.Net = net
	reply.Achievements = append(reply.Achievements, unlocked...)
	return nil
}

type forfeitResult struct {
	Stake    int64
	unlocked []AchievementDef
}

// forfeit clears an open session of kind and books it as lost.
func (c *Casino) forfeit(ctx context.Context, st *repository.Store, ownerID int64, kind string) (*forfeitResult, error) {
	s, err := st.Sessions.Load(ctx, ownerID, kind)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := st.Sessions.Clear(ctx, ownerID, kind); err != nil {
		return nil, err
	}
	if _, err := st.Ledger.Apply(ctx, ownerID, kind, 0, model.EntryForfeit); err != nil {
		return nil, err
	}
	unlocked, err := c.stats.Settle(ctx, st, Settlement{OwnerID: ownerID, Kind: kind, Net: -s.State.Stake})
	if err != nil {
		return nil, err
	}
	log.Info().
		Int64("owner", ownerID).
		Str("game_kind", kind).
		Str("round", s.State.RoundID).
		Int64("stake", s.State.Stake).
		Msg("Session forfeited")
	return &forfeitResult{Stake: s.State.Stake, unlocked: unlocked}, nil
}

func (c *Casino) multiTurn(kind string) (game.MultiTurn, error) {
	engine, ok := c.games.Get(kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown game %q", game.ErrInvalidArgument, kind)
	}
	multi, ok := engine.(game.MultiTurn)
	if !ok {
		return nil, fmt.Errorf("%w: %s is played with %s", game.ErrInvalidArgument, engine.Name(), engine.Usage())
	}
	return multi, nil
}

// run holds the owner's lock around one transaction and normalises the
// error. snapshot, when set, supplies the session state for failure logs.
func (c *Casino) run(ctx context.Context, p Player, kind, action string, snapshot func() *model.SessionState, fn func(st *repository.Store) error) error {
	err := c.locks.WithLock(ctx, p.ID, c.lockTimeout(), func() error {
		return db.InTx(ctx, c.db, func(tx pgx.Tx) error {
			return fn(repository.New(tx))
		})
	})
	if err == nil {
		return nil
	}
	var state *model.SessionState
	if snapshot != nil {
		state = snapshot()
	}
	return classify(err, p.ID, kind, action, state)
}

const defaultLockTimeout = 5 * time.Second

func (c *Casino) lockTimeout() time.Duration {
	if c.casino.LockTimeout > 0 {
		return c.casino.LockTimeout
	}
	return defaultLockTimeout
}

// classify passes taxonomy errors through and turns everything else into
// ErrInternal after logging it with the command context.
func classify(err error, ownerID int64, kind, action string, state *model.SessionState) error {
	switch {
	case errors.Is(err, game.ErrInternal):
	case isTaxonomy(err):
		return err
	case errors.Is(err, lock.ErrLockTimeout):
		return fmt.Errorf("%w: your previous command is still running", game.ErrRateLimited)
	case errors.Is(err, repository.ErrNegativeBalance):
		return fmt.Errorf("%w: balance too low", game.ErrInsufficientFunds)
	case errors.Is(err, context.Canceled):
		return err
	}

	ev := log.Error().
		Err(err).
		Int64("owner", ownerID).
		Str("game_kind", kind).
		Str("action", action)
	if state != nil {
		ev = ev.Str("session", state.Snapshot())
	}
	ev.Msg("Casino command failed")
	if errors.Is(err, game.ErrInternal) {
		return err
	}
	return fmt.Errorf("%w: %v", game.ErrInternal, err)
}

func isTaxonomy(err error) bool {
	for _, target := range []error{
		game.ErrInvalidArgument,
		game.ErrBetOutOfRange,
		game.ErrInsufficientFunds,
		game.ErrNoActiveSession,
		game.ErrRateLimited,
		game.ErrIntegrityHold,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func insufficient(balance, need int64) error {
	return fmt.Errorf("%w: you have %d coins, this needs %d", game.ErrInsufficientFunds, balance, need)
}

func noSession(e game.Engine) error {
	return fmt.Errorf("%w: start a round with %s", game.ErrNoActiveSession, e.Usage())
}
