package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"casino-bot/internal/config"
	"casino-bot/internal/game"
	"casino-bot/internal/game/duel"
	"casino-bot/internal/guard"
	"casino-bot/internal/model"
	"casino-bot/internal/pkg/db"
	"casino-bot/internal/pkg/lock"
	"casino-bot/internal/repository"
	"casino-bot/internal/wager"
)

// DuelReply is a settled duel with both new balances.
type DuelReply struct {
	duel.Result
	WinnerBalance int64
	LoserBalance  int64
	Achievements  map[int64][]AchievementDef
}

// DuelService runs two-player coin tosses.
type DuelService struct {
	db     db.TxBeginner
	guard  *guard.Guard
	locks  *lock.UserLock
	stats  *Stats
	casino *config.CasinoConfig
	rng    game.Rand
}

// DuelOption customises a DuelService.
type DuelOption func(*DuelService)

// WithDuelRand replaces the random source the toss draws from.
func WithDuelRand(r game.Rand) DuelOption {
	return func(s *DuelService) { s.rng = r }
}

// NewDuelService creates the duel service.
func NewDuelService(
	pool db.TxBeginner,
	g *guard.Guard,
	locks *lock.UserLock,
	stats *Stats,
	casino *config.CasinoConfig,
	opts ...DuelOption,
) *DuelService {
	s := &DuelService{db: pool, guard: g, locks: locks, stats: stats, casino: casino, rng: globalRand{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Duel challenges opponentID for rawBet. The challenger is rate limited
// like any other round; the opponent only needs to cover the bet.
func (s *DuelService) Duel(ctx context.Context, challenger Player, opponentID int64, rawBet string) (*DuelReply, error) {
	bet, err := wager.ValidateString(rawBet, wager.BoundsOf(s.casino.Limits(model.KindDuel)))
	if err != nil {
		return nil, err
	}
	if challenger.ID == opponentID {
		return nil, fmt.Errorf("%w: %w", game.ErrInvalidArgument, duel.ErrSelfDuel)
	}

	var reply *DuelReply
	timeout := s.casino.LockTimeout
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}
	err = s.locks.WithPair(ctx, challenger.ID, opponentID, timeout, func() error {
		return db.InTx(ctx, s.db, func(tx pgx.Tx) error {
			st := repository.New(tx)
			if _, err := ensureAccount(ctx, st, challenger, s.casino.StartingBalance); err != nil {
				return err
			}
			c, o, err := lockPair(ctx, st, challenger.ID, opponentID)
			if err != nil {
				return err
			}
			if err := s.guard.Admit(ctx, st, c, model.KindDuel); err != nil {
				return err
			}

			cp := duel.Player{ID: c.OwnerID, Name: displayName(c), Balance: c.Balance}
			op := duel.Player{ID: o.OwnerID, Name: displayName(o), Balance: o.Balance}
			if err := duel.Check(cp, op, bet); err != nil {
				return err
			}
			res := duel.Resolve(s.rng, cp, op, bet)

			// Only the challenger's row counts as a round.
			entryFor := map[int64]string{c.OwnerID: model.EntryDuel, o.OwnerID: model.EntryDuelDefense}
			reply = &DuelReply{Result: res, Achievements: map[int64][]AchievementDef{}}
			if reply.LoserBalance, err = st.Ledger.Apply(ctx, res.LoserID, model.KindDuel, -bet, entryFor[res.LoserID]); err != nil {
				return err
			}
			if reply.WinnerBalance, err = st.Ledger.Apply(ctx, res.WinnerID, model.KindDuel, bet, entryFor[res.WinnerID]); err != nil {
				return err
			}
			for id, net := range map[int64]int64{res.WinnerID: bet, res.LoserID: -bet} {
				unlocked, err := s.stats.Settle(ctx, st, Settlement{OwnerID: id, Kind: model.KindDuel, Net: net})
				if err != nil {
					return err
				}
				if len(unlocked) > 0 {
					reply.Achievements[id] = unlocked
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, classify(err, challenger.ID, model.KindDuel, "duel", nil)
	}
	return reply, nil
}

func displayName(a *model.Account) string {
	if a.Username != "" {
		return "@" + a.Username
	}
	return fmt.Sprintf("player %d", a.OwnerID)
}
