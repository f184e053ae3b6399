// Package lottery implements instant lottery tickets backed by a shared
// jackpot pool.
package lottery

import (
	"fmt"
	"strings"

	"casino-bot/internal/game"
	"casino-bot/internal/model"
)

// Tier is the outcome of one ticket.
type Tier int

const (
	Miss Tier = iota
	Small
	Medium
	Jackpot
)

func (t Tier) String() string {
	switch t {
	case Jackpot:
		return "JACKPOT"
	case Medium:
		return "medium"
	case Small:
		return "small"
	default:
		return "miss"
	}
}

// Config holds ticket pricing, tier odds in percent and pool settings.
type Config struct {
	TicketPrice    int64
	MaxTickets     int64
	PoolFloor      int64
	MissPercent    int64 // share of a missed ticket's price added to the pool
	JackpotPercent int
	MediumPercent  int
	SmallPercent   int
}

// DefaultConfig: 100 coins a ticket, 1% jackpot, 5% medium (x10),
// 15% small (x2), misses feed half their price into the pool.
func DefaultConfig() Config {
	return Config{
		TicketPrice:    100,
		MaxTickets:     10,
		PoolFloor:      1000,
		MissPercent:    50,
		JackpotPercent: 1,
		MediumPercent:  5,
		SmallPercent:   15,
	}
}

// Prize multipliers of the fixed tiers, applied to the ticket price.
const (
	MediumMultiplier = 10
	SmallMultiplier  = 2
)

// LotteryGame is a single-turn pooled and priced engine. The bet argument
// is the number of tickets.
type LotteryGame struct {
	cfg Config
}

// New creates the lottery.
func New(cfg Config) *LotteryGame { return &LotteryGame{cfg: cfg} }

func (l *LotteryGame) Kind() string     { return model.KindLottery }
func (l *LotteryGame) Name() string     { return "Lottery" }
func (l *LotteryGame) Usage() string    { return fmt.Sprintf("lottery <tickets 1-%d>", l.cfg.MaxTickets) }
func (l *LotteryGame) PoolName() string { return model.PoolLottery }
func (l *LotteryGame) PoolFloor() int64 { return l.cfg.PoolFloor }

// StakeFor is the price of units tickets.
func (l *LotteryGame) StakeFor(units int64) int64 { return units * l.cfg.TicketPrice }

// Roll maps a percentile in [0,100) to a tier.
func (l *LotteryGame) Roll(percentile int) Tier {
	switch {
	case percentile < l.cfg.JackpotPercent:
		return Jackpot
	case percentile < l.cfg.JackpotPercent+l.cfg.MediumPercent:
		return Medium
	case percentile < l.cfg.JackpotPercent+l.cfg.MediumPercent+l.cfg.SmallPercent:
		return Small
	default:
		return Miss
	}
}

// Play draws every ticket in turn against the running pool.
func (l *LotteryGame) Play(rng game.Rand, r game.Round) (game.Outcome, error) {
	if r.Bet < 1 || r.Bet > l.cfg.MaxTickets {
		return game.Outcome{}, fmt.Errorf("%w: buy between 1 and %d tickets", game.ErrBetOutOfRange, l.cfg.MaxTickets)
	}
	if r.Pool < 0 {
		return game.Outcome{}, fmt.Errorf("%w: negative lottery pool %d", game.ErrInternal, r.Pool)
	}

	out := game.Outcome{Stake: l.StakeFor(r.Bet), PoolAfter: r.Pool}
	var lines []string
	for i := int64(1); i <= r.Bet; i++ {
		tier := l.Roll(rng.IntN(100))
		var prize int64
		switch tier {
		case Jackpot:
			prize = out.PoolAfter
			out.PoolAfter = l.cfg.PoolFloor
			out.Jackpot = true
		case Medium:
			prize = l.cfg.TicketPrice * MediumMultiplier
		case Small:
			prize = l.cfg.TicketPrice * SmallMultiplier
		case Miss:
			out.PoolAfter += l.cfg.TicketPrice * l.cfg.MissPercent / 100
		}
		out.Payout += prize
		if prize > 0 {
			lines = append(lines, fmt.Sprintf("🎟 #%d: %s +%d", i, tier, prize))
		} else {
			lines = append(lines, fmt.Sprintf("🎟 #%d: miss", i))
		}
	}

	lines = append(lines, fmt.Sprintf("Spent %d, won %d. Jackpot pool: %d", out.Stake, out.Payout, out.PoolAfter))
	out.Text = strings.Join(lines, "\n")
	return out, nil
}
