// Package numbers implements the number guessing game.
package numbers

import (
	"fmt"
	"strconv"

	"casino-bot/internal/game"
	"casino-bot/internal/model"
)

// Range of the hidden number, inclusive.
const (
	Low  = 1
	High = 100
)

// Tier is a payout band by distance from the target.
type Tier struct {
	MaxDistance int
	Multiplier  int64
}

// Tiers are checked in order; the first band containing the distance pays.
var Tiers = []Tier{
	{MaxDistance: 0, Multiplier: 50},
	{MaxDistance: 5, Multiplier: 5},
	{MaxDistance: 10, Multiplier: 2},
}

// NumbersGame is a single-turn engine.
type NumbersGame struct{}

// New creates the guessing game.
func New() *NumbersGame { return &NumbersGame{} }

func (n *NumbersGame) Kind() string  { return model.KindNumbers }
func (n *NumbersGame) Name() string  { return "Guess the Number" }
func (n *NumbersGame) Usage() string { return "numbers <bet> <1-100>" }

func (n *NumbersGame) Play(rng game.Rand, r game.Round) (game.Outcome, error) {
	if len(r.Args) == 0 {
		return game.Outcome{}, fmt.Errorf("%w: pick a number from %d to %d", game.ErrInvalidArgument, Low, High)
	}
	guess, err := strconv.Atoi(r.Args[0])
	if err != nil || guess < Low || guess > High {
		return game.Outcome{}, fmt.Errorf("%w: pick a number from %d to %d", game.ErrInvalidArgument, Low, High)
	}

	target := Low + rng.IntN(High-Low+1)
	mult := Multiplier(guess, target)

	out := game.Outcome{Stake: r.Bet, Payout: r.Bet * mult}
	if mult > 0 {
		out.Text = fmt.Sprintf("🔢 The number was %d, you said %d\n💰 You won %d coins (x%d)", target, guess, out.Payout, mult)
	} else {
		out.Text = fmt.Sprintf("🔢 The number was %d, you said %d\n💸 You lost %d coins", target, guess, r.Bet)
	}
	return out, nil
}

// Multiplier returns the gross multiplier for a guess: 50 for exact, 5
// within 5, 2 within 10, otherwise 0.
func Multiplier(guess, target int) int64 {
	d := guess - target
	if d < 0 {
		d = -d
	}
	for _, t := range Tiers {
		if d <= t.MaxDistance {
			return t.Multiplier
		}
	}
	return 0
}
