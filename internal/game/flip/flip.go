// Package flip implements the coin flip.
package flip

import (
	"fmt"
	"strings"

	"casino-bot/internal/game"
	"casino-bot/internal/model"
)

// Coin sides.
const (
	Heads = "heads"
	Tails = "tails"
)

// FlipGame is a single-turn engine paying double on a correct call.
type FlipGame struct{}

// New creates the coin flip.
func New() *FlipGame { return &FlipGame{} }

func (f *FlipGame) Kind() string  { return model.KindFlip }
func (f *FlipGame) Name() string  { return "Coin Flip" }
func (f *FlipGame) Usage() string { return "flip <bet> <heads|tails>" }

func (f *FlipGame) Play(rng game.Rand, r game.Round) (game.Outcome, error) {
	if len(r.Args) == 0 {
		return game.Outcome{}, fmt.Errorf("%w: choose heads or tails", game.ErrInvalidArgument)
	}
	call := strings.ToLower(r.Args[0])
	if call != Heads && call != Tails {
		return game.Outcome{}, fmt.Errorf("%w: unknown side %q", game.ErrInvalidArgument, r.Args[0])
	}

	landed := Heads
	if rng.IntN(2) == 1 {
		landed = Tails
	}

	out := game.Outcome{Stake: r.Bet}
	if landed == call {
		out.Payout = r.Bet * 2
		out.Text = fmt.Sprintf("🪙 %s!\n💰 You won %d coins", landed, r.Bet)
	} else {
		out.Text = fmt.Sprintf("🪙 %s!\n💸 You lost %d coins", landed, r.Bet)
	}
	return out, nil
}
