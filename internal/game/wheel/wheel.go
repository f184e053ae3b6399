// Package wheel implements the colour wheel of fortune.
package wheel

import (
	"fmt"
	"strings"

	"casino-bot/internal/game"
	"casino-bot/internal/model"
)

// Colours on the wheel.
const (
	Red   = "red"
	Black = "black"
	Green = "green"
)

var (
	colours     = []string{Red, Black, Green}
	weights     = []int{45, 45, 10}
	multipliers = map[string]int64{Red: 2, Black: 2, Green: 14}
	emoji       = map[string]string{Red: "🔴", Black: "⚫", Green: "🟢"}
)

// WheelGame is a single-turn engine.
type WheelGame struct{}

// New creates the wheel.
func New() *WheelGame { return &WheelGame{} }

func (w *WheelGame) Kind() string  { return model.KindWheel }
func (w *WheelGame) Name() string  { return "Wheel of Fortune" }
func (w *WheelGame) Usage() string { return "wheel <bet> <red|black|green>" }

// Play spins the wheel against the declared colour.
func (w *WheelGame) Play(rng game.Rand, r game.Round) (game.Outcome, error) {
	if len(r.Args) == 0 {
		return game.Outcome{}, fmt.Errorf("%w: choose red, black or green", game.ErrInvalidArgument)
	}
	choice := strings.ToLower(r.Args[0])
	if _, ok := multipliers[choice]; !ok {
		return game.Outcome{}, fmt.Errorf("%w: unknown colour %q", game.ErrInvalidArgument, r.Args[0])
	}

	landed := colours[game.Pick(rng, weights)]
	payout := CalculatePayout(choice, landed, r.Bet)

	text := fmt.Sprintf("🎡 The wheel stops on %s %s\n", emoji[landed], landed)
	if payout > 0 {
		text += fmt.Sprintf("💰 You won %d coins (x%d)", payout, multipliers[choice])
	} else {
		text += fmt.Sprintf("💸 You lost %d coins", r.Bet)
	}
	return game.Outcome{Stake: r.Bet, Payout: payout, Text: text}, nil
}

// CalculatePayout returns bet × 14 for a green hit, bet × 2 for a red or
// black hit, and 0 otherwise.
func CalculatePayout(choice, landed string, bet int64) int64 {
	if choice != landed {
		return 0
	}
	return bet * multipliers[landed]
}
