// Package slot implements the three-reel slot machine.
package slot

import (
	"fmt"
	"strings"

	"casino-bot/internal/game"
	"casino-bot/internal/model"
)

// Symbol is one reel face.
type Symbol struct {
	Face       string
	Weight     int   // relative draw weight, out of 100 across the reel
	Multiplier int64 // paid on three of a kind
}

// DefaultSymbols is the reel used in production. Weights sum to 100.
var DefaultSymbols = []Symbol{
	{Face: "🍎", Weight: 35, Multiplier: 2},
	{Face: "🍋", Weight: 25, Multiplier: 3},
	{Face: "🍒", Weight: 15, Multiplier: 5},
	{Face: "🔔", Weight: 12, Multiplier: 8},
	{Face: "7️⃣", Weight: 8, Multiplier: 10},
	{Face: "💎", Weight: 5, Multiplier: 20},
}

// SlotGame is a single-turn engine.
type SlotGame struct {
	symbols []Symbol
	weights []int
}

// New creates a slot machine over symbols, or DefaultSymbols when nil.
func New(symbols []Symbol) *SlotGame {
	if len(symbols) == 0 {
		symbols = DefaultSymbols
	}
	weights := make([]int, len(symbols))
	for i, s := range symbols {
		weights[i] = s.Weight
	}
	return &SlotGame{symbols: symbols, weights: weights}
}

func (s *SlotGame) Kind() string  { return model.KindSlots }
func (s *SlotGame) Name() string  { return "Slot Machine" }
func (s *SlotGame) Usage() string { return "slots <bet>" }

// Spin draws three reels independently.
func (s *SlotGame) Spin(rng game.Rand) [3]int {
	var reels [3]int
	for i := range reels {
		reels[i] = game.Pick(rng, s.weights)
	}
	return reels
}

// Play spins and settles.
func (s *SlotGame) Play(rng game.Rand, r game.Round) (game.Outcome, error) {
	reels := s.Spin(rng)
	payout := s.CalculatePayout(reels, r.Bet)

	faces := make([]string, len(reels))
	for i, idx := range reels {
		faces[i] = s.symbols[idx].Face
	}
	display := strings.Join(faces, " ")

	var text string
	switch {
	case payout > r.Bet:
		text = fmt.Sprintf("🎰 %s\n🎊 Three of a kind! You won %d coins (x%d)", display, payout, payout/r.Bet)
	case payout == r.Bet:
		text = fmt.Sprintf("🎰 %s\n😐 Two of a kind. Your bet is returned.", display)
	default:
		text = fmt.Sprintf("🎰 %s\n😢 No match. You lost %d coins.", display, r.Bet)
	}

	return game.Outcome{Stake: r.Bet, Payout: payout, Text: text}, nil
}

// CalculatePayout returns the gross payout of a spin:
//   - three of a kind: bet × symbol multiplier
//   - exactly two of a kind: bet (stake returned)
//   - otherwise: 0
func (s *SlotGame) CalculatePayout(reels [3]int, bet int64) int64 {
	a, b, c := reels[0], reels[1], reels[2]
	if a == b && b == c {
		return bet * s.symbols[a].Multiplier
	}
	if a == b || b == c || a == c {
		return bet
	}
	return 0
}
