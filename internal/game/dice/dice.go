// Package dice implements the dice duel against the house.
package dice

import (
	"fmt"

	"casino-bot/internal/game"
	"casino-bot/internal/model"
)

// DiceGame is a single-turn engine: the player and the house each roll two
// dice and the higher total wins.
type DiceGame struct{}

// New creates the dice duel.
func New() *DiceGame { return &DiceGame{} }

func (d *DiceGame) Kind() string  { return model.KindDice }
func (d *DiceGame) Name() string  { return "Dice Duel" }
func (d *DiceGame) Usage() string { return "dice <bet>" }

// Roll returns two dice values in [1,6].
func Roll(rng game.Rand) (int, int) {
	return rng.IntN(6) + 1, rng.IntN(6) + 1
}

func (d *DiceGame) Play(rng game.Rand, r game.Round) (game.Outcome, error) {
	p1, p2 := Roll(rng)
	h1, h2 := Roll(rng)
	player, house := p1+p2, h1+h2
	payout := CalculatePayout(player, house, r.Bet)

	text := fmt.Sprintf("🎲 You: %d + %d = %d\n🎲 House: %d + %d = %d\n", p1, p2, player, h1, h2, house)
	switch {
	case payout > r.Bet:
		text += fmt.Sprintf("🎉 You won %d coins!", payout-r.Bet)
	case payout == r.Bet:
		text += "😐 Push! Your bet is returned."
	default:
		text += fmt.Sprintf("😢 You lost %d coins.", r.Bet)
	}
	return game.Outcome{Stake: r.Bet, Payout: payout, Text: text}, nil
}

// CalculatePayout returns the gross payout:
//   - player total above house: 2 × bet
//   - equal totals: bet (push)
//   - otherwise: 0
func CalculatePayout(player, house int, bet int64) int64 {
	switch {
	case player > house:
		return bet * 2
	case player == house:
		return bet
	default:
		return 0
	}
}
