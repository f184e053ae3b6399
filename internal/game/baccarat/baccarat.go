// Package baccarat implements punto banco with the standard third-card
// rules.
package baccarat

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"casino-bot/internal/game"
	"casino-bot/internal/game/cards"
	"casino-bot/internal/model"
)

// Bet sides.
const (
	SidePlayer = "player"
	SideBanker = "banker"
	SideTie    = "tie"
)

var (
	playerMultiplier = decimal.NewFromInt(2)
	bankerMultiplier = decimal.RequireFromString("1.95") // 5% commission
	tieMultiplier    = decimal.NewFromInt(9)
)

// BaccaratGame is a single-turn engine.
type BaccaratGame struct{}

// New creates the baccarat engine.
func New() *BaccaratGame { return &BaccaratGame{} }

func (b *BaccaratGame) Kind() string  { return model.KindBaccarat }
func (b *BaccaratGame) Name() string  { return "Baccarat" }
func (b *BaccaratGame) Usage() string { return "baccarat <bet> <player|banker|tie>" }

// Value is the baccarat value of a card: aces 1, tens and faces 0.
func Value(c model.Card) int {
	if c.Rank >= 10 {
		return 0
	}
	return int(c.Rank)
}

// Total is the hand value modulo 10.
func Total(hand []model.Card) int {
	sum := 0
	for _, c := range hand {
		sum += Value(c)
	}
	return sum % 10
}

// BankerDraws applies the banker's third-card table. drewThird reports
// whether the player took a third card and third is its value.
func BankerDraws(banker int, drewThird bool, third int) bool {
	if !drewThird {
		return banker <= 5
	}
	switch banker {
	case 0, 1, 2:
		return true
	case 3:
		return third != 8
	case 4:
		return third >= 2 && third <= 7
	case 5:
		return third >= 4 && third <= 7
	case 6:
		return third == 6 || third == 7
	default:
		return false
	}
}

// Coup is a dealt round.
type Coup struct {
	Player []model.Card
	Banker []model.Card
}

// Winner returns the winning side.
func (c Coup) Winner() string {
	p, b := Total(c.Player), Total(c.Banker)
	switch {
	case p > b:
		return SidePlayer
	case b > p:
		return SideBanker
	default:
		return SideTie
	}
}

// DealFrom plays out a coup from deck, which must hold at least six cards.
func DealFrom(deck []model.Card) Coup {
	var c Coup
	c.Player = append(c.Player, cards.Draw(&deck))
	c.Banker = append(c.Banker, cards.Draw(&deck))
	c.Player = append(c.Player, cards.Draw(&deck))
	c.Banker = append(c.Banker, cards.Draw(&deck))

	p, b := Total(c.Player), Total(c.Banker)
	if p >= 8 || b >= 8 {
		return c
	}

	drewThird, third := false, 0
	if p <= 5 {
		card := cards.Draw(&deck)
		c.Player = append(c.Player, card)
		drewThird, third = true, Value(card)
	}
	if BankerDraws(b, drewThird, third) {
		c.Banker = append(c.Banker, cards.Draw(&deck))
	}
	return c
}

// Payout returns the gross payout of a bet on side when winner won.
// Player and banker bets push on a tie.
func Payout(side, winner string, bet int64) int64 {
	stake := decimal.NewFromInt(bet)
	switch {
	case side == winner && side == SidePlayer:
		return stake.Mul(playerMultiplier).IntPart()
	case side == winner && side == SideBanker:
		return stake.Mul(bankerMultiplier).Floor().IntPart()
	case side == winner && side == SideTie:
		return stake.Mul(tieMultiplier).IntPart()
	case winner == SideTie:
		return bet
	default:
		return 0
	}
}

func (b *BaccaratGame) Play(rng game.Rand, r game.Round) (game.Outcome, error) {
	if len(r.Args) == 0 {
		return game.Outcome{}, fmt.Errorf("%w: choose player, banker or tie", game.ErrInvalidArgument)
	}
	side := strings.ToLower(r.Args[0])
	if side != SidePlayer && side != SideBanker && side != SideTie {
		return game.Outcome{}, fmt.Errorf("%w: unknown side %q, choose player, banker or tie", game.ErrInvalidArgument, r.Args[0])
	}

	coup := DealFrom(cards.Shuffled(rng))
	winner := coup.Winner()
	payout := Payout(side, winner, r.Bet)

	text := fmt.Sprintf("🎴 Player: %s (%d)\n🎴 Banker: %s (%d)\n%s wins.\n",
		cards.Hand(coup.Player), Total(coup.Player), cards.Hand(coup.Banker), Total(coup.Banker), capitalize(winner))
	switch {
	case payout > r.Bet:
		text += fmt.Sprintf("🎉 Your %s bet won %d coins!", side, payout-r.Bet)
	case payout == r.Bet:
		text += "😐 Push! Your bet is returned."
	default:
		text += fmt.Sprintf("😢 You lost %d coins.", r.Bet)
	}
	return game.Outcome{Stake: r.Bet, Payout: payout, Text: text}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
