// Package poker implements heads-up Texas Hold'em against the house: both
// sides get two hole cards and share a five-card board.
package poker

import (
	"fmt"

	"github.com/paulhankin/poker"

	"casino-bot/internal/game"
	"casino-bot/internal/game/cards"
	"casino-bot/internal/model"
)

// PokerGame is a single-turn engine. A win pays 2× the bet and a split pot
// returns the bet.
type PokerGame struct{}

// New creates the poker engine.
func New() *PokerGame { return &PokerGame{} }

func (p *PokerGame) Kind() string  { return model.KindPoker }
func (p *PokerGame) Name() string  { return "Poker" }
func (p *PokerGame) Usage() string { return "poker <bet>" }

// Deal is one dealt hand.
type Deal struct {
	Player [2]model.Card
	House  [2]model.Card
	Board  [5]model.Card
}

// Result of a showdown from the player's side.
type Result int

const (
	Lose Result = iota - 1
	Split
	Win
)

// Showdown scores both seven-card hands. Higher scores are stronger.
type Showdown struct {
	Result      Result
	PlayerScore int16
	HouseScore  int16
	PlayerHand  string
	HouseHand   string
}

// DealFrom deals from a shuffled deck: player, house, player, house, then
// the board.
func DealFrom(rng game.Rand) Deal {
	deck := cards.Shuffled(rng)
	var d Deal
	for i := 0; i < 2; i++ {
		d.Player[i] = cards.Draw(&deck)
		d.House[i] = cards.Draw(&deck)
	}
	for i := range d.Board {
		d.Board[i] = cards.Draw(&deck)
	}
	return d
}

// Evaluate compares the player's and house's best hands.
func Evaluate(d Deal) (Showdown, error) {
	player, err := sevenOf(d.Player, d.Board)
	if err != nil {
		return Showdown{}, err
	}
	house, err := sevenOf(d.House, d.Board)
	if err != nil {
		return Showdown{}, err
	}

	s := Showdown{PlayerScore: poker.Eval7(&player), HouseScore: poker.Eval7(&house)}
	switch {
	case s.PlayerScore > s.HouseScore:
		s.Result = Win
	case s.PlayerScore < s.HouseScore:
		s.Result = Lose
	default:
		s.Result = Split
	}
	if s.PlayerHand, err = poker.Describe(player[:]); err != nil {
		return Showdown{}, err
	}
	if s.HouseHand, err = poker.Describe(house[:]); err != nil {
		return Showdown{}, err
	}
	return s, nil
}

func sevenOf(hole [2]model.Card, board [5]model.Card) ([7]poker.Card, error) {
	var out [7]poker.Card
	all := append(hole[:], board[:]...)
	for i, c := range all {
		pc, err := poker.MakeCard(poker.Suit(c.Suit), poker.Rank(c.Rank))
		if err != nil {
			return out, fmt.Errorf("invalid card %s: %w", cards.String(c), err)
		}
		out[i] = pc
	}
	return out, nil
}

// Payout returns the gross payout for a result.
func Payout(r Result, bet int64) int64 {
	switch r {
	case Win:
		return bet * 2
	case Split:
		return bet
	default:
		return 0
	}
}

func (p *PokerGame) Play(rng game.Rand, r game.Round) (game.Outcome, error) {
	d := DealFrom(rng)
	s, err := Evaluate(d)
	if err != nil {
		return game.Outcome{}, fmt.Errorf("%w: %v", game.ErrInternal, err)
	}

	payout := Payout(s.Result, r.Bet)
	text := fmt.Sprintf("🃏 Board: %s\nYou: %s (%s)\nHouse: %s (%s)\n",
		cards.Hand(d.Board[:]), cards.Hand(d.Player[:]), s.PlayerHand, cards.Hand(d.House[:]), s.HouseHand)
	switch s.Result {
	case Win:
		text += fmt.Sprintf("🎉 You won %d coins!", payout-r.Bet)
	case Split:
		text += "🤝 Split pot, your bet is returned."
	default:
		text += fmt.Sprintf("😢 House wins. You lost %d coins.", r.Bet)
	}
	return game.Outcome{Stake: r.Bet, Payout: payout, Text: text}, nil
}
