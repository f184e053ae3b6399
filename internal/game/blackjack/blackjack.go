// Package blackjack implements a multi-turn blackjack hand against the
// dealer.
package blackjack

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"casino-bot/internal/game"
	"casino-bot/internal/game/cards"
	"casino-bot/internal/model"
)

// Actions.
const (
	ActionHit   = "hit"
	ActionStand = "stand"
)

const (
	bust        = 21
	dealerStand = 17
)

// BlackjackGame is a multi-turn engine. The stake is held by the session
// from Start until the hand settles.
type BlackjackGame struct{}

// New creates the blackjack engine.
func New() *BlackjackGame { return &BlackjackGame{} }

func (b *BlackjackGame) Kind() string  { return model.KindBlackjack }
func (b *BlackjackGame) Name() string  { return "Blackjack" }
func (b *BlackjackGame) Usage() string { return "blackjack <bet> | blackjack hit | blackjack stand" }

// Start deals two cards to the player and one up-card to the dealer.
func (b *BlackjackGame) Start(rng game.Rand, bet int64, _ []string) (model.SessionState, game.Step, error) {
	shoe := cards.Shuffled(rng)
	st := &model.BlackjackState{}
	st.Player = append(st.Player, cards.Draw(&shoe), cards.Draw(&shoe))
	st.Dealer = append(st.Dealer, cards.Draw(&shoe))
	st.Shoe = shoe

	state := model.SessionState{
		Kind:      model.KindBlackjack,
		RoundID:   uuid.NewString(),
		Stake:     bet,
		Blackjack: st,
	}
	return state, game.Step{Text: render(st, "🃏 Blackjack! hit or stand?")}, nil
}

// Act applies hit or stand.
func (b *BlackjackGame) Act(_ game.Rand, s *model.SessionState, action string, _ []string) (game.Step, error) {
	st := s.Blackjack
	if st == nil {
		return game.Step{}, fmt.Errorf("%w: blackjack session has no hand", game.ErrInternal)
	}

	switch strings.ToLower(action) {
	case ActionHit:
		st.Player = append(st.Player, cards.Draw(&st.Shoe))
		if HandValue(st.Player) > bust {
			return game.Step{Done: true, Text: render(st, fmt.Sprintf("💥 Bust! You lost %d coins.", s.Stake))}, nil
		}
		return game.Step{Text: render(st, "hit or stand?")}, nil

	case ActionStand:
		for HandValue(st.Dealer) < dealerStand {
			st.Dealer = append(st.Dealer, cards.Draw(&st.Shoe))
		}
		payout := Settle(HandValue(st.Player), HandValue(st.Dealer), s.Stake)
		var msg string
		switch {
		case payout > s.Stake:
			msg = fmt.Sprintf("🎉 You win %d coins!", payout-s.Stake)
		case payout == s.Stake:
			msg = "🤝 Push. Your bet is returned."
		default:
			msg = fmt.Sprintf("😢 Dealer wins. You lost %d coins.", s.Stake)
		}
		return game.Step{Done: true, Payout: payout, Text: render(st, msg)}, nil

	default:
		return game.Step{}, fmt.Errorf("%w: unknown blackjack action %q, use hit or stand", game.ErrInvalidArgument, action)
	}
}

// Settle returns the gross payout after the dealer has played.
func Settle(player, dealer int, stake int64) int64 {
	switch {
	case player > bust:
		return 0
	case dealer > bust || player > dealer:
		return stake * 2
	case player == dealer:
		return stake
	default:
		return 0
	}
}

// CardValue is the initial value of a card: aces 11, faces 10.
func CardValue(c model.Card) int {
	switch {
	case c.Rank == cards.Ace:
		return 11
	case c.Rank >= 10:
		return 10
	default:
		return int(c.Rank)
	}
}

// HandValue evaluates a hand.
func HandValue(hand []model.Card) int {
	values := make([]int, len(hand))
	for i, c := range hand {
		values[i] = CardValue(c)
	}
	return Total(values)
}

// Total sums card values where 11 marks an ace, then demotes aces to 1 one
// at a time while the total exceeds 21.
func Total(values []int) int {
	total, aces := 0, 0
	for _, v := range values {
		total += v
		if v == 11 {
			aces++
		}
	}
	for total > bust && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

func render(st *model.BlackjackState, msg string) string {
	return fmt.Sprintf("You: %s (%d)\nDealer: %s (%d)\n%s",
		cards.Hand(st.Player), HandValue(st.Player),
		cards.Hand(st.Dealer), HandValue(st.Dealer),
		msg)
}
