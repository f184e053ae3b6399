package blackjack

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"casino-bot/internal/game"
	"casino-bot/internal/game/cards"
	"casino-bot/internal/model"
)

func c(rank int8) model.Card { return model.Card{Rank: rank, Suit: cards.Spades} }

func TestTotal(t *testing.T) {
	assert.Equal(t, 21, Total([]int{11, 10}))
	assert.Equal(t, 21, Total([]int{11, 11, 9}), "31 demotes one ace")
	assert.Equal(t, 12, Total([]int{11, 11}))
	assert.Equal(t, 13, Total([]int{11, 11, 11}))
	assert.Equal(t, 22, Total([]int{10, 10, 2}))
	assert.Equal(t, 0, Total(nil))
}

func TestHandValue(t *testing.T) {
	assert.Equal(t, 21, HandValue([]model.Card{c(cards.Ace), c(cards.King)}))
	assert.Equal(t, 20, HandValue([]model.Card{c(cards.Queen), c(cards.Jack)}))
	assert.Equal(t, 21, HandValue([]model.Card{c(cards.Ace), c(cards.Ace), c(9)}))
	assert.Equal(t, 14, HandValue([]model.Card{c(cards.Ace), c(cards.King), c(3)}))
}

// TestHandValueOrderIndependentProperty checks that permuting a hand never
// changes its value.
func TestHandValueOrderIndependentProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "n")
		hand := make([]model.Card, n)
		for i := range hand {
			hand[i] = c(int8(rapid.IntRange(1, 13).Draw(t, "rank")))
		}
		want := HandValue(hand)

		perm := rand.New(rand.NewPCG(rapid.Uint64().Draw(t, "seed"), 3)).Perm(n)
		shuffled := make([]model.Card, n)
		for i, p := range perm {
			shuffled[i] = hand[p]
		}
		if got := HandValue(shuffled); got != want {
			t.Fatalf("value changed with order: %d vs %d", got, want)
		}
	})
}

func TestSettle(t *testing.T) {
	assert.Equal(t, int64(0), Settle(22, 18, 100), "player bust")
	assert.Equal(t, int64(200), Settle(18, 22, 100), "dealer bust")
	assert.Equal(t, int64(200), Settle(20, 19, 100))
	assert.Equal(t, int64(100), Settle(19, 19, 100))
	assert.Equal(t, int64(0), Settle(17, 19, 100))
}

func TestStartDealsTwoAndOne(t *testing.T) {
	b := New()
	st, step, err := b.Start(rand.New(rand.NewPCG(1, 1)), 100, nil)
	require.NoError(t, err)
	require.NoError(t, st.Validate())
	assert.False(t, step.Done)
	assert.Len(t, st.Blackjack.Player, 2)
	assert.Len(t, st.Blackjack.Dealer, 1)
	assert.Len(t, st.Blackjack.Shoe, 49)
	assert.Equal(t, int64(100), st.Stake)
	assert.NotEmpty(t, st.RoundID)
}

func stateWith(player, dealer, shoe []model.Card) *model.SessionState {
	return &model.SessionState{
		Kind:      model.KindBlackjack,
		Stake:     100,
		Blackjack: &model.BlackjackState{Player: player, Dealer: dealer, Shoe: shoe},
	}
}

func TestHit_Bust(t *testing.T) {
	st := stateWith([]model.Card{c(10), c(9)}, []model.Card{c(5)}, []model.Card{c(5)})
	step, err := New().Act(nil, st, ActionHit, nil)
	require.NoError(t, err)
	assert.True(t, step.Done)
	assert.Equal(t, int64(0), step.Payout)
}

func TestHit_Continue(t *testing.T) {
	st := stateWith([]model.Card{c(2), c(3)}, []model.Card{c(5)}, []model.Card{c(4)})
	step, err := New().Act(nil, st, "HIT", nil)
	require.NoError(t, err)
	assert.False(t, step.Done)
	assert.Len(t, st.Blackjack.Player, 3)
	assert.Empty(t, st.Blackjack.Shoe)
}

func TestStand_DealerDrawsToSeventeen(t *testing.T) {
	// Dealer 6, draws 10 (16), then 5 (21): dealer wins against 20.
	st := stateWith([]model.Card{c(10), c(cards.King)}, []model.Card{c(6)}, []model.Card{c(10), c(5), c(9)})
	step, err := New().Act(nil, st, ActionStand, nil)
	require.NoError(t, err)
	assert.True(t, step.Done)
	assert.Equal(t, int64(0), step.Payout)
	assert.Len(t, st.Blackjack.Dealer, 3)
	assert.Len(t, st.Blackjack.Shoe, 1)
}

func TestStand_WinAndPush(t *testing.T) {
	// Dealer 10 + 7 = 17 stands.
	win := stateWith([]model.Card{c(10), c(9)}, []model.Card{c(10)}, []model.Card{c(7)})
	step, err := New().Act(nil, win, ActionStand, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(200), step.Payout)

	push := stateWith([]model.Card{c(10), c(7)}, []model.Card{c(10)}, []model.Card{c(7)})
	step, err = New().Act(nil, push, ActionStand, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(100), step.Payout)
}

func TestAct_UnknownAction(t *testing.T) {
	st := stateWith([]model.Card{c(2), c(3)}, []model.Card{c(5)}, nil)
	_, err := New().Act(nil, st, "double", nil)
	assert.ErrorIs(t, err, game.ErrInvalidArgument)
	assert.Len(t, st.Blackjack.Player, 2, "rejected action must not mutate the hand")
}
