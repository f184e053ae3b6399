package cards

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"casino-bot/internal/model"
)

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	assert.Len(t, deck, 52)
	seen := map[model.Card]bool{}
	for _, c := range deck {
		assert.False(t, seen[c], "duplicate %s", String(c))
		seen[c] = true
	}
}

func TestShuffledIsPermutationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		deck := Shuffled(rand.New(rand.NewPCG(seed, 1)))
		if len(deck) != 52 {
			t.Fatalf("deck has %d cards", len(deck))
		}
		seen := map[model.Card]bool{}
		for _, c := range deck {
			if seen[c] {
				t.Fatalf("duplicate card %s", String(c))
			}
			seen[c] = true
		}
	})
}

func TestDrawAndString(t *testing.T) {
	deck := []model.Card{{Rank: Ace, Suit: Spades}, {Rank: 10, Suit: Hearts}}
	c := Draw(&deck)
	assert.Equal(t, "A♠", String(c))
	assert.Len(t, deck, 1)
	assert.Equal(t, "10♥", Hand(deck))
	assert.Equal(t, "??", String(model.Card{}))
}
