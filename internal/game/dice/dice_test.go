package dice

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"casino-bot/internal/game"
	"casino-bot/internal/game/gametest"
)

func TestCalculatePayout(t *testing.T) {
	tests := []struct {
		name          string
		player, house int
		bet           int64
		expected      int64
	}{
		{"player higher", 9, 7, 100, 200},
		{"player twelve", 12, 11, 100, 200},
		{"tie pushes", 7, 7, 100, 100},
		{"house higher", 3, 8, 100, 0},
		{"snake eyes loses", 2, 12, 500, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculatePayout(tt.player, tt.house, tt.bet))
		})
	}
}

func TestPlay_Scripted(t *testing.T) {
	d := New()
	// Player rolls 6+6, house rolls 1+2.
	out, err := d.Play(&gametest.Scripted{Ints: []int{5, 5, 0, 1}}, game.Round{Bet: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(20), out.Payout)
	assert.Contains(t, out.Text, "= 12")
	assert.Contains(t, out.Text, "= 3")
}

// TestBalanceLawProperty checks newBalance = start − bet + payout and that
// the payout is one of 0, bet, 2×bet.
func TestBalanceLawProperty(t *testing.T) {
	d := New()
	rapid.Check(t, func(t *rapid.T) {
		bet := rapid.Int64Range(1, 100000).Draw(t, "bet")
		start := rapid.Int64Range(bet, 10000000).Draw(t, "start")
		seed := rapid.Uint64().Draw(t, "seed")

		out, err := d.Play(rand.New(rand.NewPCG(seed, 7)), game.Round{Bet: bet})
		if err != nil {
			t.Fatal(err)
		}
		if out.Payout != 0 && out.Payout != bet && out.Payout != 2*bet {
			t.Fatalf("unexpected payout %d", out.Payout)
		}
		if start+out.Net() != start-bet+out.Payout {
			t.Fatal("net delta does not match the balance law")
		}
	})
}

func TestRollRangeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		a, b := Roll(rand.New(rand.NewPCG(seed, seed)))
		if a < 1 || a > 6 || b < 1 || b > 6 {
			t.Fatalf("dice out of range: %d, %d", a, b)
		}
	})
}
