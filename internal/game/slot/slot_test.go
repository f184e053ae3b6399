package slot

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"casino-bot/internal/game"
	"casino-bot/internal/game/gametest"
)

func TestDefaultSymbols(t *testing.T) {
	require.Len(t, DefaultSymbols, 6)
	total := 0
	for _, s := range DefaultSymbols {
		total += s.Weight
	}
	assert.Equal(t, 100, total)
}

func TestCalculatePayout(t *testing.T) {
	s := New(nil)
	tests := []struct {
		name  string
		reels [3]int
		bet   int64
		want  int64
	}{
		{"three apples", [3]int{0, 0, 0}, 100, 200},
		{"three lemons", [3]int{1, 1, 1}, 100, 300},
		{"three cherries", [3]int{2, 2, 2}, 100, 500},
		{"three bells", [3]int{3, 3, 3}, 100, 800},
		{"three sevens", [3]int{4, 4, 4}, 100, 1000},
		{"three diamonds", [3]int{5, 5, 5}, 100, 2000},
		{"pair left", [3]int{5, 5, 0}, 100, 100},
		{"pair right", [3]int{0, 5, 5}, 100, 100},
		{"pair split", [3]int{2, 0, 2}, 100, 100},
		{"no match", [3]int{0, 1, 2}, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.CalculatePayout(tt.reels, tt.bet))
		})
	}
}

func TestPlay_ScriptedSpin(t *testing.T) {
	s := New(nil)

	// 96 lands in the diamond band [95,100) on every reel.
	out, err := s.Play(&gametest.Scripted{Ints: []int{96, 97, 99}}, game.Round{Bet: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(10), out.Stake)
	assert.Equal(t, int64(200), out.Payout)
	assert.Contains(t, out.Text, "💎 💎 💎")

	out, err = s.Play(&gametest.Scripted{Ints: []int{0, 40, 70}}, game.Round{Bet: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.Payout)
	assert.Equal(t, int64(-10), out.Net())
}

// TestPayoutProperty checks the payout is one of: zero, the stake back, or a
// multiple of the stake from the symbol table.
func TestPayoutProperty(t *testing.T) {
	s := New(nil)
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		bet := rapid.Int64Range(1, 1000000).Draw(t, "bet")
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

		out, err := s.Play(rng, game.Round{Bet: bet})
		if err != nil {
			t.Fatal(err)
		}
		if out.Stake != bet {
			t.Fatalf("stake %d != bet %d", out.Stake, bet)
		}
		if out.Payout == 0 || out.Payout == bet {
			return
		}
		for _, sym := range DefaultSymbols {
			if out.Payout == bet*sym.Multiplier {
				return
			}
		}
		t.Fatalf("unexpected payout %d for bet %d", out.Payout, bet)
	})
}

func TestSpinDistribution(t *testing.T) {
	s := New(nil)
	rng := rand.New(rand.NewPCG(1, 2))
	counts := make([]int, len(DefaultSymbols))
	const n = 60000
	for i := 0; i < n/3; i++ {
		for _, idx := range s.Spin(rng) {
			counts[idx]++
		}
	}
	for i, sym := range DefaultSymbols {
		got := float64(counts[i]) / n
		want := float64(sym.Weight) / 100
		assert.InDelta(t, want, got, 0.02, "symbol %s", sym.Face)
	}
}
