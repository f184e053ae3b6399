package lottery

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"casino-bot/internal/game"
	"casino-bot/internal/game/gametest"
)

func TestRoll(t *testing.T) {
	l := New(DefaultConfig())
	assert.Equal(t, Jackpot, l.Roll(0))
	assert.Equal(t, Medium, l.Roll(1))
	assert.Equal(t, Medium, l.Roll(5))
	assert.Equal(t, Small, l.Roll(6))
	assert.Equal(t, Small, l.Roll(20))
	assert.Equal(t, Miss, l.Roll(21))
	assert.Equal(t, Miss, l.Roll(99))
}

func TestPlay_JackpotDrainsAndResetsPool(t *testing.T) {
	l := New(DefaultConfig())
	// Ticket 1 misses (+50 to the pool), ticket 2 hits the jackpot.
	out, err := l.Play(&gametest.Scripted{Ints: []int{50, 0}}, game.Round{Bet: 2, Pool: 5000})
	require.NoError(t, err)

	assert.Equal(t, int64(200), out.Stake)
	assert.Equal(t, int64(5050), out.Payout)
	assert.Equal(t, int64(1000), out.PoolAfter)
	assert.True(t, out.Jackpot)
}

func TestPlay_MissesFeedPool(t *testing.T) {
	l := New(DefaultConfig())
	out, err := l.Play(&gametest.Scripted{Ints: []int{99, 98, 97}}, game.Round{Bet: 3, Pool: 1000})
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.Payout)
	assert.Equal(t, int64(1150), out.PoolAfter)
	assert.False(t, out.Jackpot)
}

func TestPlay_FixedTiers(t *testing.T) {
	l := New(DefaultConfig())
	out, err := l.Play(&gametest.Scripted{Ints: []int{3, 10}}, game.Round{Bet: 2, Pool: 1000})
	require.NoError(t, err)
	assert.Equal(t, int64(1000+200), out.Payout)
	assert.Equal(t, int64(1000), out.PoolAfter)
}

func TestPlay_TicketBounds(t *testing.T) {
	l := New(DefaultConfig())
	_, err := l.Play(&gametest.Scripted{}, game.Round{Bet: 11, Pool: 1000})
	assert.ErrorIs(t, err, game.ErrBetOutOfRange)
	_, err = l.Play(&gametest.Scripted{}, game.Round{Bet: 0, Pool: 1000})
	assert.ErrorIs(t, err, game.ErrBetOutOfRange)
}

func TestStakeFor(t *testing.T) {
	assert.Equal(t, int64(700), New(DefaultConfig()).StakeFor(7))
}

func TestPoolNeverNegativeProperty(t *testing.T) {
	l := New(DefaultConfig())
	rapid.Check(t, func(t *rapid.T) {
		pool := rapid.Int64Range(0, 1000000).Draw(t, "pool")
		tickets := rapid.Int64Range(1, 10).Draw(t, "tickets")
		rng := rand.New(rand.NewPCG(rapid.Uint64().Draw(t, "seed"), 13))

		out, err := l.Play(rng, game.Round{Bet: tickets, Pool: pool})
		if err != nil {
			t.Fatal(err)
		}
		if out.PoolAfter < 0 || out.Payout < 0 {
			t.Fatalf("negative pool %d or payout %d", out.PoolAfter, out.Payout)
		}
		if !out.Jackpot && out.PoolAfter < pool {
			t.Fatalf("pool shrank from %d to %d without a jackpot", pool, out.PoolAfter)
		}
	})
}
