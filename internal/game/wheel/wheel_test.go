package wheel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casino-bot/internal/game"
	"casino-bot/internal/game/gametest"
)

func TestCalculatePayout(t *testing.T) {
	assert.Equal(t, int64(1400), CalculatePayout(Green, Green, 100))
	assert.Equal(t, int64(200), CalculatePayout(Red, Red, 100))
	assert.Equal(t, int64(200), CalculatePayout(Black, Black, 100))
	assert.Equal(t, int64(0), CalculatePayout(Red, Black, 100))
	assert.Equal(t, int64(0), CalculatePayout(Green, Red, 100))
}

func TestPlay(t *testing.T) {
	w := New()

	// Rolls 0-44 are red, 45-89 black, 90-99 green.
	out, err := w.Play(&gametest.Scripted{Ints: []int{95}}, game.Round{Bet: 10, Args: []string{"GREEN"}})
	require.NoError(t, err)
	assert.Equal(t, int64(140), out.Payout)
	assert.Equal(t, int64(130), out.Net(), "multipliers are gross, the stake is part of the payout")

	out, err = w.Play(&gametest.Scripted{Ints: []int{50}}, game.Round{Bet: 10, Args: []string{"red"}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.Payout)
	assert.Contains(t, out.Text, "black")
}

func TestPlay_InvalidChoice(t *testing.T) {
	w := New()
	_, err := w.Play(&gametest.Scripted{}, game.Round{Bet: 10})
	assert.ErrorIs(t, err, game.ErrInvalidArgument)

	_, err = w.Play(&gametest.Scripted{}, game.Round{Bet: 10, Args: []string{"blue"}})
	assert.ErrorIs(t, err, game.ErrInvalidArgument)
}
