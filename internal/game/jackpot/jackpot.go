// Package jackpot implements the progressive jackpot: every stake feeds the
// bank and a winner takes all of it.
package jackpot

import (
	"fmt"

	"casino-bot/internal/game"
	"casino-bot/internal/model"
)

// JackpotGame is a single-turn pooled engine. The chance of winning is the
// stake's share of the bank after the stake is added.
type JackpotGame struct {
	floor int64
}

// New creates the jackpot engine; the bank resets to floor after a win.
func New(floor int64) *JackpotGame { return &JackpotGame{floor: floor} }

func (j *JackpotGame) Kind() string     { return model.KindJackpot }
func (j *JackpotGame) Name() string     { return "Jackpot" }
func (j *JackpotGame) Usage() string    { return "jackpot <bet>" }
func (j *JackpotGame) PoolName() string { return model.PoolJackpot }
func (j *JackpotGame) PoolFloor() int64 { return j.floor }

func (j *JackpotGame) Play(rng game.Rand, r game.Round) (game.Outcome, error) {
	if r.Pool < 0 {
		return game.Outcome{}, fmt.Errorf("%w: negative jackpot bank %d", game.ErrInternal, r.Pool)
	}
	bank := r.Pool + r.Bet
	out := game.Outcome{Stake: r.Bet}

	if int64(rng.IntN(int(bank))) < r.Bet {
		out.Payout = bank
		out.PoolAfter = j.floor
		out.Jackpot = true
		out.Text = fmt.Sprintf("🏆 JACKPOT! You took the whole bank: %d coins!", bank)
		return out, nil
	}

	out.PoolAfter = bank
	out.Text = fmt.Sprintf("🎰 No luck this time. Your %d coins joined the bank, now %d.\nWin chance was %s.",
		r.Bet, bank, Chance(r.Bet, bank))
	return out, nil
}

// Chance formats stake/bank as a percentage.
func Chance(stake, bank int64) string {
	if bank <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", float64(stake)*100/float64(bank))
}
