package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"casino-bot/internal/game"
	"casino-bot/internal/model"
	"casino-bot/internal/pkg/lock"
	"casino-bot/internal/repository"
)

func types(defs []AchievementDef) []string {
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.Type)
	}
	return out
}

func TestQualifying(t *testing.T) {
	assert.Empty(t, Qualifying(&model.Account{Balance: 1000}, 50))

	acct := &model.Account{Balance: 1_200_000, GamesWon: 100, PokerWins: 50}
	assert.ElementsMatch(t,
		[]string{"millionaire", "big_win", "pro_player", "poker_pro"},
		types(Qualifying(acct, 150_000)))

	acct = &model.Account{Balance: 6_000_000, GamesPlayed: 1000, JackpotWins: 3, TournamentWins: 5}
	assert.ElementsMatch(t,
		[]string{"millionaire", "casino_legend", "jackpot", "big_win", "avid_player", "lucky_one", "tournament_fighter"},
		types(Qualifying(acct, 500_000)))
}

func TestAchievementByType(t *testing.T) {
	def, ok := AchievementByType("lucky_one")
	assert.True(t, ok)
	assert.Equal(t, "Lucky One", def.Title)

	_, ok = AchievementByType("nope")
	assert.False(t, ok)
}

func TestTournamentPoints(t *testing.T) {
	assert.Equal(t, int64(1), TournamentPoints(1, 100))
	assert.Equal(t, int64(1), TournamentPoints(199, 100))
	assert.Equal(t, int64(25), TournamentPoints(2500, 100))
	assert.Equal(t, int64(5), TournamentPoints(500, 0), "zero divisor falls back to 100")
}

func TestClassify(t *testing.T) {
	rate := fmt.Errorf("%w: slow down", game.ErrRateLimited)
	assert.Same(t, rate, classify(rate, 1, "slots", "play", nil))

	assert.ErrorIs(t, classify(lock.ErrLockTimeout, 1, "slots", "play", nil), game.ErrRateLimited)
	assert.ErrorIs(t, classify(repository.ErrNegativeBalance, 1, "slots", "play", nil), game.ErrInsufficientFunds)

	st := &model.SessionState{Kind: model.KindCrash, Stake: 10}
	err := classify(errors.New("connection reset"), 1, "crash", "up", st)
	assert.ErrorIs(t, err, game.ErrInternal)
	assert.Contains(t, err.Error(), "connection reset")

	internal := fmt.Errorf("%w: broken engine", game.ErrInternal)
	assert.Same(t, internal, classify(internal, 1, "mines", "open", st))
}
