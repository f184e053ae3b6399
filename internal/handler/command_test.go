package handler

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"casino-bot/internal/game"
	"casino-bot/internal/service"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		want Command
		ok   bool
	}{
		{"/mines 100", Command{Name: "mines", Args: []string{"100"}}, true},
		{"/Crash@casino_bot up", Command{Name: "crash", Args: []string{"up"}}, true},
		{"  /flip   50  heads ", Command{Name: "flip", Args: []string{"50", "heads"}}, true},
		{"/top", Command{Name: "top", Args: []string{}}, true},
		{"hello", Command{}, false},
		{"/", Command{}, false},
		{"/@bot", Command{}, false},
		{"", Command{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseCommand(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseCommandProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringMatching(`[a-zA-Z][a-zA-Z_]{0,11}`).Draw(t, "name")
		args := rapid.SliceOfN(rapid.StringMatching(`[a-z0-9.@]{1,8}`), 0, 4).Draw(t, "args")
		suffix := rapid.SampledFrom([]string{"", "@casino_bot"}).Draw(t, "suffix")

		text := "/" + name + suffix + " " + strings.Join(args, " ")
		cmd, ok := ParseCommand(text)
		if !ok {
			t.Fatalf("%q was not parsed", text)
		}
		if cmd.Name != strings.ToLower(name) {
			t.Fatalf("name %q, want %q", cmd.Name, strings.ToLower(name))
		}
		if len(cmd.Args) != len(args) {
			t.Fatalf("args %v, want %v", cmd.Args, args)
		}
	})
}

func TestIsAmount(t *testing.T) {
	for _, s := range []string{"100", "0", "-5", "1.5", "007"} {
		assert.True(t, isAmount(s), s)
	}
	for _, s := range []string{"", "hit", "up", "1e3", ".5", "5-", "cashout"} {
		assert.False(t, isAmount(s), s)
	}
}

func TestMentionName(t *testing.T) {
	name, ok := mentionName("@alice")
	assert.True(t, ok)
	assert.Equal(t, "alice", name)

	_, ok = mentionName("@")
	assert.False(t, ok)
	_, ok = mentionName("alice")
	assert.False(t, ok)
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: bet must be between 10 and 100", game.ErrBetOutOfRange), "❌ Bet must be between 10 and 100"},
		{fmt.Errorf("%w: you have 5 coins", game.ErrInsufficientFunds), "💸 Insufficient funds: You have 5 coins"},
		{fmt.Errorf("%w: wait 3s", game.ErrRateLimited), "⏳ Wait 3s"},
		{fmt.Errorf("%w: too many big wins", game.ErrIntegrityHold), "🚫 Your account is on hold: Too many big wins"},
		{fmt.Errorf("%w: no mines round, start one", game.ErrNoActiveSession), "🤷 No mines round, start one"},
		{service.ErrUserNotFound, "❌ User not found, they need to talk to the bot first"},
		{fmt.Errorf("%w: boom", game.ErrInternal), "❌ Something went wrong, please try again later"},
		{errors.New("connection refused"), "❌ Something went wrong, please try again later"},
		{game.ErrInvalidArgument, "❌ Invalid argument"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorText(tt.err), tt.err.Error())
	}
}

func TestErrorTextNeverLeaksUnknownErrors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		msg := rapid.StringMatching(`[a-z ]{1,30}`).Draw(t, "msg")
		got := ErrorText(errors.New(msg))
		if got != "❌ Something went wrong, please try again later" {
			t.Fatalf("unknown error rendered as %q", got)
		}
	})
}

func TestFormatReply(t *testing.T) {
	r := &service.Reply{
		Text:         "🎰 | 🍒 🍒 🍒 |",
		Balance:      1500,
		Settled:      true,
		Net:          500,
		Achievements: []service.AchievementDef{{Type: "big_win", Title: "Big Win", Emoji: "🎉"}},
	}
	got := FormatReply(r)
	assert.Contains(t, got, "🎰 | 🍒 🍒 🍒 |")
	assert.Contains(t, got, "+500")
	assert.Contains(t, got, "Balance: 1500")
	assert.Contains(t, got, "Achievement unlocked: 🎉 Big Win")

	open := FormatReply(&service.Reply{Text: "💣 pick a cell", Balance: 900})
	assert.NotContains(t, open, "📈")
	assert.NotContains(t, open, "📉")
	assert.Contains(t, open, "Balance: 900")

	lost := FormatReply(&service.Reply{Text: "lost", Balance: 900, Settled: true, Net: -100})
	assert.Contains(t, lost, "📉 -100")
}

func TestFormatWait(t *testing.T) {
	assert.Equal(t, "5h 3m", formatWait(5*time.Hour+3*time.Minute+20*time.Second))
	assert.Equal(t, "42m", formatWait(42*time.Minute))
	assert.Equal(t, "9s", formatWait(9*time.Second))
}

func TestRankLabel(t *testing.T) {
	assert.Equal(t, "🥇", rankLabel(0))
	assert.Equal(t, "🥉", rankLabel(2))
	assert.Equal(t, "4.", rankLabel(3))
}
