package service

import (
	"context"
	"errors"
	"fmt"

	"casino-bot/internal/config"
	"casino-bot/internal/model"
	"casino-bot/internal/repository"
)

// AchievementDef is one row of the fixed achievement table.
type AchievementDef struct {
	Type  string
	Title string
	Emoji string
	// Unlocked reports whether acct qualifies; lastWin is the net of the
	// settlement being processed.
	Unlocked func(acct *model.Account, lastWin int64) bool
}

// Achievements is the fixed achievement table, evaluated after every
// settlement.
var Achievements = []AchievementDef{
	{Type: "millionaire", Title: "Millionaire", Emoji: "💰",
		Unlocked: func(a *model.Account, _ int64) bool { return a.Balance >= 1_000_000 }},
	{Type: "big_win", Title: "Big Win", Emoji: "🎉",
		Unlocked: func(_ *model.Account, w int64) bool { return w >= 100_000 }},
	{Type: "pro_player", Title: "Pro Player", Emoji: "🏅",
		Unlocked: func(a *model.Account, _ int64) bool { return a.GamesWon >= 100 }},
	{Type: "casino_legend", Title: "Casino Legend", Emoji: "👑",
		Unlocked: func(a *model.Account, _ int64) bool { return a.Balance >= 5_000_000 }},
	{Type: "jackpot", Title: "Jackpot", Emoji: "💎",
		Unlocked: func(_ *model.Account, w int64) bool { return w >= 500_000 }},
	{Type: "avid_player", Title: "Avid Player", Emoji: "🎲",
		Unlocked: func(a *model.Account, _ int64) bool { return a.GamesPlayed >= 1000 }},
	{Type: "poker_pro", Title: "Poker Pro", Emoji: "🃏",
		Unlocked: func(a *model.Account, _ int64) bool { return a.PokerWins >= 50 }},
	{Type: "lucky_one", Title: "Lucky One", Emoji: "🍀",
		Unlocked: func(a *model.Account, _ int64) bool { return a.JackpotWins >= 3 }},
	{Type: "tournament_fighter", Title: "Tournament Fighter", Emoji: "⚔️",
		Unlocked: func(a *model.Account, _ int64) bool { return a.TournamentWins >= 5 }},
}

// Qualifying returns the table rows acct satisfies. It is pure.
func Qualifying(acct *model.Account, lastWin int64) []AchievementDef {
	var out []AchievementDef
	for _, def := range Achievements {
		if def.Unlocked(acct, lastWin) {
			out = append(out, def)
		}
	}
	return out
}

// AchievementByType looks a table row up.
func AchievementByType(t string) (AchievementDef, bool) {
	for _, def := range Achievements {
		if def.Type == t {
			return def, true
		}
	}
	return AchievementDef{}, false
}

// Settlement is what the post-processor needs to know about one finished
// round.
type Settlement struct {
	OwnerID int64
	Kind    string
	Net     int64
	Jackpot bool
}

// Stats updates counters, the big-win log, tournament points and
// achievements after a settlement. It always runs inside the settling
// transaction.
type Stats struct {
	casino *config.CasinoConfig
}

// NewStats creates the post-processor.
func NewStats(casino *config.CasinoConfig) *Stats {
	return &Stats{casino: casino}
}

// Settle records s and returns the achievements it newly unlocked.
func (p *Stats) Settle(ctx context.Context, st *repository.Store, s Settlement) ([]AchievementDef, error) {
	won := s.Net > 0
	acct, err := st.Accounts.RecordResult(ctx, s.OwnerID, repository.Result{
		Net:        s.Net,
		PokerWin:   won && s.Kind == model.KindPoker,
		JackpotWin: won && s.Jackpot,
	})
	if err != nil {
		return nil, err
	}

	if won && s.Net > p.casino.Guard.BigWinFloor {
		err := st.BigWins.Record(ctx, model.BigWin{
			OwnerID:  s.OwnerID,
			GameKind: s.Kind,
			Amount:   s.Net,
			Jackpot:  s.Jackpot,
		})
		if err != nil {
			return nil, err
		}
	}

	if won {
		if err := p.awardPoints(ctx, st, s.OwnerID, s.Net); err != nil {
			return nil, err
		}
	}

	return p.Evaluate(ctx, st, acct, s.Net)
}

// TournamentPoints converts a winning net into tournament points.
func TournamentPoints(net, divisor int64) int64 {
	if divisor <= 0 {
		divisor = 100
	}
	return max(net/divisor, 1)
}

func (p *Stats) awardPoints(ctx context.Context, st *repository.Store, ownerID, net int64) error {
	t, err := st.Tournaments.Active(ctx)
	if errors.Is(err, repository.ErrNoActiveTournament) {
		return nil
	}
	if err != nil {
		return err
	}
	points := TournamentPoints(net, p.casino.Tournament.PointsDivisor)
	if err := st.Tournaments.AddPoints(ctx, t.ID, ownerID, points); err != nil {
		return err
	}
	return st.Accounts.AddTournamentPoints(ctx, ownerID, points)
}

// Evaluate grants every qualifying achievement acct does not hold yet.
func (p *Stats) Evaluate(ctx context.Context, st *repository.Store, acct *model.Account, lastWin int64) ([]AchievementDef, error) {
	var unlocked []AchievementDef
	for _, def := range Qualifying(acct, lastWin) {
		inserted, err := st.Achievements.Grant(ctx, acct.OwnerID, def.Type)
		if err != nil {
			return nil, fmt.Errorf("failed to grant %s: %w", def.Type, err)
		}
		if inserted {
			unlocked = append(unlocked, def)
		}
	}
	return unlocked, nil
}
