package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"casino-bot/internal/model"
	"casino-bot/internal/service"
)

// RankingHandler handles ranking-related commands.
type RankingHandler struct {
	ranking     *service.RankingService
	tournaments *service.TournamentService
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(ranking *service.RankingService, tournaments *service.TournamentService) *RankingHandler {
	return &RankingHandler{ranking: ranking, tournaments: tournaments}
}

// HandleDailyTop handles the /daily_top command: today's top winners and
// losers.
func (h *RankingHandler) HandleDailyTop(c tele.Context) error {
	ctx := context.Background()

	winners, err := h.ranking.GetDailyWinners(ctx, 10)
	if err != nil {
		return c.Reply("❌ Failed to load the leaderboard, please try again later")
	}
	losers, err := h.ranking.GetDailyLosers(ctx, 10)
	if err != nil {
		return c.Reply("❌ Failed to load the leaderboard, please try again later")
	}
	return c.Reply(FormatDailyTop(winners, losers))
}

// FormatDailyTop renders the daily winners and losers boards.
func FormatDailyTop(winners, losers []*model.DailyRank) string {
	var b strings.Builder
	b.WriteString("📊 Today's results\n━━━━━━━━━━━━━━━\n")

	b.WriteString("🏆 Top winners\n")
	if len(winners) == 0 {
		b.WriteString("No data yet\n")
	}
	for i, w := range winners {
		fmt.Fprintf(&b, "%s %s: +%d\n", rankLabel(i), displayUser(w.Username, w.OwnerID), w.NetProfit)
	}

	b.WriteString("\n━━━━━━━━━━━━━━━\n😢 Top losers\n")
	if len(losers) == 0 {
		b.WriteString("No data yet\n")
	}
	for i, l := range losers {
		fmt.Fprintf(&b, "%d. %s: %d\n", i+1, displayUser(l.Username, l.OwnerID), l.NetProfit)
	}
	b.WriteString("━━━━━━━━━━━━━━━")
	return b.String()
}

// HandleStandings handles the /standings command.
func (h *RankingHandler) HandleStandings(c tele.Context) error {
	t, scores, err := h.tournaments.Standings(context.Background(), 10)
	if errors.Is(err, service.ErrNoTournament) {
		return c.Reply("🏁 No tournament is running")
	}
	if err != nil {
		return c.Reply(ErrorText(err))
	}
	return c.Reply(FormatStandings(t, scores))
}

// FormatStandings renders a tournament leaderboard.
func FormatStandings(t *model.Tournament, scores []*model.TournamentScore) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚔️ Tournament #%d\nStarted %s\n━━━━━━━━━━━━━━━\n", t.ID, t.StartedAt.Format("2006-01-02 15:04"))
	if len(scores) == 0 {
		b.WriteString("No points yet\n")
	}
	for i, s := range scores {
		fmt.Fprintf(&b, "%s %s: %d pts\n", rankLabel(i), displayUser(s.Username, s.OwnerID), s.Points)
	}
	b.WriteString("━━━━━━━━━━━━━━━")
	return b.String()
}
