package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"casino-bot/internal/model"
	"casino-bot/internal/service"
)

// AccountHandler handles account-related commands.
type AccountHandler struct {
	accounts *service.AccountService
	ranking  *service.RankingService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts *service.AccountService, ranking *service.RankingService) *AccountHandler {
	return &AccountHandler{accounts: accounts, ranking: ranking}
}

// HandleStart handles the /start command.
func (h *AccountHandler) HandleStart(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	acct, err := h.accounts.EnsureUser(context.Background(), player(sender))
	if err != nil {
		log.Error().Err(err).Int64("owner", sender.ID).Msg("Failed to open account")
		return c.Reply(ErrorText(err))
	}
	return c.Reply(fmt.Sprintf(
		"🎰 Welcome to the casino, %s!\n\n"+
			"💰 Balance: %d coins\n\n"+
			"/games lists every game\n"+
			"/daily claims your daily reward\n"+
			"/profile shows your stats",
		displayUser(acct.Username, acct.OwnerID), acct.Balance,
	))
}

// HandleBalance handles the /balance command.
func (h *AccountHandler) HandleBalance(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	balance, err := h.accounts.GetBalance(context.Background(), player(sender))
	if err != nil {
		return c.Reply(ErrorText(err))
	}
	return c.Reply(fmt.Sprintf("💰 Balance: %d coins", balance))
}

// HandleProfile handles the /profile command.
func (h *AccountHandler) HandleProfile(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	prof, err := h.accounts.GetProfile(context.Background(), player(sender))
	if err != nil {
		return c.Reply(ErrorText(err))
	}
	return c.Reply(FormatProfile(prof))
}

// FormatProfile renders a profile card.
func FormatProfile(p *service.Profile) string {
	a := p.Account
	var b strings.Builder
	fmt.Fprintf(&b, "👤 %s\n━━━━━━━━━━━━━━━\n", displayUser(a.Username, a.OwnerID))
	fmt.Fprintf(&b, "💰 Balance: %d\n", a.Balance)
	fmt.Fprintf(&b, "🎮 Played: %d (won %d, lost %d)\n", a.GamesPlayed, a.GamesWon, a.GamesLost)
	fmt.Fprintf(&b, "📈 Winnings: %d  📉 Losses: %d\n", a.TotalWinnings, a.TotalLosses)
	fmt.Fprintf(&b, "🏆 Biggest win: %d\n", a.BiggestWin)
	if a.JackpotWins > 0 || a.PokerWins > 0 {
		fmt.Fprintf(&b, "💎 Jackpots: %d  🃏 Poker wins: %d\n", a.JackpotWins, a.PokerWins)
	}
	if a.TournamentPoints > 0 || a.TournamentWins > 0 {
		fmt.Fprintf(&b, "⚔️ Tournament points: %d  wins: %d\n", a.TournamentPoints, a.TournamentWins)
	}
	if len(p.Achievements) > 0 {
		b.WriteString("\n🏅 Achievements\n")
		for _, d := range p.Achievements {
			fmt.Fprintf(&b, "%s %s\n", d.Emoji, d.Title)
		}
	}
	if len(p.Sessions) > 0 {
		b.WriteString("\n⏸ Open rounds\n")
		for _, s := range p.Sessions {
			fmt.Fprintf(&b, "/%s stake %d\n", s.GameKind, s.State.Stake)
		}
	}
	b.WriteString("━━━━━━━━━━━━━━━")
	return b.String()
}

// HandleDaily handles the /daily command.
func (h *AccountHandler) HandleDaily(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	claim, err := h.accounts.ClaimDaily(context.Background(), player(sender))
	if err != nil {
		return c.Reply(ErrorText(err))
	}
	if !claim.Claimed {
		return c.Reply(fmt.Sprintf("⏰ Already claimed, come back in %s", formatWait(claim.Remaining)))
	}
	return c.Reply(fmt.Sprintf("🎁 Daily reward: +%d coins\n💰 Balance: %d", claim.Amount, claim.Balance))
}

// formatWait renders a wait as "5h 3m" or "42s".
func formatWait(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", int(d/time.Second))
	}
}

// HandleTop handles the /top command.
func (h *AccountHandler) HandleTop(c tele.Context) error {
	users, err := h.ranking.GetTopUsers(context.Background(), 10)
	if err != nil {
		return c.Reply(ErrorText(err))
	}
	return c.Reply(FormatTop(users))
}

// FormatTop renders the balance leaderboard.
func FormatTop(users []*model.Account) string {
	var b strings.Builder
	b.WriteString("🏆 Richest players\n━━━━━━━━━━━━━━━\n")
	if len(users) == 0 {
		b.WriteString("No players yet\n")
	}
	for i, u := range users {
		fmt.Fprintf(&b, "%s %s: %d\n", rankLabel(i), displayUser(u.Username, u.OwnerID), u.Balance)
	}
	b.WriteString("━━━━━━━━━━━━━━━")
	return b.String()
}

func rankLabel(i int) string {
	medals := []string{"🥇", "🥈", "🥉"}
	if i < len(medals) {
		return medals[i]
	}
	return fmt.Sprintf("%d.", i+1)
}
