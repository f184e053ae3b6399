package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"casino-bot/internal/model"
	"casino-bot/internal/service"
)

// AdminHandler handles admin-related commands. Permission checks live in
// the services; the bot also puts these routes behind the admin
// middleware.
type AdminHandler struct {
	accounts    *service.AccountService
	admin       *service.AdminService
	tournaments *service.TournamentService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	accounts *service.AccountService,
	admin *service.AdminService,
	tournaments *service.TournamentService,
) *AdminHandler {
	return &AdminHandler{accounts: accounts, admin: admin, tournaments: tournaments}
}

// HandleGrant handles the /grant command.
// Format: /grant @username amount (negative amounts debit)
func (h *AdminHandler) HandleGrant(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	target, rest, err := resolveTarget(ctx, c, h.accounts, c.Args())
	if err != nil {
		return c.Reply(targetError(err, "/grant @username amount"))
	}
	if len(rest) == 0 {
		return c.Reply("❌ Usage: /grant @username amount")
	}
	amount, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil {
		return c.Reply("❌ Amount must be a whole number")
	}

	balance, err := h.admin.Grant(ctx, sender.ID, target.ID, amount)
	if err != nil {
		return c.Reply(ErrorText(err))
	}
	return c.Reply(fmt.Sprintf(
		"✅ Done\n\n👤 %s (ID: %d)\n%s %+d coins\n💰 Balance: %d",
		target.Name, target.ID, grantIcon(amount), amount, balance,
	))
}

func grantIcon(amount int64) string {
	if amount < 0 {
		return "➖"
	}
	return "➕"
}

// HandleSetRole handles the /setrole command.
// Format: /setrole @username user|moderator|senior_moderator|admin
func (h *AdminHandler) HandleSetRole(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	target, rest, err := resolveTarget(ctx, c, h.accounts, c.Args())
	if err != nil {
		return c.Reply(targetError(err, "/setrole @username role"))
	}
	if len(rest) == 0 {
		return c.Reply("❌ Usage: /setrole @username user|moderator|senior_moderator|admin")
	}
	role, err := model.ParseRole(rest[0])
	if err != nil {
		return c.Reply("❌ " + err.Error())
	}

	if err := h.admin.SetRole(ctx, sender.ID, target.ID, role); err != nil {
		return c.Reply(ErrorText(err))
	}
	return c.Reply(fmt.Sprintf("✅ %s is now %s", target.Name, role))
}

// HandleTournament handles the /tournament command.
// Format: /tournament start|end
func (h *AdminHandler) HandleTournament(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	if err := h.admin.Require(ctx, sender.ID, model.RoleAdmin); err != nil {
		return c.Reply(ErrorText(err))
	}

	args := c.Args()
	if len(args) == 0 {
		return c.Reply("❌ Usage: /tournament start|end")
	}
	switch strings.ToLower(args[0]) {
	case "start":
		t, err := h.tournaments.Start(ctx)
		if err != nil {
			return c.Reply(ErrorText(err))
		}
		log.Info().Int64("admin_id", sender.ID).Int64("tournament", t.ID).Msg("Tournament opened from chat")
		return c.Reply(fmt.Sprintf("⚔️ Tournament #%d has started! Every win scores points.", t.ID))
	case "end":
		res, err := h.tournaments.End(ctx, 10)
		if errors.Is(err, service.ErrNoTournament) {
			return c.Reply("🏁 No tournament is running")
		}
		if err != nil {
			return c.Reply(ErrorText(err))
		}
		return c.Reply(FormatTournamentEnd(res))
	default:
		return c.Reply("❌ Usage: /tournament start|end")
	}
}

// FormatTournamentEnd announces the final standings.
func FormatTournamentEnd(res *service.TournamentResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏁 Tournament #%d is over\n", res.Tournament.ID)
	if res.Winner == nil {
		b.WriteString("Nobody scored this time")
		return b.String()
	}
	fmt.Fprintf(&b, "👑 Winner: %s with %d pts\n━━━━━━━━━━━━━━━\n",
		displayUser(res.Winner.Username, res.Winner.OwnerID), res.Winner.Points)
	for i, s := range res.Standings {
		fmt.Fprintf(&b, "%s %s: %d pts\n", rankLabel(i), displayUser(s.Username, s.OwnerID), s.Points)
	}
	b.WriteString("━━━━━━━━━━━━━━━")
	b.WriteString(achievementLines(res.Achievements))
	return b.String()
}
