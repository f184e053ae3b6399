// Package handler provides chat command handlers. Each handler turns a
// telebot context into a service call and renders the result.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"casino-bot/internal/game"
	"casino-bot/internal/model"
	"casino-bot/internal/service"
)

// Command is a parsed chat command such as "/mines 100".
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits a message into its command name and arguments. The
// leading slash and any "@botname" suffix are dropped and the name is
// lowercased. ok is false when text is not a command.
func ParseCommand(text string) (cmd Command, ok bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return Command{}, false
	}
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return Command{}, false
	}
	return Command{Name: strings.ToLower(name), Args: fields[1:]}, true
}

// player builds the service identity of the message sender.
func player(u *tele.User) service.Player {
	return service.Player{ID: u.ID, Username: u.Username}
}

// Directory resolves @usernames to accounts.
type Directory interface {
	Lookup(ctx context.Context, username string) (*model.Account, error)
}

// Target is the user a command is aimed at.
type Target struct {
	ID   int64
	Name string
}

var errNoTarget = errors.New("no target user")

// resolveTarget finds the user a command addresses and returns the
// remaining arguments. A reply to someone's message wins; otherwise the
// first argument must be an @username, matched first against text
// mentions in the message and then against known accounts.
func resolveTarget(ctx context.Context, c tele.Context, dir Directory, args []string) (Target, []string, error) {
	msg := c.Message()
	if msg != nil && msg.ReplyTo != nil && msg.ReplyTo.Sender != nil {
		u := msg.ReplyTo.Sender
		rest := args
		if len(rest) > 0 && strings.HasPrefix(rest[0], "@") {
			rest = rest[1:]
		}
		return Target{ID: u.ID, Name: displayUser(u.Username, u.ID)}, rest, nil
	}

	if len(args) == 0 {
		return Target{}, nil, errNoTarget
	}
	name, ok := mentionName(args[0])
	if !ok {
		return Target{}, nil, errNoTarget
	}
	if msg != nil {
		for _, e := range msg.Entities {
			if e.Type == tele.EntityTMention && e.User != nil && strings.EqualFold(e.User.Username, name) {
				return Target{ID: e.User.ID, Name: "@" + e.User.Username}, args[1:], nil
			}
		}
	}
	acct, err := dir.Lookup(ctx, name)
	if err != nil {
		return Target{}, nil, err
	}
	return Target{ID: acct.OwnerID, Name: "@" + acct.Username}, args[1:], nil
}

// mentionName strips the @ of an @username argument.
func mentionName(arg string) (string, bool) {
	if !strings.HasPrefix(arg, "@") || len(arg) < 2 {
		return "", false
	}
	return arg[1:], true
}

func displayUser(username string, id int64) string {
	if username == "" {
		return fmt.Sprintf("User%d", id)
	}
	return "@" + username
}

// isAmount reports whether arg looks like a bet rather than an action.
func isAmount(arg string) bool {
	if arg == "" {
		return false
	}
	for i, r := range arg {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && i > 0:
		case r == '-' && i == 0:
		default:
			return false
		}
	}
	return true
}

// ErrorText renders err for the chat. Taxonomy errors show their detail;
// anything else gets a generic apology so internals never leak.
func ErrorText(err error) string {
	switch {
	case errors.Is(err, game.ErrInternal):
		return "❌ Something went wrong, please try again later"
	case errors.Is(err, game.ErrRateLimited):
		return "⏳ " + detail(err, game.ErrRateLimited)
	case errors.Is(err, game.ErrIntegrityHold):
		return "🚫 Your account is on hold: " + detail(err, game.ErrIntegrityHold)
	case errors.Is(err, game.ErrInsufficientFunds):
		return "💸 Insufficient funds: " + detail(err, game.ErrInsufficientFunds)
	case errors.Is(err, game.ErrBetOutOfRange):
		return "❌ " + detail(err, game.ErrBetOutOfRange)
	case errors.Is(err, game.ErrNoActiveSession):
		return "🤷 " + detail(err, game.ErrNoActiveSession)
	case errors.Is(err, game.ErrInvalidArgument):
		return "❌ " + detail(err, game.ErrInvalidArgument)
	default:
		return "❌ Something went wrong, please try again later"
	}
}

// detail drops the "sentinel: " prefix the service layer wraps errors with.
func detail(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		msg = msg[i+len(prefix):]
	}
	if msg == "" {
		return sentinel.Error()
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// achievementLines announces newly unlocked achievements.
func achievementLines(defs []service.AchievementDef) string {
	var b strings.Builder
	for _, d := range defs {
		fmt.Fprintf(&b, "\n🏅 Achievement unlocked: %s %s", d.Emoji, d.Title)
	}
	return b.String()
}

// FormatReply renders a casino reply with the balance footer.
func FormatReply(r *service.Reply) string {
	var b strings.Builder
	b.WriteString(r.Text)
	if r.Settled {
		switch {
		case r.Net > 0:
			fmt.Fprintf(&b, "\n\n📈 +%d", r.Net)
		case r.Net < 0:
			fmt.Fprintf(&b, "\n\n📉 %d", r.Net)
		default:
			b.WriteString("\n\n➖ 0")
		}
	}
	fmt.Fprintf(&b, "\n💰 Balance: %d", r.Balance)
	b.WriteString(achievementLines(r.Achievements))
	return b.String()
}
