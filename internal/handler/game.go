package handler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"casino-bot/internal/game"
	"casino-bot/internal/service"
)

// MessageDeleteInterval is how long game replies stay in the chat.
const MessageDeleteInterval = 30 * time.Minute

// TrackedMessage is a bot reply waiting to be deleted.
type TrackedMessage struct {
	ChatID    int64
	MessageID int
	SentAt    time.Time
}

// Casino is the part of the casino service the game router drives.
type Casino interface {
	Games() *game.Registry
	Play(ctx context.Context, p service.Player, kind, rawBet string, args []string) (*service.Reply, error)
	Start(ctx context.Context, p service.Player, kind, rawBet string, args []string) (*service.Reply, error)
	Act(ctx context.Context, p service.Player, kind, action string, args []string) (*service.Reply, error)
}

// GameHandler routes "<game> <bet|action> [args]" commands to the casino.
type GameHandler struct {
	casino Casino

	trackedMessages []TrackedMessage
	messagesMu      sync.Mutex
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(casino Casino) *GameHandler {
	return &GameHandler{casino: casino}
}

// Kinds are the commands this handler answers.
func (h *GameHandler) Kinds() []string {
	return h.casino.Games().Kinds()
}

// HandleGame handles every game command.
func (h *GameHandler) HandleGame(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	cmd, ok := ParseCommand(c.Text())
	if !ok {
		return nil
	}

	text := h.Dispatch(context.Background(), player(sender), cmd)
	sent, err := c.Bot().Reply(c.Message(), text)
	if err != nil {
		return err
	}
	if sent != nil && sent.Chat != nil && sent.Chat.Type != tele.ChatPrivate {
		h.trackMessage(sent.Chat.ID, sent.ID)
	}
	return nil
}

// Dispatch runs cmd and returns the chat reply. A numeric first argument
// is a bet: it plays a single-turn game or starts a multi-turn one. Any
// other first argument is an action on the running session.
func (h *GameHandler) Dispatch(ctx context.Context, p service.Player, cmd Command) string {
	e, ok := h.casino.Games().Get(cmd.Name)
	if !ok {
		return fmt.Sprintf("❌ Unknown game %q, see /games", cmd.Name)
	}
	if len(cmd.Args) == 0 {
		return fmt.Sprintf("🎮 %s\nUsage: %s", e.Name(), e.Usage())
	}

	var (
		reply *service.Reply
		err   error
	)
	first, rest := cmd.Args[0], cmd.Args[1:]
	switch e.(type) {
	case game.MultiTurn:
		if isAmount(first) {
			reply, err = h.casino.Start(ctx, p, cmd.Name, first, rest)
		} else {
			reply, err = h.casino.Act(ctx, p, cmd.Name, strings.ToLower(first), rest)
		}
	default:
		reply, err = h.casino.Play(ctx, p, cmd.Name, first, rest)
	}
	if err != nil {
		return ErrorText(err)
	}
	return FormatReply(reply)
}

// HandleGames lists every registered game.
func (h *GameHandler) HandleGames(c tele.Context) error {
	return c.Reply(GamesList(h.casino.Games()))
}

// GamesList renders the registry as a help message.
func GamesList(r *game.Registry) string {
	var b strings.Builder
	b.WriteString("🎰 Games\n━━━━━━━━━━━━━━━\n")
	for _, e := range r.List() {
		fmt.Fprintf(&b, "%s\n  %s\n", e.Name(), e.Usage())
	}
	b.WriteString("━━━━━━━━━━━━━━━")
	return b.String()
}

// StartMessageCleaner deletes tracked replies older than
// MessageDeleteInterval until ctx is done.
func (h *GameHandler) StartMessageCleaner(ctx context.Context, bot *tele.Bot) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				for _, msg := range h.expired(now) {
					err := bot.Delete(&tele.Message{ID: msg.MessageID, Chat: &tele.Chat{ID: msg.ChatID}})
					if err != nil {
						log.Debug().Err(err).Int("msg_id", msg.MessageID).Msg("Failed to delete old message")
					}
				}
			}
		}
	}()
}

// expired removes and returns messages sent at least
// MessageDeleteInterval before now.
func (h *GameHandler) expired(now time.Time) []TrackedMessage {
	h.messagesMu.Lock()
	defer h.messagesMu.Unlock()

	var old []TrackedMessage
	remaining := h.trackedMessages[:0]
	for _, msg := range h.trackedMessages {
		if now.Sub(msg.SentAt) >= MessageDeleteInterval {
			old = append(old, msg)
		} else {
			remaining = append(remaining, msg)
		}
	}
	h.trackedMessages = remaining
	return old
}

func (h *GameHandler) trackMessage(chatID int64, messageID int) {
	h.messagesMu.Lock()
	defer h.messagesMu.Unlock()

	h.trackedMessages = append(h.trackedMessages, TrackedMessage{
		ChatID:    chatID,
		MessageID: messageID,
		SentAt:    time.Now(),
	})
}
