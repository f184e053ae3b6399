package bot

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"casino-bot/internal/config"
	"casino-bot/internal/handler"
	"casino-bot/internal/model"
)

// Whitelist decides which chats the bot answers. Users seen in a
// whitelisted group may also talk to the bot privately.
type Whitelist struct {
	cfg *config.Config

	mu      sync.RWMutex
	private map[int64]bool
}

// NewWhitelist creates a whitelist over the configured chats.
func NewWhitelist(cfg *config.Config) *Whitelist {
	return &Whitelist{cfg: cfg, private: make(map[int64]bool)}
}

// AllowPrivateUser marks a user as allowed to use private chat.
func (w *Whitelist) AllowPrivateUser(userID int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.private[userID] = true
}

// IsPrivateUserAllowed checks if a user is allowed to use private chat.
func (w *Whitelist) IsPrivateUserAllowed(userID int64) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.private[userID]
}

// Allow reports whether a message from userID in chatID is served. A
// message in a whitelisted group marks its sender for private chat.
func (w *Whitelist) Allow(chatType tele.ChatType, chatID, userID int64) bool {
	if chatType == tele.ChatPrivate {
		return len(w.cfg.Whitelist.Chats) == 0 || w.IsPrivateUserAllowed(userID)
	}
	if !w.cfg.IsChatAllowed(chatID) {
		return false
	}
	w.AllowPrivateUser(userID)
	return true
}

// Middleware drops messages from chats the whitelist does not allow.
func (w *Whitelist) Middleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			sender := c.Sender()
			if chat == nil || sender == nil {
				return nil
			}

			if !w.Allow(chat.Type, chat.ID, sender.ID) {
				log.Debug().
					Int64("chat_id", chat.ID).
					Int64("user_id", sender.ID).
					Msg("Ignoring message from non-whitelisted chat")
				return nil
			}
			return next(c)
		}
	}
}

// RoleSource resolves a user's role. The guard implements it with a cache.
type RoleSource interface {
	Role(ctx context.Context, ownerID int64) (model.Role, error)
}

// AdminMiddleware rejects senders below min.
func AdminMiddleware(roles RoleSource, min model.Role) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}

			role, err := roles.Role(context.Background(), sender.ID)
			if err != nil {
				log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to resolve role")
				return c.Reply("❌ Something went wrong, please try again later")
			}
			if !role.AtLeast(min) {
				log.Warn().
					Int64("user_id", sender.ID).
					Str("role", role.String()).
					Str("command", c.Text()).
					Msg("Non-admin attempted admin command")
				return c.Reply("❌ Permission denied: " + min.String() + " role required")
			}
			return next(c)
		}
	}
}

// LoggingMiddleware logs every incoming command at debug level. Plain
// chatter is not logged.
func LoggingMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			cmd, ok := handler.ParseCommand(c.Text())
			if !ok {
				return next(c)
			}

			ev := log.Debug().Str("command", cmd.Name).Strs("args", cmd.Args)
			if sender := c.Sender(); sender != nil {
				ev = ev.Int64("owner", sender.ID).Str("username", sender.Username)
			}
			if chat := c.Chat(); chat != nil {
				ev = ev.Int64("chat_id", chat.ID).Str("chat_type", string(chat.Type))
			}
			ev.Msg("Received command")

			start := time.Now()
			err := next(c)
			log.Debug().Str("command", cmd.Name).Dur("took", time.Since(start)).Msg("Command handled")
			return err
		}
	}
}

// RecoveryMiddleware creates a middleware that recovers from panics.
func RecoveryMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Str("text", c.Text()).
						Msg("Recovered from panic in handler")
					_ = c.Reply("❌ Something went wrong, please try again later")
				}
			}()
			return next(c)
		}
	}
}
