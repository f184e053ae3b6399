package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
	tele "gopkg.in/telebot.v3"

	"casino-bot/internal/config"
)

// TestAdminPermissionCheckProperty: a user is an admin if and only if their
// ID is in the admin list.
func TestAdminPermissionCheckProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		adminIDs := rapid.SliceOfN(rapid.Int64Range(1, 1000000000), 0, 10).Draw(t, "adminIDs")
		cfg := &config.Config{Admin: config.AdminConfig{IDs: adminIDs}}

		userID := rapid.Int64Range(1, 1000000000).Draw(t, "userID")
		if len(adminIDs) > 0 && rapid.Bool().Draw(t, "pickAdmin") {
			userID = rapid.SampledFrom(adminIDs).Draw(t, "adminID")
		}

		expected := false
		for _, id := range adminIDs {
			if id == userID {
				expected = true
				break
			}
		}
		if got := cfg.IsAdmin(userID); got != expected {
			t.Fatalf("admin check mismatch: userID=%d, adminIDs=%v, expected=%v, got=%v",
				userID, adminIDs, expected, got)
		}
	})
}

// TestWhitelistGroupProperty: a group message is served if and only if the
// chat is whitelisted, or the whitelist is empty.
func TestWhitelistGroupProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chatIDs := rapid.SliceOfN(rapid.Int64Range(-1000000000, -1), 0, 10).Draw(t, "chatIDs")
		w := NewWhitelist(&config.Config{Whitelist: config.WhitelistConfig{Chats: chatIDs}})

		chatID := rapid.Int64Range(-1000000000, -1).Draw(t, "chatID")
		if len(chatIDs) > 0 && rapid.Bool().Draw(t, "pickListed") {
			chatID = rapid.SampledFrom(chatIDs).Draw(t, "listedChat")
		}
		userID := rapid.Int64Range(1, 1000000000).Draw(t, "userID")

		expected := len(chatIDs) == 0
		for _, id := range chatIDs {
			if id == chatID {
				expected = true
				break
			}
		}
		if got := w.Allow(tele.ChatGroup, chatID, userID); got != expected {
			t.Fatalf("whitelist mismatch: chatID=%d, chats=%v, expected=%v, got=%v",
				chatID, chatIDs, expected, got)
		}
		if w.IsPrivateUserAllowed(userID) != expected {
			t.Fatalf("user %d private access should follow the group decision %v", userID, expected)
		}
	})
}

// TestWhitelistPrivateProperty: with a non-empty whitelist a private chat
// is served only after the user was seen in a whitelisted group.
func TestWhitelistPrivateProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chatIDs := rapid.SliceOfN(rapid.Int64Range(-1000000000, -1), 1, 10).Draw(t, "chatIDs")
		w := NewWhitelist(&config.Config{Whitelist: config.WhitelistConfig{Chats: chatIDs}})
		userID := rapid.Int64Range(1, 1000000000).Draw(t, "userID")

		if w.Allow(tele.ChatPrivate, userID, userID) {
			t.Fatalf("unknown user %d was served in private", userID)
		}
		w.Allow(tele.ChatSuperGroup, rapid.SampledFrom(chatIDs).Draw(t, "group"), userID)
		if !w.Allow(tele.ChatPrivate, userID, userID) {
			t.Fatalf("user %d seen in a whitelisted group was not served in private", userID)
		}
	})
}

func TestWhitelistEmptyAllowsPrivate(t *testing.T) {
	w := NewWhitelist(&config.Config{})
	assert.True(t, w.Allow(tele.ChatPrivate, 42, 42))
}

func TestWhitelistsAreIndependent(t *testing.T) {
	cfg := &config.Config{Whitelist: config.WhitelistConfig{Chats: []int64{-100}}}
	a, b := NewWhitelist(cfg), NewWhitelist(cfg)

	a.AllowPrivateUser(7)
	assert.True(t, a.IsPrivateUserAllowed(7))
	assert.False(t, b.IsPrivateUserAllowed(7))
}
