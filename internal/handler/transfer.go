package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v3"

	"casino-bot/internal/service"
)

// TransferHandler handles the transfer and duel commands, both of which
// move coins between two players.
type TransferHandler struct {
	accounts  *service.AccountService
	transfers *service.TransferService
	duels     *service.DuelService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(
	accounts *service.AccountService,
	transfers *service.TransferService,
	duels *service.DuelService,
) *TransferHandler {
	return &TransferHandler{accounts: accounts, transfers: transfers, duels: duels}
}

// HandleGive handles the /give command.
// Format: /give @username amount, or /give amount in reply to a message.
func (h *TransferHandler) HandleGive(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	target, rest, err := resolveTarget(ctx, c, h.accounts, c.Args())
	if err != nil {
		return c.Reply(targetError(err, "/give @username amount"))
	}
	if len(rest) == 0 {
		return c.Reply("❌ Usage: /give @username amount")
	}
	amount, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil {
		return c.Reply("❌ Amount must be a whole number")
	}

	res, err := h.transfers.Transfer(ctx, player(sender), target.ID, amount)
	if err != nil {
		return c.Reply(ErrorText(err))
	}
	return c.Reply(fmt.Sprintf(
		"✅ Sent %d coins to %s\n💰 Your balance: %d",
		res.Amount, target.Name, res.SenderBalance,
	))
}

// HandleDuel handles the /duel command.
// Format: /duel @username bet, or /duel bet in reply to a message.
func (h *TransferHandler) HandleDuel(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	target, rest, err := resolveTarget(ctx, c, h.accounts, c.Args())
	if err != nil {
		return c.Reply(targetError(err, "/duel @username bet"))
	}
	if len(rest) == 0 {
		return c.Reply("❌ Usage: /duel @username bet")
	}

	res, err := h.duels.Duel(ctx, player(sender), target.ID, rest[0])
	if err != nil {
		return c.Reply(ErrorText(err))
	}
	text := fmt.Sprintf("%s\n\n🏆 Winner balance: %d\n💸 Loser balance: %d",
		res.Message, res.WinnerBalance, res.LoserBalance)
	for _, defs := range res.Achievements {
		text += achievementLines(defs)
	}
	return c.Reply(text)
}

// targetError explains a failed target lookup.
func targetError(err error, usage string) string {
	switch {
	case errors.Is(err, errNoTarget):
		return "❌ Usage: " + usage + "\nOr reply to the player's message"
	case errors.Is(err, service.ErrUserNotFound):
		return "❌ That player has no account yet"
	default:
		return ErrorText(err)
	}
}
