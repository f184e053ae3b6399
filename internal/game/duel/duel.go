// Package duel implements the player-versus-player coin toss. One player
// challenges another for a bet and the loser pays the winner.
package duel

import (
	"errors"
	"fmt"

	"casino-bot/internal/game"
)

var (
	ErrSelfDuel = errors.New("cannot duel yourself")
)

// Result is the settled duel.
type Result struct {
	WinnerID int64
	LoserID  int64
	Amount   int64
	Message  string
}

// Player is one side of a duel.
type Player struct {
	ID      int64
	Name    string
	Balance int64
}

// Check reports why a duel between challenger and opponent cannot run.
func Check(challenger, opponent Player, bet int64) error {
	if challenger.ID == opponent.ID {
		return fmt.Errorf("%w: %w", game.ErrInvalidArgument, ErrSelfDuel)
	}
	if challenger.Balance < bet {
		return fmt.Errorf("%w: you have %d coins, the duel needs %d", game.ErrInsufficientFunds, challenger.Balance, bet)
	}
	if opponent.Balance < bet {
		return fmt.Errorf("%w: %s cannot cover %d coins", game.ErrInsufficientFunds, opponent.Name, bet)
	}
	return nil
}

// Resolve tosses the coin: 0 means the challenger wins.
func Resolve(rng game.Rand, challenger, opponent Player, bet int64) Result {
	winner, loser := challenger, opponent
	if rng.IntN(2) == 1 {
		winner, loser = opponent, challenger
	}
	return Result{
		WinnerID: winner.ID,
		LoserID:  loser.ID,
		Amount:   bet,
		Message:  fmt.Sprintf("⚔️ %s challenged %s for %d coins.\n🏆 %s wins the duel!", challenger.Name, opponent.Name, bet, winner.Name),
	}
}
