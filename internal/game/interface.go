// Package game defines the protocol every casino engine implements and the
// registry the command router looks engines up in.
//
// Engines are pure: they receive a random source and the current state and
// return what should happen. Persisting sessions, moving balances and
// updating statistics is the caller's job, which lets the caller do all of
// it inside one database transaction.
package game

import "casino-bot/internal/model"

// Rand is the random source engines draw from. *math/rand/v2.Rand satisfies
// it; tests inject scripted sources.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// Engine is the part shared by single-turn and multi-turn games.
type Engine interface {
	// Kind is the game kind and the chat command, e.g. "slots".
	Kind() string
	// Name is the display name.
	Name() string
	// Usage is a one-line command synopsis.
	Usage() string
}

// Round is the input of one single-turn play.
type Round struct {
	Bet  int64    // validated bet argument (tickets for priced games)
	Args []string // game-specific arguments after the bet
	Pool int64    // current value of the engine's pool, when it has one
}

// Outcome is the result of a single-turn play.
type Outcome struct {
	Stake     int64  // amount taken from the player
	Payout    int64  // gross amount credited back, 0 on a loss
	PoolAfter int64  // new pool value, meaningful only for pooled engines
	Jackpot   bool   // the play hit a jackpot tier
	Text      string // human-readable result
}

// Net is the balance delta the round applies.
func (o Outcome) Net() int64 { return o.Payout - o.Stake }

// SingleTurn games settle in one call.
type SingleTurn interface {
	Engine
	Play(rng Rand, r Round) (Outcome, error)
}

// Step is the result of one multi-turn action. When Done is false the
// engine has mutated the session state and it must be saved; when Done is
// true the session must be cleared and Payout credited.
type Step struct {
	Done   bool
	Payout int64
	Text   string
}

// MultiTurn games keep a session between commands. The stake is taken
// when the session starts and never again.
type MultiTurn interface {
	Engine
	// Start builds a fresh session for bet. The returned step is usually
	// not Done, but an engine may settle immediately.
	Start(rng Rand, bet int64, args []string) (model.SessionState, Step, error)
	// Act applies action to st in place.
	Act(rng Rand, st *model.SessionState, action string, args []string) (Step, error)
}

// Pooled engines read and write a shared pool.
type Pooled interface {
	PoolName() string
	PoolFloor() int64
}

// Priced engines charge a per-unit price; the bet argument is a unit count.
type Priced interface {
	StakeFor(units int64) int64
}

// StakeFor returns what a bet costs on engine e.
func StakeFor(e Engine, bet int64) int64 {
	if p, ok := e.(Priced); ok {
		return p.StakeFor(bet)
	}
	return bet
}
