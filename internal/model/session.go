package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Game kinds. The kind doubles as the chat command name.
const (
	KindSlots     = "slots"
	KindWheel     = "wheel"
	KindFlip      = "flip"
	KindDice      = "dice"
	KindNumbers   = "numbers"
	KindBlackjack = "blackjack"
	KindCrash     = "crash"
	KindMines     = "mines"
	KindLottery   = "lottery"
	KindJackpot   = "jackpot"
	KindPoker     = "poker"
	KindBaccarat  = "baccarat"
	KindDuel      = "duel"
)

// GameSession is the persisted row of a multi-turn game.
type GameSession struct {
	OwnerID   int64        `db:"owner_id"`
	GameKind  string       `db:"game_kind"`
	State     SessionState `db:"state"`
	UpdatedAt time.Time    `db:"updated_at"`
}

// SessionState is the typed payload shared by every multi-turn engine.
// Exactly one of the game sections is set, matching Kind.
type SessionState struct {
	Kind      string          `json:"kind"`
	RoundID   string          `json:"round_id"`
	Stake     int64           `json:"stake"`
	Blackjack *BlackjackState `json:"blackjack,omitempty"`
	Crash     *CrashState     `json:"crash,omitempty"`
	Mines     *MinesState     `json:"mines,omitempty"`
}

// Validate checks that the payload is internally consistent.
func (s *SessionState) Validate() error {
	if s.Stake <= 0 {
		return fmt.Errorf("session %s: non-positive stake %d", s.Kind, s.Stake)
	}
	var ok bool
	switch s.Kind {
	case KindBlackjack:
		ok = s.Blackjack != nil && s.Crash == nil && s.Mines == nil
	case KindCrash:
		ok = s.Crash != nil && s.Blackjack == nil && s.Mines == nil
	case KindMines:
		ok = s.Mines != nil && s.Blackjack == nil && s.Crash == nil
	default:
		return fmt.Errorf("session kind %q has no state", s.Kind)
	}
	if !ok {
		return fmt.Errorf("session %s: state section does not match kind", s.Kind)
	}
	return nil
}

// Snapshot renders the state as JSON for logs. It never fails.
func (s *SessionState) Snapshot() string {
	if s == nil {
		return "null"
	}
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("%+v", *s)
	}
	return string(b)
}

// Card is a playing card. Rank is 1 (ace) to 13 (king); Suit is 0..3 in
// clubs, diamonds, hearts, spades order.
type Card struct {
	Rank int8 `json:"r"`
	Suit int8 `json:"s"`
}

// BlackjackState holds both hands and the remaining shoe.
type BlackjackState struct {
	Player []Card `json:"player"`
	Dealer []Card `json:"dealer"`
	Shoe   []Card `json:"shoe"`
}

// CrashState holds the hidden crash point and the running multiplier.
type CrashState struct {
	Point   decimal.Decimal `json:"point"`
	Current decimal.Decimal `json:"current"`
}

// MinesState holds the hazard layout and the cells opened so far.
type MinesState struct {
	Size       int             `json:"size"`
	Hazards    []int           `json:"hazards"`
	Opened     []int           `json:"opened"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// IsOpened reports whether cell was already revealed.
func (m *MinesState) IsOpened(cell int) bool {
	for _, c := range m.Opened {
		if c == cell {
			return true
		}
	}
	return false
}

// IsHazard reports whether cell hides a hazard.
func (m *MinesState) IsHazard(cell int) bool {
	for _, c := range m.Hazards {
		if c == cell {
			return true
		}
	}
	return false
}
