// Package mines implements the mines game: a square grid with hidden
// hazards where every safe cell raises the cashout multiplier.
package mines

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"casino-bot/internal/game"
	"casino-bot/internal/model"
)

// Actions.
const (
	ActionOpen    = "open"
	ActionCashout = "cashout"
)

// Config holds the grid shape and the per-cell multiplier increment.
type Config struct {
	Size      int // cells per side
	Hazards   int
	Increment decimal.Decimal
}

// DefaultConfig is a 5×5 grid with 5 hazards and +0.25 per safe cell.
func DefaultConfig() Config {
	return Config{Size: 5, Hazards: 5, Increment: decimal.RequireFromString("0.25")}
}

// Validate checks the grid leaves at least one safe cell.
func (c Config) Validate() error {
	if c.Size < 2 || c.Hazards < 1 || c.Hazards >= c.Size*c.Size || !c.Increment.IsPositive() {
		return fmt.Errorf("invalid mines config: size %d hazards %d increment %s", c.Size, c.Hazards, c.Increment)
	}
	return nil
}

// MinesGame is a multi-turn engine.
type MinesGame struct {
	cfg Config
}

// New creates the mines engine.
func New(cfg Config) *MinesGame { return &MinesGame{cfg: cfg} }

func (g *MinesGame) Kind() string  { return model.KindMines }
func (g *MinesGame) Name() string  { return "Mines" }
func (g *MinesGame) Usage() string { return "mines <bet> | mines open <cell> | mines cashout" }

// Layout picks hazard cells, numbered from 1, without repetition.
func (g *MinesGame) Layout(rng game.Rand) []int {
	n := g.cfg.Size * g.cfg.Size
	cells := make([]int, n)
	for i := range cells {
		cells[i] = i + 1
	}
	for i := 0; i < g.cfg.Hazards; i++ {
		j := i + rng.IntN(n-i)
		cells[i], cells[j] = cells[j], cells[i]
	}
	hazards := append([]int(nil), cells[:g.cfg.Hazards]...)
	sort.Ints(hazards)
	return hazards
}

// Start lays out the grid.
func (g *MinesGame) Start(rng game.Rand, bet int64, _ []string) (model.SessionState, game.Step, error) {
	st := &model.MinesState{
		Size:       g.cfg.Size,
		Hazards:    g.Layout(rng),
		Opened:     []int{},
		Multiplier: decimal.NewFromInt(1),
	}
	state := model.SessionState{
		Kind:    model.KindMines,
		RoundID: uuid.NewString(),
		Stake:   bet,
		Mines:   st,
	}
	text := fmt.Sprintf("💣 %d hazards hidden in %d cells.\n%s\n`mines open <cell>` or `mines cashout`",
		g.cfg.Hazards, g.cfg.Size*g.cfg.Size, Render(st, false))
	return state, game.Step{Text: text}, nil
}

// Act opens a cell or cashes out.
func (g *MinesGame) Act(_ game.Rand, s *model.SessionState, action string, args []string) (game.Step, error) {
	st := s.Mines
	if st == nil {
		return game.Step{}, fmt.Errorf("%w: mines session has no grid", game.ErrInternal)
	}

	switch strings.ToLower(action) {
	case ActionCashout:
		return g.cashout(s), nil
	case ActionOpen:
	default:
		return game.Step{}, fmt.Errorf("%w: unknown mines action %q, use open or cashout", game.ErrInvalidArgument, action)
	}

	if len(args) == 0 {
		return game.Step{}, fmt.Errorf("%w: which cell? 1-%d", game.ErrInvalidArgument, st.Size*st.Size)
	}
	cell, err := strconv.Atoi(args[0])
	if err != nil || cell < 1 || cell > st.Size*st.Size {
		return game.Step{}, fmt.Errorf("%w: cell must be 1-%d", game.ErrInvalidArgument, st.Size*st.Size)
	}
	if st.IsOpened(cell) {
		return game.Step{}, fmt.Errorf("%w: cell %d is already open", game.ErrInvalidArgument, cell)
	}

	st.Opened = append(st.Opened, cell)
	if st.IsHazard(cell) {
		return game.Step{
			Done: true,
			Text: fmt.Sprintf("💥 Cell %d was a mine! You lost %d coins.\n%s", cell, s.Stake, Render(st, true)),
		}, nil
	}

	st.Multiplier = st.Multiplier.Add(g.cfg.Increment)
	if len(st.Opened) == st.Size*st.Size-len(st.Hazards) {
		return g.cashout(s), nil
	}
	return game.Step{
		Text: fmt.Sprintf("✅ Safe! Multiplier x%s\n%s", st.Multiplier.StringFixed(2), Render(st, false)),
	}, nil
}

func (g *MinesGame) cashout(s *model.SessionState) game.Step {
	payout := Payout(s.Stake, s.Mines.Multiplier)
	return game.Step{
		Done:   true,
		Payout: payout,
		Text:   fmt.Sprintf("💰 Cashed out at x%s: %d coins.\n%s", s.Mines.Multiplier.StringFixed(2), payout, Render(s.Mines, true)),
	}
}

// Payout is stake × multiplier rounded down to whole coins.
func Payout(stake int64, multiplier decimal.Decimal) int64 {
	return decimal.NewFromInt(stake).Mul(multiplier).Floor().IntPart()
}

// Render draws the grid. Hazards are shown only when reveal is set.
func Render(st *model.MinesState, reveal bool) string {
	var b strings.Builder
	for row := 0; row < st.Size; row++ {
		for col := 0; col < st.Size; col++ {
			cell := row*st.Size + col + 1
			switch {
			case st.IsOpened(cell) && st.IsHazard(cell):
				b.WriteString("💥")
			case st.IsOpened(cell):
				b.WriteString("💎")
			case reveal && st.IsHazard(cell):
				b.WriteString("💣")
			default:
				b.WriteString("⬜")
			}
		}
		if row < st.Size-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
