// Package crash implements the crash game: a multiplier climbs in fixed
// steps towards a hidden crash point and the player cashes out before it
// gets there.
package crash

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"casino-bot/internal/game"
	"casino-bot/internal/model"
)

// Actions.
const (
	ActionUp      = "up"
	ActionCashout = "cashout"
)

// Config holds the crash point range and the step size.
type Config struct {
	MinPoint decimal.Decimal
	MaxPoint decimal.Decimal
	Step     decimal.Decimal
}

// DefaultConfig is a uniform crash point in [1.00, 10.00] with 0.10 steps.
func DefaultConfig() Config {
	return Config{
		MinPoint: decimal.NewFromInt(1),
		MaxPoint: decimal.NewFromInt(10),
		Step:     decimal.RequireFromString("0.10"),
	}
}

// ParseConfig builds a Config from decimal strings.
func ParseConfig(minPoint, maxPoint, step string) (Config, error) {
	var cfg Config
	var err error
	if cfg.MinPoint, err = decimal.NewFromString(minPoint); err != nil {
		return cfg, fmt.Errorf("invalid crash min point: %w", err)
	}
	if cfg.MaxPoint, err = decimal.NewFromString(maxPoint); err != nil {
		return cfg, fmt.Errorf("invalid crash max point: %w", err)
	}
	if cfg.Step, err = decimal.NewFromString(step); err != nil {
		return cfg, fmt.Errorf("invalid crash step: %w", err)
	}
	if cfg.MinPoint.LessThan(decimal.NewFromInt(1)) || cfg.MaxPoint.LessThan(cfg.MinPoint) || !cfg.Step.IsPositive() {
		return cfg, fmt.Errorf("invalid crash config: points [%s, %s] step %s", cfg.MinPoint, cfg.MaxPoint, cfg.Step)
	}
	return cfg, nil
}

// CrashGame is a multi-turn engine.
type CrashGame struct {
	cfg Config
}

// New creates the crash engine.
func New(cfg Config) *CrashGame { return &CrashGame{cfg: cfg} }

func (g *CrashGame) Kind() string  { return model.KindCrash }
func (g *CrashGame) Name() string  { return "Crash" }
func (g *CrashGame) Usage() string { return "crash <bet> | crash up | crash cashout" }

// SamplePoint draws a crash point uniformly from the configured range,
// rounded to hundredths.
func (g *CrashGame) SamplePoint(rng game.Rand) decimal.Decimal {
	span := g.cfg.MaxPoint.Sub(g.cfg.MinPoint)
	return g.cfg.MinPoint.Add(span.Mul(decimal.NewFromFloat(rng.Float64()))).Round(2)
}

// Start hides a crash point and sets the running multiplier to 1.00.
func (g *CrashGame) Start(rng game.Rand, bet int64, _ []string) (model.SessionState, game.Step, error) {
	state := model.SessionState{
		Kind:    model.KindCrash,
		RoundID: uuid.NewString(),
		Stake:   bet,
		Crash: &model.CrashState{
			Point:   g.SamplePoint(rng),
			Current: decimal.NewFromInt(1),
		},
	}
	text := fmt.Sprintf("🚀 Launched at x1.00 with %d coins.\n`crash up` to climb, `crash cashout` to take the money.", bet)
	return state, game.Step{Text: text}, nil
}

// Act advances the multiplier one step and either keeps climbing (up) or
// pays out (cashout). Reaching the crash point on either action loses.
func (g *CrashGame) Act(_ game.Rand, s *model.SessionState, action string, _ []string) (game.Step, error) {
	st := s.Crash
	if st == nil {
		return game.Step{}, fmt.Errorf("%w: crash session has no multiplier", game.ErrInternal)
	}
	action = strings.ToLower(action)
	if action != ActionUp && action != ActionCashout {
		return game.Step{}, fmt.Errorf("%w: unknown crash action %q, use up or cashout", game.ErrInvalidArgument, action)
	}

	st.Current = st.Current.Add(g.cfg.Step)
	if Crashed(st.Current, st.Point) {
		return game.Step{
			Done: true,
			Text: fmt.Sprintf("💥 Crashed at x%s! You lost %d coins.", st.Point.StringFixed(2), s.Stake),
		}, nil
	}

	if action == ActionUp {
		return game.Step{Text: fmt.Sprintf("📈 x%s and climbing…", st.Current.StringFixed(2))}, nil
	}

	payout := Payout(s.Stake, st.Current)
	return game.Step{
		Done:   true,
		Payout: payout,
		Text:   fmt.Sprintf("💰 Cashed out at x%s: %d coins.", st.Current.StringFixed(2), payout),
	}, nil
}

// Crashed reports whether the running multiplier reached the crash point.
func Crashed(current, point decimal.Decimal) bool {
	return current.GreaterThanOrEqual(point)
}

// Payout is stake × multiplier rounded down to whole coins.
func Payout(stake int64, multiplier decimal.Decimal) int64 {
	return decimal.NewFromInt(stake).Mul(multiplier).Floor().IntPart()
}
