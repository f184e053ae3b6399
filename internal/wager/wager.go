// Package wager validates bet amounts against per-kind bounds.
package wager

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"casino-bot/internal/config"
	"casino-bot/internal/game"
)

// Bounds is the inclusive bet range of a game kind.
type Bounds struct {
	Min int64
	Max int64
}

// BoundsOf extracts the bet range from configured game limits.
func BoundsOf(l config.GameLimits) Bounds {
	return Bounds{Min: l.MinBet, Max: l.MaxBet}
}

// Validate checks that amount is a whole positive number inside b and
// returns it as an integer. It is pure.
func Validate(amount decimal.Decimal, b Bounds) (int64, error) {
	if !amount.IsInteger() || !amount.IsPositive() {
		return 0, fmt.Errorf("%w: bet must be a whole positive number, got %s", game.ErrInvalidArgument, amount)
	}
	if !amount.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: bet %s is too large", game.ErrBetOutOfRange, amount)
	}
	n := amount.IntPart()
	if n < b.Min || (b.Max > 0 && n > b.Max) {
		return 0, fmt.Errorf("%w: bet must be between %d and %d", game.ErrBetOutOfRange, b.Min, b.Max)
	}
	return n, nil
}

// Parse converts raw chat input into a decimal amount.
func Parse(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: bet is required", game.ErrInvalidArgument)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", game.ErrInvalidArgument, raw)
	}
	return d, nil
}

// ValidateString is Parse followed by Validate.
func ValidateString(raw string, b Bounds) (int64, error) {
	d, err := Parse(raw)
	if err != nil {
		return 0, err
	}
	return Validate(d, b)
}
