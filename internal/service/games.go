package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"casino-bot/internal/config"
	"casino-bot/internal/game"
	"casino-bot/internal/game/baccarat"
	"casino-bot/internal/game/blackjack"
	"casino-bot/internal/game/crash"
	"casino-bot/internal/game/dice"
	"casino-bot/internal/game/flip"
	"casino-bot/internal/game/jackpot"
	"casino-bot/internal/game/lottery"
	"casino-bot/internal/game/mines"
	"casino-bot/internal/game/numbers"
	"casino-bot/internal/game/poker"
	"casino-bot/internal/game/slot"
	"casino-bot/internal/game/wheel"
)

// NewRegistry builds the registry of every engine from configuration.
func NewRegistry(casino *config.CasinoConfig) (*game.Registry, error) {
	crashCfg, err := crash.ParseConfig(casino.Crash.MinPoint, casino.Crash.MaxPoint, casino.Crash.Step)
	if err != nil {
		return nil, fmt.Errorf("invalid crash config: %w", err)
	}

	increment, err := decimal.NewFromString(casino.Mines.Increment)
	if err != nil {
		return nil, fmt.Errorf("invalid mines increment %q: %w", casino.Mines.Increment, err)
	}
	minesCfg := mines.Config{Size: casino.Mines.GridSize, Hazards: casino.Mines.Hazards, Increment: increment}
	if err := minesCfg.Validate(); err != nil {
		return nil, err
	}

	l := casino.Lottery
	lotteryCfg := lottery.Config{
		TicketPrice:    l.TicketPrice,
		MaxTickets:     l.MaxTickets,
		PoolFloor:      l.PoolFloor,
		MissPercent:    l.MissPercent,
		JackpotPercent: l.JackpotPercent,
		MediumPercent:  l.MediumPercent,
		SmallPercent:   l.SmallPercent,
	}
	if lotteryCfg.TicketPrice <= 0 || lotteryCfg.MaxTickets <= 0 {
		return nil, fmt.Errorf("invalid lottery config: price %d max tickets %d", l.TicketPrice, l.MaxTickets)
	}

	r := game.NewRegistry()
	engines := []game.Engine{
		slot.New(slot.DefaultSymbols),
		wheel.New(),
		flip.New(),
		dice.New(),
		numbers.New(),
		blackjack.New(),
		crash.New(crashCfg),
		mines.New(minesCfg),
		lottery.New(lotteryCfg),
		jackpot.New(casino.Jackpot.PoolFloor),
		poker.New(),
		baccarat.New(),
	}
	for _, e := range engines {
		if err := r.Register(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}
