// Package model defines the data models for the casino bot.
package model

import "time"

// Account is a player's wallet together with the aggregate counters that
// settlements maintain. Accounts are never deleted.
type Account struct {
	OwnerID          int64     `db:"owner_id"`
	Username         string    `db:"username"`
	Balance          int64     `db:"balance"`
	GamesWon         int64     `db:"games_won"`
	GamesLost        int64     `db:"games_lost"`
	GamesPlayed      int64     `db:"games_played"`
	TotalWinnings    int64     `db:"total_winnings"`
	TotalLosses      int64     `db:"total_losses"`
	BiggestWin       int64     `db:"biggest_win"`
	JackpotWins      int64     `db:"jackpot_wins"`
	PokerWins        int64     `db:"poker_wins"`
	TournamentPoints int64     `db:"tournament_points"`
	TournamentWins   int64     `db:"tournament_wins"`
	LastDailyClaim   int64     `db:"last_daily_claim"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// LedgerEntry is one append-only balance-affecting event.
type LedgerEntry struct {
	ID        string    `db:"id"`
	OwnerID   int64     `db:"owner_id"`
	GameKind  string    `db:"game_kind"`
	Amount    int64     `db:"amount"`
	Type      string    `db:"entry_type"`
	CreatedAt time.Time `db:"created_at"`
}

// Ledger entry types.
const (
	EntryWager       = "wager"        // single-turn round, net of stake and payout
	EntryStake       = "stake"        // multi-turn stake taken at start
	EntryPayout      = "payout"       // multi-turn terminal credit, possibly zero
	EntryForfeit     = "forfeit"      // multi-turn session replaced before settling
	EntryDaily       = "daily"        // daily reward claim
	EntryTransfer    = "transfer"     // user-to-user transfer
	EntryDuel        = "duel"         // two-player duel result, challenger side
	EntryDuelDefense = "duel_defense" // two-player duel result, opponent side
	EntryAdmin       = "admin"        // admin grant
	EntryOpening     = "opening"      // starting balance of a new account
)

// RoundEntryTypes are the entry types that open a new round; the rate
// limiter counts these.
func RoundEntryTypes() []string {
	return []string{EntryWager, EntryStake, EntryDuel}
}

// GameEntryTypes are the entry types produced by play; daily rankings sum
// these.
func GameEntryTypes() []string {
	return []string{EntryWager, EntryStake, EntryPayout, EntryForfeit, EntryDuel, EntryDuelDefense}
}

// DailyRank is one owner's net game result over a day.
type DailyRank struct {
	OwnerID   int64  `db:"owner_id"`
	Username  string `db:"username"`
	NetProfit int64  `db:"net_profit"`
}

// Achievement is a unique (owner, type) record.
type Achievement struct {
	OwnerID   int64     `db:"owner_id"`
	Type      string    `db:"achievement_type"`
	CreatedAt time.Time `db:"created_at"`
}

// BigWin is an audit record of a win above the configured floor.
type BigWin struct {
	OwnerID   int64     `db:"owner_id"`
	GameKind  string    `db:"game_kind"`
	Amount    int64     `db:"amount"`
	Jackpot   bool      `db:"jackpot"`
	CreatedAt time.Time `db:"created_at"`
}

// Pool is a shared cross-player accumulator.
type Pool struct {
	Name      string    `db:"name"`
	Amount    int64     `db:"amount"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Well-known pool names.
const (
	PoolLottery = "lottery_jackpot"
	PoolJackpot = "jackpot_bank"
)

// Tournament is a scoring period. Only one tournament is active at a time.
type Tournament struct {
	ID        int64      `db:"id"`
	StartedAt time.Time  `db:"started_at"`
	EndedAt   *time.Time `db:"ended_at"`
	WinnerID  *int64     `db:"winner_id"`
}

// TournamentScore is one row of the typed tournament points table.
type TournamentScore struct {
	TournamentID int64  `db:"tournament_id"`
	OwnerID      int64  `db:"owner_id"`
	Username     string `db:"username"`
	Points       int64  `db:"points"`
}
