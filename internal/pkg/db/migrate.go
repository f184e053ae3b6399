package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

type migration struct {
	name string
	sql  string
}

// migrations are idempotent and applied in order on every start.
var migrations = []migration{
	{"accounts table", `
		CREATE TABLE IF NOT EXISTS accounts (
			owner_id BIGINT PRIMARY KEY,
			username VARCHAR(255) NOT NULL DEFAULT '',
			balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
			games_won BIGINT NOT NULL DEFAULT 0,
			games_lost BIGINT NOT NULL DEFAULT 0,
			games_played BIGINT NOT NULL DEFAULT 0,
			total_winnings BIGINT NOT NULL DEFAULT 0,
			total_losses BIGINT NOT NULL DEFAULT 0,
			biggest_win BIGINT NOT NULL DEFAULT 0,
			jackpot_wins BIGINT NOT NULL DEFAULT 0,
			poker_wins BIGINT NOT NULL DEFAULT 0,
			tournament_points BIGINT NOT NULL DEFAULT 0,
			tournament_wins BIGINT NOT NULL DEFAULT 0,
			last_daily_claim BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_accounts_balance ON accounts(balance DESC);
	`},
	{"ledger_entries table", `
		CREATE TABLE IF NOT EXISTS ledger_entries (
			id CHAR(26) PRIMARY KEY,
			owner_id BIGINT NOT NULL REFERENCES accounts(owner_id),
			game_kind VARCHAR(32) NOT NULL DEFAULT '',
			amount BIGINT NOT NULL,
			entry_type VARCHAR(32) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_ledger_owner_kind_time
			ON ledger_entries(owner_id, game_kind, created_at DESC);
	`},
	{"game_sessions table", `
		CREATE TABLE IF NOT EXISTS game_sessions (
			owner_id BIGINT NOT NULL REFERENCES accounts(owner_id),
			game_kind VARCHAR(32) NOT NULL,
			state JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (owner_id, game_kind)
		);
		CREATE INDEX IF NOT EXISTS idx_game_sessions_updated ON game_sessions(updated_at);
	`},
	{"achievements table", `
		CREATE TABLE IF NOT EXISTS achievements (
			owner_id BIGINT NOT NULL REFERENCES accounts(owner_id),
			achievement_type VARCHAR(64) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (owner_id, achievement_type)
		);
	`},
	{"big_wins table", `
		CREATE TABLE IF NOT EXISTS big_wins (
			id BIGSERIAL PRIMARY KEY,
			owner_id BIGINT NOT NULL REFERENCES accounts(owner_id),
			game_kind VARCHAR(32) NOT NULL,
			amount BIGINT NOT NULL,
			jackpot BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_big_wins_owner_time ON big_wins(owner_id, created_at DESC);
	`},
	{"pools table", `
		CREATE TABLE IF NOT EXISTS pools (
			name VARCHAR(64) PRIMARY KEY,
			amount BIGINT NOT NULL CHECK (amount >= 0),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`},
	{"user_roles table", `
		CREATE TABLE IF NOT EXISTS user_roles (
			owner_id BIGINT PRIMARY KEY,
			role VARCHAR(32) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`},
	{"tournament tables", `
		CREATE TABLE IF NOT EXISTS tournaments (
			id BIGSERIAL PRIMARY KEY,
			started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			ended_at TIMESTAMPTZ,
			winner_id BIGINT
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_tournaments_single_active
			ON tournaments((ended_at IS NULL)) WHERE ended_at IS NULL;
		CREATE TABLE IF NOT EXISTS tournament_scores (
			tournament_id BIGINT NOT NULL REFERENCES tournaments(id),
			owner_id BIGINT NOT NULL REFERENCES accounts(owner_id),
			points BIGINT NOT NULL DEFAULT 0 CHECK (points >= 0),
			PRIMARY KEY (tournament_id, owner_id)
		);
	`},
}

// Migrate applies the schema.
func Migrate(ctx context.Context, q Querier) error {
	log.Info().Msg("Running database migrations...")

	for i, m := range migrations {
		if _, err := q.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", i+1, m.name, err)
		}
		log.Info().Msgf("Migration %d: %s ready", i+1, m.name)
	}

	log.Info().Msg("All migrations completed successfully")
	return nil
}
