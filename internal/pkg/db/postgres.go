// Package db owns the PostgreSQL pool, the schema and the transaction
// helper every balance-moving command runs through.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"casino-bot/internal/config"
)

// applicationName tags the bot's sessions in pg_stat_activity.
const applicationName = "casino-bot"

// Pool is the application's connection pool. It satisfies Conn, so it can
// be handed to repositories and to InTx directly.
type Pool struct {
	*pgxpool.Pool
}

// NewPool connects and pings. Zero durations in cfg fall back to the
// viper defaults' values.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig) (*Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	size := max(cfg.PoolSize, 1)
	pc.MaxConns = int32(size)
	pc.MinConns = int32(max(size/4, 1))
	pc.ConnConfig.ConnectTimeout = orDefault(cfg.ConnectTimeout, 10*time.Second)
	pc.MaxConnLifetime = orDefault(cfg.MaxConnLifetime, time.Hour)
	pc.MaxConnIdleTime = orDefault(cfg.MaxConnIdleTime, 30*time.Minute)
	pc.HealthCheckPeriod = 30 * time.Second
	pc.ConnConfig.RuntimeParams["application_name"] = applicationName

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Int32("max_conns", pc.MaxConns).
		Msg("Connecting to PostgreSQL")

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Pool{Pool: pool}, nil
}

// Close logs the final pool counters and closes every connection.
func (p *Pool) Close() {
	if p.Pool == nil {
		return
	}
	st := p.Pool.Stat()
	log.Info().
		Int64("acquires", st.AcquireCount()).
		Dur("acquire_wait", st.AcquireDuration()).
		Int64("canceled_acquires", st.CanceledAcquireCount()).
		Msg("Closing PostgreSQL pool")
	p.Pool.Close()
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
