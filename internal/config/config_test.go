package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, int64(1000), cfg.Casino.StartingBalance)
	assert.Equal(t, 5*time.Second, cfg.Casino.LockTimeout)

	slots := cfg.Casino.Limits("slots")
	assert.Equal(t, int64(1), slots.MinBet)
	assert.Equal(t, 50, slots.PerHour)
	assert.Equal(t, 3*time.Second, slots.Cooldown())

	assert.Equal(t, int64(50), cfg.Casino.Limits("blackjack").MinBet)
	assert.Equal(t, int64(100), cfg.Casino.Limits("baccarat").MinBet)
	assert.Equal(t, int64(50000), cfg.Casino.Limits("crash").MaxBet)
	assert.Equal(t, int64(50000), cfg.Casino.Limits("mines").MaxBet)

	// Unknown kinds fall back to the defaults.
	unknown := cfg.Casino.Limits("roulette")
	assert.Equal(t, 100, unknown.PerHour)
	assert.Equal(t, 2, unknown.CooldownSeconds)

	assert.Equal(t, "0.10", cfg.Casino.Crash.Step)
	assert.Equal(t, int64(1000), cfg.Casino.Lottery.PoolFloor)
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := `
database:
  host: db.internal
casino:
  starting_balance: 2500
  games:
    slots:
      min_bet: 5
      max_bet: 500
      per_hour: 5
      cooldown_seconds: 1
admin:
  ids: [42, 43]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, int64(2500), cfg.Casino.StartingBalance)
	assert.Equal(t, 5, cfg.Casino.Limits("slots").PerHour)
	assert.Equal(t, int64(500), cfg.Casino.Limits("slots").MaxBet)
	assert.True(t, cfg.IsAdmin(42))
	assert.False(t, cfg.IsAdmin(1))
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CASINO_DATABASE_HOST", "env-host")
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "env-host", cfg.Database.Host)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 1, Name: "n"}
	assert.Equal(t, "postgres://u:p@h:1/n?sslmode=disable", d.DSN())
}

func TestIsChatAllowed(t *testing.T) {
	cfg := &Config{}
	assert.True(t, cfg.IsChatAllowed(7), "empty whitelist allows all chats")

	cfg.Whitelist.Chats = []int64{1}
	assert.True(t, cfg.IsChatAllowed(1))
	assert.False(t, cfg.IsChatAllowed(7))
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), cfg.Casino.StartingBalance)
	assert.Equal(t, int64(100000), cfg.Casino.Guard.BigWinFloor)
	assert.Equal(t, "senior_moderator", cfg.Casino.Guard.ExemptRole)

	loc, err := cfg.Daily.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestDailyLocation_Invalid(t *testing.T) {
	_, err := DailyConfig{Timezone: "Mars/Olympus"}.Location()
	assert.Error(t, err)
}
