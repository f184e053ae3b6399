// Package config provides configuration management using viper.
// It supports loading from YAML files, an optional .env file and
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. CASINO_DATABASE_HOST.
const EnvPrefix = "CASINO"

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Daily     DailyConfig     `mapstructure:"daily"`
	Casino    CasinoConfig    `mapstructure:"casino"`
}

// BotConfig holds chat bot configuration.
type BotConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// LogConfig selects the zerolog level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

// HTTPConfig configures the operations HTTP server.
type HTTPConfig struct {
	Addr     string `mapstructure:"addr"`
	AdminKey string `mapstructure:"admin_key"`
}

// AdminConfig holds admin user configuration.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// DailyConfig holds daily reward configuration.
type DailyConfig struct {
	MinReward     int64 `mapstructure:"min_reward"`
	MaxReward     int64 `mapstructure:"max_reward"`
	CooldownHours int   `mapstructure:"cooldown_hours"`
	// Timezone is the IANA zone daily rankings are cut in.
	Timezone string `mapstructure:"timezone"`
}

// Location resolves Timezone, falling back to UTC.
func (d DailyConfig) Location() (*time.Location, error) {
	if d.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid daily timezone: %w", err)
	}
	return loc, nil
}

// CasinoConfig holds everything the game engines and the guard need.
type CasinoConfig struct {
	StartingBalance int64                 `mapstructure:"starting_balance"`
	LockTimeout     time.Duration         `mapstructure:"lock_timeout"`
	Games           map[string]GameLimits `mapstructure:"games"`
	DefaultLimits   GameLimits            `mapstructure:"default_limits"`
	Guard           GuardConfig           `mapstructure:"guard"`
	Crash           CrashConfig           `mapstructure:"crash"`
	Mines           MinesConfig           `mapstructure:"mines"`
	Lottery         LotteryConfig         `mapstructure:"lottery"`
	Jackpot         JackpotConfig         `mapstructure:"jackpot"`
	Tournament      TournamentConfig      `mapstructure:"tournament"`
}

// GameLimits are the bet bounds and rate limits of one game kind.
type GameLimits struct {
	MinBet          int64 `mapstructure:"min_bet"`
	MaxBet          int64 `mapstructure:"max_bet"`
	PerHour         int   `mapstructure:"per_hour"`
	CooldownSeconds int   `mapstructure:"cooldown_seconds"`
}

// Cooldown returns the minimum gap between two rounds.
func (g GameLimits) Cooldown() time.Duration {
	return time.Duration(g.CooldownSeconds) * time.Second
}

// GuardConfig configures the suspicious-activity detector and role cache.
type GuardConfig struct {
	BigWinFloor        int64         `mapstructure:"big_win_floor"`
	MaxBigWinsPerHour  int           `mapstructure:"max_big_wins_per_hour"`
	BalanceAlarm       int64         `mapstructure:"balance_alarm"`
	WinningsMultiplier int64         `mapstructure:"winnings_multiplier"`
	ExemptRole         string        `mapstructure:"exempt_role"`
	RoleCacheTTL       time.Duration `mapstructure:"role_cache_ttl"`
}

// CrashConfig configures the crash game.
type CrashConfig struct {
	MinPoint string `mapstructure:"min_point"`
	MaxPoint string `mapstructure:"max_point"`
	Step     string `mapstructure:"step"`
}

// MinesConfig configures the mines game.
type MinesConfig struct {
	GridSize  int    `mapstructure:"grid_size"`
	Hazards   int    `mapstructure:"hazards"`
	Increment string `mapstructure:"increment"`
}

// LotteryConfig configures the lottery.
type LotteryConfig struct {
	TicketPrice    int64 `mapstructure:"ticket_price"`
	MaxTickets     int64 `mapstructure:"max_tickets"`
	PoolFloor      int64 `mapstructure:"pool_floor"`
	MissPercent    int64 `mapstructure:"miss_percent"`
	JackpotPercent int   `mapstructure:"jackpot_percent"`
	MediumPercent  int   `mapstructure:"medium_percent"`
	SmallPercent   int   `mapstructure:"small_percent"`
}

// JackpotConfig configures the shared jackpot bank.
type JackpotConfig struct {
	PoolFloor int64 `mapstructure:"pool_floor"`
}

// TournamentConfig configures tournament scoring.
type TournamentConfig struct {
	PointsDivisor int64 `mapstructure:"points_divisor"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// e.g. CASINO_BOT_TOKEN, CASINO_DATABASE_HOST
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in defaults without reading any file or the
// environment.
func Default() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal defaults: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.poll_timeout", "10s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "casino")
	v.SetDefault("database.name", "casino")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("http.addr", ":8081")

	v.SetDefault("daily.min_reward", 100)
	v.SetDefault("daily.max_reward", 500)
	v.SetDefault("daily.cooldown_hours", 24)
	v.SetDefault("daily.timezone", "UTC")

	v.SetDefault("casino.starting_balance", 1000)
	v.SetDefault("casino.lock_timeout", "5s")

	v.SetDefault("casino.default_limits", map[string]any{
		"min_bet": 1, "max_bet": 1000000, "per_hour": 100, "cooldown_seconds": 2,
	})
	games := map[string]map[string]any{
		"slots":     {"min_bet": 1, "max_bet": 1000000, "per_hour": 50, "cooldown_seconds": 3},
		"wheel":     {"min_bet": 1, "max_bet": 1000000, "per_hour": 100, "cooldown_seconds": 2},
		"flip":      {"min_bet": 1, "max_bet": 1000000, "per_hour": 100, "cooldown_seconds": 2},
		"dice":      {"min_bet": 1, "max_bet": 1000000, "per_hour": 60, "cooldown_seconds": 2},
		"numbers":   {"min_bet": 1, "max_bet": 1000000, "per_hour": 100, "cooldown_seconds": 2},
		"blackjack": {"min_bet": 50, "max_bet": 1000000, "per_hour": 40, "cooldown_seconds": 4},
		"crash":     {"min_bet": 1, "max_bet": 50000, "per_hour": 100, "cooldown_seconds": 2},
		"mines":     {"min_bet": 1, "max_bet": 50000, "per_hour": 100, "cooldown_seconds": 2},
		"lottery":   {"min_bet": 1, "max_bet": 10, "per_hour": 100, "cooldown_seconds": 2},
		"jackpot":   {"min_bet": 1, "max_bet": 1000000, "per_hour": 100, "cooldown_seconds": 2},
		"poker":     {"min_bet": 1, "max_bet": 1000000, "per_hour": 30, "cooldown_seconds": 5},
		"baccarat":  {"min_bet": 100, "max_bet": 1000000, "per_hour": 100, "cooldown_seconds": 2},
		"duel":      {"min_bet": 1, "max_bet": 1000000, "per_hour": 100, "cooldown_seconds": 2},
	}
	for kind, limits := range games {
		v.SetDefault("casino.games."+kind, limits)
	}

	v.SetDefault("casino.guard.big_win_floor", 100000)
	v.SetDefault("casino.guard.max_big_wins_per_hour", 3)
	v.SetDefault("casino.guard.balance_alarm", 1000000)
	v.SetDefault("casino.guard.winnings_multiplier", 2)
	v.SetDefault("casino.guard.exempt_role", "senior_moderator")
	v.SetDefault("casino.guard.role_cache_ttl", "5m")

	v.SetDefault("casino.crash.min_point", "1.00")
	v.SetDefault("casino.crash.max_point", "10.00")
	v.SetDefault("casino.crash.step", "0.10")

	v.SetDefault("casino.mines.grid_size", 5)
	v.SetDefault("casino.mines.hazards", 5)
	v.SetDefault("casino.mines.increment", "0.25")

	v.SetDefault("casino.lottery.ticket_price", 100)
	v.SetDefault("casino.lottery.max_tickets", 10)
	v.SetDefault("casino.lottery.pool_floor", 1000)
	v.SetDefault("casino.lottery.miss_percent", 50)
	v.SetDefault("casino.lottery.jackpot_percent", 1)
	v.SetDefault("casino.lottery.medium_percent", 5)
	v.SetDefault("casino.lottery.small_percent", 15)

	v.SetDefault("casino.jackpot.pool_floor", 0)

	v.SetDefault("casino.tournament.points_divisor", 100)
}

// Limits returns the configured limits for a game kind, falling back to
// the default limits for kinds with no explicit entry.
func (c *CasinoConfig) Limits(kind string) GameLimits {
	if l, ok := c.Games[kind]; ok {
		return l
	}
	return c.DefaultLimits
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}
