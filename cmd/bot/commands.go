package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"casino-bot/internal/bot"
	"casino-bot/internal/config"
	"casino-bot/internal/guard"
	"casino-bot/internal/httpapi"
	"casino-bot/internal/pkg/db"
	"casino-bot/internal/pkg/lock"
	"casino-bot/internal/service"
)

// app is what every subcommand needs: configuration, the log output and a
// database pool.
type app struct {
	cfg    *config.Config
	logOut io.Writer
	pool   *db.Pool
}

func newRootCmd() *cobra.Command {
	var configPath string
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "casino-bot",
		Short:        "Chat casino bot",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			a.cfg = cfg
			a.logOut = setupLogging(cfg.Log)
			log.Info().Msg("Configuration loaded successfully")

			pool, err := db.NewPool(cmd.Context(), &cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			a.pool = pool
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.pool != nil {
				a.pool.Close()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config", "directory holding config.yaml")

	serve := newServeCmd(a)
	rootCmd.RunE = serve.RunE
	rootCmd.AddCommand(serve, newMigrateCmd(a), newSessionsCmd(a), newAuditCmd(a))
	return rootCmd
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat bot and the operations HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	if err := db.Migrate(ctx, a.pool); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	g, err := guard.New(&cfg.Casino, service.NewRoleDirectory(cfg, a.pool))
	if err != nil {
		return err
	}
	g.Start()
	defer g.Stop()

	registry, err := service.NewRegistry(&cfg.Casino)
	if err != nil {
		return err
	}
	log.Info().
		Int("game_count", registry.Count()).
		Strs("games", registry.Kinds()).
		Msg("Games registered")

	loc, err := cfg.Daily.Location()
	if err != nil {
		return err
	}

	locks := lock.NewUserLock()
	stats := service.NewStats(&cfg.Casino)
	deps := &bot.Dependencies{
		Config:            cfg,
		Guard:             g,
		Casino:            service.NewCasino(a.pool, registry, g, locks, stats, &cfg.Casino),
		AccountService:    service.NewAccountService(a.pool, locks, cfg),
		TransferService:   service.NewTransferService(a.pool, locks, &cfg.Casino),
		DuelService:       service.NewDuelService(a.pool, g, locks, stats, &cfg.Casino),
		RankingService:    service.NewRankingService(a.pool, loc),
		TournamentService: service.NewTournamentService(a.pool, stats),
		AdminService:      service.NewAdminService(a.pool, g, locks, &cfg.Casino),
	}

	telegramBot, err := bot.New(deps)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpapi.NewRouter(service.NewOpsService(a.pool), cfg.HTTP.AdminKey, a.logOut),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Ops server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Ops server failed")
		}
	}()

	go telegramBot.Start()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()
	log.Info().Msg("Received shutdown signal")

	telegramBot.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Ops server shutdown failed")
	}
	log.Info().Msg("Bot stopped gracefully")
	return nil
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return db.Migrate(cmd.Context(), a.pool)
		},
	}
}

func newSessionsCmd(a *app) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect unfinished game sessions",
	}

	var (
		olderThan time.Duration
		limit     int
		asJSON    bool
	)
	staleCmd := &cobra.Command{
		Use:   "stale",
		Short: "List sessions idle for longer than --older-than",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions, err := service.NewOpsService(a.pool).StaleSessions(cmd.Context(), olderThan, limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), sessions)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "OWNER\tGAME\tSTAKE\tIDLE\tROUND")
			for _, s := range sessions {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", s.OwnerID, s.GameKind, s.Stake, s.Idle, s.RoundID)
			}
			return tw.Flush()
		},
	}
	staleCmd.Flags().DurationVar(&olderThan, "older-than", httpapi.DefaultStaleAge, "minimum idle time")
	staleCmd.Flags().IntVar(&limit, "limit", 100, "maximum sessions to list")
	staleCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	sessionsCmd.AddCommand(staleCmd)
	return sessionsCmd
}

func newAuditCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit <owner-id>",
		Short: "Compare an account's balance with its ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ownerID int64
			if _, err := fmt.Sscan(args[0], &ownerID); err != nil {
				return fmt.Errorf("invalid owner id %q", args[0])
			}
			audit, err := service.NewOpsService(a.pool).Audit(cmd.Context(), ownerID, limit)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), audit); err != nil {
				return err
			}
			if !audit.Consistent {
				return fmt.Errorf("balance %d does not match ledger sum %d", audit.Account.Balance, audit.LedgerSum)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "newest ledger entries to print")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
