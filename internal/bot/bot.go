// Package bot wires the chat command handlers into a telebot instance.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"casino-bot/internal/config"
	"casino-bot/internal/guard"
	"casino-bot/internal/handler"
	"casino-bot/internal/model"
	"casino-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot       *tele.Bot
	cfg       *config.Config
	whitelist *Whitelist
	roles     RoleSource
	ctx       context.Context
	cancel    context.CancelFunc

	accountHandler  *handler.AccountHandler
	transferHandler *handler.TransferHandler
	adminHandler    *handler.AdminHandler
	rankingHandler  *handler.RankingHandler
	gameHandler     *handler.GameHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config            *config.Config
	Guard             *guard.Guard
	Casino            *service.Casino
	AccountService    *service.AccountService
	TransferService   *service.TransferService
	DuelService       *service.DuelService
	RankingService    *service.RankingService
	TournamentService *service.TournamentService
	AdminService      *service.AdminService
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	timeout := deps.Config.Bot.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	teleBot, err := tele.NewBot(tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
		OnError: func(err error, c tele.Context) {
			ev := log.Error().Err(err)
			if c != nil {
				ev = ev.Str("text", c.Text())
			}
			ev.Msg("Handler failed")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Bot{
		bot:       teleBot,
		ctx:       ctx,
		cancel:    cancel,
		cfg:       deps.Config,
		whitelist: NewWhitelist(deps.Config),
		roles:     deps.Guard,

		accountHandler:  handler.NewAccountHandler(deps.AccountService, deps.RankingService),
		transferHandler: handler.NewTransferHandler(deps.AccountService, deps.TransferService, deps.DuelService),
		adminHandler:    handler.NewAdminHandler(deps.AccountService, deps.AdminService, deps.TournamentService),
		rankingHandler:  handler.NewRankingHandler(deps.RankingService, deps.TournamentService),
		gameHandler:     handler.NewGameHandler(deps.Casino),
	}

	b.registerMiddleware()
	b.registerHandlers()
	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(b.whitelist.Middleware())
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.accountHandler.HandleStart)
	b.bot.Handle("/balance", b.accountHandler.HandleBalance)
	b.bot.Handle("/profile", b.accountHandler.HandleProfile)
	b.bot.Handle("/my", b.accountHandler.HandleProfile)
	b.bot.Handle("/daily", b.accountHandler.HandleDaily)
	b.bot.Handle("/top", b.accountHandler.HandleTop)

	b.bot.Handle("/give", b.transferHandler.HandleGive)
	b.bot.Handle("/pay", b.transferHandler.HandleGive)
	b.bot.Handle("/duel", b.transferHandler.HandleDuel)

	b.bot.Handle("/daily_top", b.rankingHandler.HandleDailyTop)
	b.bot.Handle("/standings", b.rankingHandler.HandleStandings)

	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.roles, model.RoleAdmin))
	adminGroup.Handle("/grant", b.adminHandler.HandleGrant)
	adminGroup.Handle("/setrole", b.adminHandler.HandleSetRole)
	adminGroup.Handle("/tournament", b.adminHandler.HandleTournament)

	b.bot.Handle("/games", b.gameHandler.HandleGames)
	for _, kind := range b.gameHandler.Kinds() {
		b.bot.Handle("/"+kind, b.gameHandler.HandleGame)
	}
}

// Start starts the bot polling. It blocks until Stop.
func (b *Bot) Start() {
	b.gameHandler.StartMessageCleaner(b.ctx, b.bot)
	log.Info().Dur("interval", handler.MessageDeleteInterval).Msg("Message cleaner started")

	log.Info().Str("username", b.bot.Me.Username).Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.cancel()
	b.bot.Stop()
}
