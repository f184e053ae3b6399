package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"casino-bot/internal/game"
	"casino-bot/internal/model"
	"casino-bot/internal/pkg/db"
	"casino-bot/internal/repository"
)

// Tournament errors.
var (
	ErrNoTournament      = fmt.Errorf("%w: no tournament is running", game.ErrInvalidArgument)
	ErrTournamentRunning = fmt.Errorf("%w: a tournament is already running", game.ErrInvalidArgument)
)

// TournamentResult is an ended tournament with its final standings.
type TournamentResult struct {
	Tournament   *model.Tournament
	Standings    []*model.TournamentScore
	Winner       *model.TournamentScore
	Achievements []AchievementDef
}

// TournamentService starts and ends scoring periods. Points are awarded by
// the stats post-processor while a tournament runs.
type TournamentService struct {
	db    db.Conn
	stats *Stats
}

// NewTournamentService creates the tournament service.
func NewTournamentService(conn db.Conn, stats *Stats) *TournamentService {
	return &TournamentService{db: conn, stats: stats}
}

// Start opens a tournament.
func (s *TournamentService) Start(ctx context.Context) (*model.Tournament, error) {
	t, err := repository.New(s.db).Tournaments.Start(ctx)
	if errors.Is(err, repository.ErrTournamentActive) {
		return nil, ErrTournamentRunning
	}
	if err != nil {
		return nil, err
	}
	log.Info().Int64("tournament", t.ID).Msg("Tournament started")
	return t, nil
}

// Standings returns the running tournament's leaderboard.
func (s *TournamentService) Standings(ctx context.Context, limit int) (*model.Tournament, []*model.TournamentScore, error) {
	st := repository.New(s.db)
	t, err := st.Tournaments.Active(ctx)
	if errors.Is(err, repository.ErrNoActiveTournament) {
		return nil, nil, ErrNoTournament
	}
	if err != nil {
		return nil, nil, err
	}
	scores, err := st.Tournaments.Standings(ctx, t.ID, limit)
	if err != nil {
		return nil, nil, err
	}
	return t, scores, nil
}

// End closes the running tournament. The leader, if anyone scored, gets a
// tournament win and their achievements are re-evaluated.
func (s *TournamentService) End(ctx context.Context, limit int) (*TournamentResult, error) {
	var res TournamentResult
	err := db.InTx(ctx, s.db, func(tx pgx.Tx) error {
		st := repository.New(tx)
		t, err := st.Tournaments.Active(ctx)
		if errors.Is(err, repository.ErrNoActiveTournament) {
			return ErrNoTournament
		}
		if err != nil {
			return err
		}
		scores, err := st.Tournaments.Standings(ctx, t.ID, limit)
		if err != nil {
			return err
		}
		res.Tournament = t
		res.Standings = scores

		var winnerID *int64
		if len(scores) > 0 {
			res.Winner = scores[0]
			winnerID = &scores[0].OwnerID
			acct, err := st.Accounts.IncrementTournamentWins(ctx, *winnerID)
			if err != nil {
				return err
			}
			if res.Achievements, err = s.stats.Evaluate(ctx, st, acct, 0); err != nil {
				return err
			}
		}
		return st.Tournaments.End(ctx, t.ID, winnerID)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int64("tournament", res.Tournament.ID).Int("players", len(res.Standings)).Msg("Tournament ended")
	return &res, nil
}
