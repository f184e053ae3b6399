package service

import (
	"context"
	"time"

	"casino-bot/internal/model"
	"casino-bot/internal/pkg/db"
	"casino-bot/internal/repository"
)

// RankingService handles ranking and leaderboard operations.
type RankingService struct {
	store    *repository.Store
	timezone *time.Location
	now      func() time.Time
}

// NewRankingService creates a new RankingService instance.
func NewRankingService(q db.Querier, timezone *time.Location) *RankingService {
	if timezone == nil {
		timezone = time.UTC
	}
	return &RankingService{
		store:    repository.New(q),
		timezone: timezone,
		now:      time.Now,
	}
}

// GetTopUsers retrieves the top users by balance.
func (s *RankingService) GetTopUsers(ctx context.Context, limit int) ([]*model.Account, error) {
	return s.store.Accounts.Top(ctx, limit)
}

// GetDailyWinners retrieves today's biggest net winners from play.
func (s *RankingService) GetDailyWinners(ctx context.Context, limit int) ([]*model.DailyRank, error) {
	return s.store.Ledger.DailyWinners(ctx, s.today(), limit)
}

// GetDailyLosers retrieves today's biggest net losers from play.
func (s *RankingService) GetDailyLosers(ctx context.Context, limit int) ([]*model.DailyRank, error) {
	return s.store.Ledger.DailyLosers(ctx, s.today(), limit)
}

// GetDailyWinnersForDate retrieves winners for a specific date.
func (s *RankingService) GetDailyWinnersForDate(ctx context.Context, date time.Time, limit int) ([]*model.DailyRank, error) {
	return s.store.Ledger.DailyWinners(ctx, date.In(s.timezone), limit)
}

// GetDailyLosersForDate retrieves losers for a specific date.
func (s *RankingService) GetDailyLosersForDate(ctx context.Context, date time.Time, limit int) ([]*model.DailyRank, error) {
	return s.store.Ledger.DailyLosers(ctx, date.In(s.timezone), limit)
}

func (s *RankingService) today() time.Time {
	return s.now().In(s.timezone)
}
