package service

import (
	"context"
	"fmt"

	"carscene-backend/internal/domain"
	"carscene-backend/internal/repository"
)

type leaderboardService struct {
	leaderboards repository.LeaderboardRepository
}

func NewLeaderboardService(leaderboards repository.LeaderboardRepository) LeaderboardService {
	return &leaderboardService{leaderboards: leaderboards}
}

func (s *leaderboardService) ClubLeaderboard(ctx context.Context, period string) ([]domain.ClubLeaderboardEntry, error) {
	if period == "" {
		period = string(domain.PeriodAllTime)
	}
	if !domain.ValidPeriod(period) {
		return nil, fmt.Errorf("%w: unknown period %q", domain.ErrValidation, period)
	}
	return s.leaderboards.ClubLeaderboard(ctx, domain.LeaderboardPeriod(period))
}

func (s *leaderboardService) UserLeaderboard(ctx context.Context, period string) ([]domain.UserLeaderboardEntry, error) {
	if period == "" {
		period = string(domain.PeriodAllTime)
	}
	if !domain.ValidPeriod(period) {
		return nil, fmt.Errorf("%w: unknown period %q", domain.ErrValidation, period)
	}
	return s.leaderboards.UserLeaderboard(ctx, domain.LeaderboardPeriod(period))
}
