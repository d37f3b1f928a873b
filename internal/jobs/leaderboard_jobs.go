package jobs

import (
	"context"
	"time"

	"carscene-backend/internal/domain"
	"carscene-backend/internal/logger"
)

// ComputeLeaderboards recomputes the club and user leaderboard snapshots for
// every period. Reads always hit the latest snapshot, so a failed run leaves
// yesterday's standings in place rather than an empty board.
func (jr *JobRunner) ComputeLeaderboards() {
	jr.runWithRecovery("ComputeLeaderboards", func() {
		ctx := context.Background()
		now := time.Now().UTC()

		periods := []struct {
			period domain.LeaderboardPeriod
			start  time.Time
		}{
			{domain.PeriodWeekly, now.AddDate(0, 0, -7)},
			{domain.PeriodMonthly, now.AddDate(0, -1, 0)},
			{domain.PeriodAllTime, time.Unix(0, 0).UTC()},
		}

		for _, p := range periods {
			if err := jr.store.LeaderboardRepository.SnapshotClubs(ctx, p.period, p.start, now); err != nil {
				logger.Error("Club leaderboard snapshot failed", "period", p.period, "error", err)
				continue
			}
			if err := jr.store.LeaderboardRepository.SnapshotUsers(ctx, p.period, p.start, now); err != nil {
				logger.Error("User leaderboard snapshot failed", "period", p.period, "error", err)
				continue
			}
			logger.Info("Leaderboard snapshot computed", "period", p.period)
		}
	})
}
