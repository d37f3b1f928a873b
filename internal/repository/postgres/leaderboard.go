package postgres

import (
	"context"
	"time"

	"carscene-backend/internal/domain"
	"carscene-backend/internal/repository"
)

type leaderboardRepository struct {
	db DBTX
}

func NewLeaderboardRepository(db DBTX) repository.LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

// ClubLeaderboard invokes the club_leaderboard database function against the
// latest snapshot batch for the period.
func (r *leaderboardRepository) ClubLeaderboard(ctx context.Context, period domain.LeaderboardPeriod) ([]domain.ClubLeaderboardEntry, error) {
	query := `SELECT club_id, club_name, total_points, member_count, period_start, period_end, global_rank, computed_on
	          FROM club_leaderboard($1)`
	rows, err := r.db.QueryContext(ctx, query, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.ClubLeaderboardEntry
	for rows.Next() {
		var e domain.ClubLeaderboardEntry
		var periodStart, periodEnd, computedOn time.Time
		if err := rows.Scan(&e.ClubID, &e.ClubName, &e.TotalPoints, &e.MemberCount, &periodStart, &periodEnd, &e.GlobalRank, &computedOn); err != nil {
			return nil, err
		}
		e.PeriodType = period
		e.PeriodStart = periodStart.Format("2006-01-02")
		e.PeriodEnd = periodEnd.Format("2006-01-02")
		e.ComputedOn = computedOn.Format(time.RFC3339)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *leaderboardRepository) UserLeaderboard(ctx context.Context, period domain.LeaderboardPeriod) ([]domain.UserLeaderboardEntry, error) {
	query := `SELECT user_id, username, points, global_rank, computed_on FROM user_leaderboard($1)`
	rows, err := r.db.QueryContext(ctx, query, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.UserLeaderboardEntry
	for rows.Next() {
		var e domain.UserLeaderboardEntry
		var computedOn time.Time
		if err := rows.Scan(&e.UserID, &e.Username, &e.Points, &e.GlobalRank, &computedOn); err != nil {
			return nil, err
		}
		e.PeriodType = period
		e.ComputedOn = computedOn.Format(time.RFC3339)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SnapshotClubs recomputes one period's club snapshots via the
// snapshot_club_leaderboard database function.
func (r *leaderboardRepository) SnapshotClubs(ctx context.Context, period domain.LeaderboardPeriod, start, end time.Time) error {
	_, err := r.db.ExecContext(ctx, `SELECT snapshot_club_leaderboard($1, $2, $3)`, period, start, end)
	return err
}

func (r *leaderboardRepository) SnapshotUsers(ctx context.Context, period domain.LeaderboardPeriod, start, end time.Time) error {
	_, err := r.db.ExecContext(ctx, `SELECT snapshot_user_leaderboard($1, $2, $3)`, period, start, end)
	return err
}
