package domain

type LeaderboardPeriod string

const (
	PeriodWeekly  LeaderboardPeriod = "weekly"
	PeriodMonthly LeaderboardPeriod = "monthly"
	PeriodAllTime LeaderboardPeriod = "all_time"
)

// ClubLeaderboardEntry is a snapshot row for one club in one period,
// recomputed by the cron job.
type ClubLeaderboardEntry struct {
	ClubID      int32             `json:"club_id"`
	ClubName    string            `json:"club_name"`
	TotalPoints int32             `json:"total_points"`
	MemberCount int32             `json:"member_count"`
	PeriodType  LeaderboardPeriod `json:"period_type"`
	PeriodStart string            `json:"period_start"`
	PeriodEnd   string            `json:"period_end"`
	GlobalRank  int32             `json:"global_rank"`
	ComputedOn  string            `json:"computed_on"`
}

// UserLeaderboardEntry is a snapshot row for one user in one period.
type UserLeaderboardEntry struct {
	UserID     int32             `json:"user_id"`
	Username   string            `json:"username"`
	Points     int32             `json:"points"`
	PeriodType LeaderboardPeriod `json:"period_type"`
	GlobalRank int32             `json:"global_rank"`
	ComputedOn string            `json:"computed_on"`
}

// ValidPeriod reports whether p names a snapshot period.
func ValidPeriod(p string) bool {
	switch LeaderboardPeriod(p) {
	case PeriodWeekly, PeriodMonthly, PeriodAllTime:
		return true
	}
	return false
}
