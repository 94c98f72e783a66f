package orchestrators

import (
	"context"

	"sqnportal/internal/domain/duty"
	"sqnportal/internal/domain/user"
)

// DutyStatsStore provides the aggregate attendance queries.
type DutyStatsStore interface {
	CountAttendedSenior(ctx context.Context) (map[string]int, error)
	CountAttendedJunior(ctx context.Context) (map[string]int, error)
}

// UserListStore lists all portal users.
type UserListStore interface {
	List(ctx context.Context) ([]user.User, error)
}

// DutyStatsDeps holds dependencies for DutyStats.
type DutyStatsDeps struct {
	DutyStore DutyStatsStore
	UserStore UserListStore
}

// ExecuteDutyStats builds the per-user attended-duty leaderboard. Every user
// appears, including those with zero attended duties; order follows the user
// list (full name ascending).
// POST: len(result) == number of users; counts reflect attended slots only
func ExecuteDutyStats(ctx context.Context, deps DutyStatsDeps) ([]duty.UserStats, error) {
	users, err := deps.UserStore.List(ctx)
	if err != nil {
		return nil, err
	}
	senior, err := deps.DutyStore.CountAttendedSenior(ctx)
	if err != nil {
		return nil, err
	}
	junior, err := deps.DutyStore.CountAttendedJunior(ctx)
	if err != nil {
		return nil, err
	}

	stats := make([]duty.UserStats, 0, len(users))
	for _, u := range users {
		s := duty.UserStats{
			UserID:       u.ID,
			FullName:     u.FullName,
			SeniorDuties: senior[u.ID],
			JuniorDuties: junior[u.ID],
		}
		s.TotalDuties = s.SeniorDuties + s.JuniorDuties
		stats = append(stats, s)
	}
	return stats, nil
}
