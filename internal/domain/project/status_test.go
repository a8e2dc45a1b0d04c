package project_test

import (
	"testing"
	"time"

	"github.com/ganot/sitecycle/internal/domain/project"
	"github.com/stretchr/testify/require"
)

func at(t time.Time) *time.Time { return &t }

func TestClassify(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		proj    project.Project
		status  project.Status
		overdue int
	}{
		{"yesterday is overdue by one", project.Project{Planned: project.Period{End: at(now.AddDate(0, 0, -1))}}, project.StatusOverdue, 1},
		{"ten days late", project.Project{Planned: project.Period{End: at(now.Add(-240 * time.Hour))}}, project.StatusOverdue, 10},
		{"today is due soon", project.Project{Planned: project.Period{End: at(now)}}, project.StatusDueSoon, 0},
		{"tomorrow is due soon", project.Project{Planned: project.Period{End: at(now.Add(24 * time.Hour))}}, project.StatusDueSoon, 0},
		{"later today rounds up to one day", project.Project{Planned: project.Period{End: at(now.Add(3 * time.Hour))}}, project.StatusDueSoon, 0},
		{"just over a day rounds up to two", project.Project{Planned: project.Period{End: at(now.Add(25 * time.Hour))}}, project.StatusOnTrack, 0},
		{"five days out", project.Project{Planned: project.Period{End: at(now.AddDate(0, 0, 5))}}, project.StatusOnTrack, 0},
		{"no end date", project.Project{Planned: project.Period{Activity: "pour slab"}}, project.StatusScheduleNeeded, 0},
		{"no end date ignores other periods", project.Project{Next: project.Period{End: at(now.AddDate(0, 0, -9))}}, project.StatusScheduleNeeded, 0},
		{"closed dominates overdue", project.Project{IsClosed: true, Planned: project.Period{End: at(now.AddDate(0, 0, -3))}}, project.StatusClosed, 0},
		{"closed dominates missing end", project.Project{IsClosed: true}, project.StatusClosed, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := project.Classify(tt.proj, now)
			require.Equal(t, tt.status, got.Status)
			require.Equal(t, tt.overdue, got.OverdueDays)
			require.NotEmpty(t, got.Label)
		})
	}
}

func TestClassify_OverdueLabel(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	one := project.Classify(project.Project{Planned: project.Period{End: at(now.AddDate(0, 0, -1))}}, now)
	require.Equal(t, "Overdue 1 day", one.Label)

	many := project.Classify(project.Project{Planned: project.Period{End: at(now.AddDate(0, 0, -4))}}, now)
	require.Equal(t, "Overdue 4 days", many.Label)
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	require.Equal(t, 0, project.DaysSince(at(now), now))
	require.Equal(t, 1, project.DaysSince(at(now.Add(-2*time.Hour)), now))
	require.Equal(t, 3, project.DaysSince(at(now.Add(-50*time.Hour)), now))
	require.Equal(t, 1, project.DaysSince(at(now.Add(time.Hour)), now))
	require.Equal(t, -1, project.DaysSince(nil, now))
}
