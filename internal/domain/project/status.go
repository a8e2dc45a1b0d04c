package project

import (
	"fmt"
	"math"
	"time"
)

// Status is the derived schedule state of a project.
type Status string

const (
	StatusClosed         Status = "CLOSED"
	StatusScheduleNeeded Status = "SCHEDULE_NEEDED"
	StatusOverdue        Status = "OVERDUE"
	StatusDueSoon        Status = "DUE_SOON"
	StatusOnTrack        Status = "ON_TRACK"
)

const day = 24 * time.Hour

// Classification is the result of Classify.
type Classification struct {
	Status      Status `json:"status"`
	Label       string `json:"label"`
	OverdueDays int    `json:"overdueDays,omitempty"`
}

// Classify derives the status of p at now. Only IsClosed and Planned.End are read.
func Classify(p Project, now time.Time) Classification {
	if p.IsClosed {
		return Classification{Status: StatusClosed, Label: "Closed"}
	}
	if p.Planned.End == nil {
		return Classification{Status: StatusScheduleNeeded, Label: "Needs scheduling"}
	}

	diff := ceilDays(p.Planned.End.Sub(now))
	switch {
	case diff < 0:
		overdue := -diff
		return Classification{
			Status:      StatusOverdue,
			Label:       fmt.Sprintf("Overdue %d %s", overdue, plural(overdue, "day", "days")),
			OverdueDays: overdue,
		}
	case diff <= 1:
		return Classification{Status: StatusDueSoon, Label: "Due soon"}
	default:
		return Classification{Status: StatusOnTrack, Label: "On track"}
	}
}

// DaysSince returns the whole days, rounded up, between t and now in either
// direction. A nil t yields -1.
func DaysSince(t *time.Time, now time.Time) int {
	if t == nil {
		return -1
	}
	d := now.Sub(*t)
	if d < 0 {
		d = -d
	}
	return ceilDays(d)
}

func ceilDays(d time.Duration) int {
	return int(math.Ceil(float64(d) / float64(day)))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
