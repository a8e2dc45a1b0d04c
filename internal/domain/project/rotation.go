package project

import (
	"fmt"
	"strings"
	"time"
)

// PeriodInput is a freshly entered period without notes.
type PeriodInput struct {
	Activity string     `json:"activity"`
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
}

// Rotation closes out the planned period and accepts a new one.
type Rotation struct {
	Current PeriodInput  `json:"current"`
	Next    *PeriodInput `json:"next,omitempty"`
}

// Validate checks the rotation preconditions.
func (r Rotation) Validate() error {
	if strings.TrimSpace(r.Current.Activity) == "" {
		return fmt.Errorf("%w: current activity is required", ErrInvalidRotation)
	}
	if r.Current.End == nil {
		return fmt.Errorf("%w: current end date is required", ErrInvalidRotation)
	}
	return nil
}

// RotationFields is the full field set written by a rotation. The previous
// remark is not part of it.
type RotationFields struct {
	PreviousActivity string
	PreviousStart    *time.Time
	PreviousEnd      *time.Time
	PreviousNotes    string

	PlannedActivity string
	PlannedStart    *time.Time
	PlannedEnd      *time.Time
	PlannedNotes    string

	NextActivity string
	NextStart    *time.Time
	NextEnd      *time.Time
	NextNotes    string

	LastUpdateDate time.Time
}

// Rotate computes the fields produced by rotating p at now. p is not modified.
func Rotate(p Project, r Rotation, now time.Time) (RotationFields, error) {
	if err := r.Validate(); err != nil {
		return RotationFields{}, err
	}

	f := RotationFields{
		PreviousActivity: p.Planned.Activity,
		PreviousStart:    p.Planned.Start,
		PreviousEnd:      p.Planned.End,
		PreviousNotes:    p.Planned.Notes,

		PlannedActivity: r.Current.Activity,
		PlannedStart:    r.Current.Start,
		PlannedEnd:      r.Current.End,
		PlannedNotes:    p.Next.Notes,

		NextNotes: "",

		LastUpdateDate: now,
	}
	if r.Next != nil {
		f.NextActivity = r.Next.Activity
		f.NextStart = r.Next.Start
		f.NextEnd = r.Next.End
	}
	return f, nil
}

// ApplyTo returns p with the rotation fields written over it.
func (f RotationFields) ApplyTo(p Project) Project {
	p.Previous.Activity = f.PreviousActivity
	p.Previous.Start = f.PreviousStart
	p.Previous.End = f.PreviousEnd
	p.Previous.Notes = f.PreviousNotes

	p.Planned = Period{
		Activity: f.PlannedActivity,
		Start:    f.PlannedStart,
		End:      f.PlannedEnd,
		Notes:    f.PlannedNotes,
	}
	p.Next = Period{
		Activity: f.NextActivity,
		Start:    f.NextStart,
		End:      f.NextEnd,
		Notes:    f.NextNotes,
	}

	updated := f.LastUpdateDate
	p.LastUpdateDate = &updated
	return p
}

// Draft returns the rotation form pre-filled from p: the outgoing next period
// becomes the new current one, with today standing in for missing dates.
func Draft(p Project, today time.Time) Rotation {
	start, end := p.Next.Start, p.Next.End
	if start == nil {
		s := today
		start = &s
	}
	if end == nil {
		e := today
		end = &e
	}
	return Rotation{
		Current: PeriodInput{
			Activity: p.Next.Activity,
			Start:    start,
			End:      end,
		},
	}
}
