package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ganot/sitecycle/internal/domain/audit"
	"github.com/ganot/sitecycle/internal/domain/failure"
	"github.com/ganot/sitecycle/internal/identity"
	"github.com/ganot/sitecycle/internal/repository"
	"github.com/google/uuid"
)

const (
	// DefaultEditorName is recorded for note edits by users without a display name.
	DefaultEditorName = "Anonymous editor"
	// DefaultOwnerName is recorded for remark edits by users without a display name.
	DefaultOwnerName = "Anonymous owner"
)

// Service handles project lifecycle operations.
type Service struct {
	repo     Repository
	recorder AuditRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new project service.
func NewService(repo Repository, recorder AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, recorder: recorder, logger: logger, now: time.Now}
}

// WithClock replaces the service time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Now returns the current time of the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// CreateRequest defines project creation inputs. Missing planned dates
// default to today.
type CreateRequest struct {
	Code              string
	Name              string
	ResponsiblePerson string
	PlannedActivity   string
	PlannedStart      *time.Time
	PlannedEnd        *time.Time
}

// Create creates a new open project with empty previous and next periods.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Project, error) {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case strings.TrimSpace(req.ResponsiblePerson) == "":
		return nil, fmt.Errorf("%w: responsible person is required", ErrInvalidInput)
	case strings.TrimSpace(req.PlannedActivity) == "":
		return nil, fmt.Errorf("%w: planned activity is required", ErrInvalidInput)
	}

	now := s.now().UTC()
	start, end := req.PlannedStart, req.PlannedEnd
	if start == nil {
		today := now
		start = &today
	}
	if end == nil {
		today := now
		end = &today
	}

	proj := &Project{
		ID:                uuid.NewString(),
		Code:              strings.TrimSpace(req.Code),
		Name:              strings.TrimSpace(req.Name),
		ResponsiblePerson: strings.TrimSpace(req.ResponsiblePerson),
		Planned: Period{
			Activity: req.PlannedActivity,
			Start:    start,
			End:      end,
		},
		LastUpdateDate: &now,
	}

	if err := s.repo.Create(ctx, proj); err != nil {
		return nil, failure.Write("create project", err)
	}

	s.logger.Info("project created", "project_id", proj.ID, "name", proj.Name)
	return proj, nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	proj, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, failure.Read("get project", err)
	}
	return proj, nil
}

// SortKey selects the active list ordering.
type SortKey string

const (
	SortByLastUpdate SortKey = "lastUpdateDate"
	SortByPlannedEnd SortKey = "plannedEnd"
)

// SortOrder is ascending or descending.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ListOptions configures ListActive. The zero value sorts by last update, newest first.
type ListOptions struct {
	SortKey SortKey
	Order   SortOrder
}

func (o ListOptions) normalized() (ListOptions, error) {
	if o.SortKey == "" {
		o.SortKey = SortByLastUpdate
	}
	if o.Order == "" {
		o.Order = OrderDesc
	}
	if o.SortKey != SortByLastUpdate && o.SortKey != SortByPlannedEnd {
		return o, fmt.Errorf("%w: unknown sort key %q", ErrInvalidInput, o.SortKey)
	}
	if o.Order != OrderAsc && o.Order != OrderDesc {
		return o, fmt.Errorf("%w: unknown sort order %q", ErrInvalidInput, o.Order)
	}
	return o, nil
}

// ListActive returns the open projects, sorted after fetch, each with its
// status derived at the current time.
func (s *Service) ListActive(ctx context.Context, opts ListOptions) ([]Entry, error) {
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}
	projects, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, failure.Read("list projects", err)
	}
	return BuildEntries(projects, opts, s.now()), nil
}

// BuildEntries sorts projects and derives their status at now. Closed
// projects are dropped.
func BuildEntries(projects []Project, opts ListOptions, now time.Time) []Entry {
	opts, _ = opts.normalized()
	active := make([]Project, 0, len(projects))
	for _, p := range projects {
		if !p.IsClosed {
			active = append(active, p)
		}
	}
	SortProjects(active, opts)

	entries := make([]Entry, 0, len(active))
	for _, p := range active {
		entries = append(entries, Entry{
			Project:         p,
			Status:          Classify(p, now),
			DaysSinceUpdate: DaysSince(p.LastUpdateDate, now),
		})
	}
	return entries
}

// SortProjects orders projects in place. Projects missing the sort field
// sort as the earliest time.
func SortProjects(projects []Project, opts ListOptions) {
	key := func(p Project) time.Time {
		var t *time.Time
		if opts.SortKey == SortByPlannedEnd {
			t = p.Planned.End
		} else {
			t = p.LastUpdateDate
		}
		if t == nil {
			return time.Time{}
		}
		return *t
	}
	sort.SliceStable(projects, func(i, j int) bool {
		a, b := key(projects[i]), key(projects[j])
		if opts.Order == OrderAsc {
			return a.Before(b)
		}
		return a.After(b)
	})
}

// Rotate closes out the planned period, promotes the new current period and
// accepts an optional next one. The rotation is validated before any store access.
func (s *Service) Rotate(ctx context.Context, id string, r Rotation) (*Project, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	proj, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, err := Rotate(*proj, r, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.repo.ApplyRotation(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, failure.Write("rotate project", err)
	}

	updated := fields.ApplyTo(*proj)
	s.logger.Info("project rotated",
		"project_id", id,
		"previous_activity", updated.Previous.Activity,
		"planned_activity", updated.Planned.Activity)
	return &updated, nil
}

// RotationDraft returns the pre-filled rotation form for a project.
func (s *Service) RotationDraft(ctx context.Context, id string) (Rotation, error) {
	proj, err := s.Get(ctx, id)
	if err != nil {
		return Rotation{}, err
	}
	return Draft(*proj, s.now().UTC()), nil
}

// EditNotes changes the planned or next period notes and records the edit.
// A nil record means the value was unchanged and nothing was written.
func (s *Service) EditNotes(ctx context.Context, id string, field Field, value string, editor identity.User) (*audit.Record, error) {
	if field != FieldPlannedNotes && field != FieldNextNotes {
		return nil, fmt.Errorf("%w: %q is not a notes field", ErrUnknownField, field)
	}
	return s.edit(ctx, id, field, audit.TypeNote, value, editor.ID, editor.NameOr(DefaultEditorName))
}

// EditRemark changes the previous period completion remark and records the edit.
func (s *Service) EditRemark(ctx context.Context, id, value string, editor identity.User) (*audit.Record, error) {
	return s.edit(ctx, id, FieldPreviousRemark, audit.TypeRemark, value, editor.ID, editor.NameOr(DefaultOwnerName))
}

func (s *Service) edit(ctx context.Context, id string, field Field, typ audit.Type, value, editorID, editorName string) (*audit.Record, error) {
	proj, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	current, _ := proj.FieldValue(field)
	return s.recorder.RecordFieldEdit(ctx, audit.Edit{
		ProjectID:  id,
		Field:      string(field),
		Type:       typ,
		OldValue:   current,
		NewValue:   value,
		EditorID:   editorID,
		EditorName: editorName,
	})
}

// Seed inserts the demo project for a signed-in user when no open project
// exists. It returns nil when nothing was inserted.
func (s *Service) Seed(ctx context.Context, user identity.User) (*Project, error) {
	if user.Anonymous {
		return nil, nil
	}
	existing, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, failure.Read("list projects", err)
	}
	if len(existing) > 0 {
		return nil, nil
	}

	proj := SeedProject(s.now().UTC())
	if err := s.repo.Create(ctx, &proj); err != nil {
		return nil, failure.Write("seed project", err)
	}
	s.logger.Info("seed project inserted", "project_id", proj.ID, "user_id", user.ID)
	return &proj, nil
}
