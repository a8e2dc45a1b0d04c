package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ganot/sitecycle/internal/domain/failure"
	"github.com/google/uuid"
)

// Service records tracked field edits and serves the audit trail.
type Service struct {
	fields FieldWriter
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new audit service.
func NewService(fields FieldWriter, repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{fields: fields, repo: repo, logger: logger, now: time.Now}
}

// WithClock replaces the time source used for record timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RecordFieldEdit writes the new field value and then appends an audit record.
// An edit whose new value equals the old one writes nothing and returns a nil record.
func (s *Service) RecordFieldEdit(ctx context.Context, edit Edit) (*Record, error) {
	if strings.TrimSpace(edit.ProjectID) == "" || strings.TrimSpace(edit.Field) == "" {
		return nil, fmt.Errorf("%w: project id and field are required", ErrInvalidInput)
	}
	if !edit.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, edit.Type)
	}
	if edit.NewValue == edit.OldValue {
		return nil, nil
	}

	if err := s.fields.UpdateField(ctx, edit.ProjectID, edit.Field, edit.NewValue); err != nil {
		return nil, failure.Write("update "+edit.Field, err)
	}

	rec := &Record{
		ID:         uuid.NewString(),
		ProjectID:  edit.ProjectID,
		Type:       edit.Type,
		Field:      edit.Field,
		OldValue:   edit.OldValue,
		NewValue:   edit.NewValue,
		EditorID:   edit.EditorID,
		EditorName: edit.EditorName,
		Timestamp:  s.now().UTC(),
	}
	if err := s.repo.Append(ctx, rec); err != nil {
		s.logger.Warn("audit append failed after field update",
			"project_id", edit.ProjectID, "field", edit.Field, "error", err)
		return nil, failure.Write("append audit record", fmt.Errorf("%w: %w", ErrRecordNotWritten, err))
	}

	s.logger.Debug("field edited", "project_id", edit.ProjectID, "field", edit.Field, "type", edit.Type)
	return rec, nil
}

// List returns the audit trail of a project, newest first.
func (s *Service) List(ctx context.Context, projectID string) ([]Record, error) {
	records, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, failure.Read("list audit records", err)
	}
	SortNewestFirst(records)
	return records, nil
}

// SortNewestFirst orders records by timestamp descending.
func SortNewestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
}
