package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ganot/sitecycle/internal/domain/failure"
	"github.com/ganot/sitecycle/internal/domain/project"
	"github.com/ganot/sitecycle/internal/identity"
	"github.com/ganot/sitecycle/internal/repository"
	"github.com/google/uuid"
)

// DefaultReporterName is used when the reporter has no display name.
const DefaultReporterName = "Anonymous reporter"

// Service handles the report feed.
type Service struct {
	repo     Repository
	projects ProjectGetter
	audits   AuditLister
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new report service.
func NewService(repo Repository, projects ProjectGetter, audits AuditLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, projects: projects, audits: audits, logger: logger, now: time.Now}
}

// WithClock replaces the time source used for report timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Append stores a trimmed report for the project. Archived or unknown
// projects are refused with project.ErrProjectNotFound.
func (s *Service) Append(ctx context.Context, projectID, text string, reporter identity.User) (*Report, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("%w: project id is required", ErrInvalidInput)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyReport
	}
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, project.ErrProjectNotFound) {
			return nil, project.ErrProjectNotFound
		}
		return nil, failure.Read("get project", err)
	}

	rep := &Report{
		ID:           uuid.NewString(),
		ProjectID:    projectID,
		Text:         text,
		ReporterID:   reporter.ID,
		ReporterName: reporter.NameOr(DefaultReporterName),
		Timestamp:    s.now().UTC(),
	}
	if err := s.repo.Append(ctx, rep); err != nil {
		return nil, failure.Write("append report", err)
	}

	s.logger.Debug("report appended", "project_id", projectID, "report_id", rep.ID)
	return rep, nil
}

// List returns the reports of a project, newest first.
func (s *Service) List(ctx context.Context, projectID string) ([]Report, error) {
	reports, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, failure.Read("list reports", err)
	}
	SortNewestFirst(reports)
	return reports, nil
}

// History merges reports and audit records into one timeline, newest first.
func (s *Service) History(ctx context.Context, projectID string) ([]HistoryItem, error) {
	reports, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, failure.Read("list reports", err)
	}
	records, err := s.audits.List(ctx, projectID)
	if err != nil {
		return nil, err
	}

	items := make([]HistoryItem, 0, len(reports)+len(records))
	for i := range reports {
		items = append(items, HistoryItem{Kind: KindReport, Timestamp: reports[i].Timestamp, Report: &reports[i]})
	}
	for i := range records {
		items = append(items, HistoryItem{Kind: KindAudit, Timestamp: records[i].Timestamp, Audit: &records[i]})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
	return items, nil
}

// SortNewestFirst orders reports by timestamp descending.
func SortNewestFirst(reports []Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Timestamp.After(reports[j].Timestamp)
	})
}
