package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ganot/sitecycle/internal/domain/audit"
	"github.com/ganot/sitecycle/internal/domain/failure"
	"github.com/ganot/sitecycle/internal/domain/project"
	"github.com/ganot/sitecycle/internal/domain/report"
	"github.com/ganot/sitecycle/internal/repository"
)

// Service runs the terminal archive-and-delete operation.
type Service struct {
	store  Store
	sink   Sink
	logger *slog.Logger
}

// NewService creates a new archive service.
func NewService(store Store, sink Sink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, sink: sink, logger: logger}
}

// Archive exports the project with its full report and audit history, then
// deletes all of it in one batch. Nothing is deleted unless the export
// succeeded. Once started the operation ignores cancellation of ctx.
func (s *Service) Archive(ctx context.Context, projectID string) (*Result, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("%w: project id is required", ErrInvalidInput)
	}
	ctx = context.WithoutCancel(ctx)

	proj, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, project.ErrProjectNotFound
		}
		return nil, failure.Read("get project", err)
	}
	reports, err := s.store.ListReports(ctx, projectID)
	if err != nil {
		return nil, failure.Read("list reports", err)
	}
	records, err := s.store.ListAudits(ctx, projectID)
	if err != nil {
		return nil, failure.Read("list audit records", err)
	}

	snapshot := *proj
	snapshot.IsClosed = true
	report.SortNewestFirst(reports)
	audit.SortNewestFirst(records)
	artifact := Artifact{
		ProjectDetails: snapshot,
		ReportsHistory: nonNil(reports),
		NotesHistory:   nonNil(records),
	}

	filename := Filename(proj.Name, proj.ID)
	location, err := s.sink.Export(ctx, filename, artifact)
	if err != nil {
		s.logger.Error("archive export failed", "project_id", projectID, "error", err)
		return nil, failure.Export("export archive", err)
	}

	reportIDs := make([]string, 0, len(reports))
	for _, r := range reports {
		reportIDs = append(reportIDs, r.ID)
	}
	auditIDs := make([]string, 0, len(records))
	for _, r := range records {
		auditIDs = append(auditIDs, r.ID)
	}
	if err := s.store.DeleteProject(ctx, projectID, reportIDs, auditIDs); err != nil {
		s.logger.Error("archive delete failed after export",
			"project_id", projectID, "location", location, "error", err)
		return nil, failure.Write("delete archived project", err)
	}

	s.logger.Info("project archived",
		"project_id", projectID,
		"reports", len(reports),
		"audit_records", len(records),
		"location", location)
	return &Result{Artifact: artifact, Filename: filepath.Base(location), Location: location}, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
