package report

import (
	"context"

	"github.com/ganot/sitecycle/internal/domain/audit"
	"github.com/ganot/sitecycle/internal/domain/project"
)

// Repository provides persistence for reports.
type Repository interface {
	Append(ctx context.Context, rep *Report) error
	ListByProject(ctx context.Context, projectID string) ([]Report, error)
}

// AuditLister serves the audit trail merged into the project history.
type AuditLister interface {
	List(ctx context.Context, projectID string) ([]audit.Record, error)
}

// ProjectGetter confirms the parent project before a report is written.
type ProjectGetter interface {
	Get(ctx context.Context, id string) (*project.Project, error)
}
