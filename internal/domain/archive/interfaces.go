package archive

import (
	"context"

	"github.com/ganot/sitecycle/internal/domain/audit"
	"github.com/ganot/sitecycle/internal/domain/project"
	"github.com/ganot/sitecycle/internal/domain/report"
)

// Store gives the archival engine read access to a project's documents and
// the batch delete that removes them.
type Store interface {
	GetProject(ctx context.Context, id string) (*project.Project, error)
	ListReports(ctx context.Context, projectID string) ([]report.Report, error)
	ListAudits(ctx context.Context, projectID string) ([]audit.Record, error)
	DeleteProject(ctx context.Context, projectID string, reportIDs, auditIDs []string) error
}

// Sink receives the export artifact and returns where it was stored.
type Sink interface {
	Export(ctx context.Context, filename string, artifact any) (string, error)
}
