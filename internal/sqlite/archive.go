package sqlite

import (
	"context"
	"fmt"

	"github.com/ganot/sitecycle/internal/domain/audit"
	"github.com/ganot/sitecycle/internal/domain/project"
	"github.com/ganot/sitecycle/internal/domain/report"
	"github.com/ganot/sitecycle/internal/feed"
	"github.com/ganot/sitecycle/internal/repository"
)

// ArchiveRepository implements archive.Store for SQLite
type ArchiveRepository struct {
	db       *DB
	projects *ProjectRepository
	reports  *ReportRepository
	audits   *AuditRepository
}

// NewArchiveRepository creates a new ArchiveRepository
func NewArchiveRepository(db *DB) *ArchiveRepository {
	return &ArchiveRepository{
		db:       db,
		projects: NewProjectRepository(db),
		reports:  NewReportRepository(db),
		audits:   NewAuditRepository(db),
	}
}

// GetProject retrieves the project being archived
func (r *ArchiveRepository) GetProject(ctx context.Context, id string) (*project.Project, error) {
	return r.projects.Get(ctx, id)
}

// ListReports returns every report of the project
func (r *ArchiveRepository) ListReports(ctx context.Context, projectID string) ([]report.Report, error) {
	return r.reports.ListByProject(ctx, projectID)
}

// ListAudits returns every audit record of the project
func (r *ArchiveRepository) ListAudits(ctx context.Context, projectID string) ([]audit.Record, error) {
	return r.audits.ListByProject(ctx, projectID)
}

// DeleteProject removes the project and the given reports and audit records
// in a single transaction
func (r *ArchiveRepository) DeleteProject(ctx context.Context, projectID string, reportIDs, auditIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	for _, id := range reportIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE id = ? AND project_id = ?`, id, projectID); err != nil {
			return fmt.Errorf("failed to delete report %s: %w", id, err)
		}
	}
	for _, id := range auditIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM audit_records WHERE id = ? AND project_id = ?`, id, projectID); err != nil {
			return fmt.Errorf("failed to delete audit record %s: %w", id, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.db.notify(feed.TopicProjects, feed.ReportsTopic(projectID), feed.AuditsTopic(projectID))
	return nil
}
