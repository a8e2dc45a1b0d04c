package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ganot/sitecycle/internal/domain/report"
	"github.com/ganot/sitecycle/internal/feed"
)

// ReportRepository implements report.Repository for SQLite
type ReportRepository struct {
	db *DB
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Append inserts a new report
func (r *ReportRepository) Append(ctx context.Context, rep *report.Report) error {
	timestamp := rep.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	query := `
		INSERT INTO reports (id, project_id, report, reporter_id, reporter_name, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		rep.ID,
		rep.ProjectID,
		rep.Text,
		rep.ReporterID,
		rep.ReporterName,
		timestamp.UTC(),
	)
	if err != nil {
		return insertError("report", err)
	}

	rep.Timestamp = timestamp.UTC()
	r.db.notify(feed.ReportsTopic(rep.ProjectID))
	return nil
}

// ListByProject returns the reports of a project, in no particular order
func (r *ReportRepository) ListByProject(ctx context.Context, projectID string) ([]report.Report, error) {
	query := `
		SELECT id, project_id, report, reporter_id, reporter_name, timestamp
		FROM reports
		WHERE project_id = ?
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []report.Report{}
	for rows.Next() {
		var rep report.Report
		if err := rows.Scan(
			&rep.ID,
			&rep.ProjectID,
			&rep.Text,
			&rep.ReporterID,
			&rep.ReporterName,
			&rep.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		rep.Timestamp = rep.Timestamp.UTC()
		reports = append(reports, rep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report rows: %w", err)
	}

	return reports, nil
}
