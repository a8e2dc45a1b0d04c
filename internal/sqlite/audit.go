package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ganot/sitecycle/internal/domain/audit"
	"github.com/ganot/sitecycle/internal/feed"
)

// AuditRepository implements audit.Repository for SQLite
type AuditRepository struct {
	db *DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append inserts a new audit record
func (r *AuditRepository) Append(ctx context.Context, rec *audit.Record) error {
	timestamp := rec.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	query := `
		INSERT INTO audit_records (
			id, project_id, type, field, old_value, new_value,
			editor_id, editor_name, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.ProjectID,
		rec.Type,
		rec.Field,
		rec.OldValue,
		rec.NewValue,
		rec.EditorID,
		rec.EditorName,
		timestamp.UTC(),
	)
	if err != nil {
		return insertError("audit record", err)
	}

	rec.Timestamp = timestamp.UTC()
	r.db.notify(feed.AuditsTopic(rec.ProjectID))
	return nil
}

// ListByProject returns the audit records of a project, in no particular order
func (r *AuditRepository) ListByProject(ctx context.Context, projectID string) ([]audit.Record, error) {
	query := `
		SELECT
			id, project_id, type, field, old_value, new_value,
			editor_id, editor_name, timestamp
		FROM audit_records
		WHERE project_id = ?
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	defer rows.Close()

	records := []audit.Record{}
	for rows.Next() {
		var rec audit.Record
		if err := rows.Scan(
			&rec.ID,
			&rec.ProjectID,
			&rec.Type,
			&rec.Field,
			&rec.OldValue,
			&rec.NewValue,
			&rec.EditorID,
			&rec.EditorName,
			&rec.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		rec.Timestamp = rec.Timestamp.UTC()
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}

	return records, nil
}
