package audit

import "context"

// Repository provides persistence operations for audit records.
type Repository interface {
	Append(ctx context.Context, rec *Record) error
	ListByProject(ctx context.Context, projectID string) ([]Record, error)
}

// FieldWriter persists a single tracked field on a project.
type FieldWriter interface {
	UpdateField(ctx context.Context, projectID, field, value string) error
}
