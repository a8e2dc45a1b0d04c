package project

import (
	"context"

	"github.com/ganot/sitecycle/internal/domain/audit"
)

// Repository provides persistence for projects.
type Repository interface {
	Create(ctx context.Context, proj *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	ListActive(ctx context.Context) ([]Project, error)
	ApplyRotation(ctx context.Context, id string, fields RotationFields) error
	UpdateField(ctx context.Context, id, field, value string) error
}

// AuditRecorder persists a tracked field edit together with its audit record.
type AuditRecorder interface {
	RecordFieldEdit(ctx context.Context, edit audit.Edit) (*audit.Record, error)
}
