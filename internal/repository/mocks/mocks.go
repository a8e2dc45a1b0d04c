package mocks

import (
	"context"

	"github.com/ganot/sitecycle/internal/domain/audit"
	"github.com/ganot/sitecycle/internal/domain/project"
	"github.com/ganot/sitecycle/internal/domain/report"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) ListActive(ctx context.Context) ([]project.Project, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) ApplyRotation(ctx context.Context, id string, fields project.RotationFields) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *ProjectRepository) UpdateField(ctx context.Context, id, field, value string) error {
	args := m.Called(ctx, id, field, value)
	return args.Error(0)
}

// AuditRecorder is a mock for project.AuditRecorder.
type AuditRecorder struct {
	mock.Mock
}

func (m *AuditRecorder) RecordFieldEdit(ctx context.Context, edit audit.Edit) (*audit.Record, error) {
	args := m.Called(ctx, edit)
	if rec, ok := args.Get(0).(*audit.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

// AuditRepository is a mock for audit.Repository.
type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) Append(ctx context.Context, rec *audit.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *AuditRepository) ListByProject(ctx context.Context, projectID string) ([]audit.Record, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]audit.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// FieldWriter is a mock for audit.FieldWriter.
type FieldWriter struct {
	mock.Mock
}

func (m *FieldWriter) UpdateField(ctx context.Context, projectID, field, value string) error {
	args := m.Called(ctx, projectID, field, value)
	return args.Error(0)
}

// AuditLister is a mock for report.AuditLister.
type AuditLister struct {
	mock.Mock
}

func (m *AuditLister) List(ctx context.Context, projectID string) ([]audit.Record, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]audit.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ReportRepository is a mock for report.Repository.
type ReportRepository struct {
	mock.Mock
}

func (m *ReportRepository) Append(ctx context.Context, rep *report.Report) error {
	args := m.Called(ctx, rep)
	return args.Error(0)
}

func (m *ReportRepository) ListByProject(ctx context.Context, projectID string) ([]report.Report, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]report.Report); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ArchiveStore is a mock for archive.Store.
type ArchiveStore struct {
	mock.Mock
}

func (m *ArchiveStore) GetProject(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ArchiveStore) ListReports(ctx context.Context, projectID string) ([]report.Report, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]report.Report); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ArchiveStore) ListAudits(ctx context.Context, projectID string) ([]audit.Record, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]audit.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ArchiveStore) DeleteProject(ctx context.Context, projectID string, reportIDs, auditIDs []string) error {
	args := m.Called(ctx, projectID, reportIDs, auditIDs)
	return args.Error(0)
}

// ExportSink is a mock for archive.Sink.
type ExportSink struct {
	mock.Mock
}

func (m *ExportSink) Export(ctx context.Context, filename string, artifact any) (string, error) {
	args := m.Called(ctx, filename, artifact)
	return args.String(0), args.Error(1)
}
