package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/ganot/sitecycle/internal/domain/audit"
	"github.com/ganot/sitecycle/internal/domain/report"
	"github.com/ganot/sitecycle/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestArchiveRepository_DeleteProject(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	projects := NewProjectRepository(db)
	reports := NewReportRepository(db)
	audits := NewAuditRepository(db)
	archives := NewArchiveRepository(db)

	require.NoError(t, projects.Create(ctx, sampleProject("p1", now)))
	require.NoError(t, projects.Create(ctx, sampleProject("p2", now)))
	for _, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, reports.Append(ctx, &report.Report{ID: id, ProjectID: "p1", Text: id}))
	}
	require.NoError(t, reports.Append(ctx, &report.Report{ID: "other", ProjectID: "p2", Text: "keep"}))
	for _, id := range []string{"a1", "a2"} {
		require.NoError(t, audits.Append(ctx, &audit.Record{ID: id, ProjectID: "p1", Type: audit.TypeNote, Field: "plannedNotes"}))
	}

	gotReports, err := archives.ListReports(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, gotReports, 3)
	gotAudits, err := archives.ListAudits(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, gotAudits, 2)

	notifier := &recordingNotifier{}
	db.SetNotifier(notifier)
	require.NoError(t, archives.DeleteProject(ctx, "p1", []string{"r1", "r2", "r3"}, []string{"a1", "a2"}))

	_, err = archives.GetProject(ctx, "p1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM reports WHERE project_id = 'p1'`).Scan(&count))
	require.Zero(t, count)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM audit_records WHERE project_id = 'p1'`).Scan(&count))
	require.Zero(t, count)

	_, err = archives.GetProject(ctx, "p2")
	require.NoError(t, err)
	left, err := reports.ListByProject(ctx, "p2")
	require.NoError(t, err)
	require.Len(t, left, 1)

	require.Len(t, notifier.seen(), 3)
}

func TestArchiveRepository_DeleteRollsBackWhenProjectMissing(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	reports := NewReportRepository(db)
	require.NoError(t, reports.Append(ctx, &report.Report{ID: "r1", ProjectID: "ghost", Text: "x"}))

	err := NewArchiveRepository(db).DeleteProject(ctx, "ghost", []string{"r1"}, nil)
	require.ErrorIs(t, err, repository.ErrNotFound)

	left, err := reports.ListByProject(ctx, "ghost")
	require.NoError(t, err)
	require.Len(t, left, 1)
}
