package archive_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ganot/sitecycle/internal/domain/archive"
	"github.com/ganot/sitecycle/internal/domain/audit"
	"github.com/ganot/sitecycle/internal/domain/failure"
	"github.com/ganot/sitecycle/internal/domain/project"
	"github.com/ganot/sitecycle/internal/domain/report"
	"github.com/ganot/sitecycle/internal/repository"
	"github.com/ganot/sitecycle/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seededStore() *mocks.ArchiveStore {
	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	store := &mocks.ArchiveStore{}
	store.On("GetProject", mock.Anything, "abcdef123").Return(&project.Project{ID: "abcdef123", Name: "Harbor Tower"}, nil)
	store.On("ListReports", mock.Anything, "abcdef123").Return([]report.Report{
		{ID: "r1", ProjectID: "abcdef123", Timestamp: base},
		{ID: "r2", ProjectID: "abcdef123", Timestamp: base.Add(time.Hour)},
		{ID: "r3", ProjectID: "abcdef123", Timestamp: base.Add(2 * time.Hour)},
	}, nil)
	store.On("ListAudits", mock.Anything, "abcdef123").Return([]audit.Record{
		{ID: "a1", ProjectID: "abcdef123", Timestamp: base},
		{ID: "a2", ProjectID: "abcdef123", Timestamp: base.Add(time.Hour)},
	}, nil)
	return store
}

func TestArchiveService_ExportsThenDeletes(t *testing.T) {
	ctx := context.Background()

	var order []string
	store := seededStore()
	store.On("DeleteProject", mock.Anything, "abcdef123",
		[]string{"r3", "r2", "r1"}, []string{"a2", "a1"}).
		Run(func(mock.Arguments) { order = append(order, "delete") }).
		Return(nil)

	sink := &mocks.ExportSink{}
	sink.On("Export", mock.Anything, "Archive_Harbor Tower_abcde.json", mock.MatchedBy(func(v any) bool {
		a, ok := v.(archive.Artifact)
		return ok && len(a.ReportsHistory) == 3 && len(a.NotesHistory) == 2
	})).
		Run(func(mock.Arguments) { order = append(order, "export") }).
		Return("/exports/Archive_Harbor Tower_abcde.json", nil)

	res, err := archive.NewService(store, sink, nil).Archive(ctx, "abcdef123")
	require.NoError(t, err)
	require.Equal(t, []string{"export", "delete"}, order)
	require.Equal(t, "abcdef123", res.Artifact.ProjectDetails.ID)
	require.True(t, res.Artifact.ProjectDetails.IsClosed)
	require.Len(t, res.Artifact.ReportsHistory, 3)
	require.Len(t, res.Artifact.NotesHistory, 2)
	require.Equal(t, "/exports/Archive_Harbor Tower_abcde.json", res.Location)
	store.AssertExpectations(t)
}

func TestArchiveService_ExportFailureKeepsData(t *testing.T) {
	ctx := context.Background()

	store := seededStore()
	sink := &mocks.ExportSink{}
	sink.On("Export", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("disk full"))

	_, err := archive.NewService(store, sink, nil).Archive(ctx, "abcdef123")
	require.Equal(t, failure.KindExport, failure.KindOf(err))
	store.AssertNotCalled(t, "DeleteProject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestArchiveService_DeleteFailure(t *testing.T) {
	ctx := context.Background()

	store := seededStore()
	store.On("DeleteProject", mock.Anything, "abcdef123", mock.Anything, mock.Anything).Return(errors.New("busy"))
	sink := &mocks.ExportSink{}
	sink.On("Export", mock.Anything, mock.Anything, mock.Anything).Return("/exports/x.json", nil)

	_, err := archive.NewService(store, sink, nil).Archive(ctx, "abcdef123")
	require.Equal(t, failure.KindWrite, failure.KindOf(err))
}

func TestArchiveService_ReadFailureStopsEarly(t *testing.T) {
	ctx := context.Background()

	store := &mocks.ArchiveStore{}
	store.On("GetProject", mock.Anything, "p1").Return(&project.Project{ID: "p1"}, nil)
	store.On("ListReports", mock.Anything, "p1").Return(nil, errors.New("permission denied"))
	sink := &mocks.ExportSink{}

	_, err := archive.NewService(store, sink, nil).Archive(ctx, "p1")
	require.Equal(t, failure.KindRead, failure.KindOf(err))
	sink.AssertNotCalled(t, "Export", mock.Anything, mock.Anything, mock.Anything)
}

func TestArchiveService_NotFound(t *testing.T) {
	store := &mocks.ArchiveStore{}
	store.On("GetProject", mock.Anything, "gone").Return(nil, repository.ErrNotFound)

	_, err := archive.NewService(store, &mocks.ExportSink{}, nil).Archive(context.Background(), "gone")
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestArchiveService_CancelledContextStillCompletes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := seededStore()
	store.On("DeleteProject", mock.Anything, "abcdef123", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			require.NoError(t, args.Get(0).(context.Context).Err())
		}).
		Return(nil)
	sink := &mocks.ExportSink{}
	sink.On("Export", mock.Anything, mock.Anything, mock.Anything).Return("/exports/x.json", nil)

	_, err := archive.NewService(store, sink, nil).Archive(ctx, "abcdef123")
	require.NoError(t, err)
}

func TestFilename(t *testing.T) {
	require.Equal(t, "Archive_Harbor Tower_abcde.json", archive.Filename("Harbor Tower", "abcdef123"))
	require.Equal(t, "Archive_A_B_abc.json", archive.Filename("A/B", "abc"))
	require.Equal(t, "Archive_project_x.json", archive.Filename("..", "x"))
}

func TestArchiveService_FilenameFollowsSink(t *testing.T) {
	store := seededStore()
	store.On("DeleteProject", mock.Anything, "abcdef123", mock.Anything, mock.Anything).Return(nil)
	sink := &mocks.ExportSink{}
	sink.On("Export", mock.Anything, "Archive_Harbor Tower_abcde.json", mock.Anything).
		Return("/exports/Archive_Harbor Tower_abcde_2.json", nil)

	res, err := archive.NewService(store, sink, nil).Archive(context.Background(), "abcdef123")
	require.NoError(t, err)
	require.Equal(t, "Archive_Harbor Tower_abcde_2.json", res.Filename)
	require.Equal(t, "/exports/Archive_Harbor Tower_abcde_2.json", res.Location)
}
