package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ganot/sitecycle/internal/domain/archive"
	"github.com/ganot/sitecycle/internal/domain/audit"
	"github.com/ganot/sitecycle/internal/domain/failure"
	"github.com/ganot/sitecycle/internal/domain/project"
	"github.com/ganot/sitecycle/internal/domain/report"
	"github.com/ganot/sitecycle/internal/export"
	"github.com/ganot/sitecycle/internal/feed"
	"github.com/ganot/sitecycle/internal/identity"
	"github.com/ganot/sitecycle/internal/sqlite"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

// clock advances one minute on every reading so that appended records have
// distinct timestamps.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

type testEnv struct {
	db         *sqlite.DB
	hub        *feed.Hub
	exportDir  string
	clock      *clock
	reportRepo *sqlite.ReportRepository
	auditRepo  *sqlite.AuditRepository

	projectSvc *project.Service
	auditSvc   *audit.Service
	reportSvc  *report.Service
	archiveSvc *archive.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	hub := feed.NewHub()
	db.SetNotifier(hub)

	exportDir := t.TempDir()
	sink, err := export.NewFileSink(exportDir)
	require.NoError(t, err)

	projectRepo := sqlite.NewProjectRepository(db)
	auditRepo := sqlite.NewAuditRepository(db)
	reportRepo := sqlite.NewReportRepository(db)

	c := &clock{now: start}
	auditSvc := audit.NewService(projectRepo, auditRepo, nil).WithClock(c.Now)
	projectSvc := project.NewService(projectRepo, auditSvc, nil).WithClock(c.Now)
	reportSvc := report.NewService(reportRepo, projectSvc, auditSvc, nil).WithClock(c.Now)
	archiveSvc := archive.NewService(sqlite.NewArchiveRepository(db), sink, nil)

	return &testEnv{
		db:         db,
		hub:        hub,
		exportDir:  exportDir,
		clock:      c,
		reportRepo: reportRepo,
		auditRepo:  auditRepo,
		projectSvc: projectSvc,
		auditSvc:   auditSvc,
		reportSvc:  reportSvc,
		archiveSvc: archiveSvc,
	}
}

func day(offset int) *time.Time {
	t := start.AddDate(0, 0, offset)
	return &t
}

func (env *testEnv) createProject(t *testing.T, name string) *project.Project {
	t.Helper()
	proj, err := env.projectSvc.Create(context.Background(), project.CreateRequest{
		Name:              name,
		ResponsiblePerson: "Dana",
		PlannedActivity:   "Excavation",
		PlannedStart:      day(0),
		PlannedEnd:        day(10),
	})
	require.NoError(t, err)
	return proj
}

func TestIntegration_RotationWorkflow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := identity.User{ID: "u1", DisplayName: "Dana"}

	proj := env.createProject(t, "Harbor Tower")

	_, err := env.projectSvc.EditNotes(ctx, proj.ID, project.FieldPlannedNotes, "dig to 3m", owner)
	require.NoError(t, err)
	_, err = env.projectSvc.EditNotes(ctx, proj.ID, project.FieldNextNotes, "order rebar", owner)
	require.NoError(t, err)
	_, err = env.projectSvc.EditRemark(ctx, proj.ID, "slow start", owner)
	require.NoError(t, err)

	draft, err := env.projectSvc.RotationDraft(ctx, proj.ID)
	require.NoError(t, err)
	require.Empty(t, draft.Current.Activity)
	require.NotNil(t, draft.Current.End)

	rotated, err := env.projectSvc.Rotate(ctx, proj.ID, project.Rotation{
		Current: project.PeriodInput{Activity: "Foundations", Start: day(10), End: day(20)},
		Next:    &project.PeriodInput{Activity: "Framing", Start: day(21), End: day(35)},
	})
	require.NoError(t, err)

	got, err := env.projectSvc.Get(ctx, proj.ID)
	require.NoError(t, err)
	require.Equal(t, rotated.LastUpdateDate.Unix(), got.LastUpdateDate.Unix())

	require.Equal(t, "Excavation", got.Previous.Activity)
	require.Equal(t, "dig to 3m", got.Previous.Notes)
	require.Equal(t, "slow start", got.Previous.Remark)
	require.True(t, day(10).Equal(*got.Previous.End))

	require.Equal(t, "Foundations", got.Planned.Activity)
	require.Equal(t, "order rebar", got.Planned.Notes)
	require.True(t, day(20).Equal(*got.Planned.End))

	require.Equal(t, "Framing", got.Next.Activity)
	require.Empty(t, got.Next.Notes)

	// Rotation leaves no audit records of its own.
	records, err := env.auditSvc.List(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)

	entries, err := env.projectSvc.ListActive(ctx, project.ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, project.StatusOnTrack, entries[0].Status.Status)

	_, err = env.projectSvc.Rotate(ctx, proj.ID, project.Rotation{Current: project.PeriodInput{Activity: "Roofing"}})
	require.ErrorIs(t, err, failure.ErrValidation)
	unchanged, err := env.projectSvc.Get(ctx, proj.ID)
	require.NoError(t, err)
	require.Equal(t, "Foundations", unchanged.Planned.Activity)
}

func TestIntegration_EditsAndHistory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	editor := identity.User{ID: "u2"}

	proj := env.createProject(t, "Mill Street")

	rec, err := env.projectSvc.EditNotes(ctx, proj.ID, project.FieldPlannedNotes, "pour Friday", editor)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "Anonymous editor", rec.EditorName)
	require.Equal(t, audit.TypeNote, rec.Type)

	rec, err = env.projectSvc.EditNotes(ctx, proj.ID, project.FieldPlannedNotes, "pour Friday", editor)
	require.NoError(t, err)
	require.Nil(t, rec)

	_, err = env.reportSvc.Append(ctx, proj.ID, "  crane arrived  ", identity.User{ID: "u3", DisplayName: "Lee"})
	require.NoError(t, err)

	rec, err = env.projectSvc.EditRemark(ctx, proj.ID, "on budget", identity.User{ID: "u1"})
	require.NoError(t, err)
	require.Equal(t, "Anonymous owner", rec.EditorName)
	require.Equal(t, audit.TypeRemark, rec.Type)

	history, err := env.reportSvc.History(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, report.KindAudit, history[0].Kind)
	require.Equal(t, "on budget", history[0].Audit.NewValue)
	require.Equal(t, report.KindReport, history[1].Kind)
	require.Equal(t, "crane arrived", history[1].Report.Text)
	require.Equal(t, "Lee", history[1].Report.ReporterName)
	require.Equal(t, report.KindAudit, history[2].Kind)
	require.Equal(t, "pour Friday", history[2].Audit.NewValue)
}

func TestIntegration_ArchiveWorkflow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := identity.User{ID: "u1", DisplayName: "Dana"}

	proj := env.createProject(t, "Harbor Tower")
	keep := env.createProject(t, "Other Site")

	for _, text := range []string{"day one", "day two", "day three"} {
		_, err := env.reportSvc.Append(ctx, proj.ID, text, user)
		require.NoError(t, err)
	}
	_, err := env.projectSvc.EditNotes(ctx, proj.ID, project.FieldPlannedNotes, "a", user)
	require.NoError(t, err)
	_, err = env.projectSvc.EditNotes(ctx, proj.ID, project.FieldNextNotes, "b", user)
	require.NoError(t, err)
	_, err = env.reportSvc.Append(ctx, keep.ID, "untouched", user)
	require.NoError(t, err)

	res, err := env.archiveSvc.Archive(ctx, proj.ID)
	require.NoError(t, err)
	require.Equal(t, "Archive_Harbor Tower_"+proj.ID[:5]+".json", res.Filename)
	require.Len(t, res.Artifact.ReportsHistory, 3)
	require.Len(t, res.Artifact.NotesHistory, 2)
	require.True(t, res.Artifact.ProjectDetails.IsClosed)

	data, err := os.ReadFile(filepath.Join(env.exportDir, res.Filename))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "{\n  \"projectDetails\""))

	var artifact archive.Artifact
	require.NoError(t, json.Unmarshal(data, &artifact))
	require.Equal(t, proj.ID, artifact.ProjectDetails.ID)
	require.Equal(t, "day three", artifact.ReportsHistory[0].Text)
	require.Equal(t, "day one", artifact.ReportsHistory[2].Text)
	require.Equal(t, "b", artifact.NotesHistory[0].NewValue)

	_, err = env.projectSvc.Get(ctx, proj.ID)
	require.ErrorIs(t, err, project.ErrProjectNotFound)
	reports, err := env.reportRepo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Empty(t, reports)
	audits, err := env.auditRepo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Empty(t, audits)

	_, err = env.reportSvc.Append(ctx, proj.ID, "late report", user)
	require.ErrorIs(t, err, project.ErrProjectNotFound)
	reports, err = env.reportRepo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Empty(t, reports)

	// Other projects keep their data.
	kept, err := env.reportRepo.ListByProject(ctx, keep.ID)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	entries, err := env.projectSvc.ListActive(ctx, project.ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, keep.ID, entries[0].Project.ID)
}

func TestIntegration_ArchiveExportFailureKeepsData(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	proj := env.createProject(t, "Harbor Tower")
	_, err := env.reportSvc.Append(ctx, proj.ID, "poured", identity.User{ID: "u1"})
	require.NoError(t, err)

	// Replace the export directory with a plain file so writes fail.
	require.NoError(t, os.RemoveAll(env.exportDir))
	require.NoError(t, os.WriteFile(env.exportDir, []byte("x"), 0o644))

	_, err = env.archiveSvc.Archive(ctx, proj.ID)
	require.Error(t, err)
	require.Equal(t, failure.KindExport, failure.KindOf(err))

	_, err = env.projectSvc.Get(ctx, proj.ID)
	require.NoError(t, err)
	reports, err := env.reportSvc.List(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, reports, 1)
}

func TestIntegration_SeedOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	seeded, err := env.projectSvc.Seed(ctx, identity.AnonymousUser("anon"))
	require.NoError(t, err)
	require.Nil(t, seeded)

	seeded, err = env.projectSvc.Seed(ctx, identity.User{ID: "u1"})
	require.NoError(t, err)
	require.NotNil(t, seeded)

	again, err := env.projectSvc.Seed(ctx, identity.User{ID: "u1"})
	require.NoError(t, err)
	require.Nil(t, again)
}

func TestIntegration_LiveFeeds(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	projects := feed.Watch(ctx, env.hub, feed.TopicProjects, func(ctx context.Context) ([]project.Entry, error) {
		return env.projectSvc.ListActive(ctx, project.ListOptions{SortKey: project.SortByPlannedEnd, Order: project.OrderAsc})
	})

	snap := <-projects
	require.NoError(t, snap.Err)
	require.Empty(t, snap.Items)

	proj := env.createProject(t, "Harbor Tower")

	snap = <-projects
	require.NoError(t, snap.Err)
	require.Len(t, snap.Items, 1)
	require.Equal(t, proj.ID, snap.Items[0].Project.ID)

	reports := feed.Watch(ctx, env.hub, feed.ReportsTopic(proj.ID), func(ctx context.Context) ([]report.Report, error) {
		return env.reportSvc.List(ctx, proj.ID)
	})
	require.Empty(t, (<-reports).Items)

	_, err := env.reportSvc.Append(ctx, proj.ID, "steel delivered", identity.User{ID: "u1"})
	require.NoError(t, err)

	got := <-reports
	require.Len(t, got.Items, 1)
	require.Equal(t, "steel delivered", got.Items[0].Text)

	cancel()
	require.Eventually(t, func() bool {
		return env.hub.Subscribers(feed.TopicProjects) == 0
	}, time.Second, 10*time.Millisecond)
}
