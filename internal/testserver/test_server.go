package testserver

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ganot/sitecycle/internal/domain/archive"
	"github.com/ganot/sitecycle/internal/domain/audit"
	"github.com/ganot/sitecycle/internal/domain/project"
	"github.com/ganot/sitecycle/internal/domain/report"
	"github.com/ganot/sitecycle/internal/export"
	"github.com/ganot/sitecycle/internal/feed"
	"github.com/ganot/sitecycle/internal/identity"
	"github.com/ganot/sitecycle/internal/mcp"
	"github.com/ganot/sitecycle/internal/sqlite"
	"github.com/ganot/sitecycle/internal/transport"
	"github.com/stretchr/testify/require"
)

const secret = "testserver-secret"

type TestServer struct {
	Server    *httptest.Server
	DB        *sqlite.DB
	Hub       *feed.Hub
	Sink      *export.FileSink
	Services  mcp.Services
	Token     string
	User      identity.User
	ExportDir string

	jwt *identity.JWT
}

// New starts the full HTTP stack over a shared-cache in-memory database and
// issues a token for user.
func New(t *testing.T, user identity.User) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	hub := feed.NewHub()
	db.SetNotifier(hub)

	exportDir := t.TempDir()
	sink, err := export.NewFileSink(exportDir)
	require.NoError(t, err)

	projectRepo := sqlite.NewProjectRepository(db)
	auditRepo := sqlite.NewAuditRepository(db)
	reportRepo := sqlite.NewReportRepository(db)

	auditSvc := audit.NewService(projectRepo, auditRepo, nil)
	projectSvc := project.NewService(projectRepo, auditSvc, nil)
	reportSvc := report.NewService(reportRepo, projectSvc, auditSvc, nil)
	archiveSvc := archive.NewService(sqlite.NewArchiveRepository(db), sink, nil)

	services := mcp.Services{
		Projects: projectSvc,
		Reports:  reportSvc,
		Audits:   auditSvc,
		Archives: archiveSvc,
	}

	jwt := identity.NewJWT(secret, time.Hour)
	router := transport.NewServer(mcp.NewHandler(services), transport.AuthMiddleware(jwt),
		transport.WithFeeds(&transport.Feeds{
			Hub:      hub,
			Projects: projectSvc,
			Reports:  reportSvc,
			Audits:   auditSvc,
		}),
		transport.WithArchives(sink),
	)
	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:    server,
		DB:        db,
		Hub:       hub,
		Sink:      sink,
		Services:  services,
		User:      user,
		ExportDir: exportDir,
		jwt:       jwt,
	}
	ts.Token = ts.IssueToken(t, user)

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// IssueToken returns a bearer token accepted by the server.
func (ts *TestServer) IssueToken(t *testing.T, user identity.User) string {
	t.Helper()
	token, err := ts.jwt.Issue(user)
	require.NoError(t, err)
	return token
}
