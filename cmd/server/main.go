package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ganot/sitecycle/internal/config"
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
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := runToken(cfg, os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "token error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	hub := feed.NewHub(feed.HubWithLogger(logger), feed.HubWithPollInterval(cfg.Feed.PollInterval))
	db.SetNotifier(hub)

	sink, err := export.NewFileSink(cfg.Export.Dir)
	if err != nil {
		logger.Error("failed to prepare export directory", "error", err)
		os.Exit(1)
	}

	projectRepo := sqlite.NewProjectRepository(db)
	auditRepo := sqlite.NewAuditRepository(db)
	reportRepo := sqlite.NewReportRepository(db)
	archiveRepo := sqlite.NewArchiveRepository(db)

	auditSvc := audit.NewService(projectRepo, auditRepo, logger)
	projectSvc := project.NewService(projectRepo, auditSvc, logger)
	reportSvc := report.NewService(reportRepo, projectSvc, auditSvc, logger)
	archiveSvc := archive.NewService(archiveRepo, sink, logger)

	services := mcp.Services{
		Projects: projectSvc,
		Reports:  reportSvc,
		Audits:   auditSvc,
		Archives: archiveSvc,
	}
	localUser := identity.User{ID: "local", DisplayName: cfg.Auth.LocalUser}

	if cfg.Seed.OnStart {
		if seeded, err := projectSvc.Seed(context.Background(), localUser); err != nil {
			logger.Warn("seed failed", "error", err)
		} else if seeded != nil {
			logger.Info("seeded demo project", "project_id", seeded.ID)
		}
	}

	var resolver identity.Resolver
	if cfg.Auth.Enabled {
		resolver = identity.NewJWT(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	}

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      services,
		Resolver:      resolver,
		AuthEnabled:   cfg.Auth.Enabled,
		TransportMode: cfg.Transport.Mode,
		LocalUser:     localUser,
		Logger:        logger,
	})

	// Branch based on transport mode
	if cfg.Transport.Mode == "stdio" {
		runStdioMode(logger, mcpServer)
		return
	}

	httpAuth := transport.FixedUserMiddleware(identity.AnonymousUser("anonymous"))
	if cfg.Auth.Enabled {
		httpAuth = transport.AuthMiddleware(resolver)
	}
	router := transport.NewServer(mcp.NewHandler(services), httpAuth,
		transport.WithCORS(cfg.CORS.AllowedOrigins),
		transport.WithFeeds(&transport.Feeds{
			Hub:      hub,
			Projects: projectSvc,
			Reports:  reportSvc,
			Audits:   auditSvc,
		}),
		transport.WithArchives(sink),
		transport.WithLogger(logger),
	)
	runHTTPMode(logger, mcpServer, router, cfg.Server.Host, cfg.Server.Port)
}

// runToken mints a session token for the user named on the command line.
func runToken(cfg config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	name := fs.String("name", "", "display name of the user")
	id := fs.String("id", "", "user id (generated when empty)")
	anonymous := fs.Bool("anonymous", false, "issue an anonymous session token")
	ttl := fs.Duration("ttl", cfg.Auth.TokenTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("SITECYCLE_JWT_SECRET is not set")
	}
	if *id == "" {
		*id = uuid.NewString()
	}

	token, err := identity.NewJWT(cfg.Auth.JWTSecret, *ttl).Issue(identity.User{
		ID:          *id,
		DisplayName: *name,
		Anonymous:   *anonymous,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport", "auth", "disabled")

	stdio := &sdkmcp.StdioTransport{}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, stdio); err != nil {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

func runHTTPMode(logger *slog.Logger, mcpServer *sdkmcp.Server, router *chi.Mux, host string, port int) {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	// The SDK handler serves /mcp; JSON-RPC, feeds and health come from the router.
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/*", mcpHandler)

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
