package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ganot/sitecycle/internal/domain/failure"
	"github.com/ganot/sitecycle/internal/identity"
)

// MCPHandler handles MCP method dispatch.
type MCPHandler interface {
	Handle(ctx context.Context, user identity.User, method string, params json.RawMessage) (any, error)
}

// ArchiveFiles serves previously exported archive artifacts. Open returns
// the stored name the request resolved to.
type ArchiveFiles interface {
	Open(filename string) (string, []byte, error)
}

// Option configures the HTTP server.
type Option func(*Server)

// WithCORS allows browser clients from origins.
func WithCORS(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// WithFeeds mounts the server-sent event feeds.
func WithFeeds(feeds *Feeds) Option {
	return func(s *Server) { s.feeds = feeds }
}

// WithArchives exposes exported artifacts for download.
func WithArchives(files ArchiveFiles) Option {
	return func(s *Server) { s.archives = files }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Server wires HTTP handlers.
type Server struct {
	handler     MCPHandler
	feeds       *Feeds
	archives    ArchiveFiles
	corsOrigins []string
	logger      *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(handler MCPHandler, authMiddleware func(http.Handler) http.Handler, opts ...Option) *chi.Mux {
	srv := &Server{handler: handler, logger: slog.Default()}
	for _, opt := range opts {
		opt(srv)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(srv.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: srv.corsOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type", "Mcp-Session-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", srv.handleHealth)

	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}
		r.Post("/rpc", srv.handleMCP)
		if srv.feeds != nil {
			r.Get("/feeds/projects", srv.handleProjectsFeed)
			r.Get("/feeds/projects/{projectID}/reports", srv.handleReportsFeed)
			r.Get("/feeds/projects/{projectID}/audits", srv.handleAuditsFeed)
		}
		if srv.archives != nil {
			r.Get("/archives/{filename}", srv.handleArchive)
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		WriteError(w, nil, parseErrorCode(err), err.Error(), nil)
		return
	}

	user, ok := identity.FromContext(r.Context())
	if !ok || user.ID == "" {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}

	result, err := s.handler.Handle(r.Context(), user, req.Method, req.Params)
	if err != nil {
		s.writeHandlerError(w, r, req, err)
		return
	}

	WriteResult(w, req.ID, result)
}

// coder is implemented by handler errors that carry a stable error code.
type coder interface {
	CodeValue() string
}

func (s *Server) writeHandlerError(w http.ResponseWriter, r *http.Request, req Request, err error) {
	if errors.Is(err, ErrUnauthorized) || failure.KindOf(err) == failure.KindAuth {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var coded coder
	if errors.As(err, &coded) {
		code := ErrInternal
		if coded.CodeValue() == string(failure.KindValidation) {
			code = ErrInvalidParams
		}
		WriteError(w, req.ID, code, err.Error(), coded)
		return
	}
	if strings.HasPrefix(err.Error(), "unknown method") {
		WriteError(w, req.ID, ErrMethodNotFound, err.Error(), nil)
		return
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		WriteError(w, req.ID, ErrInvalidParams, err.Error(), nil)
		return
	}
	s.logger.Error("mcp call failed", "method", req.Method, "request_id", middleware.GetReqID(r.Context()), "error", err)
	WriteError(w, req.ID, ErrInternal, err.Error(), nil)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.archives.Open(chi.URLParam(r, "filename"))
	if err != nil {
		http.Error(w, "archive not found", http.StatusNotFound)
		return
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", disposition)
	_, _ = w.Write(data)
}
