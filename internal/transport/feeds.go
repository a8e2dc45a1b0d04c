package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ganot/sitecycle/internal/domain/audit"
	"github.com/ganot/sitecycle/internal/domain/failure"
	"github.com/ganot/sitecycle/internal/domain/project"
	"github.com/ganot/sitecycle/internal/domain/report"
	"github.com/ganot/sitecycle/internal/feed"
)

// ProjectLister lists active projects with their derived status.
type ProjectLister interface {
	ListActive(ctx context.Context, opts project.ListOptions) ([]project.Entry, error)
}

// ReportLister lists one project's reports, newest first.
type ReportLister interface {
	List(ctx context.Context, projectID string) ([]report.Report, error)
}

// AuditLister lists one project's audit records, newest first.
type AuditLister interface {
	List(ctx context.Context, projectID string) ([]audit.Record, error)
}

// Feeds holds the live queries served as server-sent events.
type Feeds struct {
	Hub      *feed.Hub
	Projects ProjectLister
	Reports  ReportLister
	Audits   AuditLister
}

type feedEvent struct {
	Items any       `json:"items"`
	At    time.Time `json:"at"`
}

type feedError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleProjectsFeed(w http.ResponseWriter, r *http.Request) {
	opts := project.ListOptions{
		SortKey: project.SortKey(r.URL.Query().Get("sort_key")),
		Order:   project.SortOrder(strings.ToLower(r.URL.Query().Get("order"))),
	}
	updates := feed.Watch(r.Context(), s.feeds.Hub, feed.TopicProjects, func(ctx context.Context) ([]project.Entry, error) {
		return s.feeds.Projects.ListActive(ctx, opts)
	})
	streamSnapshots(w, r, updates)
}

func (s *Server) handleReportsFeed(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	updates := feed.Watch(r.Context(), s.feeds.Hub, feed.ReportsTopic(projectID), func(ctx context.Context) ([]report.Report, error) {
		return s.feeds.Reports.List(ctx, projectID)
	})
	streamSnapshots(w, r, updates)
}

func (s *Server) handleAuditsFeed(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	updates := feed.Watch(r.Context(), s.feeds.Hub, feed.AuditsTopic(projectID), func(ctx context.Context) ([]audit.Record, error) {
		return s.feeds.Audits.List(ctx, projectID)
	})
	streamSnapshots(w, r, updates)
}

// streamSnapshots writes each snapshot as an SSE event until the client goes away.
// Failed reloads are sent as "error" events and the stream stays open.
func streamSnapshots[T any](w http.ResponseWriter, r *http.Request, updates <-chan feed.Snapshot[T]) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			event, payload := "snapshot", any(feedEvent{Items: nonNilItems(snap.Items), At: snap.At.UTC()})
			if snap.Err != nil {
				event = "error"
				payload = feedError{Code: string(failure.KindOf(snap.Err)), Message: snap.Err.Error()}
			}
			if err := writeEvent(w, event, payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

func nonNilItems[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
