package report

import (
	"time"

	"github.com/ganot/sitecycle/internal/domain/audit"
)

// Report is a free-text field status report. Reports are never edited.
type Report struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	Text         string    `json:"report"`
	ReporterID   string    `json:"reporterId"`
	ReporterName string    `json:"reporterName"`
	Timestamp    time.Time `json:"timestamp"`
}

// HistoryKind tells which collection a history item came from.
type HistoryKind string

const (
	KindReport HistoryKind = "REPORT"
	KindAudit  HistoryKind = "AUDIT"
)

// HistoryItem is one entry of the combined project timeline.
type HistoryItem struct {
	Kind      HistoryKind   `json:"kind"`
	Timestamp time.Time     `json:"timestamp"`
	Report    *Report       `json:"report,omitempty"`
	Audit     *audit.Record `json:"audit,omitempty"`
}
