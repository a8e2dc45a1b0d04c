package mcp

import (
	"time"

	"github.com/ganot/sitecycle/internal/domain/audit"
	"github.com/ganot/sitecycle/internal/domain/project"
)

// Dates are accepted as YYYY-MM-DD or RFC 3339 strings.

type CreateProjectParams struct {
	ProjectCode       string `json:"project_code,omitempty"`
	Name              string `json:"name"`
	ResponsiblePerson string `json:"responsible_person"`
	PlannedActivity   string `json:"planned_activity"`
	PlannedStart      string `json:"planned_start,omitempty"`
	PlannedEnd        string `json:"planned_end,omitempty"`
}

type ListProjectsParams struct {
	SortKey string `json:"sort_key,omitempty"`
	Order   string `json:"order,omitempty"`
}

type ProjectIDParams struct {
	ProjectID string `json:"project_id"`
}

type PeriodParams struct {
	Activity string `json:"activity"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
}

type RotateProjectParams struct {
	ProjectID string        `json:"project_id"`
	Current   PeriodParams  `json:"current"`
	Next      *PeriodParams `json:"next,omitempty"`
}

type EditNotesParams struct {
	ProjectID string `json:"project_id"`
	Field     string `json:"field"`
	Value     string `json:"value"`
}

type EditRemarkParams struct {
	ProjectID string `json:"project_id"`
	Value     string `json:"value"`
}

type AppendReportParams struct {
	ProjectID string `json:"project_id"`
	Report    string `json:"report"`
}

// EditResponse reports the outcome of a notes or remark edit.
type EditResponse struct {
	Changed bool          `json:"changed"`
	Record  *audit.Record `json:"record,omitempty"`
}

// SeedResponse reports whether the demo project was inserted.
type SeedResponse struct {
	Seeded  bool             `json:"seeded"`
	Project *project.Project `json:"project,omitempty"`
}

// ArchiveResponse describes a completed archival.
type ArchiveResponse struct {
	ProjectID    string    `json:"project_id"`
	Filename     string    `json:"filename"`
	Location     string    `json:"location"`
	Reports      int       `json:"reports"`
	AuditRecords int       `json:"audit_records"`
	ArchivedAt   time.Time `json:"archived_at"`
}
