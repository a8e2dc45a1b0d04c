package archive

import (
	"github.com/ganot/sitecycle/internal/domain/audit"
	"github.com/ganot/sitecycle/internal/domain/project"
	"github.com/ganot/sitecycle/internal/domain/report"
)

// Artifact is the exported snapshot of an archived project.
type Artifact struct {
	ProjectDetails project.Project `json:"projectDetails"`
	ReportsHistory []report.Report `json:"reportsHistory"`
	NotesHistory   []audit.Record  `json:"notesHistory"`
}

// Result describes a completed archival.
type Result struct {
	Artifact Artifact `json:"artifact"`
	Filename string   `json:"filename"`
	Location string   `json:"location"`
}
