package project

import "time"

// Field names a tracked text field that can be edited outside of rotation.
type Field string

const (
	FieldPlannedNotes   Field = "plannedNotes"
	FieldNextNotes      Field = "nextNotes"
	FieldPreviousRemark Field = "previousRemark"
)

// Period is one slot of the rolling schedule.
type Period struct {
	Activity string     `json:"activity"`
	Start    *time.Time `json:"start"`
	End      *time.Time `json:"end"`
	Notes    string     `json:"notes"`
}

// PreviousPeriod is the completed slot. Remark is written by the project owner
// and survives rotation.
type PreviousPeriod struct {
	Period
	Remark string `json:"remark"`
}

// Project is a construction project tracked through previous, planned and next periods.
type Project struct {
	ID                string         `json:"id"`
	Code              string         `json:"projectCode,omitempty"`
	Name              string         `json:"name"`
	ResponsiblePerson string         `json:"responsiblePerson"`
	IsClosed          bool           `json:"isClosed"`
	Previous          PreviousPeriod `json:"previous"`
	Planned           Period         `json:"planned"`
	Next              Period         `json:"next"`
	LastUpdateDate    *time.Time     `json:"lastUpdateDate"`
}

// FieldValue returns the current value of a tracked field.
func (p *Project) FieldValue(field Field) (string, bool) {
	switch field {
	case FieldPlannedNotes:
		return p.Planned.Notes, true
	case FieldNextNotes:
		return p.Next.Notes, true
	case FieldPreviousRemark:
		return p.Previous.Remark, true
	default:
		return "", false
	}
}

// Entry is a project in the active list with its freshly derived status.
type Entry struct {
	Project         Project        `json:"project"`
	Status          Classification `json:"status"`
	DaysSinceUpdate int            `json:"daysSinceUpdate"`
}
