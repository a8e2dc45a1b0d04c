package audit

import "time"

// Type classifies what kind of field an audit record tracks.
type Type string

const (
	TypeNote   Type = "NOTE"
	TypeRemark Type = "REMARK"
)

// Valid reports whether t is a known audit type.
func (t Type) Valid() bool {
	return t == TypeNote || t == TypeRemark
}

// Record is an immutable entry describing one tracked field edit.
type Record struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"projectId"`
	Type       Type      `json:"type"`
	Field      string    `json:"field"`
	OldValue   string    `json:"oldValue"`
	NewValue   string    `json:"newValue"`
	EditorID   string    `json:"editorId"`
	EditorName string    `json:"editorName"`
	Timestamp  time.Time `json:"timestamp"`
}

// Edit describes a requested change to a tracked project field.
type Edit struct {
	ProjectID  string
	Field      string
	Type       Type
	OldValue   string
	NewValue   string
	EditorID   string
	EditorName string
}
