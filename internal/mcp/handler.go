package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ganot/sitecycle/internal/domain/archive"
	"github.com/ganot/sitecycle/internal/domain/audit"
	"github.com/ganot/sitecycle/internal/domain/failure"
	"github.com/ganot/sitecycle/internal/domain/project"
	"github.com/ganot/sitecycle/internal/domain/report"
	"github.com/ganot/sitecycle/internal/identity"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	ListActive(ctx context.Context, opts project.ListOptions) ([]project.Entry, error)
	Rotate(ctx context.Context, id string, r project.Rotation) (*project.Project, error)
	RotationDraft(ctx context.Context, id string) (project.Rotation, error)
	EditNotes(ctx context.Context, id string, field project.Field, value string, editor identity.User) (*audit.Record, error)
	EditRemark(ctx context.Context, id, value string, editor identity.User) (*audit.Record, error)
	Seed(ctx context.Context, user identity.User) (*project.Project, error)
	Now() time.Time
}

// ReportService defines report feed operations needed by MCP.
type ReportService interface {
	Append(ctx context.Context, projectID, text string, reporter identity.User) (*report.Report, error)
	List(ctx context.Context, projectID string) ([]report.Report, error)
	History(ctx context.Context, projectID string) ([]report.HistoryItem, error)
}

// AuditService defines audit trail operations needed by MCP.
type AuditService interface {
	List(ctx context.Context, projectID string) ([]audit.Record, error)
}

// ArchiveService defines the archival operation needed by MCP.
type ArchiveService interface {
	Archive(ctx context.Context, projectID string) (*archive.Result, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects ProjectService
	Reports  ReportService
	Audits   AuditService
	Archives ArchiveService
}

// Handler dispatches MCP commands.
type Handler struct {
	projects ProjectService
	reports  ReportService
	audits   AuditService
	archives ArchiveService
}

// NewHandler creates a new MCP handler.
func NewHandler(svcs Services) *Handler {
	return &Handler{
		projects: svcs.Projects,
		reports:  svcs.Reports,
		audits:   svcs.Audits,
		archives: svcs.Archives,
	}
}

// Handle dispatches MCP requests to domain services on behalf of user.
func (h *Handler) Handle(ctx context.Context, user identity.User, method string, params json.RawMessage) (any, error) {
	switch method {
	case "create_project":
		var req CreateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		start, err := parseDate("planned_start", req.PlannedStart)
		if err != nil {
			return nil, mapError(err)
		}
		end, err := parseDate("planned_end", req.PlannedEnd)
		if err != nil {
			return nil, mapError(err)
		}
		proj, err := h.projects.Create(ctx, project.CreateRequest{
			Code:              req.ProjectCode,
			Name:              req.Name,
			ResponsiblePerson: req.ResponsiblePerson,
			PlannedActivity:   req.PlannedActivity,
			PlannedStart:      start,
			PlannedEnd:        end,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return h.entry(*proj), nil
	case "list_projects":
		var req ListProjectsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		entries, err := h.projects.ListActive(ctx, project.ListOptions{
			SortKey: project.SortKey(req.SortKey),
			Order:   project.SortOrder(strings.ToLower(req.Order)),
		})
		if err != nil {
			return nil, mapError(err)
		}
		return entries, nil
	case "get_project":
		req, err := projectID(params)
		if err != nil {
			return nil, err
		}
		proj, err := h.projects.Get(ctx, req)
		if err != nil {
			return nil, mapError(err)
		}
		return h.entry(*proj), nil
	case "get_rotation_draft":
		req, err := projectID(params)
		if err != nil {
			return nil, err
		}
		draft, err := h.projects.RotationDraft(ctx, req)
		if err != nil {
			return nil, mapError(err)
		}
		return draft, nil
	case "rotate_project":
		var req RotateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		rotation, err := toRotation(req)
		if err != nil {
			return nil, mapError(err)
		}
		proj, err := h.projects.Rotate(ctx, req.ProjectID, rotation)
		if err != nil {
			return nil, mapError(err)
		}
		return h.entry(*proj), nil
	case "edit_notes":
		var req EditNotesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		rec, err := h.projects.EditNotes(ctx, req.ProjectID, project.Field(req.Field), req.Value, user)
		if err != nil {
			return nil, mapError(err)
		}
		return EditResponse{Changed: rec != nil, Record: rec}, nil
	case "edit_remark":
		var req EditRemarkParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		rec, err := h.projects.EditRemark(ctx, req.ProjectID, req.Value, user)
		if err != nil {
			return nil, mapError(err)
		}
		return EditResponse{Changed: rec != nil, Record: rec}, nil
	case "append_report":
		var req AppendReportParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		rep, err := h.reports.Append(ctx, req.ProjectID, req.Report, user)
		if err != nil {
			return nil, mapError(err)
		}
		return rep, nil
	case "list_reports":
		req, err := projectID(params)
		if err != nil {
			return nil, err
		}
		reports, err := h.reports.List(ctx, req)
		if err != nil {
			return nil, mapError(err)
		}
		return reports, nil
	case "list_audit_records":
		req, err := projectID(params)
		if err != nil {
			return nil, err
		}
		records, err := h.audits.List(ctx, req)
		if err != nil {
			return nil, mapError(err)
		}
		return records, nil
	case "get_history":
		req, err := projectID(params)
		if err != nil {
			return nil, err
		}
		items, err := h.reports.History(ctx, req)
		if err != nil {
			return nil, mapError(err)
		}
		return items, nil
	case "archive_project":
		req, err := projectID(params)
		if err != nil {
			return nil, err
		}
		res, err := h.archives.Archive(ctx, req)
		if err != nil {
			return nil, mapError(err)
		}
		return ArchiveResponse{
			ProjectID:    req,
			Filename:     res.Filename,
			Location:     res.Location,
			Reports:      len(res.Artifact.ReportsHistory),
			AuditRecords: len(res.Artifact.NotesHistory),
			ArchivedAt:   h.projects.Now().UTC(),
		}, nil
	case "seed_projects":
		proj, err := h.projects.Seed(ctx, user)
		if err != nil {
			return nil, mapError(err)
		}
		return SeedResponse{Seeded: proj != nil, Project: proj}, nil
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

func (h *Handler) entry(p project.Project) project.Entry {
	now := h.projects.Now()
	return project.Entry{
		Project:         p,
		Status:          project.Classify(p, now),
		DaysSinceUpdate: project.DaysSince(p.LastUpdateDate, now),
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return mapError(failure.Validation("invalid params: %v", err))
	}
	return nil
}

func projectID(params json.RawMessage) (string, error) {
	var req ProjectIDParams
	if err := decodeParams(params, &req); err != nil {
		return "", err
	}
	if strings.TrimSpace(req.ProjectID) == "" {
		return "", mapError(failure.Validation("project_id is required"))
	}
	return req.ProjectID, nil
}

func toRotation(req RotateProjectParams) (project.Rotation, error) {
	current, err := toPeriod("current", req.Current)
	if err != nil {
		return project.Rotation{}, err
	}
	rotation := project.Rotation{Current: current}
	if req.Next != nil {
		next, err := toPeriod("next", *req.Next)
		if err != nil {
			return project.Rotation{}, err
		}
		rotation.Next = &next
	}
	return rotation, nil
}

func toPeriod(name string, p PeriodParams) (project.PeriodInput, error) {
	start, err := parseDate(name+".start", p.Start)
	if err != nil {
		return project.PeriodInput{}, err
	}
	end, err := parseDate(name+".end", p.End)
	if err != nil {
		return project.PeriodInput{}, err
	}
	return project.PeriodInput{Activity: p.Activity, Start: start, End: end}, nil
}

// parseDate reads a YYYY-MM-DD or RFC 3339 value. Empty means no date.
func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339Nano} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, failure.Validation("%s: %q is not a date", field, value)
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
