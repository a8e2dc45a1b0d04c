package mcp

import (
	"context"
	"encoding/json"

	"github.com/ganot/sitecycle/internal/identity"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes one MCP tool.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func periodProp(description string) map[string]any {
	return map[string]any{
		"type":        "object",
		"description": description,
		"properties": map[string]any{
			"activity": stringProp("Activity description"),
			"start":    stringProp("Start date (YYYY-MM-DD)"),
			"end":      stringProp("End date (YYYY-MM-DD)"),
		},
		"required": []string{"activity"},
	}
}

func projectIDSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"project_id": stringProp("Project ID"),
		},
		"required": []string{"project_id"},
	}
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Projects
		{
			Name:        "create_project",
			Description: "Create a project with its first planned period",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"project_code":       stringProp("Short project code"),
					"name":               stringProp("Project display name"),
					"responsible_person": stringProp("Person responsible for the project"),
					"planned_activity":   stringProp("Activity for the planned period"),
					"planned_start":      stringProp("Planned start date (defaults to today)"),
					"planned_end":        stringProp("Planned end date (defaults to today)"),
				},
				"required": []string{"name", "responsible_person", "planned_activity"},
			},
		},
		{
			Name:        "list_projects",
			Description: "List active projects with their status classification",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sort_key": map[string]any{
						"type":        "string",
						"enum":        []string{"lastUpdateDate", "plannedEnd"},
						"description": "Sort key (default lastUpdateDate)",
					},
					"order": map[string]any{
						"type":        "string",
						"enum":        []string{"asc", "desc"},
						"description": "Sort order (default desc)",
					},
				},
			},
		},
		{
			Name:        "get_project",
			Description: "Get one project with its status classification",
			InputSchema: projectIDSchema(),
		},

		// Rotation
		{
			Name:        "get_rotation_draft",
			Description: "Get the rotation form pre-filled from the next period",
			InputSchema: projectIDSchema(),
		},
		{
			Name:        "rotate_project",
			Description: "Close the planned period and shift periods forward",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"project_id": stringProp("Project ID"),
					"current":    periodProp("New planned period; end date is required"),
					"next":       periodProp("New next period (optional)"),
				},
				"required": []string{"project_id", "current"},
			},
		},

		// Audited edits
		{
			Name:        "edit_notes",
			Description: "Edit planned or next period notes; the change is audited",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"project_id": stringProp("Project ID"),
					"field": map[string]any{
						"type":        "string",
						"enum":        []string{"plannedNotes", "nextNotes"},
						"description": "Notes field to edit",
					},
					"value": stringProp("New notes text"),
				},
				"required": []string{"project_id", "field", "value"},
			},
		},
		{
			Name:        "edit_remark",
			Description: "Edit the owner remark on the previous period; the change is audited",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"project_id": stringProp("Project ID"),
					"value":      stringProp("New remark text"),
				},
				"required": []string{"project_id", "value"},
			},
		},

		// Reports
		{
			Name:        "append_report",
			Description: "Append a progress report to a project",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"project_id": stringProp("Project ID"),
					"report":     stringProp("Report text"),
				},
				"required": []string{"project_id", "report"},
			},
		},
		{
			Name:        "list_reports",
			Description: "List a project's reports, newest first",
			InputSchema: projectIDSchema(),
		},
		{
			Name:        "list_audit_records",
			Description: "List a project's notes and remark audit trail, newest first",
			InputSchema: projectIDSchema(),
		},
		{
			Name:        "get_history",
			Description: "List reports and audit records merged, newest first",
			InputSchema: projectIDSchema(),
		},

		// Archival
		{
			Name:        "archive_project",
			Description: "Export a project with its history to a JSON artifact, then delete it",
			InputSchema: projectIDSchema(),
		},
		{
			Name:        "seed_projects",
			Description: "Insert a demo project when the store is empty",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}

// registerTools adds every catalog tool to server, dispatching through handler.
func registerTools(server *sdkmcp.Server, handler *Handler) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			user, _ := identity.FromContext(ctx)
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			result, err := handler.Handle(ctx, user, name, args)
			if err != nil {
				return toolError(err), nil
			}
			return toolResult(result)
		})
	}
}

func toolResult(result any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

func toolError(err error) *sdkmcp.CallToolResult {
	payload := any(map[string]string{"code": "INTERNAL", "message": err.Error()})
	if apiErr := MapError(err); apiErr != nil {
		payload = apiErr
	}
	data, _ := json.Marshal(payload)
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		IsError: true,
	}
}
