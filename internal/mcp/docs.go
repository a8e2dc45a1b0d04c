package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `sitecycle tracks construction projects through three rolling periods: previous, planned and next.

Core concepts:
- Project: site name, responsible person and three periods. Only active projects are listed.
- Status: derived on every read from the planned end date (CLOSED, SCHEDULE_NEEDED, OVERDUE, DUE_SOON, ON_TRACK).
- Rotation: closes the planned period. Planned moves to previous, the new current period becomes planned.
- Audit record: every notes or remark edit that changes a value leaves one.
- Report: free-text progress entry, append only.
- Archive: exports a project with all reports and audit records to JSON, then deletes it. This cannot be undone.

Default workflow:
1) Orient: list_projects (sort by plannedEnd asc to see what is due first).
2) Inspect: get_project, get_history.
3) Record progress: append_report, edit_notes, edit_remark.
4) Close a period: get_rotation_draft, then rotate_project with the confirmed values.
5) Finish: archive_project only after the user confirms.

Docs:
- sitecycle://docs/index
- sitecycle://docs/status
- sitecycle://docs/workflows/rotation
- sitecycle://docs/workflows/archival
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "sitecycle://docs/index",
		Name:        "docs_index",
		Title:       "sitecycle docs index",
		Description: "Entry point: available tools and which doc to read when.",
		Content: `# sitecycle: Docs Index

## Quick start

1. ` + "`list_projects`" + ` to see active projects and their status.
2. ` + "`get_history`" + ` for the merged report and audit timeline of one project.
3. ` + "`append_report`" + ` to log progress.
4. ` + "`rotate_project`" + ` when the planned period is done.

## Docs

- ` + "`sitecycle://docs/status`" + `: how status labels are computed.
- ` + "`sitecycle://docs/workflows/rotation`" + `: the rotation form and what moves where.
- ` + "`sitecycle://docs/workflows/archival`" + `: export and delete.

## Dates

Dates are accepted as ` + "`YYYY-MM-DD`" + ` or RFC 3339 and stored in UTC.
`,
	},
	{
		URI:         "sitecycle://docs/status",
		Name:        "docs_status",
		Title:       "Status classification",
		Description: "Rules that map a project's planned end date to a status label.",
		Content: `# Status classification

Status is never stored. It is computed from the project and the current time.

1. Closed projects are ` + "`CLOSED`" + `.
2. No planned end date gives ` + "`SCHEDULE_NEEDED`" + `.
3. Otherwise take the days until the planned end, rounded up:
   - below 0: ` + "`OVERDUE`" + ` with the number of days overdue
   - 0 or 1: ` + "`DUE_SOON`" + `
   - above 1: ` + "`ON_TRACK`" + `

` + "`days_since_update`" + ` counts days since the last rotation, or -1 when the project never rotated.
`,
	},
	{
		URI:         "sitecycle://docs/workflows/rotation",
		Name:        "docs_workflow_rotation",
		Title:       "Workflow: period rotation",
		Description: "How to close the planned period and what happens to notes and remarks.",
		Content: `# Workflow: period rotation

1) Call ` + "`get_rotation_draft`" + `. It pre-fills the new planned period from the next period, using today for missing dates.
2) Confirm with the user. The new planned period needs an activity and an end date.
3) Call ` + "`rotate_project`" + `.

What moves:
- planned period (with its notes) becomes previous
- next period notes carry into the new planned period
- next notes start empty
- the previous remark is kept

Rotations write no audit records. Concurrent rotations are last write wins.
`,
	},
	{
		URI:         "sitecycle://docs/workflows/archival",
		Name:        "docs_workflow_archival",
		Title:       "Workflow: archival",
		Description: "Exporting a finished project and removing it from the store.",
		Content: `# Workflow: archival

` + "`archive_project`" + ` runs in this order:

1. Read the project, its reports and its audit records.
2. Write ` + "`Archive_<name>_<first 5 id chars>.json`" + ` to the export directory.
3. Delete the project, reports and audit records in one transaction.

If the export fails nothing is deleted. If the delete fails the export file stays and the project is still listed.
Once started the archival is not cancelled by the caller disconnecting.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
