package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ganot/sitecycle/internal/domain/project"
	"github.com/ganot/sitecycle/internal/feed"
	"github.com/ganot/sitecycle/internal/repository"
)

const projectColumns = `
	id, project_code, name, responsible_person, is_closed,
	previous_activity, previous_start, previous_end, previous_notes, previous_remark,
	planned_activity, planned_start, planned_end, planned_notes,
	next_activity, next_start, next_end, next_notes,
	last_update_date`

// editableColumns maps tracked project fields to their columns.
var editableColumns = map[string]string{
	string(project.FieldPlannedNotes):   "planned_notes",
	string(project.FieldNextNotes):      "next_notes",
	string(project.FieldPreviousRemark): "previous_remark",
}

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		proj.ID,
		proj.Code,
		proj.Name,
		proj.ResponsiblePerson,
		proj.IsClosed,
		proj.Previous.Activity,
		nullTime(proj.Previous.Start),
		nullTime(proj.Previous.End),
		proj.Previous.Notes,
		proj.Previous.Remark,
		proj.Planned.Activity,
		nullTime(proj.Planned.Start),
		nullTime(proj.Planned.End),
		proj.Planned.Notes,
		proj.Next.Activity,
		nullTime(proj.Next.Start),
		nullTime(proj.Next.End),
		proj.Next.Notes,
		nullTime(proj.LastUpdateDate),
	)
	if err != nil {
		return insertError("project", err)
	}

	r.db.notify(feed.TopicProjects)
	return nil
}

// Get retrieves a project by ID
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

	proj, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return proj, nil
}

// ListActive returns every project that is not closed, in no particular order
func (r *ProjectRepository) ListActive(ctx context.Context) ([]project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE is_closed = 0`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []project.Project{}
	for rows.Next() {
		proj, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *proj)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, nil
}

// ApplyRotation writes the complete rotation field set in one transaction.
// previous_remark is left untouched.
func (r *ProjectRepository) ApplyRotation(ctx context.Context, id string, f project.RotationFields) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE projects SET
			previous_activity = ?, previous_start = ?, previous_end = ?, previous_notes = ?,
			planned_activity = ?, planned_start = ?, planned_end = ?, planned_notes = ?,
			next_activity = ?, next_start = ?, next_end = ?, next_notes = ?,
			last_update_date = ?
		WHERE id = ?
	`

	result, err := tx.ExecContext(ctx, query,
		f.PreviousActivity, nullTime(f.PreviousStart), nullTime(f.PreviousEnd), f.PreviousNotes,
		f.PlannedActivity, nullTime(f.PlannedStart), nullTime(f.PlannedEnd), f.PlannedNotes,
		f.NextActivity, nullTime(f.NextStart), nullTime(f.NextEnd), f.NextNotes,
		f.LastUpdateDate.UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to rotate project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.db.notify(feed.TopicProjects)
	return nil
}

// UpdateField sets a single tracked text field
func (r *ProjectRepository) UpdateField(ctx context.Context, id, field, value string) error {
	column, ok := editableColumns[field]
	if !ok {
		return fmt.Errorf("%w: field %q is not editable", repository.ErrInvalidInput, field)
	}

	result, err := r.db.ExecContext(ctx, `UPDATE projects SET `+column+` = ? WHERE id = ?`, value, id)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", field, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	r.db.notify(feed.TopicProjects)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*project.Project, error) {
	var (
		proj                                   project.Project
		prevStart, prevEnd, planStart, planEnd sql.NullTime
		nextStart, nextEnd, lastUpdate         sql.NullTime
	)
	err := row.Scan(
		&proj.ID,
		&proj.Code,
		&proj.Name,
		&proj.ResponsiblePerson,
		&proj.IsClosed,
		&proj.Previous.Activity,
		&prevStart,
		&prevEnd,
		&proj.Previous.Notes,
		&proj.Previous.Remark,
		&proj.Planned.Activity,
		&planStart,
		&planEnd,
		&proj.Planned.Notes,
		&proj.Next.Activity,
		&nextStart,
		&nextEnd,
		&proj.Next.Notes,
		&lastUpdate,
	)
	if err != nil {
		return nil, err
	}

	proj.Previous.Start = timePtr(prevStart)
	proj.Previous.End = timePtr(prevEnd)
	proj.Planned.Start = timePtr(planStart)
	proj.Planned.End = timePtr(planEnd)
	proj.Next.Start = timePtr(nextStart)
	proj.Next.End = timePtr(nextEnd)
	proj.LastUpdateDate = timePtr(lastUpdate)
	return &proj, nil
}
