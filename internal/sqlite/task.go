package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/dusk-indust/hive/internal/store"
)

// TaskRepository implements store.Tasks for SQLite
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `
	id, project_id, name, description, type, agent_type, status, priority,
	dependencies, input, output, created_at, updated_at`

// CreateTask inserts a task. The owning project must exist.
func (r *TaskRepository) CreateTask(ctx context.Context, t *store.Task) error {
	deps, input, output, err := encodeTaskColumns(t)
	if err != nil {
		return err
	}
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := t.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		t.ID,
		t.ProjectID,
		t.Name,
		t.Description,
		t.Type,
		t.AgentType,
		t.Status,
		t.Priority,
		deps,
		input,
		output,
		createdAt,
		updatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("create task for project %q: %w", t.ProjectID, store.ErrNotFound)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("create task %q: %w", t.ID, store.ErrConflict)
		}
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// UpdateTask replaces the mutable columns of a task within its project
func (r *TaskRepository) UpdateTask(ctx context.Context, t *store.Task) error {
	deps, input, output, err := encodeTaskColumns(t)
	if err != nil {
		return err
	}
	query := `
		UPDATE tasks
		SET name = ?, description = ?, type = ?, agent_type = ?, status = ?,
		    priority = ?, dependencies = ?, input = ?, output = ?, updated_at = ?
		WHERE id = ? AND project_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		t.Name,
		t.Description,
		t.Type,
		t.AgentType,
		t.Status,
		t.Priority,
		deps,
		input,
		output,
		time.Now().UTC(),
		t.ID,
		t.ProjectID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return requireAffected(result)
}

// ListTasks returns the tasks of a project in creation order
func (r *TaskRepository) ListTasks(ctx context.Context, projectID string) ([]store.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ? ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	out := []store.Task{}
	for rows.Next() {
		var t store.Task
		var deps, input, output []byte
		err := rows.Scan(
			&t.ID,
			&t.ProjectID,
			&t.Name,
			&t.Description,
			&t.Type,
			&t.AgentType,
			&t.Status,
			&t.Priority,
			&deps,
			&input,
			&output,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if err := decodeJSON(deps, &t.Dependencies); err != nil {
			return nil, err
		}
		if err := decodeJSON(input, &t.Input); err != nil {
			return nil, err
		}
		if err := decodeJSON(output, &t.Output); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func encodeTaskColumns(t *store.Task) (deps, input, output any, err error) {
	if deps, err = encodeJSON(t.Dependencies, t.Dependencies == nil); err != nil {
		return nil, nil, nil, err
	}
	if input, err = encodeJSON(t.Input, t.Input == nil); err != nil {
		return nil, nil, nil, err
	}
	if output, err = encodeJSON(t.Output, t.Output == nil); err != nil {
		return nil, nil, nil, err
	}
	return deps, input, output, nil
}
