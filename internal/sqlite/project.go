package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dusk-indust/hive/internal/store"
)

// ProjectRepository implements store.Projects for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `
	id, name, description, requirements, phase, status, failed_phase, error,
	config, artifacts, created_at, updated_at, completed_at`

// CreateProject inserts a new project
func (r *ProjectRepository) CreateProject(ctx context.Context, p *store.Project) error {
	if p.ID == "" {
		return fmt.Errorf("create project: %w: empty id", store.ErrInvalidInput)
	}
	config, artifacts, err := encodeProjectMaps(p)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	query := `INSERT INTO projects (` + projectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Requirements,
		p.Phase,
		p.Status,
		p.FailedPhase,
		p.Error,
		config,
		artifacts,
		createdAt,
		updatedAt,
		nullTime(p.CompletedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create project %q: %w", p.ID, store.ErrConflict)
		}
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetProject retrieves a project by ID
func (r *ProjectRepository) GetProject(ctx context.Context, id string) (*store.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// UpdateProject replaces every mutable column and stamps updated_at.
func (r *ProjectRepository) UpdateProject(ctx context.Context, p *store.Project) error {
	config, artifacts, err := encodeProjectMaps(p)
	if err != nil {
		return err
	}
	query := `
		UPDATE projects
		SET name = ?, description = ?, requirements = ?, phase = ?, status = ?,
		    failed_phase = ?, error = ?, config = ?, artifacts = ?,
		    updated_at = ?, completed_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		p.Name,
		p.Description,
		p.Requirements,
		p.Phase,
		p.Status,
		p.FailedPhase,
		p.Error,
		config,
		artifacts,
		time.Now().UTC(),
		nullTime(p.CompletedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return requireAffected(result)
}

// ListProjects returns every project in creation order
func (r *ProjectRepository) ListProjects(ctx context.Context) ([]store.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []store.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*store.Project, error) {
	var p store.Project
	var config, artifacts []byte
	var completedAt sql.NullTime
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Requirements,
		&p.Phase,
		&p.Status,
		&p.FailedPhase,
		&p.Error,
		&config,
		&artifacts,
		&p.CreatedAt,
		&p.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(config, &p.Config); err != nil {
		return nil, err
	}
	if err := decodeJSON(artifacts, &p.Artifacts); err != nil {
		return nil, err
	}
	p.CompletedAt = timePtr(completedAt)
	return &p, nil
}

func encodeProjectMaps(p *store.Project) (config, artifacts any, err error) {
	if config, err = encodeJSON(p.Config, p.Config == nil); err != nil {
		return nil, nil, err
	}
	if artifacts, err = encodeJSON(p.Artifacts, p.Artifacts == nil); err != nil {
		return nil, nil, err
	}
	return config, artifacts, nil
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
