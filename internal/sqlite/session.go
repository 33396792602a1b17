package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dusk-indust/hive/internal/store"
)

// SessionRepository implements store.Sessions for SQLite
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `
	id, project_id, topic, type, participants, status, consensus_reached,
	confidence_score, final_decision, created_at, started_at, completed_at`

// CreateSession creates a new session
func (r *SessionRepository) CreateSession(ctx context.Context, s *store.Session) error {
	if s.ID == "" {
		return fmt.Errorf("create session: %w: empty id", store.ErrInvalidInput)
	}
	participants, err := encodeJSON(s.Participants, s.Participants == nil)
	if err != nil {
		return err
	}
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `INSERT INTO sessions (` + sessionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		s.ID,
		s.ProjectID,
		s.Topic,
		s.Type,
		participants,
		string(s.Status),
		s.ConsensusReached,
		s.ConfidenceScore,
		rawText(s.FinalDecision),
		createdAt,
		nullTime(s.StartedAt),
		nullTime(s.CompletedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create session %q: %w", s.ID, store.ErrConflict)
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID
func (r *SessionRepository) GetSession(ctx context.Context, id string) (*store.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`
	s, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// UpdateSession updates the lifecycle columns of a session. Topic, type,
// project and participants are fixed at creation.
func (r *SessionRepository) UpdateSession(ctx context.Context, s *store.Session) error {
	query := `
		UPDATE sessions
		SET status = ?, consensus_reached = ?, confidence_score = ?,
		    final_decision = ?, started_at = ?, completed_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		string(s.Status),
		s.ConsensusReached,
		s.ConfidenceScore,
		rawText(s.FinalDecision),
		nullTime(s.StartedAt),
		nullTime(s.CompletedAt),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return requireAffected(result)
}

// ListSessions returns the sessions of a project, or every session when
// projectID is empty, in creation order
func (r *SessionRepository) ListSessions(ctx context.Context, projectID string) ([]store.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	var args []any
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY rowid`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []store.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func scanSession(row scanner) (*store.Session, error) {
	var s store.Session
	var status string
	var participants []byte
	var finalDecision sql.NullString
	var startedAt, completedAt sql.NullTime
	err := row.Scan(
		&s.ID,
		&s.ProjectID,
		&s.Topic,
		&s.Type,
		&participants,
		&status,
		&s.ConsensusReached,
		&s.ConfidenceScore,
		&finalDecision,
		&s.CreatedAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Status = store.SessionStatus(status)
	if err := decodeJSON(participants, &s.Participants); err != nil {
		return nil, err
	}
	if finalDecision.Valid {
		s.FinalDecision = []byte(finalDecision.String)
	}
	s.StartedAt = timePtr(startedAt)
	s.CompletedAt = timePtr(completedAt)
	return &s, nil
}

// rawText stores an already encoded JSON document as text, NULL when empty.
func rawText(raw []byte) sql.NullString {
	if len(raw) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}
