package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/dusk-indust/hive/internal/store"
)

// MessageRepository implements store.Messages for SQLite. The schema
// rejects updates and deletes on the messages table.
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// AppendMessage adds an entry to a session transcript. A missing ID or
// timestamp is filled in.
func (r *MessageRepository) AppendMessage(ctx context.Context, m *store.Message) error {
	refs, err := encodeJSON(m.References, m.References == nil)
	if err != nil {
		return err
	}
	id := m.ID
	if id == "" {
		id = store.NewID()
	}
	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO messages (
			id, session_id, author, type, content, confidence, reasoning, refs, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		id,
		m.SessionID,
		m.Author,
		string(m.Type),
		m.Content,
		m.Confidence,
		m.Reasoning,
		refs,
		createdAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("append message to session %q: %w", m.SessionID, store.ErrNotFound)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("append message %q: %w", id, store.ErrConflict)
		}
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// ListMessages returns a session transcript in append order
func (r *MessageRepository) ListMessages(ctx context.Context, sessionID string) ([]store.Message, error) {
	query := `
		SELECT id, session_id, author, type, content, confidence, reasoning, refs, created_at
		FROM messages
		WHERE session_id = ?
		ORDER BY seq
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	out := []store.Message{}
	for rows.Next() {
		var m store.Message
		var typ string
		var refs []byte
		err := rows.Scan(
			&m.ID,
			&m.SessionID,
			&m.Author,
			&typ,
			&m.Content,
			&m.Confidence,
			&m.Reasoning,
			&refs,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Type = store.MessageType(typ)
		if err := decodeJSON(refs, &m.References); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
