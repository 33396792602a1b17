package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	for _, table := range []string{"projects", "tasks", "sessions", "messages"} {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}

	// Re-running against an existing schema is a no-op.
	require.NoError(t, db.RunMigrations())
}

func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

func TestMessagesAreAppendOnly(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO sessions (id, topic, status, created_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		"s1", "Caching", "created")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, author, type, content, created_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		"m1", "s1", "system", "presentation", "hello")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `UPDATE messages SET content = ? WHERE id = ?`, "edited", "m1")
	require.Error(t, err, "update should be rejected")

	_, err = db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, "m1")
	require.Error(t, err, "delete should be rejected")

	_, err = db.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, author, type, content, created_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		"m2", "s1", "system", "chatter", "hello")
	require.Error(t, err, "should fail with invalid message type")
}
