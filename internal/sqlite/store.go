package sqlite

import "github.com/dusk-indust/hive/internal/store"

// Store composes the repositories over one database.
type Store struct {
	*ProjectRepository
	*TaskRepository
	*SessionRepository
	*MessageRepository

	db *DB
}

var _ store.Store = (*Store)(nil)

// NewStore returns a Store backed by db.
func NewStore(db *DB) *Store {
	return &Store{
		ProjectRepository: NewProjectRepository(db),
		TaskRepository:    NewTaskRepository(db),
		SessionRepository: NewSessionRepository(db),
		MessageRepository: NewMessageRepository(db),
		db:                db,
	}
}

// Open opens the database at dsn and returns a Store over it.
func Open(dsn string) (*Store, error) {
	db, err := New(dsn)
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
