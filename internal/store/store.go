// Package store defines the persistent records shared by the orchestrator and
// the deliberation engine, the repository interfaces over them, and an
// in-memory implementation.
//
// Messages are append-only: no interface exposes an update or delete for them.
package store

import "context"

// Projects persists project records. Each project has a single writer (its
// orchestrator goroutine), so Update is a plain read-modify-write.
type Projects interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	UpdateProject(ctx context.Context, p *Project) error
	ListProjects(ctx context.Context) ([]Project, error)
}

// Tasks persists decomposed tasks. ListTasks returns them in creation order.
type Tasks interface {
	CreateTask(ctx context.Context, t *Task) error
	UpdateTask(ctx context.Context, t *Task) error
	ListTasks(ctx context.Context, projectID string) ([]Task, error)
}

// Sessions persists deliberation sessions.
type Sessions interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	UpdateSession(ctx context.Context, s *Session) error
	// ListSessions returns sessions for a project, or all sessions when
	// projectID is empty, in creation order.
	ListSessions(ctx context.Context, projectID string) ([]Session, error)
}

// Messages is the append-only session transcript.
type Messages interface {
	AppendMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, sessionID string) ([]Message, error)
}

// Store composes every repository.
type Store interface {
	Projects
	Tasks
	Sessions
	Messages
}
