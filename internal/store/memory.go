package store

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

// Memory is a concurrency-safe in-memory Store. Records are kept in maps
// keyed by ID with separate slices preserving insertion order so that list
// operations are deterministic.
type Memory struct {
	mu sync.RWMutex

	projects     map[string]*Project
	projectOrder []string

	tasks map[string][]*Task // keyed by project ID

	sessions     map[string]*Session
	sessionOrder []string

	messages map[string][]*Message // keyed by session ID
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		projects: make(map[string]*Project),
		tasks:    make(map[string][]*Task),
		sessions: make(map[string]*Session),
		messages: make(map[string][]*Message),
	}
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

func (m *Memory) CreateProject(_ context.Context, p *Project) error {
	if p.ID == "" {
		return fmt.Errorf("create project: %w: empty id", ErrInvalidInput)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.projects[p.ID]; exists {
		return fmt.Errorf("create project %q: %w", p.ID, ErrConflict)
	}
	m.projects[p.ID] = copyProject(p)
	m.projectOrder = append(m.projectOrder, p.ID)
	return nil
}

func (m *Memory) GetProject(_ context.Context, id string) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyProject(p), nil
}

func (m *Memory) UpdateProject(_ context.Context, p *Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[p.ID]; !ok {
		return ErrNotFound
	}
	cp := copyProject(p)
	cp.UpdatedAt = time.Now().UTC()
	m.projects[p.ID] = cp
	return nil
}

func (m *Memory) ListProjects(_ context.Context) ([]Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Project, 0, len(m.projectOrder))
	for _, id := range m.projectOrder {
		out = append(out, *copyProject(m.projects[id]))
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

func (m *Memory) CreateTask(_ context.Context, t *Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[t.ProjectID]; !ok {
		return fmt.Errorf("create task for project %q: %w", t.ProjectID, ErrNotFound)
	}
	for _, existing := range m.tasks[t.ProjectID] {
		if existing.ID == t.ID {
			return fmt.Errorf("create task %q: %w", t.ID, ErrConflict)
		}
	}
	m.tasks[t.ProjectID] = append(m.tasks[t.ProjectID], copyTask(t))
	return nil
}

func (m *Memory) ListTasks(_ context.Context, projectID string) ([]Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Task, 0, len(m.tasks[projectID]))
	for _, t := range m.tasks[projectID] {
		out = append(out, *copyTask(t))
	}
	return out, nil
}

func (m *Memory) UpdateTask(_ context.Context, t *Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.tasks[t.ProjectID] {
		if existing.ID == t.ID {
			cp := copyTask(t)
			cp.UpdatedAt = time.Now().UTC()
			m.tasks[t.ProjectID][i] = cp
			return nil
		}
	}
	return ErrNotFound
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

func (m *Memory) CreateSession(_ context.Context, s *Session) error {
	if s.ID == "" {
		return fmt.Errorf("create session: %w: empty id", ErrInvalidInput)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ID]; exists {
		return fmt.Errorf("create session %q: %w", s.ID, ErrConflict)
	}
	m.sessions[s.ID] = copySession(s)
	m.sessionOrder = append(m.sessionOrder, s.ID)
	return nil
}

func (m *Memory) GetSession(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copySession(s), nil
}

func (m *Memory) UpdateSession(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; !ok {
		return ErrNotFound
	}
	m.sessions[s.ID] = copySession(s)
	return nil
}

func (m *Memory) ListSessions(_ context.Context, projectID string) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Session
	for _, id := range m.sessionOrder {
		s := m.sessions[id]
		if projectID != "" && s.ProjectID != projectID {
			continue
		}
		out = append(out, *copySession(s))
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

func (m *Memory) AppendMessage(_ context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[msg.SessionID]; !ok {
		return fmt.Errorf("append message to session %q: %w", msg.SessionID, ErrNotFound)
	}
	cp := *msg
	if cp.ID == "" {
		cp.ID = NewID()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	cp.References = maps.Clone(msg.References)
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], &cp)
	return nil
}

func (m *Memory) ListMessages(_ context.Context, sessionID string) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Message, 0, len(m.messages[sessionID]))
	for _, msg := range m.messages[sessionID] {
		cp := *msg
		cp.References = maps.Clone(msg.References)
		out = append(out, cp)
	}
	return out, nil
}

// copyProject returns a copy of src whose maps can be mutated without
// affecting the store. Nested values inside Config are shared.
func copyProject(src *Project) *Project {
	dst := *src
	dst.Config = maps.Clone(src.Config)
	if src.Artifacts != nil {
		dst.Artifacts = make(map[string]json.RawMessage, len(src.Artifacts))
		for k, v := range src.Artifacts {
			dst.Artifacts[k] = slices.Clone(v)
		}
	}
	if src.CompletedAt != nil {
		t := *src.CompletedAt
		dst.CompletedAt = &t
	}
	return &dst
}

func copyTask(src *Task) *Task {
	cp := *src
	cp.Dependencies = slices.Clone(src.Dependencies)
	cp.Input = maps.Clone(src.Input)
	cp.Output = maps.Clone(src.Output)
	return &cp
}

func copySession(src *Session) *Session {
	dst := *src
	dst.Participants = slices.Clone(src.Participants)
	dst.FinalDecision = slices.Clone(src.FinalDecision)
	if src.StartedAt != nil {
		t := *src.StartedAt
		dst.StartedAt = &t
	}
	if src.CompletedAt != nil {
		t := *src.CompletedAt
		dst.CompletedAt = &t
	}
	return &dst
}
