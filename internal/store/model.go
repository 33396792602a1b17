package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NewID returns a random identifier for a new record.
func NewID() string {
	return uuid.NewString()
}

// Project is the persistent record of one project moving through the
// workflow phases.
type Project struct {
	ID           string
	Name         string
	Description  string
	Requirements string

	// Phase is the workflow state machine value (orchestrator.Phase.String()).
	Phase string

	// Status is the finer-grained activity label, e.g. "analyzing_requirements".
	Status string

	// FailedPhase is the phase that was running when the project failed.
	FailedPhase string

	// Error holds the failure message verbatim. Empty unless failed.
	Error string

	Config    map[string]any
	Artifacts map[string]json.RawMessage

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// Task is one unit of work produced by task decomposition.
type Task struct {
	ID           string
	ProjectID    string
	Name         string
	Description  string
	Type         string
	AgentType    string
	Status       string
	Priority     int
	Dependencies []string
	Input        map[string]any
	Output       map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SessionStatus is the lifecycle state of a deliberation session.
type SessionStatus string

const (
	SessionCreated    SessionStatus = "created"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionFailed     SessionStatus = "failed"
)

// IsTerminal reports whether no further transitions are expected.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionFailed
}

// Session is one deliberation run on a single topic.
type Session struct {
	ID        string
	ProjectID string // empty for standalone sessions
	Topic     string
	Type      string

	// Participants is fixed at creation.
	Participants []string

	Status           SessionStatus
	ConsensusReached bool

	// ConfidenceScore is only meaningful once Status is terminal.
	ConfidenceScore float64
	FinalDecision   json.RawMessage

	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// MessageType classifies transcript entries.
type MessageType string

const (
	MessagePresentation MessageType = "presentation"
	MessageAnalysis     MessageType = "analysis"
	MessageDiscussion   MessageType = "discussion"
	MessageConsensus    MessageType = "consensus"
)

// AuthorSystem is the author of messages not produced by a participant.
const AuthorSystem = "system"

// Message is a write-once transcript entry tied to a session.
type Message struct {
	ID         string
	SessionID  string
	Author     string
	Type       MessageType
	Content    string
	Confidence float64
	Reasoning  string
	References map[string]any
	CreatedAt  time.Time
}
