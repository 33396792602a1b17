package mcptools

// --- MCP Tool Types ---
// The SDK derives each tool's JSON schema from these structs. Timestamps are
// RFC 3339 strings and slices are never nil so the derived schemas hold.

// CreateProjectInput is the input for the create_project MCP tool.
type CreateProjectInput struct {
	Name         string         `json:"name,omitempty" jsonschema:"project name (default: Untitled Project)"`
	Description  string         `json:"description,omitempty" jsonschema:"short project description"`
	Requirements string         `json:"requirements" jsonschema:"free-text requirements the workflow starts from"`
	Config       map[string]any `json:"config,omitempty" jsonschema:"project configuration passed to every phase"`
}

// CreateProjectOutput is the result of the create_project MCP tool.
type CreateProjectOutput struct {
	ProjectID string `json:"projectId"`
	Status    string `json:"status"`
}

// GetProjectStatusInput is the input for the get_project_status MCP tool.
type GetProjectStatusInput struct {
	ProjectID string `json:"projectId" jsonschema:"project identifier returned by create_project"`
}

// ProjectView is the state of one project.
type ProjectView struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Phase       string         `json:"phase"`
	Status      string         `json:"status"`
	Progress    float64        `json:"progress"`
	FailedPhase string         `json:"failedPhase,omitempty"`
	Error       string         `json:"error,omitempty"`
	Artifacts   map[string]any `json:"artifacts,omitempty"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
	CompletedAt string         `json:"completedAt,omitempty"`
}

// ListProjectsInput is the input for the list_projects MCP tool.
type ListProjectsInput struct{}

// ListProjectsOutput is the result of the list_projects MCP tool.
type ListProjectsOutput struct {
	Projects []ProjectView `json:"projects"`
}

// DeliberateInput is the input for the deliberate MCP tool.
type DeliberateInput struct {
	Topic     string         `json:"topic" jsonschema:"the question to deliberate"`
	Type      string         `json:"type,omitempty" jsonschema:"session type: requirements_analysis, architecture_design, test or any other label"`
	ProjectID string         `json:"projectId,omitempty" jsonschema:"project to attach the session to (default: standalone)"`
	Input     map[string]any `json:"input,omitempty" jsonschema:"structured data presented to the participants"`
}

// DeliberateOutput is the result of the deliberate MCP tool.
type DeliberateOutput struct {
	SessionID        string  `json:"sessionId"`
	ConsensusReached bool    `json:"consensusReached"`
	ConfidenceScore  float64 `json:"confidenceScore"`
	FinalDecision    any     `json:"finalDecision"`
	Reasoning        string  `json:"reasoning"`
	Guidance         any     `json:"implementationGuidance"`
	Rounds           int     `json:"consensusRounds"`
}

// ListSessionsInput is the input for the list_sessions MCP tool.
type ListSessionsInput struct {
	ProjectID string `json:"projectId,omitempty" jsonschema:"only sessions of this project (default: all sessions)"`
}

// SessionView summarizes one deliberation session.
type SessionView struct {
	ID               string   `json:"id"`
	ProjectID        string   `json:"projectId,omitempty"`
	Topic            string   `json:"topic"`
	Type             string   `json:"type"`
	Participants     []string `json:"participants"`
	Status           string   `json:"status"`
	ConsensusReached bool     `json:"consensusReached"`
	ConfidenceScore  float64  `json:"confidenceScore"`
	CreatedAt        string   `json:"createdAt"`
	CompletedAt      string   `json:"completedAt,omitempty"`
}

// ListSessionsOutput is the result of the list_sessions MCP tool.
type ListSessionsOutput struct {
	Sessions []SessionView `json:"sessions"`
}

// GetTranscriptInput is the input for the get_transcript MCP tool.
type GetTranscriptInput struct {
	SessionID string `json:"sessionId" jsonschema:"session identifier"`
	Type      string `json:"type,omitempty" jsonschema:"only messages of this type: presentation, analysis, discussion or consensus"`
}

// MessageView is one transcript entry.
type MessageView struct {
	ID         string         `json:"id"`
	Author     string         `json:"author"`
	Type       string         `json:"type"`
	Content    string         `json:"content"`
	Confidence float64        `json:"confidence"`
	Reasoning  string         `json:"reasoning,omitempty"`
	References map[string]any `json:"references,omitempty"`
	CreatedAt  string         `json:"createdAt"`
}

// GetTranscriptOutput is the result of the get_transcript MCP tool.
type GetTranscriptOutput struct {
	Session  SessionView   `json:"session"`
	Messages []MessageView `json:"messages"`
}
