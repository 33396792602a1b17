package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/hive/internal/deliberation"
	"github.com/dusk-indust/hive/internal/orchestrator"
	"github.com/dusk-indust/hive/internal/store"
)

// Projects is the project lifecycle the tools drive.
type Projects interface {
	CreateProject(ctx context.Context, spec orchestrator.ProjectSpec) (string, error)
	GetProjectStatus(ctx context.Context, id string) (*orchestrator.ProjectStatus, error)
	ListProjects(ctx context.Context) ([]orchestrator.ProjectStatus, error)
}

// HiveService holds the collaborators used by the MCP tool handlers.
type HiveService struct {
	projects    Projects
	deliberator orchestrator.Deliberator
	sessions    deliberation.SessionStore
}

// NewHiveService creates a HiveService.
func NewHiveService(projects Projects, deliberator orchestrator.Deliberator, sessions deliberation.SessionStore) *HiveService {
	return &HiveService{projects: projects, deliberator: deliberator, sessions: sessions}
}

// CreateProject starts a new project workflow and returns its ID at once.
func (s *HiveService) CreateProject(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CreateProjectInput,
) (*mcp.CallToolResult, CreateProjectOutput, error) {
	id, err := s.projects.CreateProject(ctx, orchestrator.ProjectSpec{
		Name:         input.Name,
		Description:  input.Description,
		Requirements: input.Requirements,
		Config:       input.Config,
	})
	if err != nil {
		return nil, CreateProjectOutput{}, err
	}
	return nil, CreateProjectOutput{ProjectID: id, Status: orchestrator.StatusCreated}, nil
}

// GetProjectStatus reports the phase, progress and artifacts of a project.
func (s *HiveService) GetProjectStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetProjectStatusInput,
) (*mcp.CallToolResult, ProjectView, error) {
	if input.ProjectID == "" {
		return nil, ProjectView{}, fmt.Errorf("projectId is required")
	}
	st, err := s.projects.GetProjectStatus(ctx, input.ProjectID)
	if err != nil {
		return nil, ProjectView{}, err
	}
	view, err := projectView(st)
	if err != nil {
		return nil, ProjectView{}, err
	}
	return nil, view, nil
}

// ListProjects lists every project without artifacts.
func (s *HiveService) ListProjects(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListProjectsInput,
) (*mcp.CallToolResult, ListProjectsOutput, error) {
	list, err := s.projects.ListProjects(ctx)
	if err != nil {
		return nil, ListProjectsOutput{}, err
	}
	out := ListProjectsOutput{Projects: make([]ProjectView, 0, len(list))}
	for i := range list {
		view, err := projectView(&list[i])
		if err != nil {
			return nil, ListProjectsOutput{}, err
		}
		out.Projects = append(out.Projects, view)
	}
	return nil, out, nil
}

// Deliberate runs one full deliberation session and blocks until it ends.
func (s *HiveService) Deliberate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeliberateInput,
) (*mcp.CallToolResult, DeliberateOutput, error) {
	if strings.TrimSpace(input.Topic) == "" {
		return nil, DeliberateOutput{}, fmt.Errorf("topic is required")
	}
	d, err := s.deliberator.Deliberate(ctx, deliberation.Request{
		ProjectID: input.ProjectID,
		Topic:     input.Topic,
		Type:      input.Type,
		Input:     input.Input,
	})
	if err != nil {
		return nil, DeliberateOutput{}, err
	}

	out := DeliberateOutput{
		SessionID:        d.SessionID,
		ConsensusReached: d.ConsensusReached,
		ConfidenceScore:  d.ConfidenceScore,
		FinalDecision:    d.FinalDecision,
		Reasoning:        d.Reasoning,
		Guidance:         d.Guidance,
	}
	if d.Consensus != nil {
		out.Rounds = len(d.Consensus.Rounds)
	}
	return nil, out, nil
}

// ListSessions lists deliberation sessions, optionally for one project.
func (s *HiveService) ListSessions(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListSessionsInput,
) (*mcp.CallToolResult, ListSessionsOutput, error) {
	list, err := s.sessions.ListSessions(ctx, input.ProjectID)
	if err != nil {
		return nil, ListSessionsOutput{}, fmt.Errorf("list sessions: %w", err)
	}
	out := ListSessionsOutput{Sessions: make([]SessionView, 0, len(list))}
	for i := range list {
		out.Sessions = append(out.Sessions, sessionView(&list[i]))
	}
	return nil, out, nil
}

// GetTranscript returns a session and its messages in append order.
func (s *HiveService) GetTranscript(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetTranscriptInput,
) (*mcp.CallToolResult, GetTranscriptOutput, error) {
	if input.SessionID == "" {
		return nil, GetTranscriptOutput{}, fmt.Errorf("sessionId is required")
	}
	sess, err := s.sessions.GetSession(ctx, input.SessionID)
	if err != nil {
		return nil, GetTranscriptOutput{}, fmt.Errorf("session %s: %w", input.SessionID, err)
	}
	msgs, err := s.sessions.ListMessages(ctx, input.SessionID)
	if err != nil {
		return nil, GetTranscriptOutput{}, fmt.Errorf("list messages: %w", err)
	}

	out := GetTranscriptOutput{
		Session:  sessionView(sess),
		Messages: make([]MessageView, 0, len(msgs)),
	}
	for _, m := range msgs {
		if input.Type != "" && string(m.Type) != input.Type {
			continue
		}
		out.Messages = append(out.Messages, MessageView{
			ID:         m.ID,
			Author:     m.Author,
			Type:       string(m.Type),
			Content:    m.Content,
			Confidence: m.Confidence,
			Reasoning:  m.Reasoning,
			References: m.References,
			CreatedAt:  formatTime(m.CreatedAt),
		})
	}
	return nil, out, nil
}

func projectView(st *orchestrator.ProjectStatus) (ProjectView, error) {
	view := ProjectView{
		ID:          st.ID,
		Name:        st.Name,
		Phase:       st.Phase,
		Status:      st.Status,
		Progress:    st.Progress,
		FailedPhase: st.FailedPhase,
		Error:       st.Error,
		CreatedAt:   formatTime(st.CreatedAt),
		UpdatedAt:   formatTime(st.UpdatedAt),
	}
	if st.CompletedAt != nil {
		view.CompletedAt = formatTime(*st.CompletedAt)
	}
	if len(st.Artifacts) > 0 {
		view.Artifacts = make(map[string]any, len(st.Artifacts))
		for phase, raw := range st.Artifacts {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return ProjectView{}, fmt.Errorf("decode %s artifact: %w", phase, err)
			}
			view.Artifacts[phase] = v
		}
	}
	return view, nil
}

func sessionView(s *store.Session) SessionView {
	view := SessionView{
		ID:               s.ID,
		ProjectID:        s.ProjectID,
		Topic:            s.Topic,
		Type:             s.Type,
		Participants:     append([]string{}, s.Participants...),
		Status:           string(s.Status),
		ConsensusReached: s.ConsensusReached,
		ConfidenceScore:  s.ConfidenceScore,
		CreatedAt:        formatTime(s.CreatedAt),
	}
	if s.CompletedAt != nil {
		view.CompletedAt = formatTime(*s.CompletedAt)
	}
	return view
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
