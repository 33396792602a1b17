package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/dusk-indust/hive/internal/store"
)

// ErrNotRunning is returned when a project has no active run.
var ErrNotRunning = errors.New("orchestrator: project not running")

// ProjectSpec describes a new project.
type ProjectSpec struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Requirements string         `json:"requirements"`
	Config       map[string]any `json:"config,omitempty"`
}

// ProjectStatus is the externally visible state of a project.
type ProjectStatus struct {
	ID          string                     `json:"id"`
	Name        string                     `json:"name"`
	Phase       string                     `json:"phase"`
	Status      string                     `json:"status"`
	Progress    float64                    `json:"progress"`
	FailedPhase string                     `json:"failed_phase,omitempty"`
	Error       string                     `json:"error,omitempty"`
	Artifacts   map[string]json.RawMessage `json:"artifacts,omitempty"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
	CompletedAt *time.Time                 `json:"completed_at,omitempty"`
}

type activeRun struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Runner supervises one goroutine per project. A panic inside a run is
// recovered and recorded as a project failure.
type Runner struct {
	orch     *Orchestrator
	projects store.Projects
	logger   *slog.Logger

	mu   sync.Mutex
	runs map[string]*activeRun
}

// NewRunner creates a Runner that executes projects with orch.
func NewRunner(orch *Orchestrator, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		orch:     orch,
		projects: orch.store,
		logger:   logger,
		runs:     make(map[string]*activeRun),
	}
}

// CreateProject persists a new project and starts its workflow in the
// background. The run is not bound to ctx; use Cancel or Shutdown.
func (r *Runner) CreateProject(ctx context.Context, spec ProjectSpec) (string, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		name = "Untitled Project"
	}
	now := r.orch.now().UTC()
	p := &store.Project{
		ID:           store.NewID(),
		Name:         name,
		Description:  spec.Description,
		Requirements: spec.Requirements,
		Phase:        PhaseCreated.String(),
		Status:       StatusCreated,
		Config:       maps.Clone(spec.Config),
		Artifacts:    make(map[string]json.RawMessage),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.projects.CreateProject(ctx, p); err != nil {
		return "", fmt.Errorf("orchestrator: create project: %w", err)
	}
	r.logger.Info("project created", "project", p.ID, "name", p.Name)
	r.start(p.ID)
	return p.ID, nil
}

func (r *Runner) start(id string) {
	ctx, cancel := context.WithCancel(context.Background())
	run := &activeRun{cancel: cancel, done: make(chan struct{})}

	r.mu.Lock()
	r.runs[id] = run
	r.mu.Unlock()

	go func() {
		defer func() {
			r.mu.Lock()
			delete(r.runs, id)
			r.mu.Unlock()
			cancel()
			close(run.done)
		}()
		defer func() {
			if v := recover(); v != nil {
				r.recordPanic(id, v)
			}
		}()
		if err := r.orch.Run(ctx, id); err != nil {
			r.logger.Warn("project run ended with error", "project", id, "error", err)
		}
	}()
}

func (r *Runner) recordPanic(id string, v any) {
	msg := fmt.Sprintf("panic: %v", v)
	r.logger.Error("project run panicked", "project", id, "panic", v)

	ctx := context.Background()
	p, err := r.projects.GetProject(ctx, id)
	if err != nil {
		r.logger.Error("failed to load project after panic", "project", id, "error", err)
		return
	}
	phase, err := ParsePhase(p.Phase)
	if err != nil || phase.IsTerminal() {
		phase = PhaseCreated
	}
	markFailed(p, phase, msg)
	if err := r.projects.UpdateProject(ctx, p); err != nil {
		r.logger.Error("failed to record project failure", "project", id, "error", err)
	}
	r.orch.emit(ProgressEvent{ProjectID: id, Phase: phase, Status: ProgressFailed, Message: msg})
}

// GetProjectStatus returns the current status of a project.
func (r *Runner) GetProjectStatus(ctx context.Context, id string) (*ProjectStatus, error) {
	p, err := r.projects.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: project %s: %w", id, err)
	}
	s := statusOf(p)
	return &s, nil
}

// ListProjects returns the status of every project in creation order.
// Artifacts are omitted.
func (r *Runner) ListProjects(ctx context.Context) ([]ProjectStatus, error) {
	ps, err := r.projects.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: list projects: %w", err)
	}
	out := make([]ProjectStatus, 0, len(ps))
	for i := range ps {
		s := statusOf(&ps[i])
		s.Artifacts = nil
		out = append(out, s)
	}
	return out, nil
}

// Cancel stops the run of a project. The project is marked failed with the
// cancellation error.
func (r *Runner) Cancel(id string) error {
	r.mu.Lock()
	run, ok := r.runs[id]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRunning, id)
	}
	run.cancel()
	return nil
}

// Wait blocks until the run of a project ends or ctx is done. It returns
// nil immediately for a project with no active run.
func (r *Runner) Wait(ctx context.Context, id string) error {
	r.mu.Lock()
	run, ok := r.runs[id]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	select {
	case <-run.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running returns the number of active runs.
func (r *Runner) Running() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

// Shutdown cancels every active run and waits for them to finish or for
// ctx to be done.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	runs := make([]*activeRun, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, run)
	}
	r.mu.Unlock()

	for _, run := range runs {
		run.cancel()
	}
	for _, run := range runs {
		select {
		case <-run.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func statusOf(p *store.Project) ProjectStatus {
	phase, err := ParsePhase(p.Phase)
	if err != nil {
		phase = PhaseCreated
	}
	return ProjectStatus{
		ID:          p.ID,
		Name:        p.Name,
		Phase:       p.Phase,
		Status:      p.Status,
		Progress:    Progress(phase),
		FailedPhase: p.FailedPhase,
		Error:       p.Error,
		Artifacts:   p.Artifacts,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		CompletedAt: p.CompletedAt,
	}
}
