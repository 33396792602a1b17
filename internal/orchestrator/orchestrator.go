// Package orchestrator drives a project through its workflow phases. The
// two deliberation phases open a session with the hive; every other phase
// delegates to a collaborator. Phase results are stored as JSON artifacts
// on the project record.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dusk-indust/hive/internal/deliberation"
	"github.com/dusk-indust/hive/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/dusk-indust/hive/internal/orchestrator")

// Deliberation session topics.
const (
	TopicRequirements = "Requirements Analysis and Clarification"
	TopicArchitecture = "System Architecture Design"
)

// ProjectStore is the persistence an Orchestrator needs.
type ProjectStore interface {
	store.Projects
	store.Tasks
}

// runState carries typed phase results forward within one run.
type runState struct {
	project      *store.Project
	requirements any
	architecture any
	tasks        []store.Task
	execution    *ExecutionReport
	qa           *QAReport
	assembly     *Assembly
}

// phaseStep is the executor registered for one workflow phase. The
// returned value is stored as the phase artifact.
type phaseStep struct {
	phase   Phase
	running string
	done    string
	run     func(ctx context.Context, st *runState) (any, error)
}

// Orchestrator runs projects through every workflow phase in order.
type Orchestrator struct {
	store    ProjectStore
	hive     Deliberator
	collab   Collaborators
	progress *ProgressReporter
	logger   *slog.Logger
	now      func() time.Time
	steps    []phaseStep
}

// New creates an Orchestrator. progress may be nil.
func New(st ProjectStore, hive Deliberator, collab Collaborators, progress *ProgressReporter, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		store:    st,
		hive:     hive,
		collab:   collab.withDefaults(),
		progress: progress,
		logger:   logger,
		now:      time.Now,
	}
	o.steps = []phaseStep{
		{PhaseRequirementsAnalysis, StatusAnalyzingRequirements, StatusRequirementsAnalyzed, o.analyzeRequirements},
		{PhaseArchitectureDesign, StatusDesigningArchitecture, StatusArchitectureDesigned, o.designArchitecture},
		{PhaseTaskDecomposition, StatusDecomposingTasks, "", o.decomposeTasks},
		{PhaseImplementation, StatusImplementing, "", o.implement},
		{PhaseQualityAssurance, StatusTesting, "", o.assureQuality},
		{PhaseOutputAssembly, StatusAssembling, "", o.assemble},
		{PhaseFinalValidation, StatusValidating, "", o.validate},
	}
	return o
}

// Run executes every workflow phase for the project with the given id.
// On any phase error the project is marked failed with the error message
// stored verbatim. There is no retry.
func (o *Orchestrator) Run(ctx context.Context, projectID string) error {
	p, err := o.store.GetProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("orchestrator: load project %s: %w", projectID, err)
	}
	if p.Artifacts == nil {
		p.Artifacts = make(map[string]json.RawMessage)
	}
	st := &runState{project: p}
	logger := o.logger.With("project", p.ID)
	logger.Info("project workflow started", "name", p.Name)

	for _, step := range o.steps {
		if err := ctx.Err(); err != nil {
			o.fail(context.WithoutCancel(ctx), st, step.phase, err, logger)
			return fmt.Errorf("orchestrator: phase %s: %w", step.phase, err)
		}
		if err := o.runStep(ctx, st, step, logger); err != nil {
			o.fail(context.WithoutCancel(ctx), st, step.phase, err, logger)
			return fmt.Errorf("orchestrator: phase %s: %w", step.phase, err)
		}
	}

	done := o.now().UTC()
	p.Phase = PhaseCompleted.String()
	p.Status = StatusCompleted
	p.CompletedAt = &done
	if err := o.store.UpdateProject(ctx, p); err != nil {
		return fmt.Errorf("orchestrator: complete project %s: %w", p.ID, err)
	}
	o.emit(ProgressEvent{ProjectID: p.ID, Phase: PhaseCompleted, Status: ProgressComplete, Progress: Progress(PhaseCompleted)})
	logger.Info("project completed")
	return nil
}

func (o *Orchestrator) runStep(ctx context.Context, st *runState, step phaseStep, logger *slog.Logger) error {
	ctx, span := tracer.Start(ctx, "orchestrator.phase", trace.WithAttributes(
		attribute.String("project_id", st.project.ID),
		attribute.String("phase", step.phase.String()),
	))
	defer span.End()

	p := st.project
	p.Phase = step.phase.String()
	p.Status = step.running
	if err := o.store.UpdateProject(ctx, p); err != nil {
		span.RecordError(err)
		return err
	}
	o.emit(ProgressEvent{ProjectID: p.ID, Phase: step.phase, Status: ProgressStarted, Progress: Progress(step.phase)})
	logger.Info("phase started", "phase", step.phase.String())

	result, err := step.run(ctx, st)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode %s artifact: %w", step.phase, err)
	}
	p.Artifacts[step.phase.String()] = raw
	if step.done != "" {
		p.Status = step.done
	}
	if err := o.store.UpdateProject(ctx, p); err != nil {
		span.RecordError(err)
		return err
	}
	o.emit(ProgressEvent{ProjectID: p.ID, Phase: step.phase, Status: ProgressComplete, Progress: Progress(step.phase)})
	logger.Info("phase complete", "phase", step.phase.String())
	return nil
}

func (o *Orchestrator) fail(ctx context.Context, st *runState, phase Phase, cause error, logger *slog.Logger) {
	markFailed(st.project, phase, cause.Error())
	if err := o.store.UpdateProject(ctx, st.project); err != nil {
		logger.Error("failed to record project failure", "error", err)
	}
	o.emit(ProgressEvent{ProjectID: st.project.ID, Phase: phase, Status: ProgressFailed, Message: cause.Error()})
	logger.Error("project failed", "phase", phase.String(), "error", cause)
}

func markFailed(p *store.Project, phase Phase, msg string) {
	p.FailedPhase = phase.String()
	p.Phase = PhaseFailed.String()
	p.Status = StatusFailed
	p.Error = msg
}

func (o *Orchestrator) emit(ev ProgressEvent) {
	if o.progress != nil {
		o.progress.Emit(ev)
	}
}

// ---------------------------------------------------------------------------
// Phase executors
// ---------------------------------------------------------------------------

func (o *Orchestrator) analyzeRequirements(ctx context.Context, st *runState) (any, error) {
	dec, err := o.hive.Deliberate(ctx, deliberation.Request{
		ProjectID: st.project.ID,
		Topic:     TopicRequirements,
		Type:      deliberation.TypeRequirementsAnalysis,
		Input: map[string]any{
			"requirements": st.project.Requirements,
			"description":  st.project.Description,
			"config":       st.project.Config,
		},
	})
	if err != nil {
		return nil, err
	}
	st.requirements = dec.FinalDecision
	return dec.FinalDecision, nil
}

func (o *Orchestrator) designArchitecture(ctx context.Context, st *runState) (any, error) {
	dec, err := o.hive.Deliberate(ctx, deliberation.Request{
		ProjectID: st.project.ID,
		Topic:     TopicArchitecture,
		Type:      deliberation.TypeArchitectureDesign,
		Input: map[string]any{
			"requirements_analysis": st.requirements,
			"project_config":        st.project.Config,
		},
	})
	if err != nil {
		return nil, err
	}
	st.architecture = dec.FinalDecision
	return dec.FinalDecision, nil
}

func (o *Orchestrator) decomposeTasks(ctx context.Context, st *runState) (any, error) {
	plan, err := o.collab.Decomposer.Decompose(ctx, st.project, st.requirements, st.architecture)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(plan))
	now := o.now().UTC()
	for _, pt := range plan {
		t := store.Task{
			ID:          store.NewID(),
			ProjectID:   st.project.ID,
			Name:        pt.Name,
			Description: pt.Description,
			Type:        pt.Type,
			AgentType:   pt.AgentType,
			Status:      "pending",
			Priority:    pt.Priority,
			Input:       map[string]any{"estimated_duration": pt.EstimatedDuration},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		for _, dep := range pt.DependsOn {
			id, ok := ids[dep]
			if !ok {
				return nil, fmt.Errorf("task %q depends on unknown task %q", pt.Name, dep)
			}
			t.Dependencies = append(t.Dependencies, id)
		}
		if err := o.store.CreateTask(ctx, &t); err != nil {
			return nil, err
		}
		ids[pt.Name] = t.ID
		st.tasks = append(st.tasks, t)
	}
	return plan, nil
}

func (o *Orchestrator) implement(ctx context.Context, st *runState) (any, error) {
	report, err := o.collab.Executor.ExecuteTasks(ctx, st.project, st.tasks)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, fmt.Errorf("executor returned no report")
	}
	results := make(map[string]TaskResult, len(report.Results))
	for _, r := range report.Results {
		results[r.TaskID] = r
	}
	for i := range st.tasks {
		t := &st.tasks[i]
		r, ok := results[t.ID]
		if !ok {
			continue
		}
		t.Status = r.Status
		t.Output = map[string]any{"output": r.Output, "duration": r.Duration, "agent_used": r.AgentUsed}
		if err := o.store.UpdateTask(ctx, t); err != nil {
			o.logger.Warn("failed to record task result", "task", t.ID, "error", err)
		}
	}
	st.execution = report
	return report, nil
}

func (o *Orchestrator) assureQuality(ctx context.Context, st *runState) (any, error) {
	qa, err := o.collab.Executor.RunQualityAssurance(ctx, st.project, st.execution)
	if err != nil {
		return nil, err
	}
	st.qa = qa
	return qa, nil
}

func (o *Orchestrator) assemble(ctx context.Context, st *runState) (any, error) {
	a, err := o.collab.Assembler.Assemble(ctx, st.project, st.execution, st.qa)
	if err != nil {
		return nil, err
	}
	st.assembly = a
	return a, nil
}

func (o *Orchestrator) validate(ctx context.Context, st *runState) (any, error) {
	return o.collab.Validator.Validate(ctx, st.project, st.assembly)
}
