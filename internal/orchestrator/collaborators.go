package orchestrator

import (
	"context"

	"github.com/dusk-indust/hive/internal/deliberation"
	"github.com/dusk-indust/hive/internal/store"
)

// Deliberator runs a deliberation session. *deliberation.Hive satisfies it.
type Deliberator interface {
	Deliberate(ctx context.Context, req deliberation.Request) (*deliberation.Decision, error)
}

// PlannedTask is a task proposed by a Decomposer. DependsOn names tasks
// earlier in the same plan.
type PlannedTask struct {
	Name              string   `json:"name"`
	Type              string   `json:"type"`
	Description       string   `json:"description"`
	AgentType         string   `json:"agent_type"`
	Priority          int      `json:"priority"`
	EstimatedDuration int      `json:"estimated_duration"`
	DependsOn         []string `json:"depends_on,omitempty"`
}

// Decomposer breaks a designed project into executable tasks.
type Decomposer interface {
	Decompose(ctx context.Context, project *store.Project, requirements, architecture any) ([]PlannedTask, error)
}

// TaskResult is the outcome of one executed task.
type TaskResult struct {
	TaskID    string `json:"task_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Output    string `json:"output"`
	Duration  int    `json:"duration"`
	AgentUsed string `json:"agent_used"`
}

// ExecutionReport summarizes the implementation phase.
type ExecutionReport struct {
	TotalTasks     int          `json:"total_tasks"`
	CompletedTasks int          `json:"completed_tasks"`
	FailedTasks    int          `json:"failed_tasks"`
	Results        []TaskResult `json:"task_results"`
	OverallStatus  string       `json:"overall_status"`
	ExecutionTime  int          `json:"execution_time"`
}

// TestSuite summarizes one class of tests.
type TestSuite struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Coverage float64 `json:"coverage"`
}

// QAReport is the outcome of quality assurance.
type QAReport struct {
	Status             string    `json:"qa_status"`
	UnitTests          TestSuite `json:"unit_tests"`
	IntegrationTests   TestSuite `json:"integration_tests"`
	Vulnerabilities    int       `json:"vulnerabilities_found"`
	Severity           string    `json:"severity"`
	MaintainIndex      int       `json:"maintainability_index"`
	Recommendations    []string  `json:"recommendations"`
	OverallScore       float64   `json:"overall_score"`
	ReadyForDeployment bool      `json:"ready_for_deployment"`
}

// Executor runs tasks and checks their quality.
type Executor interface {
	ExecuteTasks(ctx context.Context, project *store.Project, tasks []store.Task) (*ExecutionReport, error)
	RunQualityAssurance(ctx context.Context, project *store.Project, report *ExecutionReport) (*QAReport, error)
}

// Assembly is the assembled project output.
type Assembly struct {
	Status          string              `json:"assembly_status"`
	ProjectType     string              `json:"project_type"`
	Structure       map[string][]string `json:"final_structure"`
	Deliverables    []string            `json:"deliverables"`
	CodeCoverage    float64             `json:"code_coverage"`
	DeploymentReady bool                `json:"deployment_ready"`
}

// Assembler packages implementation results into deliverables.
type Assembler interface {
	Assemble(ctx context.Context, project *store.Project, report *ExecutionReport, qa *QAReport) (*Assembly, error)
}

// Check is one named validation check.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
}

// ValidationReport is the outcome of final validation.
type ValidationReport struct {
	Status          string   `json:"validation_status"`
	Checks          []Check  `json:"validation_checks"`
	FinalScore      float64  `json:"final_score"`
	Approval        string   `json:"approval_status"`
	Recommendations []string `json:"recommendations"`
	NextSteps       []string `json:"next_steps"`
}

// Validator performs final validation of an assembly.
type Validator interface {
	Validate(ctx context.Context, project *store.Project, assembly *Assembly) (*ValidationReport, error)
}

// Collaborators groups the non-deliberation phase implementations. Nil
// fields take the deterministic defaults.
type Collaborators struct {
	Decomposer Decomposer
	Executor   Executor
	Assembler  Assembler
	Validator  Validator
}

func (c Collaborators) withDefaults() Collaborators {
	if c.Decomposer == nil {
		c.Decomposer = DefaultDecomposer{}
	}
	if c.Executor == nil {
		c.Executor = DefaultExecutor{}
	}
	if c.Assembler == nil {
		c.Assembler = DefaultAssembler{}
	}
	if c.Validator == nil {
		c.Validator = DefaultValidator{}
	}
	return c
}
