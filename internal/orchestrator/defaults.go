package orchestrator

import (
	"context"

	"github.com/dusk-indust/hive/internal/store"
)

// DefaultDecomposer returns the standard five-task plan.
type DefaultDecomposer struct{}

func (DefaultDecomposer) Decompose(ctx context.Context, _ *store.Project, _, _ any) ([]PlannedTask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []PlannedTask{
		{
			Name:              "Setup Project Structure",
			Type:              "project_setup",
			Description:       "Create project directory structure and configuration",
			AgentType:         "devops_deployment",
			Priority:          1,
			EstimatedDuration: 30,
		},
		{
			Name:              "Generate Core Code",
			Type:              "code_generation",
			Description:       "Generate main application code based on requirements",
			AgentType:         "code_generation",
			Priority:          2,
			EstimatedDuration: 120,
			DependsOn:         []string{"Setup Project Structure"},
		},
		{
			Name:              "Create Tests",
			Type:              "test_generation",
			Description:       "Generate comprehensive test suite",
			AgentType:         "testing_qa",
			Priority:          3,
			EstimatedDuration: 90,
			DependsOn:         []string{"Generate Core Code"},
		},
		{
			Name:              "Generate Documentation",
			Type:              "documentation",
			Description:       "Create project documentation",
			AgentType:         "documentation",
			Priority:          4,
			EstimatedDuration: 60,
			DependsOn:         []string{"Generate Core Code"},
		},
		{
			Name:              "Security Review",
			Type:              "security_analysis",
			Description:       "Perform security analysis and hardening",
			AgentType:         "security_agent",
			Priority:          5,
			EstimatedDuration: 45,
			DependsOn:         []string{"Generate Core Code"},
		},
	}, nil
}

// DefaultExecutor marks every task completed and reports a passing QA run.
type DefaultExecutor struct{}

func (DefaultExecutor) ExecuteTasks(ctx context.Context, _ *store.Project, tasks []store.Task) (*ExecutionReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report := &ExecutionReport{
		TotalTasks:     len(tasks),
		CompletedTasks: len(tasks),
		OverallStatus:  "completed",
		ExecutionTime:  300,
		Results:        make([]TaskResult, 0, len(tasks)),
	}
	for _, t := range tasks {
		duration := 60
		switch d := t.Input["estimated_duration"].(type) {
		case int:
			duration = d
		case float64: // decoded from JSON
			duration = int(d)
		}
		agent := t.AgentType
		if agent == "" {
			agent = "unknown"
		}
		report.Results = append(report.Results, TaskResult{
			TaskID:    t.ID,
			Name:      t.Name,
			Status:    "completed",
			Output:    "Generated output for " + t.Name,
			Duration:  duration,
			AgentUsed: agent,
		})
	}
	return report, nil
}

func (DefaultExecutor) RunQualityAssurance(ctx context.Context, _ *store.Project, _ *ExecutionReport) (*QAReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &QAReport{
		Status:           "passed",
		UnitTests:        TestSuite{Total: 25, Passed: 24, Failed: 1, Coverage: 92.5},
		IntegrationTests: TestSuite{Total: 8, Passed: 8, Coverage: 85.0},
		Vulnerabilities:  2,
		Severity:         "low",
		MaintainIndex:    85,
		Recommendations: []string{
			"Fix failing unit test",
			"Address security recommendations",
			"Add more integration test coverage",
		},
		OverallScore:       8.5,
		ReadyForDeployment: true,
	}, nil
}

// DefaultAssembler lays out a web application structure.
type DefaultAssembler struct{}

func (DefaultAssembler) Assemble(ctx context.Context, _ *store.Project, _ *ExecutionReport, qa *QAReport) (*Assembly, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var coverage float64
	if qa != nil {
		coverage = qa.UnitTests.Coverage
	}
	return &Assembly{
		Status:      "completed",
		ProjectType: "web_application",
		Structure: map[string][]string{
			"src/":    {"main.py", "api/", "models/", "utils/"},
			"tests/":  {"test_main.py", "test_api.py", "test_models.py"},
			"docs/":   {"README.md", "API.md", "DEPLOYMENT.md"},
			"config/": {"requirements.txt", "Dockerfile", "docker-compose.yml"},
		},
		Deliverables: []string{
			"Complete source code",
			"Comprehensive test suite",
			"Documentation package",
			"Deployment configuration",
			"Security scan report",
			"Performance benchmarks",
		},
		CodeCoverage:    coverage,
		DeploymentReady: true,
	}, nil
}

// DefaultValidator approves any assembly that is deployment ready.
type DefaultValidator struct{}

func (DefaultValidator) Validate(ctx context.Context, _ *store.Project, a *Assembly) (*ValidationReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ready := a != nil && a.DeploymentReady
	checks := []Check{
		{Name: "structure_complete", Passed: a != nil && len(a.Structure) > 0},
		{Name: "required_files_present", Passed: a != nil && len(a.Structure["docs/"]) > 0},
		{Name: "tests_passing", Passed: true},
		{Name: "documentation_complete", Passed: true},
		{Name: "security_approved", Passed: true},
		{Name: "performance_acceptable", Passed: true},
		{Name: "deployment_ready", Passed: ready},
	}
	report := &ValidationReport{
		Status:     "passed",
		Checks:     checks,
		FinalScore: 9.2,
		Approval:   "approved",
		Recommendations: []string{
			"Project meets all quality criteria",
			"Ready for production deployment",
			"Consider adding monitoring dashboard",
		},
		NextSteps: []string{
			"Deploy to staging environment",
			"Conduct user acceptance testing",
			"Plan production rollout",
		},
	}
	for _, c := range checks {
		if !c.Passed {
			report.Status = "failed"
			report.Approval = "rejected"
			break
		}
	}
	return report, nil
}
