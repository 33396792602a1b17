package orchestrator

import "fmt"

// Phase identifies a project workflow phase.
type Phase int

const (
	PhaseCreated Phase = iota
	PhaseRequirementsAnalysis
	PhaseArchitectureDesign
	PhaseTaskDecomposition
	PhaseImplementation
	PhaseQualityAssurance
	PhaseOutputAssembly
	PhaseFinalValidation
	PhaseCompleted
	PhaseFailed
)

var phaseNames = [...]string{
	"created",
	"requirements_analysis",
	"architecture_design",
	"task_decomposition",
	"implementation",
	"quality_assurance",
	"output_assembly",
	"final_validation",
	"completed",
	"failed",
}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// ParsePhase returns the phase named s.
func ParsePhase(s string) (Phase, error) {
	for i, name := range phaseNames {
		if name == s {
			return Phase(i), nil
		}
	}
	return 0, fmt.Errorf("orchestrator: unknown phase %q", s)
}

// IsTerminal reports whether p is completed or failed.
func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// WorkflowPhases returns the seven working phases in execution order.
func WorkflowPhases() []Phase {
	return []Phase{
		PhaseRequirementsAnalysis,
		PhaseArchitectureDesign,
		PhaseTaskDecomposition,
		PhaseImplementation,
		PhaseQualityAssurance,
		PhaseOutputAssembly,
		PhaseFinalValidation,
	}
}

// Progress returns the completion percentage for a project in phase p:
// the 0-based index among the workflow phases over seven, 100 once
// completed and 0 once failed.
func Progress(p Phase) float64 {
	switch {
	case p == PhaseCompleted:
		return 100
	case p == PhaseFailed, p <= PhaseCreated:
		return 0
	case p <= PhaseFinalValidation:
		return float64(p-PhaseRequirementsAnalysis) / float64(len(WorkflowPhases())) * 100
	default:
		return 0
	}
}

// Granular activity labels recorded in store.Project.Status.
const (
	StatusCreated               = "created"
	StatusAnalyzingRequirements = "analyzing_requirements"
	StatusRequirementsAnalyzed  = "requirements_analyzed"
	StatusDesigningArchitecture = "designing_architecture"
	StatusArchitectureDesigned  = "architecture_designed"
	StatusDecomposingTasks      = "decomposing_tasks"
	StatusImplementing          = "implementing"
	StatusTesting               = "testing"
	StatusAssembling            = "assembling"
	StatusValidating            = "validating"
	StatusCompleted             = "completed"
	StatusFailed                = "failed"
)
