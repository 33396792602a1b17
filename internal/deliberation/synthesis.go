package deliberation

import "fmt"

// Framework is the phased implementation outline produced by synthesis.
type Framework struct {
	Phase1             string   `json:"phase_1"`
	Phase2             string   `json:"phase_2"`
	Phase3             string   `json:"phase_3"`
	ValidationApproach string   `json:"validation_approach"`
	RiskMitigation     string   `json:"risk_mitigation"`
	SuccessMetrics     []string `json:"success_metrics"`
}

// Synthesis merges the discussion into one integrated position.
type Synthesis struct {
	SessionID           string    `json:"session_id"`
	Approach            string    `json:"synthesis_approach"`
	CorePrinciples      []string  `json:"core_principles"`
	Innovations         []string  `json:"innovative_elements"`
	BalancedApproaches  []string  `json:"balanced_approaches"`
	Priorities          []string  `json:"implementation_priorities"`
	ResolvedConflicts   []string  `json:"resolved_conflicts"`
	RemainingTensions   []string  `json:"remaining_tensions"`
	Framework           Framework `json:"integrated_framework"`
	SynthesisConfidence float64   `json:"synthesis_confidence"`
}

var implementationPriorities = []string{
	"Focus on agreed principles first",
	"Prototype disputed areas",
	"Integrate innovative insights",
}

// Synthesize is a pure function of the discussion.
func Synthesize(d *Discussion) *Synthesis {
	s := &Synthesis{
		SessionID:      d.SessionID,
		Approach:       "collaborative_integration",
		CorePrinciples: firstN(d.KeyAgreements, maxCorePrinciples),
		Innovations:    firstN(d.Insights, maxKeyInnovations),
		Priorities:     firstN(implementationPriorities, len(implementationPriorities)),
	}
	for _, dis := range firstN(d.KeyDisagreements, maxBalancedApproaches) {
		s.BalancedApproaches = append(s.BalancedApproaches, "Balance between different viewpoints on: "+dis)
	}
	resolved := firstN(d.KeyDisagreements, maxResolvedConflicts)
	for _, dis := range resolved {
		s.ResolvedConflicts = append(s.ResolvedConflicts, fmt.Sprintf("Resolved: %s through compromise approach", dis))
	}
	s.RemainingTensions = firstN(d.KeyDisagreements[len(resolved):], maxRemainingTensions)

	s.Framework = Framework{
		Phase1:             "Implement core agreed principles",
		Phase2:             "Address resolved conflicts through compromise",
		Phase3:             "Integrate innovative insights",
		ValidationApproach: "Iterative testing and feedback",
		RiskMitigation:     "Prototype disputed areas first",
		SuccessMetrics: []string{
			"Stakeholder satisfaction",
			"Technical feasibility validation",
			"Performance benchmarks met",
		},
	}
	s.SynthesisConfidence = synthesisConfidence(len(s.CorePrinciples), len(s.RemainingTensions), len(s.ResolvedConflicts))
	return s
}

// synthesisConfidence averages three factors: principle coverage, absence
// of remaining tensions and conflict resolution.
func synthesisConfidence(principles, tensions, resolved int) float64 {
	p := min(1.0, float64(principles)/3)
	t := max(0.0, 1-float64(tensions)/5)
	r := min(1.0, float64(resolved)/3)
	return (p + t + r) / 3
}
