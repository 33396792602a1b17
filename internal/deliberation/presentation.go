package deliberation

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/dusk-indust/hive/internal/participant"
)

// Deliberation types with dedicated considerations and criteria.
const (
	TypeRequirementsAnalysis = "requirements_analysis"
	TypeArchitectureDesign   = "architecture_design"
	TypeTest                 = "test"
)

const summaryInputLimit = 200

var keyConsiderations = map[string][]string{
	TypeRequirementsAnalysis: {
		"Functional requirements clarity",
		"Non-functional requirements",
		"Stakeholder needs",
		"Technical constraints",
		"Business objectives",
	},
	TypeArchitectureDesign: {
		"Scalability requirements",
		"Performance considerations",
		"Security requirements",
		"Maintainability",
		"Technology selection",
	},
	TypeTest: {
		"Evaluation criteria",
		"Comparison factors",
		"Trade-offs",
		"Implementation feasibility",
	},
}

var successCriteria = map[string][]string{
	TypeRequirementsAnalysis: {
		"Clear, unambiguous requirements",
		"Complete coverage of stakeholder needs",
		"Feasible implementation plan",
		"Risk mitigation strategies",
	},
	TypeArchitectureDesign: {
		"Scalable and maintainable design",
		"Appropriate technology choices",
		"Clear component interfaces",
		"Performance and security considerations",
	},
	TypeTest: {
		"Objective evaluation",
		"Comprehensive analysis",
		"Clear recommendation",
		"Implementation guidance",
	},
}

// Presentation frames the topic for the participants.
type Presentation struct {
	Topic             string         `json:"topic"`
	Type              string         `json:"type"`
	ContextSummary    string         `json:"context_summary"`
	KeyConsiderations []string       `json:"key_considerations"`
	SuccessCriteria   []string       `json:"success_criteria"`
	Input             map[string]any `json:"input"`
}

// Present builds the presentation for a request. Unknown types get a
// generic consideration and criterion.
func Present(req Request) *Presentation {
	considerations, ok := keyConsiderations[req.Type]
	if !ok {
		considerations = []string{"General considerations"}
	}
	criteria, ok := successCriteria[req.Type]
	if !ok {
		criteria = []string{"Successful resolution"}
	}
	return &Presentation{
		Topic:             req.Topic,
		Type:              req.Type,
		ContextSummary:    fmt.Sprintf("Debate Topic: %s\nType: %s\nKey Data: %s...", req.Topic, req.Type, truncate(renderInput(req.Input), summaryInputLimit)),
		KeyConsiderations: slices.Clone(considerations),
		SuccessCriteria:   slices.Clone(criteria),
		Input:             req.Input,
	}
}

// Problem converts the presentation into the input of an analysis call.
func (p *Presentation) Problem() participant.Problem {
	return participant.Problem{
		Description: p.ContextSummary,
		Context: map[string]any{
			"topic":              p.Topic,
			"type":               p.Type,
			"key_considerations": p.KeyConsiderations,
			"success_criteria":   p.SuccessCriteria,
			"input":              p.Input,
		},
	}
}

func renderInput(in map[string]any) string {
	if len(in) == 0 {
		return "{}"
	}
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Sprint(in)
	}
	return string(b)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
