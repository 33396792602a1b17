package deliberation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresent_TypeTables(t *testing.T) {
	tests := []struct {
		typ           string
		consideration string
		criterion     string
	}{
		{TypeRequirementsAnalysis, "Functional requirements clarity", "Clear, unambiguous requirements"},
		{TypeArchitectureDesign, "Scalability requirements", "Scalable and maintainable design"},
		{TypeTest, "Evaluation criteria", "Objective evaluation"},
		{"budget_review", "General considerations", "Successful resolution"},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			p := Present(Request{Topic: "Topic", Type: tt.typ})
			assert.Equal(t, tt.consideration, p.KeyConsiderations[0])
			assert.Equal(t, tt.criterion, p.SuccessCriteria[0])
		})
	}
}

func TestPresent_ContextSummary(t *testing.T) {
	p := Present(Request{
		Topic: "Chat backend",
		Type:  TypeArchitectureDesign,
		Input: map[string]any{"requirements": strings.Repeat("x", 500)},
	})

	assert.True(t, strings.HasPrefix(p.ContextSummary, "Debate Topic: Chat backend\nType: architecture_design\nKey Data: {\"requirements\":\"xxx"))
	assert.True(t, strings.HasSuffix(p.ContextSummary, "..."))

	data := strings.TrimSuffix(strings.SplitN(p.ContextSummary, "Key Data: ", 2)[1], "...")
	assert.Len(t, data, summaryInputLimit)
}

func TestPresentation_Problem(t *testing.T) {
	p := Present(Request{Topic: "T", Type: TypeTest, Input: map[string]any{"k": "v"}})
	prob := p.Problem()

	assert.Equal(t, p.ContextSummary, prob.Description)
	assert.Equal(t, "T", prob.Context["topic"])
	assert.Equal(t, map[string]any{"k": "v"}, prob.Context["input"])
}
