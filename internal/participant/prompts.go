package participant

import (
	"encoding/json"
	"fmt"
	"strings"
)

func analysisPrompt(p Profile, problem Problem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "As a %s expert, please analyze the following problem:\n\n", p.Specialization)
	fmt.Fprintf(&b, "Problem: %s\n\n", problem.Description)
	fmt.Fprintf(&b, "Context: %s\n\n", render(problem.Context))
	b.WriteString("Please provide your analysis focusing on your area of expertise.")
	return b.String()
}

func discussionPrompt(p Profile, in DiscussionInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are participating in a collaborative discussion as a %s expert.\n\n", p.Specialization)
	fmt.Fprintf(&b, "Discussion Context: %s\n", render(map[string]any{
		"session_id":   in.SessionID,
		"round_number": in.Round,
	}))
	fmt.Fprintf(&b, "Previous Context: %s\n\n", render(in.Previous))
	b.WriteString("Please provide your contribution to this discussion, including:\n")
	b.WriteString("- Your perspective on the current discussion\n")
	b.WriteString("- Points of agreement with other participants\n")
	b.WriteString("- Points of disagreement or concern\n")
	b.WriteString("- Suggestions for improvement or alternative approaches\n")
	b.WriteString("- Questions that need to be addressed")
	return b.String()
}

func votePrompt(p Profile, synthesis, proposal any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "As a %s expert, please evaluate the following proposed decision:\n\n", p.Specialization)
	fmt.Fprintf(&b, "Synthesis Results: %s\n", render(synthesis))
	fmt.Fprintf(&b, "Proposed Decision: %s\n\n", render(proposal))
	b.WriteString("Please provide your consensus input including:\n")
	b.WriteString("- Whether you agree with the proposed decision (yes/no)\n")
	b.WriteString("- Your confidence level in this decision (0-1)\n")
	b.WriteString("- Reasons for your support or concerns\n")
	b.WriteString("- Suggested modifications if any\n")
	b.WriteString("- Critical issues that must be addressed")
	return b.String()
}

// render formats a prompt payload as indented JSON, falling back to %v for
// values that cannot be marshalled.
func render(v any) string {
	if v == nil {
		return "{}"
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
