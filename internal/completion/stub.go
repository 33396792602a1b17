package completion

import (
	"context"
	"strings"
)

// Stub is a deterministic Client that answers from canned replies chosen by
// keywords in the opening line of the user prompt. It is used when no API key
// is configured and in tests.
type Stub struct{}

var _ Client = Stub{}

// Complete returns the canned reply for the prompt's intent. It honours
// context cancellation but never fails otherwise.
func (Stub) Complete(ctx context.Context, _, user string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Backend: "stub", Err: err}
	}
	return StubReply(user), nil
}

// StubReply picks the canned reply for a user prompt.
func StubReply(user string) string {
	head := strings.ToLower(firstLine(user))
	switch {
	case head == "":
		return "No input provided."
	case strings.Contains(head, "analyze"):
		return stubAnalysis
	case strings.Contains(head, "discuss"), strings.Contains(head, "debate"):
		return stubDiscussion
	case strings.Contains(head, "consensus"), strings.Contains(head, "proposed decision"):
		return stubConsensus
	case strings.Contains(head, "code"):
		return stubCode
	default:
		return stubGeneric
	}
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

const stubAnalysis = `Analysis from my area of expertise:
1. Technical feasibility: the approach is sound and uses established patterns.
2. Implementation complexity: medium, components need careful coordination.
3. Resource requirements: two to three engineers over four to six weeks.
- Integration between subsystems is the main risk factor.
- Performance tuning will need dedicated time.
I recommend starting with a minimal viable slice and iterating with comprehensive tests.`

const stubDiscussion = `Thoughts on the current discussion:
- I agree the overall approach is well structured and scalable.
- Testing coverage should start on day one.
- We can improve error handling by specifying failure modes up front.
How will edge cases and error scenarios be handled?
What are the concrete performance targets?`

const stubConsensus = `Evaluation of the proposed decision:
Agreement: yes, I support moving forward with this proposal.
Confidence: 0.85
- The technical approach is validated because the prototypes covered the risky parts.
- I suggest adding explicit performance benchmarks.
- A post-deployment monitoring plan is essential.`

const stubCode = "```go\nfunc Process(in []byte) ([]byte, error) {\n\treturn in, nil\n}\n```\nThis skeleton can be extended to the concrete requirements."

const stubGeneric = `Summary: the request has been processed.
- Proceed with the proposed approach.
- Monitor progress and adjust as needed.`
