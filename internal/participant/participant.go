// Package participant implements the reasoning units that take part in a
// deliberation. A Participant has three capabilities (analyze, discuss,
// vote); each one renders a role-specific prompt, sends it to a completion
// client and runs the best-effort extractor over the reply.
package participant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dusk-indust/hive/internal/completion"
)

// Op names the capability that failed.
type Op string

const (
	OpAnalyze Op = "analyze"
	OpDiscuss Op = "discuss"
	OpVote    Op = "vote"
)

// Error wraps a completion failure with the participant and capability.
// Callers in the round engine turn it into a zero-confidence disagreement.
type Error struct {
	Participant string
	Op          Op
	Err         error
}

func (e *Error) Error() string {
	return fmt.Sprintf("participant %s: %s: %v", e.Participant, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Problem is the input to Analyze.
type Problem struct {
	Description string
	Context     map[string]any
}

// Analysis is a participant's individual view of a problem.
type Analysis struct {
	Participant     string   `json:"participant"`
	Specialization  string   `json:"specialization"`
	Text            string   `json:"analysis"`
	Confidence      float64  `json:"confidence"`
	KeyPoints       []string `json:"key_points"`
	Recommendations []string `json:"recommendations"`
	Concerns        []string `json:"concerns"`
}

// DiscussionInput is the input to Discuss. Previous carries the individual
// analyses and digests of earlier rounds.
type DiscussionInput struct {
	SessionID string
	Round     int
	Previous  any
}

// Contribution is a participant's turn in one discussion round.
type Contribution struct {
	Participant   string   `json:"participant"`
	Text          string   `json:"contribution"`
	Agreements    []string `json:"agreements"`
	Disagreements []string `json:"disagreements"`
	Challenges    []string `json:"challenges"`
	Improvements  []string `json:"improvements"`
	Questions     []string `json:"questions"`
	Confidence    float64  `json:"confidence"`
}

// Agrees reports whether the contribution counts as an agreement: at least
// one agreement point and no disagreement point.
func (c *Contribution) Agrees() bool {
	return len(c.Agreements) > 0 && len(c.Disagreements) == 0
}

// Vote is a participant's evaluation of a proposed decision.
type Vote struct {
	Participant    string   `json:"participant"`
	Agreement      bool     `json:"agreement"`
	Confidence     float64  `json:"confidence"`
	SupportReasons []string `json:"support_reasons"`
	Concerns       []string `json:"concerns"`
	Modifications  []string `json:"suggested_modifications"`
	CriticalIssues []string `json:"critical_issues"`
	Text           string   `json:"full_response"`
}

// Participant is one role-parameterized reasoning unit.
type Participant struct {
	profile Profile
	client  completion.Client
	logger  *slog.Logger
}

// New creates a Participant for profile that completes prompts with client.
func New(profile Profile, client completion.Client, logger *slog.Logger) *Participant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Participant{
		profile: profile,
		client:  client,
		logger:  logger.With("participant", string(profile.Role)),
	}
}

// Name returns the participant's role name.
func (p *Participant) Name() string { return string(p.profile.Role) }

// Profile returns the participant's profile.
func (p *Participant) Profile() Profile { return p.profile }

// Analyze gives the participant's individual analysis of a problem.
func (p *Participant) Analyze(ctx context.Context, problem Problem) (*Analysis, error) {
	text, err := p.complete(ctx, OpAnalyze, analysisPrompt(p.profile, problem))
	if err != nil {
		return nil, err
	}
	ex := Extract(text)
	p.logger.Debug("analysis complete", "confidence", ex.Confidence)
	return &Analysis{
		Participant:     p.Name(),
		Specialization:  p.profile.Specialization,
		Text:            text,
		Confidence:      ex.Confidence,
		KeyPoints:       ex.KeyPoints,
		Recommendations: ex.Recommendations,
		Concerns:        ex.Concerns,
	}, nil
}

// Discuss produces the participant's contribution to one discussion round.
func (p *Participant) Discuss(ctx context.Context, in DiscussionInput) (*Contribution, error) {
	text, err := p.complete(ctx, OpDiscuss, discussionPrompt(p.profile, in))
	if err != nil {
		return nil, err
	}
	ex := Extract(text)
	p.logger.Debug("discussion contribution", "round", in.Round, "agreements", len(ex.Agreements), "disagreements", len(ex.Disagreements))
	return &Contribution{
		Participant:   p.Name(),
		Text:          text,
		Agreements:    ex.Agreements,
		Disagreements: ex.Disagreements,
		Challenges:    ex.Challenges,
		Improvements:  ex.Improvements,
		Questions:     ex.Questions,
		Confidence:    ex.Confidence,
	}, nil
}

// Vote evaluates a proposed decision against the synthesis it came from.
// Both values are rendered as JSON inside the prompt.
func (p *Participant) Vote(ctx context.Context, synthesis, proposal any) (*Vote, error) {
	text, err := p.complete(ctx, OpVote, votePrompt(p.profile, synthesis, proposal))
	if err != nil {
		return nil, err
	}
	ex := Extract(text)
	p.logger.Debug("vote cast", "agreement", ex.Agreement, "confidence", ex.Confidence)
	return &Vote{
		Participant:    p.Name(),
		Agreement:      ex.Agreement,
		Confidence:     ex.Confidence,
		SupportReasons: ex.SupportReasons,
		Concerns:       ex.Concerns,
		Modifications:  ex.Modifications,
		CriticalIssues: ex.CriticalIssues,
		Text:           text,
	}, nil
}

func (p *Participant) complete(ctx context.Context, op Op, prompt string) (string, error) {
	text, err := p.client.Complete(ctx, p.profile.SystemPrompt, prompt)
	if err != nil {
		p.logger.Warn("completion failed", "op", string(op), "error", err)
		return "", &Error{Participant: p.Name(), Op: op, Err: err}
	}
	return text, nil
}
