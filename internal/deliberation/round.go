// Package deliberation runs structured multi-participant deliberation
// sessions: individual analysis, bounded discussion, synthesis of the
// discussion into a framework, and iterative consensus voting with a
// majority fallback.
package deliberation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dusk-indust/hive/internal/participant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/dusk-indust/hive/internal/deliberation")

var (
	// ErrNoParticipants is returned when a round is started without members.
	ErrNoParticipants = errors.New("deliberation: no participants")

	// ErrRoundBudgetExceeded reports a voting loop that ran outside its
	// configured round budget.
	ErrRoundBudgetExceeded = errors.New("deliberation: round budget exceeded")

	errEmptyReply = errors.New("participant returned no result")
)

// Member is a deliberation participant. *participant.Participant satisfies it.
type Member interface {
	Name() string
	Analyze(ctx context.Context, problem participant.Problem) (*participant.Analysis, error)
	Discuss(ctx context.Context, in participant.DiscussionInput) (*participant.Contribution, error)
	Vote(ctx context.Context, synthesis, proposal any) (*participant.Vote, error)
}

// RoundKind distinguishes discussion rounds from voting rounds.
type RoundKind string

const (
	RoundDiscussion RoundKind = "discussion"
	RoundConsensus  RoundKind = "consensus"
)

// Outcome is one participant's result in a round. A failed or timed-out
// call is recorded as a disagreement with zero confidence.
type Outcome struct {
	Participant  string                    `json:"participant"`
	Agreement    bool                      `json:"agreement"`
	Confidence   float64                   `json:"confidence"`
	Failure      string                    `json:"error,omitempty"`
	Contribution *participant.Contribution `json:"contribution,omitempty"`
	Vote         *participant.Vote         `json:"vote,omitempty"`

	Err error `json:"-"`
}

// RoundResult aggregates the outcomes of one round. Agreements plus
// Disagreements always equals the number of outcomes.
type RoundResult struct {
	Kind           RoundKind `json:"kind"`
	Number         int       `json:"round_number"`
	Outcomes       []Outcome `json:"outcomes"`
	Agreements     int       `json:"agreements"`
	Disagreements  int       `json:"disagreements"`
	ConsensusScore float64   `json:"consensus_score"`

	AgreementPoints    []string `json:"agreement_points,omitempty"`
	DisagreementPoints []string `json:"disagreement_points,omitempty"`
	Challenges         []string `json:"challenges,omitempty"`
	Improvements       []string `json:"improvements,omitempty"`

	SupportReasons []string `json:"support_reasons,omitempty"`
	Concerns       []string `json:"concerns,omitempty"`
	Modifications  []string `json:"suggested_modifications,omitempty"`
	CriticalIssues []string `json:"critical_issues,omitempty"`
}

// Participants returns the number of outcomes in the round.
func (r *RoundResult) Participants() int { return len(r.Outcomes) }

// AnalysisOutcome is one participant's individual analysis, or the error
// that replaced it.
type AnalysisOutcome struct {
	Participant string                `json:"participant"`
	Analysis    *participant.Analysis `json:"analysis,omitempty"`
	Failure     string                `json:"error,omitempty"`

	Err error `json:"-"`
}

// Confidence returns the analysis confidence, zero for a failed analysis.
func (a AnalysisOutcome) Confidence() float64 {
	if a.Analysis == nil {
		return 0
	}
	return a.Analysis.Confidence
}

// RoundObserver is notified after each round is aggregated.
type RoundObserver func(ctx context.Context, round *RoundResult)

// RoundEngine fans a request out to every member concurrently, waits for
// all of them and aggregates the results in name order. A slow or failing
// member never aborts the round.
type RoundEngine struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewRoundEngine creates a RoundEngine that bounds each member call by
// timeout. A non-positive timeout leaves calls bounded only by ctx.
func NewRoundEngine(timeout time.Duration, logger *slog.Logger) *RoundEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoundEngine{timeout: timeout, logger: logger}
}

// Analyze collects an individual analysis from every member.
func (e *RoundEngine) Analyze(ctx context.Context, members []Member, problem participant.Problem) ([]AnalysisOutcome, error) {
	if len(members) == 0 {
		return nil, ErrNoParticipants
	}
	ctx, span := tracer.Start(ctx, "deliberation.analysis")
	defer span.End()

	ordered := sortMembers(members)
	results := fanOut(ctx, e.timeout, ordered, func(ctx context.Context, m Member) (*participant.Analysis, error) {
		return m.Analyze(ctx, problem)
	})

	out := make([]AnalysisOutcome, len(ordered))
	failed := 0
	for i, res := range results {
		name := ordered[i].Name()
		if res.err != nil {
			failed++
			e.logger.Warn("analysis failed", "participant", name, "error", res.err)
			out[i] = AnalysisOutcome{Participant: name, Failure: res.err.Error(), Err: res.err}
			continue
		}
		out[i] = AnalysisOutcome{Participant: name, Analysis: res.value}
	}
	span.SetAttributes(attribute.Int("participants", len(ordered)), attribute.Int("failed", failed))
	return out, nil
}

// Discuss runs one discussion round. A member agrees when its contribution
// has agreement points and no disagreement points.
func (e *RoundEngine) Discuss(ctx context.Context, number int, members []Member, in participant.DiscussionInput) (*RoundResult, error) {
	if len(members) == 0 {
		return nil, ErrNoParticipants
	}
	ctx, span := tracer.Start(ctx, "deliberation.discussion_round",
		trace.WithAttributes(attribute.Int("round", number)))
	defer span.End()

	in.Round = number
	ordered := sortMembers(members)
	results := fanOut(ctx, e.timeout, ordered, func(ctx context.Context, m Member) (*participant.Contribution, error) {
		return m.Discuss(ctx, in)
	})

	rr := &RoundResult{Kind: RoundDiscussion, Number: number, Outcomes: make([]Outcome, 0, len(ordered))}
	var agreePts, disagreePts, challenges, improvements []string
	for i, res := range results {
		name := ordered[i].Name()
		if res.err != nil {
			e.logger.Warn("discussion call failed", "participant", name, "round", number, "error", res.err)
			rr.record(failedOutcome(name, res.err))
			continue
		}
		c := res.value
		rr.record(Outcome{
			Participant:  name,
			Agreement:    c.Agrees(),
			Confidence:   c.Confidence,
			Contribution: c,
		})
		agreePts = append(agreePts, c.Agreements...)
		disagreePts = append(disagreePts, c.Disagreements...)
		challenges = append(challenges, c.Challenges...)
		improvements = append(improvements, c.Improvements...)
	}
	rr.AgreementPoints = topUnique(agreePts, maxRoundItems)
	rr.DisagreementPoints = topUnique(disagreePts, maxRoundItems)
	rr.Challenges = topUnique(challenges, maxRoundItems)
	rr.Improvements = topUnique(improvements, maxRoundItems)
	rr.ConsensusScore = float64(rr.Agreements) / float64(len(ordered))

	span.SetAttributes(attribute.Int("agreements", rr.Agreements), attribute.Int("disagreements", rr.Disagreements))
	return rr, nil
}

// Vote runs one voting round on proposal. The round's consensus score is
// the fraction of members whose vote carries an agreement signal.
func (e *RoundEngine) Vote(ctx context.Context, number int, members []Member, synthesis, proposal any) (*RoundResult, error) {
	if len(members) == 0 {
		return nil, ErrNoParticipants
	}
	ctx, span := tracer.Start(ctx, "deliberation.consensus_round",
		trace.WithAttributes(attribute.Int("round", number)))
	defer span.End()

	ordered := sortMembers(members)
	results := fanOut(ctx, e.timeout, ordered, func(ctx context.Context, m Member) (*participant.Vote, error) {
		return m.Vote(ctx, synthesis, proposal)
	})

	rr := &RoundResult{Kind: RoundConsensus, Number: number, Outcomes: make([]Outcome, 0, len(ordered))}
	var support, concerns, mods, critical []string
	for i, res := range results {
		name := ordered[i].Name()
		if res.err != nil {
			e.logger.Warn("vote failed", "participant", name, "round", number, "error", res.err)
			rr.record(failedOutcome(name, res.err))
			continue
		}
		v := res.value
		rr.record(Outcome{
			Participant: name,
			Agreement:   v.Agreement,
			Confidence:  v.Confidence,
			Vote:        v,
		})
		support = append(support, v.SupportReasons...)
		concerns = append(concerns, v.Concerns...)
		mods = append(mods, v.Modifications...)
		critical = append(critical, v.CriticalIssues...)
	}
	rr.SupportReasons = topUnique(support, maxRoundItems)
	rr.Concerns = topUnique(concerns, maxRoundItems)
	rr.Modifications = topUnique(mods, maxRoundItems)
	rr.CriticalIssues = topUnique(critical, maxRoundItems)
	rr.ConsensusScore = float64(rr.Agreements) / float64(len(ordered))

	span.SetAttributes(
		attribute.Int("agreements", rr.Agreements),
		attribute.Int("disagreements", rr.Disagreements),
		attribute.Float64("consensus_score", rr.ConsensusScore),
	)
	return rr, nil
}

func (r *RoundResult) record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	if o.Agreement {
		r.Agreements++
	} else {
		r.Disagreements++
	}
}

func failedOutcome(name string, err error) Outcome {
	return Outcome{Participant: name, Failure: err.Error(), Err: err}
}

type callResult[T any] struct {
	value T
	err   error
}

// fanOut calls every member concurrently and returns results indexed like
// members. Goroutines never return an error to the group, so one failure
// does not cancel its siblings.
func fanOut[T any](ctx context.Context, timeout time.Duration, members []Member, call func(context.Context, Member) (*T, error)) []callResult[*T] {
	results := make([]callResult[*T], len(members))
	var g errgroup.Group
	for i, m := range members {
		g.Go(func() error {
			results[i] = invoke(ctx, timeout, m, call)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// invoke runs a single member call under its own deadline. The call runs
// in a separate goroutine so a member that ignores ctx still times out.
func invoke[T any](ctx context.Context, timeout time.Duration, m Member, call func(context.Context, Member) (*T, error)) callResult[*T] {
	cctx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		cctx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	done := make(chan callResult[*T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult[*T]{err: fmt.Errorf("participant %s panicked: %v", m.Name(), r)}
			}
		}()
		v, err := call(cctx, m)
		if err == nil && v == nil {
			err = fmt.Errorf("participant %s: %w", m.Name(), errEmptyReply)
		}
		done <- callResult[*T]{value: v, err: err}
	}()

	select {
	case res := <-done:
		return res
	case <-cctx.Done():
		return callResult[*T]{err: fmt.Errorf("participant %s: %w", m.Name(), cctx.Err())}
	}
}

func sortMembers(members []Member) []Member {
	ordered := slices.Clone(members)
	slices.SortStableFunc(ordered, func(a, b Member) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return ordered
}

// topUnique returns the first n distinct non-empty items in order.
func topUnique(items []string, n int) []string {
	if len(items) == 0 || n <= 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, it := range items {
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
		if len(out) == n {
			break
		}
	}
	return out
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		items = items[:n]
	}
	return slices.Clone(items)
}
