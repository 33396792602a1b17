package deliberation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dusk-indust/hive/internal/participant"
)

// Fixed synthesis areas handed to the synthesizer.
var synthesisAreas = []string{
	"Resolve conflicting viewpoints",
	"Integrate multiple insights",
	"Balance agreed principles with disputed details",
}

// Discussion is the outcome of the discussion stage.
type Discussion struct {
	SessionID        string         `json:"session_id"`
	Rounds           []*RoundResult `json:"rounds"`
	EarlyExit        bool           `json:"early_exit"`
	KeyAgreements    []string       `json:"key_agreements"`
	KeyDisagreements []string       `json:"key_disagreements"`
	Insights         []string       `json:"emerging_insights"`
	SynthesisAreas   []string       `json:"synthesis_areas"`
}

// Coordinator runs up to Settings.DiscussionRounds discussion rounds,
// stopping early when enough members agree and nobody disagrees.
type Coordinator struct {
	engine   *RoundEngine
	settings Settings
	logger   *slog.Logger
}

// NewCoordinator creates a Coordinator that runs rounds on engine.
func NewCoordinator(engine *RoundEngine, settings Settings, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{engine: engine, settings: settings.withDefaults(), logger: logger}
}

// Run executes the discussion. Round one sees the individual analyses;
// later rounds see the analyses plus digests of every earlier round.
func (c *Coordinator) Run(ctx context.Context, sessionID string, members []Member, analyses []AnalysisOutcome, observe RoundObserver) (*Discussion, error) {
	if len(members) == 0 {
		return nil, ErrNoParticipants
	}
	d := &Discussion{SessionID: sessionID}
	digest := analysisDigest(analyses)

	var previous any = digest
	for round := 1; round <= c.settings.DiscussionRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("deliberation: discussion round %d: %w", round, err)
		}
		rr, err := c.engine.Discuss(ctx, round, members, participant.DiscussionInput{
			SessionID: sessionID,
			Previous:  previous,
		})
		if err != nil {
			return nil, err
		}
		d.Rounds = append(d.Rounds, rr)
		if observe != nil {
			observe(ctx, rr)
		}
		c.logger.Info("discussion round complete",
			"session", sessionID,
			"round", round,
			"agreements", rr.Agreements,
			"disagreements", rr.Disagreements,
		)

		if rr.Agreements >= c.settings.EarlyExitAgreements && rr.Disagreements == 0 {
			d.EarlyExit = true
			break
		}
		previous = map[string]any{
			"previous_analyses": digest,
			"previous_rounds":   roundDigests(d.Rounds),
		}
	}

	summarize(d)
	return d, nil
}

func summarize(d *Discussion) {
	var agreements, disagreements, improvements, challenges []string
	for _, rr := range d.Rounds {
		agreements = append(agreements, rr.AgreementPoints...)
		disagreements = append(disagreements, rr.DisagreementPoints...)
		improvements = append(improvements, rr.Improvements...)
		challenges = append(challenges, rr.Challenges...)
	}
	d.KeyAgreements = topUnique(agreements, maxKeyThemes)
	d.KeyDisagreements = topUnique(disagreements, maxKeyThemes)
	d.Insights = topUnique(append(improvements, challenges...), maxInsights)
	d.SynthesisAreas = firstN(synthesisAreas, len(synthesisAreas))
}

func analysisDigest(analyses []AnalysisOutcome) map[string]any {
	out := make(map[string]any, len(analyses))
	for _, a := range analyses {
		if a.Analysis == nil {
			out[a.Participant] = map[string]any{"error": a.Failure, "confidence": 0.0}
			continue
		}
		out[a.Participant] = map[string]any{
			"analysis":        a.Analysis.Text,
			"key_points":      a.Analysis.KeyPoints,
			"recommendations": a.Analysis.Recommendations,
			"concerns":        a.Analysis.Concerns,
			"confidence":      a.Analysis.Confidence,
		}
	}
	return out
}

func roundDigests(rounds []*RoundResult) []map[string]any {
	out := make([]map[string]any, 0, len(rounds))
	for _, rr := range rounds {
		contributions := make(map[string]string, len(rr.Outcomes))
		for _, o := range rr.Outcomes {
			if o.Contribution != nil {
				contributions[o.Participant] = o.Contribution.Text
			}
		}
		out = append(out, map[string]any{
			"round_number":        rr.Number,
			"agreements":          rr.Agreements,
			"disagreements":       rr.Disagreements,
			"agreement_points":    rr.AgreementPoints,
			"disagreement_points": rr.DisagreementPoints,
			"challenges":          rr.Challenges,
			"improvements":        rr.Improvements,
			"contributions":       contributions,
		})
	}
	return out
}
