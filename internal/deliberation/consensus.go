package deliberation

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Plan is a proposal's implementation plan: the synthesis framework plus
// the modifications folded in from failed votes.
type Plan struct {
	Framework
	Modifications []string `json:"modifications,omitempty"`
}

// Proposal is the decision the participants vote on.
type Proposal struct {
	Approach                string   `json:"approach"`
	CorePrinciples          []string `json:"core_principles"`
	KeyInnovations          []string `json:"key_innovations"`
	ImplementationPlan      Plan     `json:"implementation_plan"`
	SuccessCriteria         []string `json:"success_criteria"`
	RiskMitigation          []string `json:"risk_mitigation"`
	CriticalIssuesAddressed []string `json:"critical_issues_addressed,omitempty"`
	Strengths               []string `json:"strengths,omitempty"`
}

// InitialProposal builds the first proposal from a synthesis.
func InitialProposal(s *Synthesis) Proposal {
	fw := s.Framework
	fw.SuccessMetrics = slices.Clone(fw.SuccessMetrics)
	return Proposal{
		Approach:           "Integrated solution based on collective analysis",
		CorePrinciples:     slices.Clone(s.CorePrinciples),
		KeyInnovations:     slices.Clone(s.Innovations),
		ImplementationPlan: Plan{Framework: fw},
		SuccessCriteria: []string{
			"Technical feasibility validated",
			"Stakeholder requirements met",
			"Quality standards achieved",
			"Resource constraints respected",
		},
		RiskMitigation: []string{
			"Prototype critical components",
			"Iterative development approach",
			"Regular stakeholder feedback",
			"Continuous quality monitoring",
		},
	}
}

// Revise returns a copy of p with the feedback of a failed voting round
// folded in. Empty feedback lists leave the previous values in place.
func (p Proposal) Revise(rr *RoundResult) Proposal {
	next := p.clone()
	if len(rr.Modifications) > 0 {
		next.ImplementationPlan.Modifications = firstN(rr.Modifications, maxFoldedModifications)
	}
	if len(rr.CriticalIssues) > 0 {
		next.CriticalIssuesAddressed = firstN(rr.CriticalIssues, maxFoldedCritical)
	}
	if len(rr.SupportReasons) > 0 {
		next.Strengths = firstN(rr.SupportReasons, maxFoldedSupport)
	}
	return next
}

func (p Proposal) clone() Proposal {
	p.CorePrinciples = slices.Clone(p.CorePrinciples)
	p.KeyInnovations = slices.Clone(p.KeyInnovations)
	p.ImplementationPlan.SuccessMetrics = slices.Clone(p.ImplementationPlan.SuccessMetrics)
	p.ImplementationPlan.Modifications = slices.Clone(p.ImplementationPlan.Modifications)
	p.SuccessCriteria = slices.Clone(p.SuccessCriteria)
	p.RiskMitigation = slices.Clone(p.RiskMitigation)
	p.CriticalIssuesAddressed = slices.Clone(p.CriticalIssuesAddressed)
	p.Strengths = slices.Clone(p.Strengths)
	return p
}

// Fallback is the majority decision recorded when no round reaches the
// consensus threshold.
type Fallback struct {
	Approach         string   `json:"approach"`
	PrimarySolution  Proposal `json:"primary_solution"`
	DissentingViews  []string `json:"dissenting_views"`
	UnresolvedIssues []string `json:"unresolved_issues"`
	Recommendation   string   `json:"recommendation"`
}

// Guidance is the implementation guidance attached to a decision. Which
// fields are set depends on whether consensus was reached.
type Guidance struct {
	ImplementationApproach *Plan    `json:"implementation_approach,omitempty"`
	KeyModifications       []string `json:"key_modifications,omitempty"`
	SuccessMetrics         []string `json:"success_metrics,omitempty"`
	RiskMitigation         []string `json:"risk_mitigation,omitempty"`
	ValidationStrategy     []string `json:"validation_strategy,omitempty"`
	NextSteps              []string `json:"next_steps,omitempty"`

	Approach   string `json:"approach,omitempty"`
	Phase1     string `json:"phase_1,omitempty"`
	Phase2     string `json:"phase_2,omitempty"`
	Phase3     string `json:"phase_3,omitempty"`
	Monitoring string `json:"monitoring,omitempty"`
}

// ConsensusResult is the outcome of the consensus stage.
type ConsensusResult struct {
	SessionID          string         `json:"session_id"`
	ConsensusReached   bool           `json:"consensus_reached"`
	ConfidenceScore    float64        `json:"confidence_score"`
	Rounds             []*RoundResult `json:"consensus_rounds"`
	Proposal           Proposal       `json:"proposal"`
	Fallback           *Fallback      `json:"fallback,omitempty"`
	Reasoning          string         `json:"reasoning"`
	Guidance           Guidance       `json:"implementation_guidance"`
	AreasOfAgreement   []string       `json:"areas_of_agreement,omitempty"`
	DissentingOpinions []string       `json:"dissenting_opinions,omitempty"`
	DecisionRationale  string         `json:"decision_rationale"`
}

// FinalDecision returns the accepted proposal, or the fallback when
// consensus was not reached.
func (r *ConsensusResult) FinalDecision() any {
	if r.Fallback != nil {
		return r.Fallback
	}
	return r.Proposal
}

// ConsensusEngine runs voting rounds until the threshold is met or the
// round budget is spent.
type ConsensusEngine struct {
	engine   *RoundEngine
	settings Settings
	logger   *slog.Logger
}

// NewConsensusEngine creates a ConsensusEngine that runs rounds on engine.
func NewConsensusEngine(engine *RoundEngine, settings Settings, logger *slog.Logger) *ConsensusEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsensusEngine{engine: engine, settings: settings.withDefaults(), logger: logger}
}

// Build drives voting on proposals derived from s. The proposal that
// reaches the threshold is returned unrevised; otherwise each failed round
// revises it and the result falls back to a majority decision.
func (c *ConsensusEngine) Build(ctx context.Context, sessionID string, members []Member, s *Synthesis, observe RoundObserver) (*ConsensusResult, error) {
	if len(members) == 0 {
		return nil, ErrNoParticipants
	}
	res := &ConsensusResult{SessionID: sessionID}
	proposal := InitialProposal(s)

	for round := 1; round <= c.settings.ConsensusRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("deliberation: consensus round %d: %w", round, err)
		}
		rr, err := c.engine.Vote(ctx, round, members, s, proposal)
		if err != nil {
			return nil, err
		}
		res.Rounds = append(res.Rounds, rr)
		if observe != nil {
			observe(ctx, rr)
		}
		c.logger.Info("consensus round complete",
			"session", sessionID,
			"round", round,
			"score", rr.ConsensusScore,
			"threshold", c.settings.ConsensusThreshold,
		)

		if rr.ConsensusScore >= c.settings.ConsensusThreshold {
			res.ConsensusReached = true
			break
		}
		proposal = proposal.Revise(rr)
	}
	if len(res.Rounds) == 0 || len(res.Rounds) > c.settings.ConsensusRounds {
		return nil, fmt.Errorf("%w: %d rounds, budget %d", ErrRoundBudgetExceeded, len(res.Rounds), c.settings.ConsensusRounds)
	}

	res.Proposal = proposal
	if res.ConsensusReached {
		finalizeConsensus(res, len(members))
	} else {
		finalizeFallback(res)
	}
	return res, nil
}

func finalizeConsensus(res *ConsensusResult, participants int) {
	last := res.Rounds[len(res.Rounds)-1]
	res.ConfidenceScore = last.ConsensusScore

	var support, mods []string
	for _, rr := range res.Rounds {
		support = append(support, rr.SupportReasons...)
		mods = append(mods, rr.Modifications...)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Consensus reached with %d/%d participants in agreement.", last.Agreements, participants)
	if factors := topUnique(support, maxSupportingFactors); len(factors) > 0 {
		fmt.Fprintf(&b, " Key supporting factors: %s.", strings.Join(factors, ", "))
	}
	res.Reasoning = b.String()

	plan := res.Proposal.clone().ImplementationPlan
	res.Guidance = Guidance{
		ImplementationApproach: &plan,
		KeyModifications:       topUnique(mods, maxKeyModifications),
		SuccessMetrics:         slices.Clone(res.Proposal.SuccessCriteria),
		RiskMitigation:         slices.Clone(res.Proposal.RiskMitigation),
		ValidationStrategy: []string{
			"Prototype critical components",
			"Stakeholder feedback loops",
			"Iterative refinement",
			"Performance monitoring",
		},
		NextSteps: []string{
			"Detailed technical design",
			"Resource allocation planning",
			"Timeline development",
			"Risk assessment update",
		},
	}
	res.AreasOfAgreement = topUnique(support, maxAreasOfAgreement)
	res.DecisionRationale = "Consensus reached through structured debate and collaboration"
}

func finalizeFallback(res *ConsensusResult) {
	res.ConfidenceScore = res.Rounds[len(res.Rounds)-1].ConsensusScore

	var concerns, critical []string
	for _, rr := range res.Rounds {
		concerns = append(concerns, rr.Concerns...)
		critical = append(critical, rr.CriticalIssues...)
	}
	dissent := topUnique(concerns, maxDissentingViews)

	res.Fallback = &Fallback{
		Approach:         "Majority decision with minority concerns noted",
		PrimarySolution:  res.Proposal.clone(),
		DissentingViews:  dissent,
		UnresolvedIssues: topUnique(critical, maxUnresolvedIssues),
		Recommendation:   "Proceed with prototype to validate disputed areas",
	}
	res.Reasoning = "Consensus not fully reached. Proceeding with majority decision while noting minority concerns."
	res.Guidance = Guidance{
		Approach:   "Phased implementation with validation",
		Phase1:     "Implement agreed components",
		Phase2:     "Prototype disputed areas",
		Phase3:     "Validate and refine based on results",
		Monitoring: "Close monitoring of dissenting concerns",
	}
	res.DissentingOpinions = slices.Clone(dissent)
	res.DecisionRationale = "Majority decision with documented minority positions"
}
