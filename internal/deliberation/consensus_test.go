package deliberation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConsensusEngine(settings Settings) *ConsensusEngine {
	return NewConsensusEngine(NewRoundEngine(time.Second, nil), settings, nil)
}

func sampleSynthesis() *Synthesis {
	return Synthesize(&Discussion{
		SessionID:     "s1",
		KeyAgreements: []string{"Layered design"},
		Insights:      []string{"Improve caching"},
	})
}

func TestConsensus_UnanimousFirstRound(t *testing.T) {
	members := membersOf(agreeingMember, memberNames...)

	res, err := newConsensusEngine(DefaultSettings()).Build(context.Background(), "s1", members, sampleSynthesis(), nil)
	require.NoError(t, err)

	assert.True(t, res.ConsensusReached)
	require.Len(t, res.Rounds, 1)
	assert.InDelta(t, 1.0, res.ConfidenceScore, 1e-9)
	assert.Nil(t, res.Fallback)
	assert.Equal(t, res.Proposal, res.FinalDecision())

	assert.Equal(t, "Integrated solution based on collective analysis", res.Proposal.Approach)
	assert.Equal(t, []string{"Layered design"}, res.Proposal.CorePrinciples)
	assert.Empty(t, res.Proposal.ImplementationPlan.Modifications)

	assert.Equal(t, "Consensus reached with 5/5 participants in agreement. Key supporting factors: Simple to operate.", res.Reasoning)
	assert.Equal(t, []string{"Simple to operate"}, res.AreasOfAgreement)
	require.NotNil(t, res.Guidance.ImplementationApproach)
	assert.Equal(t, "Implement core agreed principles", res.Guidance.ImplementationApproach.Phase1)
	assert.Len(t, res.Guidance.NextSteps, 4)
	assert.Equal(t, "Consensus reached through structured debate and collaboration", res.DecisionRationale)
}

func TestConsensus_UnanimousDissentFallsBack(t *testing.T) {
	members := membersOf(dissentingMember, memberNames...)

	res, err := newConsensusEngine(DefaultSettings()).Build(context.Background(), "s1", members, sampleSynthesis(), nil)
	require.NoError(t, err)

	assert.False(t, res.ConsensusReached)
	assert.Len(t, res.Rounds, 3)
	assert.Zero(t, res.ConfidenceScore)
	for _, m := range members {
		assert.Equal(t, 3, m.(*fakeMember).voteCount())
	}

	require.NotNil(t, res.Fallback)
	assert.Equal(t, res.Fallback, res.FinalDecision())
	assert.Equal(t, "Majority decision with minority concerns noted", res.Fallback.Approach)
	assert.Equal(t, []string{"The rollout is a risk"}, res.Fallback.DissentingViews)
	assert.Equal(t, []string{"Encryption is critical"}, res.Fallback.UnresolvedIssues)
	assert.Equal(t, "Proceed with prototype to validate disputed areas", res.Fallback.Recommendation)
	assert.Equal(t, []string{"Change the storage layer"}, res.Fallback.PrimarySolution.ImplementationPlan.Modifications)
	assert.Equal(t, []string{"Encryption is critical"}, res.Fallback.PrimarySolution.CriticalIssuesAddressed)

	assert.Equal(t, "Phased implementation with validation", res.Guidance.Approach)
	assert.Nil(t, res.Guidance.ImplementationApproach)
	assert.Equal(t, res.Fallback.DissentingViews, res.DissentingOpinions)
	assert.Equal(t, "Majority decision with documented minority positions", res.DecisionRationale)
}

func TestConsensus_Threshold(t *testing.T) {
	tests := []struct {
		name     string
		agreeing int
		reached  bool
		rounds   int
	}{
		{"four of five meets threshold", 4, true, 1},
		{"three of five falls short", 3, false, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			members := append(
				membersOf(agreeingMember, memberNames[:tt.agreeing]...),
				membersOf(dissentingMember, memberNames[tt.agreeing:]...)...,
			)
			res, err := newConsensusEngine(DefaultSettings()).Build(context.Background(), "s1", members, sampleSynthesis(), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.reached, res.ConsensusReached)
			assert.Len(t, res.Rounds, tt.rounds)
			assert.InDelta(t, float64(tt.agreeing)/5, res.ConfidenceScore, 1e-9)
		})
	}
}

func TestConsensus_ConfiguredRounds(t *testing.T) {
	settings := DefaultSettings()
	settings.ConsensusRounds = 2

	var observed int
	res, err := newConsensusEngine(settings).Build(context.Background(), "s1",
		membersOf(dissentingMember, "architect"), sampleSynthesis(),
		func(context.Context, *RoundResult) { observed++ })
	require.NoError(t, err)
	assert.Len(t, res.Rounds, 2)
	assert.Equal(t, 2, observed)
}

func TestConsensus_NoParticipants(t *testing.T) {
	_, err := newConsensusEngine(DefaultSettings()).Build(context.Background(), "s1", nil, sampleSynthesis(), nil)
	assert.ErrorIs(t, err, ErrNoParticipants)
}

func TestConsensus_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newConsensusEngine(DefaultSettings()).Build(ctx, "s1", membersOf(agreeingMember, "architect"), sampleSynthesis(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProposal_ReviseCopies(t *testing.T) {
	p := InitialProposal(sampleSynthesis())
	rr := &RoundResult{
		Modifications:  []string{"m1", "m2", "m3", "m4"},
		CriticalIssues: []string{"c1", "c2", "c3"},
		SupportReasons: []string{"s1"},
	}

	next := p.Revise(rr)

	assert.Equal(t, []string{"m1", "m2", "m3"}, next.ImplementationPlan.Modifications)
	assert.Equal(t, []string{"c1", "c2"}, next.CriticalIssuesAddressed)
	assert.Equal(t, []string{"s1"}, next.Strengths)
	assert.Empty(t, p.ImplementationPlan.Modifications)
	assert.Empty(t, p.CriticalIssuesAddressed)

	next.CorePrinciples[0] = "changed"
	assert.Equal(t, "Layered design", p.CorePrinciples[0])

	kept := next.Revise(&RoundResult{})
	assert.Equal(t, next.ImplementationPlan.Modifications, kept.ImplementationPlan.Modifications)
}
