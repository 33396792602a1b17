package deliberation

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/dusk-indust/hive/internal/participant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundEngine_NoParticipants(t *testing.T) {
	e := NewRoundEngine(time.Second, nil)
	ctx := context.Background()

	_, err := e.Analyze(ctx, nil, participant.Problem{})
	assert.ErrorIs(t, err, ErrNoParticipants)
	_, err = e.Discuss(ctx, 1, nil, participant.DiscussionInput{})
	assert.ErrorIs(t, err, ErrNoParticipants)
	_, err = e.Vote(ctx, 1, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoParticipants)
}

func TestRoundEngine_DiscussAggregatesInNameOrder(t *testing.T) {
	e := NewRoundEngine(time.Second, nil)
	members := []Member{
		dissentingMember("user_champion"),
		agreeingMember("architect"),
		agreeingMember("pragmatist"),
	}

	rr, err := e.Discuss(context.Background(), 2, members, participant.DiscussionInput{SessionID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, RoundDiscussion, rr.Kind)
	assert.Equal(t, 2, rr.Number)
	assert.Equal(t, 2, rr.Agreements)
	assert.Equal(t, 1, rr.Disagreements)
	assert.Equal(t, rr.Participants(), rr.Agreements+rr.Disagreements)

	var names []string
	for _, o := range rr.Outcomes {
		names = append(names, o.Participant)
	}
	assert.Equal(t, []string{"architect", "pragmatist", "user_champion"}, names)

	assert.Equal(t, []string{"I agree with the layered approach."}, rr.AgreementPoints)
	assert.Equal(t, []string{"Concern about user_champion cost"}, rr.DisagreementPoints)
	assert.Equal(t, []string{"Improve caching"}, rr.Improvements)
	assert.Equal(t, []string{"Difficult migration"}, rr.Challenges)
}

func TestRoundEngine_DiscussPassesRoundNumber(t *testing.T) {
	e := NewRoundEngine(time.Second, nil)
	m := agreeingMember("architect")

	_, err := e.Discuss(context.Background(), 3, []Member{m}, participant.DiscussionInput{SessionID: "s1", Round: 99})
	require.NoError(t, err)

	inputs := m.discussionInputs()
	require.Len(t, inputs, 1)
	assert.Equal(t, 3, inputs[0].Round)
	assert.Equal(t, "s1", inputs[0].SessionID)
}

func TestRoundEngine_TimeoutIsDisagreement(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	stuck := &fakeMember{
		name: "pragmatist",
		discussFn: func(context.Context, participant.DiscussionInput) (*participant.Contribution, error) {
			<-release // ignores ctx entirely
			return nil, nil
		},
	}
	members := []Member{agreeingMember("architect"), stuck, agreeingMember("user_champion")}
	e := NewRoundEngine(20*time.Millisecond, nil)

	start := time.Now()
	rr, err := e.Discuss(context.Background(), 1, members, participant.DiscussionInput{})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	assert.Equal(t, 2, rr.Agreements)
	assert.Equal(t, 1, rr.Disagreements)

	o := rr.Outcomes[1]
	assert.Equal(t, "pragmatist", o.Participant)
	assert.False(t, o.Agreement)
	assert.Zero(t, o.Confidence)
	assert.ErrorIs(t, o.Err, context.DeadlineExceeded)
	assert.NotEmpty(t, o.Failure)
}

func TestRoundEngine_FailuresAreRecorded(t *testing.T) {
	boom := errors.New("backend down")
	members := []Member{
		&fakeMember{name: "a", voteFn: func(context.Context, any, any) (*participant.Vote, error) {
			return nil, boom
		}},
		&fakeMember{name: "b", voteFn: func(context.Context, any, any) (*participant.Vote, error) {
			panic("unexpected")
		}},
		&fakeMember{name: "c", voteFn: func(context.Context, any, any) (*participant.Vote, error) {
			return nil, nil
		}},
		agreeingMember("d"),
	}
	e := NewRoundEngine(time.Second, nil)

	rr, err := e.Vote(context.Background(), 1, members, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, rr.Agreements)
	assert.Equal(t, 3, rr.Disagreements)
	assert.InDelta(t, 0.25, rr.ConsensusScore, 1e-9)

	assert.ErrorIs(t, rr.Outcomes[0].Err, boom)
	assert.Contains(t, rr.Outcomes[1].Failure, "panicked")
	assert.ErrorIs(t, rr.Outcomes[2].Err, errEmptyReply)
	for _, o := range rr.Outcomes[:3] {
		assert.Zero(t, o.Confidence)
		assert.False(t, o.Agreement)
	}
}

func TestRoundEngine_VoteAggregates(t *testing.T) {
	e := NewRoundEngine(time.Second, nil)
	members := slices.Concat(
		membersOf(agreeingMember, "architect", "innovator", "pragmatist", "quality_advocate"),
		membersOf(dissentingMember, "user_champion"),
	)

	rr, err := e.Vote(context.Background(), 1, members, map[string]any{}, map[string]any{})
	require.NoError(t, err)

	assert.Equal(t, RoundConsensus, rr.Kind)
	assert.InDelta(t, 0.8, rr.ConsensusScore, 1e-9)
	assert.Equal(t, []string{"Simple to operate"}, rr.SupportReasons)
	assert.Equal(t, []string{"The rollout is a risk"}, rr.Concerns)
	assert.Equal(t, []string{"Change the storage layer"}, rr.Modifications)
	assert.Equal(t, []string{"Encryption is critical"}, rr.CriticalIssues)
}

func TestRoundEngine_OrderIndependent(t *testing.T) {
	e := NewRoundEngine(time.Second, nil)
	build := func() []Member {
		return []Member{
			agreeingMember("architect"),
			dissentingMember("innovator"),
			agreeingMember("pragmatist"),
			dissentingMember("quality_advocate"),
			agreeingMember("user_champion"),
		}
	}

	forward, err := e.Discuss(context.Background(), 1, build(), participant.DiscussionInput{})
	require.NoError(t, err)

	reversed := build()
	slices.Reverse(reversed)
	backward, err := e.Discuss(context.Background(), 1, reversed, participant.DiscussionInput{})
	require.NoError(t, err)

	assert.Equal(t, forward, backward)
}

func TestRoundEngine_AnalyzeRecordsFailures(t *testing.T) {
	e := NewRoundEngine(time.Second, nil)
	members := []Member{
		&fakeMember{name: "b", analyzeFn: func(context.Context, participant.Problem) (*participant.Analysis, error) {
			return nil, errors.New("no model")
		}},
		&fakeMember{name: "a"},
	}

	out, err := e.Analyze(context.Background(), members, participant.Problem{Description: "x"})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "a", out[0].Participant)
	assert.InDelta(t, 0.7, out[0].Confidence(), 1e-9)
	assert.Equal(t, "b", out[1].Participant)
	assert.Nil(t, out[1].Analysis)
	assert.Zero(t, out[1].Confidence())
	assert.Contains(t, out[1].Failure, "no model")
}

func TestTopUnique(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		n     int
		want  []string
	}{
		{"empty", nil, 3, nil},
		{"dedup keeps first", []string{"a", "b", "a", "c"}, 5, []string{"a", "b", "c"}},
		{"cap", []string{"a", "b", "c", "d"}, 2, []string{"a", "b"}},
		{"skips blanks", []string{"", "a", ""}, 3, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, topUnique(tt.items, tt.n))
		})
	}
}
