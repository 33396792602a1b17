package deliberation

import (
	"context"
	"sync"

	"github.com/dusk-indust/hive/internal/participant"
)

// fakeMember is a test double for Member.
type fakeMember struct {
	name      string
	analyzeFn func(ctx context.Context, p participant.Problem) (*participant.Analysis, error)
	discussFn func(ctx context.Context, in participant.DiscussionInput) (*participant.Contribution, error)
	voteFn    func(ctx context.Context, synthesis, proposal any) (*participant.Vote, error)

	mu     sync.Mutex
	inputs []participant.DiscussionInput
	votes  int
}

func (f *fakeMember) Name() string { return f.name }

func (f *fakeMember) Analyze(ctx context.Context, p participant.Problem) (*participant.Analysis, error) {
	if f.analyzeFn != nil {
		return f.analyzeFn(ctx, p)
	}
	return &participant.Analysis{
		Participant: f.name,
		Text:        "analysis by " + f.name,
		Confidence:  0.7,
		KeyPoints:   []string{"- point from " + f.name},
	}, nil
}

func (f *fakeMember) Discuss(ctx context.Context, in participant.DiscussionInput) (*participant.Contribution, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	f.mu.Unlock()
	if f.discussFn != nil {
		return f.discussFn(ctx, in)
	}
	return &participant.Contribution{Participant: f.name, Text: "no comment"}, nil
}

func (f *fakeMember) Vote(ctx context.Context, synthesis, proposal any) (*participant.Vote, error) {
	f.mu.Lock()
	f.votes++
	f.mu.Unlock()
	if f.voteFn != nil {
		return f.voteFn(ctx, synthesis, proposal)
	}
	return &participant.Vote{Participant: f.name}, nil
}

func (f *fakeMember) discussionInputs() []participant.DiscussionInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]participant.DiscussionInput(nil), f.inputs...)
}

func (f *fakeMember) voteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.votes
}

func agreeingMember(name string) *fakeMember {
	return &fakeMember{
		name: name,
		discussFn: func(context.Context, participant.DiscussionInput) (*participant.Contribution, error) {
			return &participant.Contribution{
				Participant:  name,
				Text:         "I agree with the layered approach.",
				Agreements:   []string{"I agree with the layered approach."},
				Improvements: []string{"Improve caching"},
				Confidence:   0.8,
			}, nil
		},
		voteFn: func(context.Context, any, any) (*participant.Vote, error) {
			return &participant.Vote{
				Participant:    name,
				Agreement:      true,
				Confidence:     0.9,
				SupportReasons: []string{"Simple to operate"},
				Text:           "Yes, I support it.",
			}, nil
		},
	}
}

func dissentingMember(name string) *fakeMember {
	return &fakeMember{
		name: name,
		discussFn: func(context.Context, participant.DiscussionInput) (*participant.Contribution, error) {
			return &participant.Contribution{
				Participant:   name,
				Text:          "I have a concern about " + name + " cost.",
				Disagreements: []string{"Concern about " + name + " cost"},
				Challenges:    []string{"Difficult migration"},
				Confidence:    0.3,
			}, nil
		},
		voteFn: func(context.Context, any, any) (*participant.Vote, error) {
			return &participant.Vote{
				Participant:    name,
				Confidence:     0.3,
				Concerns:       []string{"The rollout is a risk"},
				Modifications:  []string{"Change the storage layer"},
				CriticalIssues: []string{"Encryption is critical"},
				Text:           "No. The rollout is a risk.",
			}, nil
		},
	}
}

var memberNames = []string{"architect", "innovator", "pragmatist", "quality_advocate", "user_champion"}

func membersOf(build func(string) *fakeMember, names ...string) []Member {
	out := make([]Member, len(names))
	for i, n := range names {
		out[i] = build(n)
	}
	return out
}
