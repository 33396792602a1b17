package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/dusk-indust/hive/internal/completion"
	"github.com/dusk-indust/hive/internal/deliberation"
	"github.com/dusk-indust/hive/internal/participant"
	"github.com/dusk-indust/hive/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickingValidator struct{}

func (panickingValidator) Validate(context.Context, *store.Project, *Assembly) (*ValidationReport, error) {
	panic("validator exploded")
}

// blockingDeliberator waits for cancellation.
func blockingDeliberator() *mockDeliberator {
	return &mockDeliberator{deliberateFn: func(ctx context.Context, _ deliberation.Request) (*deliberation.Decision, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
}

func waitFor(t *testing.T, r *Runner, id string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Wait(ctx, id))
}

func TestRunner_CreateProjectRunsToCompletion(t *testing.T) {
	mem := store.NewMemory()
	r := NewRunner(New(mem, &mockDeliberator{}, Collaborators{}, nil, nil), nil)
	ctx := context.Background()

	id, err := r.CreateProject(ctx, ProjectSpec{Name: "chat", Requirements: "A chat app"})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	waitFor(t, r, id)

	st, err := r.GetProjectStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "chat", st.Name)
	assert.Equal(t, PhaseCompleted.String(), st.Phase)
	assert.Equal(t, StatusCompleted, st.Status)
	assert.InDelta(t, 100, st.Progress, 1e-9)
	assert.Len(t, st.Artifacts, 7)
	assert.Zero(t, r.Running())
}

func TestRunner_DefaultName(t *testing.T) {
	mem := store.NewMemory()
	r := NewRunner(New(mem, &mockDeliberator{}, Collaborators{}, nil, nil), nil)

	id, err := r.CreateProject(context.Background(), ProjectSpec{Requirements: "x"})
	require.NoError(t, err)
	waitFor(t, r, id)

	st, err := r.GetProjectStatus(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Untitled Project", st.Name)
}

func TestRunner_PanicBecomesFailure(t *testing.T) {
	mem := store.NewMemory()
	o := New(mem, &mockDeliberator{}, Collaborators{Validator: panickingValidator{}}, nil, nil)
	r := NewRunner(o, nil)

	id, err := r.CreateProject(context.Background(), ProjectSpec{Name: "boom"})
	require.NoError(t, err)
	waitFor(t, r, id)

	st, err := r.GetProjectStatus(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, PhaseFailed.String(), st.Phase)
	assert.Equal(t, PhaseFinalValidation.String(), st.FailedPhase)
	assert.Equal(t, "panic: validator exploded", st.Error)
	assert.Zero(t, st.Progress)
}

func TestRunner_Cancel(t *testing.T) {
	mem := store.NewMemory()
	r := NewRunner(New(mem, blockingDeliberator(), Collaborators{}, nil, nil), nil)

	id, err := r.CreateProject(context.Background(), ProjectSpec{Name: "slow"})
	require.NoError(t, err)
	require.NoError(t, r.Cancel(id))
	waitFor(t, r, id)

	st, err := r.GetProjectStatus(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, PhaseFailed.String(), st.Phase)
	assert.Equal(t, context.Canceled.Error(), st.Error)

	assert.ErrorIs(t, r.Cancel(id), ErrNotRunning)
}

func TestRunner_Shutdown(t *testing.T) {
	mem := store.NewMemory()
	r := NewRunner(New(mem, blockingDeliberator(), Collaborators{}, nil, nil), nil)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := r.CreateProject(ctx, ProjectSpec{Name: name})
		require.NoError(t, err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, r.Shutdown(shutdownCtx))

	list, err := r.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, st := range list {
		assert.Equal(t, PhaseFailed.String(), st.Phase)
		assert.Nil(t, st.Artifacts)
	}
}

func TestRunner_UnknownProject(t *testing.T) {
	r := NewRunner(New(store.NewMemory(), &mockDeliberator{}, Collaborators{}, nil, nil), nil)

	_, err := r.GetProjectStatus(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, r.Wait(context.Background(), "missing"))
}

func TestRunner_WithHive(t *testing.T) {
	ps, err := participant.NewRegistry().SpawnAll(nil, completion.Stub{}, nil)
	require.NoError(t, err)
	members := make([]deliberation.Member, len(ps))
	for i, p := range ps {
		members[i] = p
	}

	mem := store.NewMemory()
	hive := deliberation.NewHive(mem, members, deliberation.DefaultSettings(), nil)
	r := NewRunner(New(mem, hive, Collaborators{}, nil, nil), nil)
	ctx := context.Background()

	id, err := r.CreateProject(ctx, ProjectSpec{Name: "todo", Requirements: "A shared todo list"})
	require.NoError(t, err)
	waitFor(t, r, id)

	st, err := r.GetProjectStatus(ctx, id)
	require.NoError(t, err)
	require.Equal(t, PhaseCompleted.String(), st.Phase, st.Error)

	sessions, err := mem.ListSessions(ctx, id)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, TopicRequirements, sessions[0].Topic)
	assert.Equal(t, TopicArchitecture, sessions[1].Topic)
	for _, s := range sessions {
		assert.Equal(t, store.SessionCompleted, s.Status)
	}
}
