package deliberation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dusk-indust/hive/internal/store"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrInvalidRequest is returned for a request without a topic.
var ErrInvalidRequest = errors.New("deliberation: invalid request")

// SessionStore is the persistence a Hive needs.
type SessionStore interface {
	store.Sessions
	store.Messages
}

// Request asks for one deliberation on a topic.
type Request struct {
	ProjectID string
	Topic     string
	Type      string
	Input     map[string]any
}

// Decision is the complete record of a finished deliberation.
type Decision struct {
	SessionID        string            `json:"session_id"`
	Topic            string            `json:"topic"`
	Type             string            `json:"type"`
	ConsensusReached bool              `json:"consensus_reached"`
	ConfidenceScore  float64           `json:"confidence_score"`
	FinalDecision    any               `json:"final_decision"`
	Reasoning        string            `json:"reasoning"`
	Guidance         Guidance          `json:"implementation_guidance"`
	Presentation     *Presentation     `json:"presentation"`
	Analyses         []AnalysisOutcome `json:"individual_analyses"`
	Discussion       *Discussion       `json:"discussion"`
	Synthesis        *Synthesis        `json:"synthesis"`
	Consensus        *ConsensusResult  `json:"consensus"`
}

// Hive runs deliberation sessions over a fixed set of members and records
// each session and its transcript in a SessionStore.
type Hive struct {
	sessions    SessionStore
	members     []Member
	engine      *RoundEngine
	coordinator *Coordinator
	consensus   *ConsensusEngine
	logger      *slog.Logger
	now         func() time.Time
}

// NewHive creates a Hive. Zero settings fields take their defaults.
func NewHive(sessions SessionStore, members []Member, settings Settings, logger *slog.Logger) *Hive {
	if logger == nil {
		logger = slog.Default()
	}
	settings = settings.withDefaults()
	engine := NewRoundEngine(settings.ParticipantTimeout, logger)
	return &Hive{
		sessions:    sessions,
		members:     sortMembers(members),
		engine:      engine,
		coordinator: NewCoordinator(engine, settings, logger),
		consensus:   NewConsensusEngine(engine, settings, logger),
		logger:      logger,
		now:         time.Now,
	}
}

// Members returns the member names in deliberation order.
func (h *Hive) Members() []string {
	names := make([]string, len(h.members))
	for i, m := range h.members {
		names[i] = m.Name()
	}
	return names
}

// Deliberate runs one full session: presentation, individual analysis,
// discussion, synthesis and consensus. Participant failures degrade the
// result; only an unusable store, an empty member set or cancellation
// fails the session.
func (h *Hive) Deliberate(ctx context.Context, req Request) (*Decision, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrInvalidRequest)
	}
	if len(h.members) == 0 {
		return nil, ErrNoParticipants
	}

	ctx, span := tracer.Start(ctx, "deliberation.session", trace.WithAttributes(
		attribute.String("topic", req.Topic),
		attribute.String("type", req.Type),
		attribute.Int("participants", len(h.members)),
	))
	defer span.End()

	now := h.now()
	sess := &store.Session{
		ID:           store.NewID(),
		ProjectID:    req.ProjectID,
		Topic:        req.Topic,
		Type:         req.Type,
		Participants: h.Members(),
		Status:       store.SessionCreated,
		CreatedAt:    now,
	}
	if err := h.sessions.CreateSession(ctx, sess); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("deliberation: create session: %w", err)
	}
	span.SetAttributes(attribute.String("session_id", sess.ID))

	sess.Status = store.SessionInProgress
	sess.StartedAt = &now
	if err := h.sessions.UpdateSession(ctx, sess); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("deliberation: start session %s: %w", sess.ID, err)
	}

	logger := h.logger.With("session", sess.ID)
	logger.Info("deliberation started", "topic", req.Topic, "type", req.Type, "participants", len(h.members))

	dec, err := h.run(ctx, sess, req, logger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.fail(context.WithoutCancel(ctx), sess, logger, err)
		return nil, err
	}

	final, err := json.Marshal(dec.FinalDecision)
	if err != nil {
		h.fail(context.WithoutCancel(ctx), sess, logger, err)
		return nil, fmt.Errorf("deliberation: encode decision: %w", err)
	}
	done := h.now()
	sess.Status = store.SessionCompleted
	sess.ConsensusReached = dec.ConsensusReached
	sess.ConfidenceScore = dec.ConfidenceScore
	sess.FinalDecision = final
	sess.CompletedAt = &done
	if err := h.sessions.UpdateSession(ctx, sess); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("deliberation: complete session %s: %w", sess.ID, err)
	}

	span.SetAttributes(
		attribute.Bool("consensus_reached", dec.ConsensusReached),
		attribute.Float64("confidence", dec.ConfidenceScore),
	)
	logger.Info("deliberation completed", "consensus", dec.ConsensusReached, "confidence", dec.ConfidenceScore)
	return dec, nil
}

func (h *Hive) run(ctx context.Context, sess *store.Session, req Request, logger *slog.Logger) (*Decision, error) {
	pres := Present(req)
	h.record(ctx, logger, &store.Message{
		SessionID: sess.ID,
		Author:    store.AuthorSystem,
		Type:      store.MessagePresentation,
		Content:   pres.ContextSummary,
		References: map[string]any{
			"key_considerations": pres.KeyConsiderations,
			"success_criteria":   pres.SuccessCriteria,
		},
	})

	analyses, err := h.engine.Analyze(ctx, h.members, pres.Problem())
	if err != nil {
		return nil, err
	}
	for _, a := range analyses {
		h.record(ctx, logger, analysisMessage(sess.ID, a))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("deliberation: analysis: %w", err)
	}

	disc, err := h.coordinator.Run(ctx, sess.ID, h.members, analyses, func(ctx context.Context, rr *RoundResult) {
		for _, o := range rr.Outcomes {
			h.record(ctx, logger, roundMessage(sess.ID, store.MessageDiscussion, rr.Number, o))
		}
	})
	if err != nil {
		return nil, err
	}

	syn := Synthesize(disc)
	logger.Info("synthesis complete", "confidence", syn.SynthesisConfidence, "principles", len(syn.CorePrinciples))

	cons, err := h.consensus.Build(ctx, sess.ID, h.members, syn, func(ctx context.Context, rr *RoundResult) {
		for _, o := range rr.Outcomes {
			h.record(ctx, logger, roundMessage(sess.ID, store.MessageConsensus, rr.Number, o))
		}
	})
	if err != nil {
		return nil, err
	}

	return &Decision{
		SessionID:        sess.ID,
		Topic:            req.Topic,
		Type:             req.Type,
		ConsensusReached: cons.ConsensusReached,
		ConfidenceScore:  cons.ConfidenceScore,
		FinalDecision:    cons.FinalDecision(),
		Reasoning:        cons.Reasoning,
		Guidance:         cons.Guidance,
		Presentation:     pres,
		Analyses:         analyses,
		Discussion:       disc,
		Synthesis:        syn,
		Consensus:        cons,
	}, nil
}

// record appends a transcript message. A failed write is logged and the
// session carries on.
func (h *Hive) record(ctx context.Context, logger *slog.Logger, m *store.Message) {
	if err := h.sessions.AppendMessage(ctx, m); err != nil {
		logger.Warn("failed to record message", "type", string(m.Type), "author", m.Author, "error", err)
	}
}

func (h *Hive) fail(ctx context.Context, sess *store.Session, logger *slog.Logger, cause error) {
	done := h.now()
	sess.Status = store.SessionFailed
	sess.CompletedAt = &done
	if err := h.sessions.UpdateSession(ctx, sess); err != nil {
		logger.Error("failed to mark session failed", "error", err)
	}
	logger.Error("deliberation failed", "error", cause)
}

func analysisMessage(sessionID string, a AnalysisOutcome) *store.Message {
	if a.Analysis == nil {
		return &store.Message{
			SessionID:  sessionID,
			Author:     a.Participant,
			Type:       store.MessageAnalysis,
			Content:    "Analysis failed: " + a.Failure,
			References: map[string]any{"error": a.Failure},
		}
	}
	return &store.Message{
		SessionID:  sessionID,
		Author:     a.Participant,
		Type:       store.MessageAnalysis,
		Content:    a.Analysis.Text,
		Confidence: a.Analysis.Confidence,
		Reasoning:  strings.Join(a.Analysis.KeyPoints, "\n"),
		References: map[string]any{
			"specialization":  a.Analysis.Specialization,
			"recommendations": a.Analysis.Recommendations,
			"concerns":        a.Analysis.Concerns,
		},
	}
}

func roundMessage(sessionID string, typ store.MessageType, round int, o Outcome) *store.Message {
	m := &store.Message{
		SessionID:  sessionID,
		Author:     o.Participant,
		Type:       typ,
		Confidence: o.Confidence,
		References: map[string]any{
			"round":     round,
			"agreement": o.Agreement,
		},
	}
	switch {
	case o.Failure != "":
		m.Content = "Participant failed: " + o.Failure
		m.References["error"] = o.Failure
	case o.Contribution != nil:
		m.Content = o.Contribution.Text
		m.Reasoning = strings.Join(o.Contribution.Agreements, "; ")
		m.References["disagreements"] = o.Contribution.Disagreements
		m.References["questions"] = o.Contribution.Questions
	case o.Vote != nil:
		m.Content = o.Vote.Text
		m.Reasoning = strings.Join(o.Vote.SupportReasons, "; ")
		m.References["suggested_modifications"] = o.Vote.Modifications
		m.References["critical_issues"] = o.Vote.CriticalIssues
	}
	return m
}
