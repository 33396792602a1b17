// Package export renders stored sessions and project tasks for humans and
// other tools.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dusk-indust/hive/internal/store"
)

// TranscriptExport is the top-level JSON export of one session.
type TranscriptExport struct {
	SessionID        string          `json:"sessionId"`
	ProjectID        string          `json:"projectId,omitempty"`
	Topic            string          `json:"topic"`
	Type             string          `json:"type"`
	Status           string          `json:"status"`
	Participants     []string        `json:"participants"`
	ConsensusReached bool            `json:"consensusReached"`
	ConfidenceScore  float64         `json:"confidenceScore"`
	FinalDecision    json.RawMessage `json:"finalDecision,omitempty"`
	ExportedAt       string          `json:"exportedAt"`
	Phases           []PhaseExport   `json:"phases"`
}

// PhaseExport groups the messages of one transcript phase.
type PhaseExport struct {
	Type     string          `json:"type"`
	Messages []MessageExport `json:"messages"`
}

// MessageExport is a single transcript entry.
type MessageExport struct {
	Author     string         `json:"author"`
	Content    string         `json:"content"`
	Confidence float64        `json:"confidence"`
	Reasoning  string         `json:"reasoning,omitempty"`
	References map[string]any `json:"references,omitempty"`
	CreatedAt  string         `json:"createdAt"`
}

// TranscriptSource is the read side of the session store.
type TranscriptSource interface {
	GetSession(ctx context.Context, id string) (*store.Session, error)
	ListMessages(ctx context.Context, sessionID string) ([]store.Message, error)
}

// phaseOrder is the order phases appear in a session.
var phaseOrder = []store.MessageType{
	store.MessagePresentation,
	store.MessageAnalysis,
	store.MessageDiscussion,
	store.MessageConsensus,
}

// ExportTranscript builds a TranscriptExport for a stored session. Messages
// keep their append order within each phase; phases with no messages are
// omitted.
func ExportTranscript(ctx context.Context, src TranscriptSource, sessionID string) (*TranscriptExport, error) {
	sess, err := src.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	msgs, err := src.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	export := &TranscriptExport{
		SessionID:        sess.ID,
		ProjectID:        sess.ProjectID,
		Topic:            sess.Topic,
		Type:             sess.Type,
		Status:           string(sess.Status),
		Participants:     sess.Participants,
		ConsensusReached: sess.ConsensusReached,
		ConfidenceScore:  sess.ConfidenceScore,
		FinalDecision:    sess.FinalDecision,
		ExportedAt:       time.Now().UTC().Format(time.RFC3339),
		Phases:           []PhaseExport{},
	}

	byType := make(map[store.MessageType][]MessageExport)
	for _, m := range msgs {
		byType[m.Type] = append(byType[m.Type], MessageExport{
			Author:     m.Author,
			Content:    m.Content,
			Confidence: m.Confidence,
			Reasoning:  m.Reasoning,
			References: m.References,
			CreatedAt:  m.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	for _, typ := range phaseOrder {
		if len(byType[typ]) == 0 {
			continue
		}
		export.Phases = append(export.Phases, PhaseExport{Type: string(typ), Messages: byType[typ]})
	}

	return export, nil
}
