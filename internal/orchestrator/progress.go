package orchestrator

import (
	"fmt"
	"sync"
)

// ProgressStatus is the state of a phase within a project run.
type ProgressStatus string

const (
	ProgressStarted  ProgressStatus = "started"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// ProgressEvent is emitted as a project moves through its phases.
type ProgressEvent struct {
	ProjectID string
	Phase     Phase
	Status    ProgressStatus
	Progress  float64
	Message   string
}

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	mu     sync.Mutex
	ch     chan ProgressEvent
	closed bool
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion.
// If the channel is full or closed, the event is dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if pr.closed {
		return
	}
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel. It is safe to call twice.
func (pr *ProgressReporter) Close() {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if !pr.closed {
		pr.closed = true
		close(pr.ch)
	}
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressStarted:
		return fmt.Sprintf("  ● %s (%.0f%%)...", event.Phase, event.Progress)
	case ProgressComplete:
		return fmt.Sprintf("  ✓ %s complete", event.Phase)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.Phase, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.Phase)
	}
}

// FormatProjectHeader formats a project header for display.
// Returns: "[{name}] Project {id}"
func FormatProjectHeader(name, id string) string {
	return fmt.Sprintf("[%s] Project %s", name, id)
}
