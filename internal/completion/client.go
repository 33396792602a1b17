// Package completion provides the text-completion collaborator used by
// participants: one system preamble plus one user prompt in, raw text out.
package completion

import (
	"context"
	"fmt"
)

// Client sends a prompt pair to a text-completion backend.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Error reports a failed completion call. Backends never panic on transport
// or decode failures; they return an *Error instead.
type Error struct {
	Backend string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("completion: %s: %v", e.Backend, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ClientFunc adapts a plain function to the Client interface.
type ClientFunc func(ctx context.Context, system, user string) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}
