package dispatch

import "context"

// Unit is one decoded command awaiting execution. It has no identity beyond its
// position in the queue and is never persisted.
type Unit struct {
	// Name labels the unit in logs and metrics (the command kind).
	Name string
	// RequestID is the caller-supplied correlation id, if any.
	RequestID string
	Run       func(ctx context.Context) error
	// OnDrop, when set, runs once after the last attempt failed.
	OnDrop func(ctx context.Context, lastErr error)
}

// DropFunc observes units that exhausted every attempt.
type DropFunc func(u Unit, attempts int, lastErr error)
