// Package telemetry records generation runs for diagnostics. Tracing is
// fire-and-forget: a Tracer never blocks and never fails the caller.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/askbox/pkg/llm"
)

// Run is the metadata of one generation call.
type Run struct {
	ID           uuid.UUID
	Name         string
	Model        string
	Conversation llm.Conversation
	Output       string
	Error        string
	StartTime    time.Time
	EndTime      time.Time
	PromptTokens int
	OutputTokens int
}

// Latency is the wall time of the run.
func (r Run) Latency() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Tracer accepts runs without blocking.
type Tracer interface {
	Trace(run Run)
}

// Sink exports a run synchronously. Sinks are wrapped with Async before they
// are handed to the generator.
type Sink interface {
	Export(ctx context.Context, run Run) error
}

// Nop discards every run.
type Nop struct{}

func (Nop) Trace(Run) {}

// Multi fans a run out to several tracers.
type Multi []Tracer

func (m Multi) Trace(run Run) {
	for _, t := range m {
		t.Trace(run)
	}
}
