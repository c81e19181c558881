package telemetry

import (
	"context"
	"fmt"

	"github.com/papercomputeco/askbox/pkg/merkle"
)

// Recorder stores successful runs as Merkle chains: system, user, answer.
// Identical questions share the system and user nodes; different answers
// branch from them.
type Recorder struct {
	storer   merkle.Storer
	provider string
}

var _ Sink = (*Recorder)(nil)

// NewRecorder records runs into storer.
func NewRecorder(storer merkle.Storer) *Recorder {
	return &Recorder{storer: storer, provider: "google"}
}

func (r *Recorder) Export(ctx context.Context, run Run) error {
	if run.Error != "" {
		return nil
	}

	var parent *merkle.Node
	for _, msg := range run.Conversation.Messages() {
		node := merkle.NewNode(merkle.Bucket{
			Type:     "message",
			Role:     msg.Role,
			Content:  msg.Content,
			Model:    run.Model,
			Provider: r.provider,
		}, parent)
		if _, err := r.storer.Put(ctx, node); err != nil {
			return fmt.Errorf("storing %s node: %w", msg.Role, err)
		}
		parent = node
	}

	answer := merkle.NewNode(merkle.Bucket{
		Type:     "message",
		Role:     "assistant",
		Content:  run.Output,
		Model:    run.Model,
		Provider: r.provider,
		Metrics: map[string]any{
			"latency_ms":    run.Latency().Milliseconds(),
			"prompt_tokens": run.PromptTokens,
			"output_tokens": run.OutputTokens,
		},
	}, parent)
	if _, err := r.storer.Put(ctx, answer); err != nil {
		return fmt.Errorf("storing answer node: %w", err)
	}
	return nil
}
