package web

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/askbox/pkg/llm"
	"github.com/papercomputeco/askbox/pkg/merkle"
)

// TraceResponse is one recorded conversation, oldest turn first.
type TraceResponse struct {
	Turns    []TraceTurn `json:"turns"`
	HeadHash string      `json:"head_hash"`
	Depth    int         `json:"depth"`
}

// TraceTurn is a single recorded turn.
type TraceTurn struct {
	Hash       string         `json:"hash"`
	ParentHash *string        `json:"parent_hash,omitempty"`
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	Model      string         `json:"model,omitempty"`
	Metrics    map[string]any `json:"metrics,omitempty"`
}

// handleListTraces returns one trace per leaf node.
func (s *Server) handleListTraces(c *fiber.Ctx) error {
	ctx := c.UserContext()

	leaves, err := s.storer.Leaves(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to get leaves"})
	}

	traces := make([]TraceResponse, 0, len(leaves))
	for _, leaf := range leaves {
		trace, err := BuildTrace(ctx, s.storer, leaf.Hash)
		if err != nil {
			s.logger.Warn("failed to build trace for leaf", zap.String("hash", leaf.Hash), zap.Error(err))
			continue
		}
		traces = append(traces, *trace)
	}

	return c.JSON(map[string]any{
		"count":  len(traces),
		"traces": traces,
	})
}

// handleGetTrace returns the conversation leading up to a node.
func (s *Server) handleGetTrace(c *fiber.Ctx) error {
	trace, err := BuildTrace(c.UserContext(), s.storer, c.Params("hash"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "node not found"})
	}

	return c.JSON(trace)
}

// BuildTrace walks from hash back to its root and returns the turns in
// chronological order.
func BuildTrace(ctx context.Context, storer merkle.Storer, hash string) (*TraceResponse, error) {
	path, err := storer.Descendants(ctx, hash)
	if err != nil {
		return nil, err
	}

	turns := make([]TraceTurn, 0, len(path))
	for _, node := range path {
		turn := TraceTurn{
			Hash:       node.Hash,
			ParentHash: node.ParentHash,
		}
		if b, ok := node.Bucket(); ok {
			turn.Role = b.Role
			turn.Content = b.Content
			turn.Model = b.Model
			turn.Metrics = b.Metrics
		}
		turns = append(turns, turn)
	}

	return &TraceResponse{
		Turns:    turns,
		HeadHash: hash,
		Depth:    len(turns),
	}, nil
}
