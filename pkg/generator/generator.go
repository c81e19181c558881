// Package generator turns a user question into a model answer: it builds the
// fixed two-turn conversation, submits it once, and extracts the answer text.
package generator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/askbox/pkg/llm"
	"github.com/papercomputeco/askbox/pkg/logger"
	"github.com/papercomputeco/askbox/pkg/telemetry"
)

// SystemInstruction is sent ahead of every question.
const SystemInstruction = "You are a helpful assistant. Please respond to user queries."

// questionPrefix frames the user turn.
const questionPrefix = "Question:"

// Completer submits a conversation to a text-generation model.
type Completer interface {
	Complete(ctx context.Context, conv llm.Conversation) (*llm.Completion, error)
}

// Generator answers questions with a Completer.
type Generator struct {
	client Completer
	model  string
	tracer telemetry.Tracer
	logger *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithTracer sets where run metadata is sent.
func WithTracer(t telemetry.Tracer) Option {
	return func(g *Generator) {
		if t != nil {
			g.tracer = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithModel records the model name in traces.
func WithModel(model string) Option {
	return func(g *Generator) {
		g.model = model
	}
}

// New creates a Generator.
func New(client Completer, opts ...Option) *Generator {
	g := &Generator{
		client: client,
		tracer: telemetry.Nop{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the model's answer to question. Every failure after the
// empty-question guard is a *GenerationError; a nil error always comes with
// non-empty text.
func (g *Generator) Generate(ctx context.Context, question string) (string, error) {
	if question == "" {
		return "", ErrEmptyQuestion
	}

	conv := BuildConversation(question)
	start := time.Now()

	completion, err := g.client.Complete(ctx, conv)
	var answer string
	if err == nil {
		answer, err = ExtractText(completion)
	}

	g.trace(conv, completion, answer, err, start)

	if err != nil {
		g.logger.Error("generation failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return "", newGenerationError(err)
	}

	g.logger.Debug("generation succeeded",
		zap.String("question_preview", logger.Truncate(question, 50)),
		zap.String("answer_preview", logger.Truncate(answer, 100)),
		zap.Duration("duration", time.Since(start)),
	)
	return answer, nil
}

// BuildConversation pairs the system instruction with the question.
func BuildConversation(question string) llm.Conversation {
	return llm.NewConversation(SystemInstruction, questionPrefix+question)
}

// ExtractText returns the completion text, rejecting empty answers.
func ExtractText(c *llm.Completion) (string, error) {
	if c == nil {
		return "", errors.New("no completion returned")
	}
	if strings.TrimSpace(c.Text) == "" {
		if c.FinishReason != "" {
			return "", errors.New("model returned an empty answer (finish reason " + c.FinishReason + ")")
		}
		return "", errors.New("model returned an empty answer")
	}
	return c.Text, nil
}

func (g *Generator) trace(conv llm.Conversation, c *llm.Completion, answer string, err error, start time.Time) {
	run := telemetry.Run{
		ID:           uuid.New(),
		Name:         "askbox.generate",
		Model:        g.model,
		Conversation: conv,
		Output:       answer,
		StartTime:    start,
		EndTime:      time.Now(),
	}
	if c != nil {
		if c.Model != "" {
			run.Model = c.Model
		}
		run.PromptTokens = c.PromptTokens
		run.OutputTokens = c.OutputTokens
	}
	if err != nil {
		run.Error = err.Error()
	}
	g.tracer.Trace(run)
}
