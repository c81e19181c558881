package generator_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/askbox/pkg/generator"
	"github.com/papercomputeco/askbox/pkg/llm"
	"github.com/papercomputeco/askbox/pkg/telemetry"
)

// stubCompleter stands in for the network call and counts invocations.
type stubCompleter struct {
	calls      int
	got        []llm.Conversation
	completion *llm.Completion
	err        error
}

func (s *stubCompleter) Complete(_ context.Context, conv llm.Conversation) (*llm.Completion, error) {
	s.calls++
	s.got = append(s.got, conv)
	return s.completion, s.err
}

type captureTracer struct{ runs []telemetry.Run }

func (c *captureTracer) Trace(run telemetry.Run) { c.runs = append(c.runs, run) }

var _ = Describe("Generator", func() {
	var (
		ctx    context.Context
		stub   *stubCompleter
		tracer *captureTracer
		gen    *generator.Generator
	)

	BeforeEach(func() {
		ctx = context.Background()
		stub = &stubCompleter{completion: &llm.Completion{Model: "gemini-2.5-flash", Text: "Paris is the capital of France.", PromptTokens: 14}}
		tracer = &captureTracer{}
		gen = generator.New(stub, generator.WithTracer(tracer), generator.WithModel("gemini-2.5-flash"))
	})

	Describe("BuildConversation", func() {
		It("pairs the fixed system instruction with the question", func() {
			conv := generator.BuildConversation("capital of France")

			Expect(conv.System.Role).To(Equal(llm.RoleSystem))
			Expect(conv.System.Content).To(Equal(generator.SystemInstruction))
			Expect(conv.User.Role).To(Equal(llm.RoleUser))
			Expect(conv.User.Content).To(Equal("Question:capital of France"))
			Expect(conv.Messages()).To(HaveLen(2))
		})
	})

	Describe("ExtractText", func() {
		It("returns non-empty text", func() {
			Expect(generator.ExtractText(&llm.Completion{Text: "Paris"})).To(Equal("Paris"))
		})

		It("rejects empty and whitespace-only answers", func() {
			_, err := generator.ExtractText(&llm.Completion{Text: "  \n", FinishReason: "MAX_TOKENS"})
			Expect(err).To(MatchError(ContainSubstring("MAX_TOKENS")))

			_, err = generator.ExtractText(nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Generate", func() {
		It("makes exactly one call and returns the answer", func() {
			answer, err := gen.Generate(ctx, "capital of France")

			Expect(err).NotTo(HaveOccurred())
			Expect(answer).NotTo(BeEmpty())
			Expect(stub.calls).To(Equal(1))
			Expect(stub.got[0].System.Content).To(Equal(generator.SystemInstruction))
			Expect(stub.got[0].User.Content).To(ContainSubstring("capital of France"))
		})

		It("never calls the model for an empty question", func() {
			_, err := gen.Generate(ctx, "")

			Expect(err).To(MatchError(generator.ErrEmptyQuestion))
			Expect(stub.calls).To(BeZero())
			Expect(tracer.runs).To(BeEmpty())
		})

		It("wraps upstream failures without retrying", func() {
			upstream := errors.New("API key not valid. Please pass a valid API key.")
			stub.err = upstream
			stub.completion = nil

			answer, err := gen.Generate(ctx, "capital of France")

			Expect(answer).To(BeEmpty())
			var genErr *generator.GenerationError
			Expect(errors.As(err, &genErr)).To(BeTrue())
			Expect(genErr.Message).To(ContainSubstring("API key not valid"))
			Expect(errors.Is(err, upstream)).To(BeTrue())
			Expect(stub.calls).To(Equal(1))
		})

		It("reports an empty answer as a failure instead of an empty success", func() {
			stub.completion = &llm.Completion{Text: ""}

			answer, err := gen.Generate(ctx, "capital of France")

			Expect(answer).To(BeEmpty())
			Expect(err).To(BeAssignableToTypeOf(&generator.GenerationError{}))
		})

		It("traces successful runs", func() {
			_, err := gen.Generate(ctx, "capital of France")
			Expect(err).NotTo(HaveOccurred())

			Expect(tracer.runs).To(HaveLen(1))
			run := tracer.runs[0]
			Expect(run.Output).To(Equal("Paris is the capital of France."))
			Expect(run.Error).To(BeEmpty())
			Expect(run.Model).To(Equal("gemini-2.5-flash"))
			Expect(run.PromptTokens).To(Equal(14))
			Expect(run.EndTime).NotTo(BeTemporally("<", run.StartTime))
		})

		It("traces failed runs with the upstream message", func() {
			stub.err = errors.New("quota exceeded")
			stub.completion = nil

			_, err := gen.Generate(ctx, "capital of France")
			Expect(err).To(HaveOccurred())

			Expect(tracer.runs).To(HaveLen(1))
			Expect(tracer.runs[0].Error).To(Equal("quota exceeded"))
			Expect(tracer.runs[0].Model).To(Equal("gemini-2.5-flash"))
		})
	})
})
