package shell_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/askbox/pkg/generator"
	"github.com/papercomputeco/askbox/pkg/llm"
	"github.com/papercomputeco/askbox/pkg/shell"
)

type countingCompleter struct {
	calls int
	got   llm.Conversation
	err   error
}

func (c *countingCompleter) Complete(_ context.Context, conv llm.Conversation) (*llm.Completion, error) {
	c.calls++
	c.got = conv
	if c.err != nil {
		return nil, c.err
	}
	return &llm.Completion{Text: "Paris."}, nil
}

var _ = Describe("Session", func() {
	var (
		ctx       context.Context
		completer *countingCompleter
	)

	BeforeEach(func() {
		ctx = context.Background()
		completer = &countingCompleter{}
	})

	Context("without a provider key", func() {
		It("stays unconfigured and never calls the model", func() {
			s := shell.NewSession(nil)

			view := s.Submit(ctx, "capital of France")

			Expect(view.State).To(Equal(shell.Unconfigured))
			Expect(view.Error).To(HavePrefix("Google API key is not set"))
			Expect(view.Answer).To(BeEmpty())
			Expect(completer.calls).To(BeZero())
		})
	})

	Context("with a provider key", func() {
		var s *shell.Session

		BeforeEach(func() {
			s = shell.NewSession(generator.New(completer))
		})

		It("starts idle", func() {
			Expect(s.State()).To(Equal(shell.Idle))
			Expect(s.View().Error).To(BeEmpty())
		})

		It("answers a question with one call", func() {
			view := s.Submit(ctx, "capital of France")

			Expect(completer.calls).To(Equal(1))
			Expect(completer.got.System.Content).To(Equal(generator.SystemInstruction))
			Expect(completer.got.User.Content).To(ContainSubstring("capital of France"))
			Expect(view.State).To(Equal(shell.Done))
			Expect(view.Answer).NotTo(BeEmpty())
			Expect(view.Error).To(BeEmpty())
			Expect(view.Busy).To(BeFalse())
		})

		It("shows the upstream failure inline", func() {
			completer.err = errors.New("API key not valid")

			view := s.Submit(ctx, "capital of France")

			Expect(view.State).To(Equal(shell.Done))
			Expect(view.Answer).To(BeEmpty())
			Expect(view.Error).To(ContainSubstring("API key not valid"))

			// The user may resubmit.
			completer.err = nil
			view = s.Submit(ctx, "capital of France")
			Expect(view.Answer).NotTo(BeEmpty())
			Expect(completer.calls).To(Equal(2))
		})

		It("ignores empty input", func() {
			view := s.Submit(ctx, "")

			Expect(view.State).To(Equal(shell.Idle))
			Expect(completer.calls).To(BeZero())
		})

		It("is busy between Begin and Finish", func() {
			Expect(s.Begin("capital of France")).To(BeTrue())
			Expect(s.View().Busy).To(BeTrue())
			Expect(s.Begin("another")).To(BeFalse())

			s.Finish(s.Answer(ctx))
			Expect(s.State()).To(Equal(shell.Done))
		})

		It("ignores Finish outside of Awaiting", func() {
			s.Finish("stray", nil)
			Expect(s.State()).To(Equal(shell.Idle))
		})
	})
})
