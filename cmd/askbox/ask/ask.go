package askcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/askbox/cmd/askbox/app"
	"github.com/papercomputeco/askbox/pkg/shell"
)

const askLongDesc string = `Ask a single question and print the answer.

The answer is rendered as markdown when stdout is a terminal and printed
as-is otherwise. A failed generation exits non-zero with the upstream error.

Examples:
  askbox ask "What is the capital of France?"
  askbox ask --raw explain merkle trees > answer.md`

const askShortDesc string = "Ask one question and print the answer"

type askCommander struct {
	opts *app.Options
	raw  bool
}

func NewAskCmd(opts *app.Options) *cobra.Command {
	cmder := &askCommander{opts: opts}

	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), strings.Join(args, " "))
		},
	}

	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the answer without markdown rendering")

	return cmd
}

func (c *askCommander) run(ctx context.Context, out, errOut io.Writer, question string) error {
	env, err := app.Load(c.opts, errOut, nil)
	if err != nil {
		return err
	}
	defer env.Close()

	if env.Answerer == nil {
		return errors.New(shell.UnconfiguredText)
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return errors.New("question is empty")
	}

	answer, err := env.Answerer.Generate(ctx, question)
	if err != nil {
		return errors.New(shell.Describe(err))
	}

	if !c.raw && isTerminal(out) {
		if rendered, err := glamour.Render(answer, "auto"); err == nil {
			answer = rendered
		}
	}

	_, err = fmt.Fprintln(out, strings.TrimRight(answer, "\n"))
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
