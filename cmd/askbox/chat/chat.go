package chatcmder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/askbox/cmd/askbox/app"
	"github.com/papercomputeco/askbox/pkg/tui"
)

const chatLongDesc string = `Open the askbox terminal UI.

Type a question and press enter. The answer replaces the previous one; no
conversation history is kept. Logs are written to a file because the
terminal belongs to the UI.

Examples:
  askbox chat
  askbox chat --log-file /tmp/askbox.log`

const chatShortDesc string = "Ask questions from a terminal UI"

type chatCommander struct {
	opts    *app.Options
	logFile string
}

func NewChatCmd(opts *app.Options) *cobra.Command {
	cmder := &chatCommander{opts: opts}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cmder.logFile, "log-file", filepath.Join(os.TempDir(), "askbox-chat.log"), "Where to write logs")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	f, err := os.OpenFile(c.logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("could not open log file %s: %w", c.logFile, err)
	}
	defer f.Close()

	env, err := app.Load(c.opts, f, nil)
	if err != nil {
		return err
	}
	defer env.Close()

	return tui.Run(ctx, env.Answerer)
}
