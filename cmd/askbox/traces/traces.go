package tracescmder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/askbox/pkg/logger"
	"github.com/papercomputeco/askbox/pkg/merkle"
	"github.com/papercomputeco/askbox/web"
)

const tracesShortDesc string = "Inspect and merge recorded answers"

const listLongDesc string = `List the conversations recorded with "askbox serve --tape-db".

Each recorded answer is printed with the question that produced it.

Examples:
  askbox traces list
  askbox traces list --tape-db /tmp/tapes.db`

const listShortDesc string = "List recorded answers"

func NewTracesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "traces",
		Short: tracesShortDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(NewMergeCmd())

	return cmd
}

type listCommander struct {
	tapePath string
	width    int
}

func newListCmd() *cobra.Command {
	cmder := &listCommander{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.tapePath, "tape-db", "s", "", "Path to the tape database (default: ~/.askbox/tapes.db)")
	cmd.Flags().IntVar(&cmder.width, "width", 100, "Truncate answers to this many characters")

	return cmd
}

func (c *listCommander) run(ctx context.Context, cmd *cobra.Command) error {
	if c.width < 1 {
		return fmt.Errorf("--width must be at least 1, got %d", c.width)
	}

	dbPath, err := resolveTapePath(c.tapePath)
	if err != nil {
		return fmt.Errorf("could not resolve tape database: %w", err)
	}

	storer, err := merkle.NewSQLiteStorer(dbPath)
	if err != nil {
		return fmt.Errorf("could not open tape database %s: %w", dbPath, err)
	}
	defer storer.Close()

	leaves, err := storer.Leaves(ctx)
	if err != nil {
		return fmt.Errorf("could not list answers: %w", err)
	}

	if len(leaves) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded answers.")
		return nil
	}

	for _, leaf := range leaves {
		trace, err := web.BuildTrace(ctx, storer, leaf.Hash)
		if err != nil {
			return fmt.Errorf("could not read trace %s: %w", leaf.Hash, err)
		}

		var question, answer, model string
		for _, turn := range trace.Turns {
			switch turn.Role {
			case "user":
				question = turn.Content
			case "assistant":
				answer = turn.Content
				model = turn.Model
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n  Q: %s\n  A: %s\n",
			leaf.Hash[:12], model,
			logger.Truncate(question, c.width),
			logger.Truncate(answer, c.width),
		)
	}

	return nil
}

// resolveTapePath returns path, or the default location with its directory created.
func resolveTapePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".askbox")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "tapes.db"), nil
}
