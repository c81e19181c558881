package mcpcmder

import (
	"context"
	"errors"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/askbox/cmd/askbox/app"
	"github.com/papercomputeco/askbox/pkg/shell"
)

const mcpLongDesc string = `Serve askbox as a Model Context Protocol server over stdio.

The server exposes one tool, "ask", which takes a question and returns
Gemini's answer as text. Logs go to stderr since stdout carries the protocol.

Examples:
  askbox mcp`

const mcpShortDesc string = "Serve the ask tool over MCP stdio"

const version = "v0.1.0"

type mcpCommander struct {
	opts *app.Options
}

func NewMCPCmd(opts *app.Options) *cobra.Command {
	cmder := &mcpCommander{opts: opts}

	return &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}
}

func (c *mcpCommander) run(ctx context.Context) error {
	env, err := app.Load(c.opts, os.Stderr, nil)
	if err != nil {
		return err
	}
	defer env.Close()

	return newServer(env.Answerer).Run(ctx, &mcp.StdioTransport{})
}

type askInput struct {
	Question string `json:"question" jsonschema:"the question to ask Gemini"`
}

type askOutput struct {
	Answer string `json:"answer"`
}

// newServer builds the MCP server. A nil answerer still registers the tool so
// clients see the configuration error instead of a missing tool.
func newServer(answerer shell.Answerer) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "askbox", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask Google Gemini a single question and return its answer.",
	}, askHandler(answerer))

	return server
}

func askHandler(answerer shell.Answerer) mcp.ToolHandlerFor[askInput, askOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in askInput) (*mcp.CallToolResult, askOutput, error) {
		if answerer == nil {
			return nil, askOutput{}, errors.New(shell.UnconfiguredText)
		}
		if in.Question == "" {
			return nil, askOutput{}, errors.New("question is empty")
		}

		answer, err := answerer.Generate(ctx, in.Question)
		if err != nil {
			return nil, askOutput{}, errors.New(shell.Describe(err))
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: answer}},
		}, askOutput{Answer: answer}, nil
	}
}
