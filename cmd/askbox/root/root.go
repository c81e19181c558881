package rootcmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/askbox/cmd/askbox/app"
	askcmder "github.com/papercomputeco/askbox/cmd/askbox/ask"
	chatcmder "github.com/papercomputeco/askbox/cmd/askbox/chat"
	mcpcmder "github.com/papercomputeco/askbox/cmd/askbox/mcp"
	servecmder "github.com/papercomputeco/askbox/cmd/askbox/serve"
	tracescmder "github.com/papercomputeco/askbox/cmd/askbox/traces"
)

const rootLongDesc string = `askbox asks Google Gemini a question and shows the answer.

The Gemini API key is read from GOOGLE_API_KEY (environment, .env file, or
the TOML config file). Setting LANGCHAIN_API_KEY enables request tracing.

Examples:
  askbox serve
  askbox ask "What is the capital of France?"
  askbox chat`

const rootShortDesc string = "Ask Google Gemini a question"

func NewRootCmd() *cobra.Command {
	opts := &app.Options{}

	cmd := &cobra.Command{
		Use:          "askbox",
		Short:        rootShortDesc,
		Long:         rootLongDesc,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to TOML config file (default: user config dir)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "Path to .env secret file")
	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.GeminiBaseURL, "gemini-base-url", "", "Override the Gemini API base URL")
	_ = cmd.PersistentFlags().MarkHidden("gemini-base-url")

	cmd.AddCommand(servecmder.NewServeCmd(opts))
	cmd.AddCommand(askcmder.NewAskCmd(opts))
	cmd.AddCommand(chatcmder.NewChatCmd(opts))
	cmd.AddCommand(mcpcmder.NewMCPCmd(opts))
	cmd.AddCommand(tracescmder.NewTracesCmd())

	return cmd
}
