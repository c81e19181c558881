package servecmder

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/askbox/cmd/askbox/app"
	"github.com/papercomputeco/askbox/pkg/config"
	"github.com/papercomputeco/askbox/pkg/merkle"
	"github.com/papercomputeco/askbox/web"
)

const serveLongDesc string = `Serve the askbox page over HTTP.

The page has a single text box. Submitting a question sends it to Gemini and
shows the answer below the box. When GOOGLE_API_KEY is missing the page shows
a configuration error instead.

With --tape-db every successful answer is recorded in a SQLite Merkle DAG and
can be inspected at /traces.

Examples:
  askbox serve
  askbox serve --listen :9000 --tape-db ~/.askbox/tapes.db`

const serveShortDesc string = "Serve the askbox web page"

type serveCommander struct {
	opts        *app.Options
	listen      string
	tapeDB      string
	watchConfig bool
}

func NewServeCmd(opts *app.Options) *cobra.Command {
	cmder := &serveCommander{opts: opts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (default: ASKBOX_LISTEN or :8501)")
	cmd.Flags().StringVar(&cmder.tapeDB, "tape-db", "", "Record answers into this SQLite database")
	cmd.Flags().BoolVar(&cmder.watchConfig, "watch-config", false, "Warn when secret files change on disk")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	var storer merkle.Storer
	if c.tapeDB != "" {
		s, err := merkle.NewSQLiteStorer(c.tapeDB)
		if err != nil {
			return fmt.Errorf("could not open tape database %s: %w", c.tapeDB, err)
		}
		defer s.Close()
		storer = s
	}

	env, err := app.Load(c.opts, os.Stdout, storer)
	if err != nil {
		return err
	}
	defer env.Close()

	listen := c.listen
	if listen == "" {
		listen = env.Config.ListenAddr
	}

	var serverOpts []web.Option
	if storer != nil {
		serverOpts = append(serverOpts, web.WithStorer(storer))
		env.Logger.Info("recording answers", zap.String("path", c.tapeDB))
	}

	srv := web.New(web.Config{
		ListenAddr: listen,
		Model:      env.Config.Model,
	}, env.Answerer, env.Logger, serverOpts...)

	if c.watchConfig && len(env.Config.Files) > 0 {
		go func() {
			if err := config.Watch(ctx, env.Config.Files, env.Logger); err != nil {
				env.Logger.Warn("could not watch configuration files", zap.Error(err))
			}
		}()
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Run()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		env.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
