// Package app wires configuration into the components shared by the askbox
// subcommands.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/askbox/pkg/config"
	"github.com/papercomputeco/askbox/pkg/gemini"
	"github.com/papercomputeco/askbox/pkg/generator"
	"github.com/papercomputeco/askbox/pkg/logger"
	"github.com/papercomputeco/askbox/pkg/merkle"
	"github.com/papercomputeco/askbox/pkg/shell"
	"github.com/papercomputeco/askbox/pkg/telemetry"
)

// Options are the persistent flags of the root command.
type Options struct {
	ConfigPath string
	EnvFile    string
	Debug      bool

	// GeminiBaseURL overrides the Gemini endpoint. Hidden flag, used by tests.
	GeminiBaseURL string
}

// Env is the loaded configuration plus everything built from it.
type Env struct {
	Config *config.Config
	Logger *zap.Logger

	// Answerer is nil when the provider key is missing.
	Answerer shell.Answerer

	closers []func(context.Context) error
}

// Load reads configuration and builds the logger, tracer and answerer.
// Logs go to logOut. When storer is non-nil, successful runs are recorded
// into it.
func Load(opts *Options, logOut io.Writer, storer merkle.Storer) (*Env, error) {
	cfg, err := config.Load(config.Options{
		ConfigPath: opts.ConfigPath,
		EnvFile:    opts.EnvFile,
	})
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}

	log := logger.NewLoggerTo(logOut, opts.Debug)
	env := &Env{Config: cfg, Logger: log}

	log.Debug("configuration loaded",
		zap.Stringer("provider_key", cfg.Credentials.Provider),
		zap.Stringer("telemetry_key", cfg.Credentials.Telemetry),
		zap.String("model", cfg.Model),
		zap.Strings("files", cfg.Files),
	)

	key, ok := cfg.Credentials.Provider.Get()
	if !ok {
		log.Warn("provider key is not set; generation is disabled", zap.String("env", config.EnvProviderKey))
		return env, nil
	}

	client := gemini.New(key,
		gemini.WithModel(cfg.Model),
		gemini.WithTimeout(cfg.Timeout),
		gemini.WithBaseURL(opts.GeminiBaseURL),
	)

	env.Answerer = generator.New(client,
		generator.WithModel(client.Model()),
		generator.WithLogger(log),
		generator.WithTracer(env.tracer(storer)),
	)
	return env, nil
}

// Close flushes telemetry, waiting at most a few seconds.
func (e *Env) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, c := range e.closers {
		if err := c(ctx); err != nil {
			e.Logger.Warn("telemetry did not flush", zap.Error(err))
		}
	}
	_ = e.Logger.Sync()
}

func (e *Env) tracer(storer merkle.Storer) telemetry.Tracer {
	var tracers telemetry.Multi

	if key, ok := e.Config.Credentials.Telemetry.Get(); ok {
		t := telemetry.Async(telemetry.NewLangSmith(e.Config.TelemetryEndpoint, key, e.Config.TelemetryProject), e.Logger, 0)
		e.closers = append(e.closers, t.Close)
		tracers = append(tracers, t)
		e.Logger.Info("tracing enabled",
			zap.String("endpoint", e.Config.TelemetryEndpoint),
			zap.String("project", e.Config.TelemetryProject),
		)
	}

	if storer != nil {
		t := telemetry.Async(telemetry.NewRecorder(storer), e.Logger, 0)
		e.closers = append(e.closers, t.Close)
		tracers = append(tracers, t)
	}

	if len(tracers) == 0 {
		return telemetry.Nop{}
	}
	return tracers
}
