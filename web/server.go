// Package web serves the askbox page and JSON API over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"expvar"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/askbox/pkg/generator"
	"github.com/papercomputeco/askbox/pkg/llm"
	"github.com/papercomputeco/askbox/pkg/merkle"
	"github.com/papercomputeco/askbox/pkg/shell"
)

// Process-wide counters, published at /debug/vars.
var (
	generationsTotal        = expvar.NewInt("generations_total")
	generationFailuresTotal = expvar.NewInt("generation_failures_total")
)

// Server is the web presentation shell. Each request gets its own
// shell.Session; nothing mutable is shared between requests.
type Server struct {
	config   Config
	answerer shell.Answerer
	storer   merkle.Storer
	logger   *zap.Logger
	app      *fiber.App
}

// Option configures a Server.
type Option func(*Server)

// WithStorer enables the recorded trace endpoints.
func WithStorer(storer merkle.Storer) Option {
	return func(s *Server) {
		s.storer = storer
	}
}

// New creates a Server. A nil answerer means the provider key is missing:
// every page shows the configuration banner and no generation is attempted.
func New(config Config, answerer shell.Answerer, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		config:   config,
		answerer: answerer,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		AppName:               "askbox",
	})

	app.Get("/", s.handleIndex)
	app.Post("/", s.handleSubmit)
	app.Post("/api/generate", s.handleGenerate)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
	app.Get("/debug/vars", adaptor.HTTPHandler(expvar.Handler()))

	if s.storer != nil {
		app.Get("/traces", s.handleListTraces)
		app.Get("/traces/:hash", s.handleGetTrace)
	}

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting web shell",
		zap.String("listen", s.config.ListenAddr),
		zap.Bool("configured", s.answerer != nil),
	)

	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) newSession() *shell.Session {
	if s.answerer == nil {
		return shell.NewSession(nil)
	}
	return shell.NewSession(countingAnswerer{s.answerer})
}

// handleIndex renders the page in Idle (or Unconfigured).
func (s *Server) handleIndex(c *fiber.Ctx) error {
	return s.render(c, s.newSession().View())
}

// handleSubmit answers the form's question and renders the result. Empty
// input re-renders the idle page without calling the model.
func (s *Server) handleSubmit(c *fiber.Ctx) error {
	question := c.FormValue("question")
	view := s.newSession().Submit(c.UserContext(), question)

	if view.State == shell.Done {
		s.logger.Debug("form submission answered",
			zap.Bool("failed", view.Error != ""),
		)
	}
	return s.render(c, view)
}

type generateRequest struct {
	Question string `json:"question"`
}

type generateResponse struct {
	Answer string `json:"answer"`
}

// handleGenerate is the JSON form of handleSubmit.
func (s *Server) handleGenerate(c *fiber.Ctx) error {
	var req generateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	if s.answerer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(llm.ErrorResponse{Error: shell.UnconfiguredText})
	}
	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: generator.ErrEmptyQuestion.Error()})
	}

	answer, err := countingAnswerer{s.answerer}.Generate(c.UserContext(), req.Question)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: shell.Describe(err)})
	}

	return c.JSON(generateResponse{Answer: answer})
}

func (s *Server) render(c *fiber.Ctx, view shell.View) error {
	page, err := renderPage(view, s.config.Model)
	if err != nil {
		s.logger.Error("failed to render page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}
	c.Type("html", "utf-8")
	return c.Send(page)
}

// countingAnswerer updates the expvar counters around each generation.
type countingAnswerer struct {
	next shell.Answerer
}

func (a countingAnswerer) Generate(ctx context.Context, question string) (string, error) {
	answer, err := a.next.Generate(ctx, question)
	if errors.Is(err, generator.ErrEmptyQuestion) {
		return answer, err
	}
	generationsTotal.Add(1)
	if err != nil {
		generationFailuresTotal.Add(1)
	}
	return answer, err
}
