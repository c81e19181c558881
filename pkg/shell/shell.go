// Package shell holds the presentation state machine shared by the web and
// terminal front ends.
package shell

import (
	"context"
	"errors"

	"github.com/papercomputeco/askbox/pkg/generator"
)

// Text shown by every front end.
const (
	Title            = "Demo With Google Gemini API"
	Placeholder      = "Search the topic you want"
	BusyText         = "Thinking..."
	UnconfiguredText = "Google API key is not set. Please add it to your .env file."
)

// State is the presentation state of a session.
type State int

const (
	// Idle waits for input.
	Idle State = iota
	// Awaiting has a generation in flight.
	Awaiting
	// Done shows a result or an error; the next submission starts over.
	Done
	// Unconfigured is terminal: the provider key was missing at startup.
	Unconfigured
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Awaiting:
		return "awaiting"
	case Done:
		return "done"
	case Unconfigured:
		return "unconfigured"
	default:
		return "unknown"
	}
}

// Answerer produces an answer for a question. *generator.Generator satisfies it.
type Answerer interface {
	Generate(ctx context.Context, question string) (string, error)
}

// View is everything a front end needs to render the session.
type View struct {
	State       State  `json:"state"`
	Title       string `json:"title"`
	Placeholder string `json:"placeholder"`
	Question    string `json:"question,omitempty"`
	Answer      string `json:"answer,omitempty"`
	Error       string `json:"error,omitempty"`
	Busy        bool   `json:"busy"`
}

// Session is one user's presentation state. It is not safe for concurrent use;
// each web request or terminal program owns its own Session.
type Session struct {
	answerer Answerer
	state    State
	question string
	answer   string
	err      string
}

// NewSession returns a session in Idle, or in Unconfigured when answerer is nil.
func NewSession(answerer Answerer) *Session {
	s := &Session{answerer: answerer}
	if answerer == nil {
		s.state = Unconfigured
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Begin moves to Awaiting for a non-empty question. It returns false and
// leaves the state untouched for an empty question, while a generation is in
// flight, or when the session is unconfigured.
func (s *Session) Begin(question string) bool {
	if question == "" || s.state == Awaiting || s.state == Unconfigured {
		return false
	}
	s.state = Awaiting
	s.question = question
	s.answer = ""
	s.err = ""
	return true
}

// Finish records the outcome of the in-flight generation and moves to Done.
func (s *Session) Finish(answer string, err error) {
	if s.state != Awaiting {
		return
	}
	s.state = Done
	if err != nil {
		s.err = Describe(err)
		return
	}
	s.answer = answer
}

// Answer runs the generation for the current Awaiting question. Front ends
// that cannot block (the terminal UI) call it off the event loop and hand the
// result to Finish.
func (s *Session) Answer(ctx context.Context) (string, error) {
	return s.answerer.Generate(ctx, s.question)
}

// Submit is Begin, Answer and Finish in one synchronous step.
func (s *Session) Submit(ctx context.Context, question string) View {
	if s.Begin(question) {
		s.Finish(s.Answer(ctx))
	}
	return s.View()
}

// View snapshots the session for rendering.
func (s *Session) View() View {
	v := View{
		State:       s.state,
		Title:       Title,
		Placeholder: Placeholder,
		Question:    s.question,
		Answer:      s.answer,
		Busy:        s.state == Awaiting,
	}
	switch s.state {
	case Unconfigured:
		v.Error = UnconfiguredText
	case Done:
		v.Error = s.err
	}
	return v
}

// Describe turns a generation failure into the text shown to the user.
func Describe(err error) string {
	var genErr *generator.GenerationError
	if errors.As(err, &genErr) {
		return "Could not generate a response: " + genErr.Message
	}
	return "Could not generate a response: " + err.Error()
}
