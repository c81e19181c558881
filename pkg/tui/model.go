// Package tui is the terminal presentation shell.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/papercomputeco/askbox/pkg/shell"
)

const defaultWidth = 80

// answerMsg carries the outcome of a generation back to the event loop.
type answerMsg struct {
	answer string
	err    error
}

// Model is the bubbletea model wrapping a shell.Session.
type Model struct {
	ctx      context.Context
	session  *shell.Session
	input    textinput.Model
	spinner  spinner.Model
	style    string
	width    int
	rendered string
}

// New creates the model. A nil answerer renders the configuration banner only.
func New(ctx context.Context, answerer shell.Answerer) Model {
	ti := textinput.New()
	ti.Placeholder = shell.Placeholder
	ti.Prompt = "› "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = busyStyle

	style := "light"
	if termenv.HasDarkBackground() {
		style = "dark"
	}

	return Model{
		ctx:     ctx,
		session: shell.NewSession(answerer),
		input:   ti,
		spinner: sp,
		style:   style,
		width:   defaultWidth,
	}
}

func (m Model) Init() tea.Cmd {
	if m.session.State() == shell.Unconfigured {
		return nil
	}
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if !m.session.Begin(m.input.Value()) {
				return m, nil
			}
			m.rendered = ""
			return m, tea.Batch(m.spinner.Tick, m.answer())
		}

	case answerMsg:
		m.session.Finish(msg.answer, msg.err)
		if view := m.session.View(); view.Error == "" {
			m.rendered = m.render(view.Answer)
		}
		return m, nil

	case spinner.TickMsg:
		if m.session.State() != shell.Awaiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		return m, nil
	}

	if m.session.State() == shell.Unconfigured || m.session.State() == shell.Awaiting {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	view := m.session.View()

	var b strings.Builder
	b.WriteString(titleStyle.Render(view.Title))
	b.WriteString("\n")

	if view.State == shell.Unconfigured {
		b.WriteString(errorStyle.Render(view.Error))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc to quit"))
		return b.String()
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch view.State {
	case shell.Awaiting:
		b.WriteString(m.spinner.View() + " " + busyStyle.Render(shell.BusyText))
		b.WriteString("\n")
	case shell.Done:
		b.WriteString(questionStyle.Render(ansi.Truncate(view.Question, max(m.width-4, 10), "…")))
		b.WriteString("\n")
		if view.Error != "" {
			b.WriteString(errorStyle.Render(view.Error))
			b.WriteString("\n")
		} else {
			b.WriteString(m.rendered)
		}
	}

	b.WriteString(helpStyle.Render("enter to ask • esc to quit"))
	return b.String()
}

// answer runs the generation off the event loop.
func (m Model) answer() tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		answer, err := session.Answer(ctx)
		return answerMsg{answer: answer, err: err}
	}
}

// render formats the answer as markdown, falling back to plain text.
func (m Model) render(answer string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(max(m.width-4, 20)),
	)
	if err != nil {
		return answer + "\n"
	}
	out, err := r.Render(answer)
	if err != nil {
		return answer + "\n"
	}
	return out
}

// Run starts the terminal program and blocks until the user quits.
func Run(ctx context.Context, answerer shell.Answerer, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(New(ctx, answerer), opts...).Run()
	return err
}
