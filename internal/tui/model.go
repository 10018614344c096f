// Package tui is the interactive terminal console.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lydakis/cmdconsole/internal/command"
	"github.com/lydakis/cmdconsole/internal/console"
	"github.com/lydakis/cmdconsole/internal/httpheaders"
	"github.com/lydakis/cmdconsole/internal/response"
)

type executeDoneMsg struct{ outcome console.Outcome }

type testDoneMsg struct{ probe console.Probe }

type refreshDoneMsg struct{ refresh console.Refresh }

// Model is the bubbletea model. All session mutation happens inside Update;
// network calls run as commands and report back through the *DoneMsg types.
type Model struct {
	ctx     context.Context
	session *console.Session

	input   textinput.Model
	output  viewport.Model
	spinner spinner.Model
	keys    KeyMap
	theme   *Theme

	transcript []string
	copy       func(string) error

	windowWidth  int
	windowHeight int
	quitting     bool
}

// New returns a model over session. ctx bounds every network call.
func New(ctx context.Context, session *console.Session) Model {
	theme := NewTheme()

	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "type a command, or /help"
	in.CharLimit = 0
	in.Focus()

	out := viewport.New(minWindowWidth, minWindowHeight)

	m := Model{
		ctx:     ctx,
		session: session,
		input:   in,
		output:  out,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Header)),
		keys:    defaultKeyMap(),
		theme:   theme,
		copy:    clipboard.WriteAll,
	}
	m.print(theme.Muted.Render("cmdconsole: /help lists commands"))
	return m
}

// Run starts the program and blocks until the operator quits.
func Run(ctx context.Context, session *console.Session) error {
	p := tea.NewProgram(New(ctx, session), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init loads the activity log and reference data on start.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.startRefresh())
}

// setWindowSize enforces minimums and updates model dimensions.
func (m *Model) setWindowSize(w, h int) {
	if w < minWindowWidth {
		w = minWindowWidth
	}
	if h < minWindowHeight {
		h = minWindowHeight
	}
	m.windowWidth, m.windowHeight = w, h
	m.output.Width = w
	m.output.Height = h - chromeHeight
	m.input.Width = w - len(m.input.Prompt) - 1
	m.syncOutput()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setWindowSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case executeDoneMsg:
		m.session.FinishExecute(msg.outcome)
		m.print(m.renderOutcome(msg.outcome))
		return m, nil

	case testDoneMsg:
		m.session.FinishTest(msg.probe)
		m.print(m.renderProbe(msg.probe))
		return m, nil

	case refreshDoneMsg:
		m.session.FinishRefresh(msg.refresh)
		m.printLogs()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Submit):
		line := m.input.Value()
		m.input.SetValue("")
		return m, m.handleLine(line)
	case key.Matches(msg, m.keys.ToggleMode):
		if m.session.Mode == command.ModeNatural {
			m.session.Mode = command.ModeDirect
		} else {
			m.session.Mode = command.ModeNatural
		}
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.startRefresh()
	case key.Matches(msg, m.keys.Test):
		return m, m.startTest()
	case key.Matches(msg, m.keys.ScrollUp):
		m.output.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.output.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleLine runs one submitted line. Plain text is the natural-language
// command in natural mode and the payload JSON in direct mode.
func (m *Model) handleLine(line string) tea.Cmd {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	name, arg, isCommand := parseLine(line)
	echo := line
	if isCommand && name == "key" && arg != "" {
		echo = "/key " + httpheaders.Redact(arg)
	}
	m.print(m.theme.Echo.Render("> " + echo))

	if isCommand {
		c, found := lookupCommand(name)
		if !found {
			m.printError(fmt.Errorf("unknown command /%s (try /help)", name))
			return nil
		}
		return c.run(m, arg)
	}

	if m.session.Mode == command.ModeDirect {
		m.session.Payload = line
	} else {
		m.session.RawText = line
	}
	return m.startExecute()
}

func (m *Model) startExecute() tea.Cmd {
	call := m.session.BeginExecute()
	if call == nil {
		m.print(m.renderOutcome(m.session.Exec.Outcome))
		return nil
	}
	ctx := m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return executeDoneMsg{outcome: call(ctx)}
	})
}

func (m *Model) startTest() tea.Cmd {
	call := m.session.BeginTest()
	ctx := m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return testDoneMsg{probe: call(ctx)}
	})
}

func (m *Model) startRefresh() tea.Cmd {
	call := m.session.BeginRefresh()
	ctx := m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return refreshDoneMsg{refresh: call(ctx)}
	})
}

func (m *Model) busy() bool {
	s := m.session
	return s.Exec.InFlight > 0 ||
		s.Probe.State == console.ProbeLoading ||
		s.Logs.State == console.LogsLoading ||
		s.Ref.Loading
}

func (m *Model) print(text string) {
	m.transcript = append(m.transcript, text)
	m.syncOutput()
}

func (m *Model) printf(format string, args ...any) {
	m.print(fmt.Sprintf(format, args...))
}

func (m *Model) printError(err error) {
	m.print(m.theme.StatusError.Render("error: " + err.Error()))
}

func (m *Model) printErrorInfo(info *response.ErrorInfo) {
	m.print(m.renderErrorInfo(info))
}

func (m *Model) printLogs() {
	m.print(m.renderLogs())
}

func (m *Model) syncOutput() {
	m.output.SetContent(strings.Join(m.transcript, "\n"))
	m.output.GotoBottom()
}
