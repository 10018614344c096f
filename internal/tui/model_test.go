package tui

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lydakis/cmdconsole/internal/api"
	"github.com/lydakis/cmdconsole/internal/api/apitest"
	"github.com/lydakis/cmdconsole/internal/command"
	"github.com/lydakis/cmdconsole/internal/config"
	"github.com/lydakis/cmdconsole/internal/console"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) (Model, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	conn := config.Connection{BaseURL: srv.URL, AuthMode: config.AuthOff, HeaderName: config.DefaultHeaderName}
	session := console.NewSession(console.NewExecutor(api.New()), nil, conn, config.Defaults())
	m := New(context.Background(), session)
	m.copy = func(string) error { return nil }
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model), srv
}

// settle runs cmd and feeds the console's own result messages back into the
// model. Other messages (spinner ticks, blink) are dropped.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		switch msg.(type) {
		case executeDoneMsg, testDoneMsg, refreshDoneMsg:
			updated, _ := m.Update(msg)
			m = updated.(Model)
		}
	}
	return m
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func submit(t *testing.T, m Model, line string) Model {
	t.Helper()
	m.input.SetValue(line)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return settle(t, updated.(Model), cmd)
}

func lastOutput(m Model) string {
	if len(m.transcript) == 0 {
		return ""
	}
	return m.transcript[len(m.transcript)-1]
}

func TestPlainTextRunsNaturalCommand(t *testing.T) {
	m, srv := newTestModel(t)

	m = submit(t, m, "assign inspection to crane 4")

	reqs := srv.RequestsTo("/commands")
	require.Len(t, reqs, 1)
	assert.Contains(t, string(reqs[0].Body), `"raw_text":"assign inspection to crane 4"`)
	assert.True(t, m.session.Exec.Outcome.OK())
	assert.Contains(t, lastOutput(m), "Status: 200")
	assert.Empty(t, m.input.Value())
}

func TestPlainTextInDirectModeIsPayload(t *testing.T) {
	m, srv := newTestModel(t)
	m = submit(t, m, "/mode direct")
	require.Equal(t, command.ModeDirect, m.session.Mode)

	m = submit(t, m, `{"asset_id": "a-1"}`)

	reqs := srv.RequestsTo("/commands")
	require.Len(t, reqs, 1)
	assert.Contains(t, string(reqs[0].Body), `"action":"assign_task"`)
	assert.Contains(t, string(reqs[0].Body), `"asset_id":"a-1"`)
}

func TestRunWithoutTextIsRejectedLocally(t *testing.T) {
	m, srv := newTestModel(t)

	m = submit(t, m, "/run")

	assert.Empty(t, srv.RequestsTo("/commands"))
	require.NotNil(t, m.session.Exec.Outcome.Err)
	assert.Equal(t, "invalid_request", m.session.Exec.Outcome.Err.Code)
	assert.Contains(t, lastOutput(m), "raw_text is required.")
}

func TestInvalidPayloadIsReported(t *testing.T) {
	m, srv := newTestModel(t)
	m = submit(t, m, "/mode direct")

	m = submit(t, m, "5")

	assert.Empty(t, srv.RequestsTo("/commands"))
	assert.Contains(t, lastOutput(m), "Payload must be a JSON object")
}

func TestDomainErrorIsRendered(t *testing.T) {
	m, srv := newTestModel(t)
	srv.Reply("/commands", apitest.Reply{Status: http.StatusBadRequest, Body: map[string]any{
		"error_code": "missing_fields", "message": "need more", "missing_fields": []string{"asset_id"},
	}})

	m = submit(t, m, "assign")

	out := lastOutput(m)
	assert.Contains(t, out, "missing_fields")
	assert.Contains(t, out, "missing: asset_id")
	assert.Contains(t, m.View(), "Status: 400")
}

func TestAuthCommandsAttachAndDropHeader(t *testing.T) {
	m, srv := newTestModel(t)
	m = submit(t, m, "/key sk-tui")
	m = submit(t, m, "/auth api_key")
	m = submit(t, m, "ping")
	m = submit(t, m, "/auth off")
	m = submit(t, m, "ping")

	reqs := srv.RequestsTo("/commands")
	require.Len(t, reqs, 2)
	assert.Equal(t, "sk-tui", reqs[0].Header.Get(config.DefaultHeaderName))
	assert.Empty(t, reqs[1].Header.Get(config.DefaultHeaderName))
	assert.NotContains(t, m.View(), "sk-tui")
}

func TestLogsFilterAndShow(t *testing.T) {
	m, srv := newTestModel(t)
	srv.Reply("/command-logs", apitest.Reply{Status: http.StatusOK, Body: []any{
		map[string]any{"id": "rec-1", "raw_text": "deploy crane", "status": "success", "created_at": "2026-01-01T00:00:00Z", "intent_json": map[string]any{"action": "assign_task"}},
		map[string]any{"id": "rec-2", "raw_text": "other", "status": "error", "created_at": "2026-01-01T00:00:00Z", "intent_json": map[string]any{}},
	}})

	m = submit(t, m, "/logs")
	assert.Contains(t, lastOutput(m), "logs: 2 of 2")

	m = submit(t, m, "/filter error")
	assert.Contains(t, lastOutput(m), "logs: 1 of 2")
	assert.Contains(t, lastOutput(m), "rec-2")

	m = submit(t, m, "/filter all")
	m = submit(t, m, "/search DEPLOY")
	assert.Contains(t, lastOutput(m), "rec-1")
	assert.NotContains(t, lastOutput(m), "rec-2")

	m = submit(t, m, "/show rec-1")
	assert.Contains(t, lastOutput(m), `"action": "assign_task"`)

	m = submit(t, m, "/show nope")
	assert.Contains(t, lastOutput(m), "no log record")
}

func TestAssetAndTaskPicker(t *testing.T) {
	m, _ := newTestModel(t)

	m = submit(t, m, "/asset a-1")
	m = submit(t, m, "/task t-2")

	assert.JSONEq(t, `{"asset_id":"a-1","task_id":"t-2"}`, m.session.Payload)
}

func TestAssetPickerReportsArrayPayload(t *testing.T) {
	m, _ := newTestModel(t)
	m.session.Payload = `["keep"]`

	m = submit(t, m, "/asset a-1")

	assert.Contains(t, lastOutput(m), "must be a JSON object")
	assert.Equal(t, `["keep"]`, m.session.Payload)
}

func TestCopyUsesClipboard(t *testing.T) {
	m, _ := newTestModel(t)
	var copied string
	m.copy = func(s string) error { copied = s; return nil }

	m = submit(t, m, "/copy request")
	assert.Contains(t, lastOutput(m), "invalid_request")
	assert.Empty(t, copied)

	m.session.RawText = "assign"
	m = submit(t, m, "/copy")
	assert.Contains(t, copied, `"raw_text": "assign"`)

	m.copy = func(string) error { return errors.New("no clipboard") }
	m = submit(t, m, "/copy request")
	assert.Contains(t, lastOutput(m), "no clipboard")
}

func TestTestConnectionCommand(t *testing.T) {
	m, _ := newTestModel(t)

	m = submit(t, m, "/test")

	assert.Equal(t, console.ProbeSuccess, m.session.Probe.State)
	assert.Contains(t, lastOutput(m), "connection ok: ok")
}

func TestUnknownCommand(t *testing.T) {
	m, _ := newTestModel(t)
	m = submit(t, m, "/frobnicate")
	assert.Contains(t, lastOutput(m), "unknown command /frobnicate")
}

func TestHelpListsEveryCommand(t *testing.T) {
	m, _ := newTestModel(t)
	m = submit(t, m, "/help")
	out := lastOutput(m)
	for _, c := range slashCommands {
		assert.True(t, strings.Contains(out, c.usage), "help missing %s", c.usage)
	}
}

func TestTabTogglesMode(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	assert.Equal(t, command.ModeDirect, m.session.Mode)
	assert.Contains(t, m.View(), "mode direct:assign_task")
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, updated.(Model).View())
}

func TestParseLine(t *testing.T) {
	name, arg, ok := parseLine(`  /Payload {"a": 1}  `)
	require.True(t, ok)
	assert.Equal(t, "payload", name)
	assert.Equal(t, `{"a": 1}`, arg)

	_, _, ok = parseLine("plain text")
	assert.False(t, ok)
	_, _, ok = parseLine("/")
	assert.False(t, ok)
}
