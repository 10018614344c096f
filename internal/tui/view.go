package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lydakis/cmdconsole/internal/activity"
	"github.com/lydakis/cmdconsole/internal/api"
	"github.com/lydakis/cmdconsole/internal/command"
	"github.com/lydakis/cmdconsole/internal/console"
	"github.com/lydakis/cmdconsole/internal/httpheaders"
	"github.com/lydakis/cmdconsole/internal/payload"
	"github.com/lydakis/cmdconsole/internal/response"
)

// chromeHeight is the number of rows used by everything except the output.
const chromeHeight = 6

// View renders the console.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	parts := []string{
		m.headerView(),
		m.output.View(),
		m.theme.StatusBar.Width(m.windowWidth).Render(m.statusView()),
		m.previewView(),
		m.input.View(),
		m.helpView(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) headerView() string {
	s := m.session
	auth := string(s.Conn.AuthMode)
	if s.Conn.AuthHeaders()[s.Conn.HeaderName] != "" {
		auth += " " + s.Conn.HeaderName + "=" + httpheaders.Redact(s.Conn.Credential)
	}
	mode := string(s.Mode)
	if s.Mode == command.ModeDirect {
		mode += ":" + s.Action
	}
	return m.theme.Header.Render("cmdconsole") + "  " +
		s.Conn.BaseURL + "  " +
		m.theme.Muted.Render("auth "+auth+"  mode "+mode+"  by "+s.RequestedBy)
}

func (m Model) statusView() string {
	o := m.session.Exec.Outcome
	line := fmt.Sprintf("Status: %s  Latency: %s", response.FormatStatus(o.Status), response.FormatLatency(o.Latency))
	switch {
	case o.Err != nil:
		line = m.theme.StatusError.Render(line + "  " + o.Err.Code)
	case o.OK():
		line = m.theme.StatusSuccess.Render(line)
	}
	if m.busy() {
		line = m.spinner.View() + " " + line
	}
	switch m.session.Probe.State {
	case console.ProbeSuccess:
		line += "  " + m.theme.StatusSuccess.Render("health: "+m.session.Probe.Message)
	case console.ProbeError:
		line += "  " + m.theme.StatusError.Render("health: "+m.session.Probe.Message)
	}
	return line
}

// previewView is the single-line form of the body the next run would send.
func (m Model) previewView() string {
	body, info := m.session.Preview()
	if info != nil {
		return m.theme.StatusError.Render("preview: " + info.Message)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(body)); err != nil {
		return m.theme.Muted.Render("preview: " + body)
	}
	text := "preview: " + buf.String()
	if m.windowWidth > 0 && lipgloss.Width(text) > m.windowWidth {
		text = truncate(text, m.windowWidth)
	}
	return m.theme.Muted.Render(text)
}

func (m Model) helpView() string {
	var parts []string
	for _, b := range m.keys.shortHelp() {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return m.theme.Muted.Render(strings.Join(parts, " • "))
}

func truncate(s string, w int) string {
	if w <= 1 {
		return ""
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > w-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func (m Model) renderOutcome(o console.Outcome) string {
	var b strings.Builder
	if o.Sent() {
		fmt.Fprintf(&b, "Status: %s  Latency: %s\n", response.FormatStatus(o.Status), response.FormatLatency(o.Latency))
	}
	if o.Err != nil {
		b.WriteString(m.renderErrorInfo(o.Err))
		b.WriteString("\n")
	}
	if body := response.PrettyJSON(o.Body); body != "" {
		b.WriteString(body)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderErrorInfo(info *response.ErrorInfo) string {
	var b strings.Builder
	b.WriteString(m.theme.StatusError.Render(info.Code))
	if info.Message != "" {
		b.WriteString(": " + info.Message)
	}
	if len(info.MissingFields) > 0 {
		b.WriteString("\n  missing: " + strings.Join(info.MissingFields, ", "))
	}
	for _, d := range info.Details {
		b.WriteString("\n  - " + d)
	}
	return b.String()
}

func (m Model) renderProbe(p console.Probe) string {
	if p.State == console.ProbeSuccess {
		return m.theme.StatusSuccess.Render("connection ok: " + p.Message)
	}
	return m.theme.StatusError.Render("connection failed: " + p.Message)
}

func (m Model) renderLogs() string {
	s := m.session
	if s.Logs.State == console.LogsError {
		return m.theme.StatusError.Render("logs: " + s.Logs.Err)
	}
	visible := s.VisibleLogs()
	header := fmt.Sprintf("logs: %d of %d (status %s", len(visible), len(s.Logs.Records), s.StatusFilter)
	if strings.TrimSpace(s.Search) != "" {
		header += fmt.Sprintf(", search %q", strings.TrimSpace(s.Search))
	}
	header += ")"
	return strings.TrimRight(header+"\n"+renderLogTable(visible), "\n")
}

// renderLogTable renders one line per record.
func renderLogTable(records []activity.Record) string {
	var b strings.Builder
	for _, r := range records {
		action := r.Action()
		if action == "" {
			action = "-"
		}
		fmt.Fprintf(&b, "  %-10s %-8s %-20s %-16s %s\n",
			shortID(r.ID), r.Status, formatTime(r.CreatedAt), action, r.RawText)
	}
	return b.String()
}

func renderRecord(r activity.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "id:       %s\n", r.ID)
	fmt.Fprintf(&b, "status:   %s\n", r.Status)
	fmt.Fprintf(&b, "created:  %s\n", formatTime(r.CreatedAt))
	fmt.Fprintf(&b, "api key:  %s\n", optional(r.APIKeyName, r.APIKeyID))
	fmt.Fprintf(&b, "role:     %s\n", optional(r.Role))
	fmt.Fprintf(&b, "raw text: %s\n", r.RawText)
	b.WriteString("intent:\n")
	b.WriteString(payload.Format(r.Intent))
	return b.String()
}

func renderReference(ref api.Reference) string {
	var b strings.Builder
	b.WriteString("assets:\n")
	if len(ref.Assets) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, a := range ref.Assets {
		fmt.Fprintf(&b, "  %-12s %s\n", a.ID, a.Name)
	}
	b.WriteString("tasks:\n")
	if len(ref.Tasks) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, t := range ref.Tasks {
		fmt.Fprintf(&b, "  %-12s %s\n", t.ID, t.Title)
	}
	return strings.TrimRight(b.String(), "\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func optional(values ...*string) string {
	for _, v := range values {
		if v != nil && *v != "" {
			return *v
		}
	}
	return "-"
}
