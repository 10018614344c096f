package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lydakis/cmdconsole/internal/activity"
	"github.com/lydakis/cmdconsole/internal/command"
	"github.com/lydakis/cmdconsole/internal/payload"
	"github.com/lydakis/cmdconsole/internal/response"
)

// slashCommand is one "/name arg" console command. arg is the rest of the
// line after the name, trimmed, so JSON with spaces survives intact.
type slashCommand struct {
	name  string
	usage string
	help  string
	run   func(m *Model, arg string) tea.Cmd
}

var slashCommands []slashCommand

func init() {
	slashCommands = []slashCommand{
		{"mode", "/mode natural|direct", "switch input mode", cmdMode},
		{"action", "/action <name>", "select the direct-mode action", cmdAction},
		{"payload", "/payload [json]", "set the direct-mode payload (blank omits it)", cmdPayload},
		{"fallback", "/fallback [json]", "set the natural-mode fallback payload", cmdFallback},
		{"by", "/by <name>", "set requested_by", cmdRequestedBy},
		{"run", "/run", "send the current request", cmdRun},
		{"preview", "/preview", "show the body that would be sent", cmdPreview},
		{"test", "/test", "test the connection", cmdTest},
		{"logs", "/logs", "refresh activity logs and reference data", cmdLogs},
		{"filter", "/filter all|success|noop|error", "filter logs by status", cmdFilter},
		{"search", "/search [text]", "search logs by text or action", cmdSearch},
		{"show", "/show <id>", "show one log record", cmdShow},
		{"url", "/url <base-url>", "set the service base URL", cmdURL},
		{"auth", "/auth off|api_key", "set the auth mode", cmdAuth},
		{"header", "/header <name>", "set the credential header name", cmdHeader},
		{"key", "/key [credential]", "set or clear the credential", cmdKey},
		{"remember", "/remember on|off", "keep the credential for this login session", cmdRemember},
		{"asset", "/asset <id>", "set payload asset_id", cmdAsset},
		{"task", "/task <id>", "set payload task_id", cmdTask},
		{"refs", "/refs", "list assets and tasks", cmdRefs},
		{"copy", "/copy request|response", "copy to the clipboard", cmdCopy},
		{"help", "/help", "list commands", cmdHelp},
		{"quit", "/quit", "exit", cmdQuit},
	}
}

func lookupCommand(name string) (slashCommand, bool) {
	for _, c := range slashCommands {
		if c.name == name {
			return c, true
		}
	}
	return slashCommand{}, false
}

// parseLine splits "/name rest of line" into name and argument.
func parseLine(line string) (name, arg string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "/")
	name, arg, _ = strings.Cut(line, " ")
	return strings.ToLower(name), strings.TrimSpace(arg), name != ""
}

func cmdMode(m *Model, arg string) tea.Cmd {
	mode, err := command.ParseMode(arg)
	if err != nil {
		m.printError(err)
		return nil
	}
	m.session.Mode = mode
	m.printf("mode: %s", mode)
	return nil
}

func cmdAction(m *Model, arg string) tea.Cmd {
	if err := m.session.SetAction(arg); err != nil {
		m.printError(err)
		return nil
	}
	m.printf("action: %s", arg)
	return nil
}

func cmdPayload(m *Model, arg string) tea.Cmd {
	m.session.Payload = arg
	m.reportPayload("payload", arg)
	return nil
}

func cmdFallback(m *Model, arg string) tea.Cmd {
	m.session.FallbackPayload = arg
	m.reportPayload("fallback payload", arg)
	return nil
}

func (m *Model) reportPayload(label, text string) {
	if err := payload.Check(text); err != nil {
		m.printf("%s set (invalid: %v)", label, err)
		return
	}
	if strings.TrimSpace(text) == "" {
		m.printf("%s cleared", label)
		return
	}
	m.printf("%s set", label)
}

func cmdRequestedBy(m *Model, arg string) tea.Cmd {
	if err := m.session.SetRequestedBy(arg); err != nil {
		m.printError(err)
		return nil
	}
	m.printf("requested_by: %s", arg)
	return nil
}

func cmdRun(m *Model, _ string) tea.Cmd {
	return m.startExecute()
}

func cmdPreview(m *Model, _ string) tea.Cmd {
	body, info := m.session.Preview()
	if info != nil {
		m.printErrorInfo(info)
		return nil
	}
	m.print(body)
	return nil
}

func cmdTest(m *Model, _ string) tea.Cmd {
	return m.startTest()
}

func cmdLogs(m *Model, _ string) tea.Cmd {
	return m.startRefresh()
}

func cmdFilter(m *Model, arg string) tea.Cmd {
	if arg == "" {
		arg = activity.StatusAll
	}
	if err := m.session.SetStatusFilter(arg); err != nil {
		m.printError(err)
		return nil
	}
	m.printLogs()
	return nil
}

func cmdSearch(m *Model, arg string) tea.Cmd {
	m.session.Search = arg
	m.printLogs()
	return nil
}

func cmdShow(m *Model, arg string) tea.Cmd {
	r, ok := activity.Find(m.session.Logs.Records, arg)
	if !ok {
		m.printError(fmt.Errorf("no log record %q (run /logs to refresh)", arg))
		return nil
	}
	m.print(renderRecord(r))
	return nil
}

func cmdURL(m *Model, arg string) tea.Cmd {
	if err := m.session.SetBaseURL(arg); err != nil {
		m.printError(err)
		return nil
	}
	m.printf("base URL: %s", m.session.Conn.BaseURL)
	return m.startRefresh()
}

func cmdAuth(m *Model, arg string) tea.Cmd {
	if err := m.session.SetAuthMode(arg); err != nil {
		m.printError(err)
		return nil
	}
	m.printf("auth: %s", m.session.Conn.AuthMode)
	return m.startRefresh()
}

func cmdHeader(m *Model, arg string) tea.Cmd {
	if err := m.session.SetHeaderName(arg); err != nil {
		m.printError(err)
		return nil
	}
	m.printf("header: %s", m.session.Conn.HeaderName)
	return m.startRefresh()
}

func cmdKey(m *Model, arg string) tea.Cmd {
	if err := m.session.SetCredential(arg); err != nil {
		m.printError(err)
		return nil
	}
	if arg == "" {
		m.print("credential cleared")
	} else {
		m.print("credential set")
	}
	return m.startRefresh()
}

func cmdRemember(m *Model, arg string) tea.Cmd {
	var remember bool
	switch strings.ToLower(arg) {
	case "on", "true", "yes":
		remember = true
	case "off", "false", "no":
	default:
		m.printError(fmt.Errorf("usage: /remember on|off"))
		return nil
	}
	if err := m.session.SetRemember(remember); err != nil {
		m.printError(err)
		return nil
	}
	m.printf("remember credential: %t", remember)
	return nil
}

func cmdAsset(m *Model, arg string) tea.Cmd {
	return m.setPayloadField("asset_id", arg)
}

func cmdTask(m *Model, arg string) tea.Cmd {
	return m.setPayloadField("task_id", arg)
}

func (m *Model) setPayloadField(field, value string) tea.Cmd {
	if value == "" {
		m.printError(fmt.Errorf("usage: /%s <id>", strings.TrimSuffix(field, "_id")))
		return nil
	}
	if err := m.session.SetPayloadField(field, value); err != nil {
		m.printError(err)
		return nil
	}
	m.printf("payload:\n%s", m.session.Payload)
	return nil
}

func cmdRefs(m *Model, _ string) tea.Cmd {
	m.print(renderReference(m.session.Ref.Reference))
	return nil
}

func cmdCopy(m *Model, arg string) tea.Cmd {
	if arg == "" {
		arg = "request"
	}
	var text string
	switch arg {
	case "request":
		body, info := m.session.Preview()
		if info != nil {
			m.printErrorInfo(info)
			return nil
		}
		text = body
	case "response":
		text = response.PrettyJSON(m.session.Exec.Outcome.Body)
		if text == "" {
			m.printError(fmt.Errorf("no response to copy"))
			return nil
		}
	default:
		m.printError(fmt.Errorf("usage: /copy request|response"))
		return nil
	}
	if err := m.copy(text); err != nil {
		m.printError(fmt.Errorf("copying to clipboard: %w", err))
		return nil
	}
	m.printf("copied %s to clipboard", arg)
	return nil
}

func cmdHelp(m *Model, _ string) tea.Cmd {
	var b strings.Builder
	b.WriteString("Plain text runs a natural-language command (a JSON payload in direct mode).\n")
	for _, c := range slashCommands {
		fmt.Fprintf(&b, "  %-32s %s\n", c.usage, c.help)
	}
	m.print(strings.TrimRight(b.String(), "\n"))
	return nil
}

func cmdQuit(m *Model, _ string) tea.Cmd {
	m.quitting = true
	return tea.Quit
}
