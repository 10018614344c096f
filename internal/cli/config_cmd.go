package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/lydakis/cmdconsole/internal/config"
	"github.com/lydakis/cmdconsole/internal/httpheaders"
	"github.com/lydakis/cmdconsole/internal/paths"
)

// configKeys lists the keys accepted by "config set", in help order.
var configKeys = []string{
	"base_url",
	"auth_mode",
	"header_name",
	"api_key",
	"remember",
	"requested_by",
	"actions",
	"timeout",
	"log_level",
	"headers.<Name>",
}

func runConfig(_ context.Context, a *app, args []string) int {
	if len(args) == 0 {
		return usageError("usage: cmdconsole config show|set|path")
	}
	switch args[0] {
	case "show":
		return runConfigShow(a, args[1:])
	case "set":
		return runConfigSet(a, args[1:])
	case "path":
		if len(args) != 1 {
			return usageError("usage: cmdconsole config path")
		}
		fmt.Fprintln(rootStdout, a.newStore().Path())
		return ExitOK
	default:
		return usageError("config: unknown subcommand %q (expected show, set or path)", args[0])
	}
}

// configView is the displayed form of the settings. Secrets are redacted.
type configView struct {
	Path        string            `json:"path" yaml:"path"`
	BaseURL     string            `json:"base_url" yaml:"base_url"`
	AuthMode    config.AuthMode   `json:"auth_mode" yaml:"auth_mode"`
	HeaderName  string            `json:"header_name" yaml:"header_name"`
	Credential  string            `json:"credential,omitempty" yaml:"credential,omitempty"`
	Remember    bool              `json:"remember" yaml:"remember"`
	RequestedBy string            `json:"requested_by" yaml:"requested_by"`
	Actions     []string          `json:"actions" yaml:"actions"`
	Timeout     string            `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	LogLevel    string            `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

func newConfigView(path string, conn config.Connection, s *config.Settings) configView {
	v := configView{
		Path:        path,
		BaseURL:     conn.BaseURL,
		AuthMode:    conn.AuthMode,
		HeaderName:  conn.HeaderName,
		Remember:    conn.RememberCredential,
		RequestedBy: s.RequestedBy,
		Actions:     s.Actions,
		Timeout:     s.Timeout,
		LogLevel:    s.LogLevel,
	}
	if conn.Credential != "" {
		v.Credential = httpheaders.Redact(conn.Credential)
	}
	if len(s.Headers) > 0 {
		v.Headers = make(map[string]string, len(s.Headers))
		for name, value := range s.Headers {
			v.Headers[name] = httpheaders.Redact(value)
		}
	}
	return v
}

func runConfigShow(a *app, args []string) int {
	fs := a.flagSet("config show", "config show")
	if code, done := parseFlags(fs, args); done {
		return code
	}
	if fs.NArg() != 0 {
		return usageError("config show takes no arguments")
	}
	if code := a.load(false); code != ExitOK {
		return code
	}

	v := newConfigView(a.store.Path(), a.conn, a.settings)
	if a.output.structured() {
		return a.write(v)
	}
	writeConfigView(rootStdout, v)
	if err := config.Validate(a.settings); err != nil {
		fmt.Fprintf(rootStderr, "cmdconsole: warning: invalid settings:\n%v\n", err)
	}
	return ExitOK
}

func writeConfigView(w io.Writer, v configView) {
	credential := v.Credential
	if credential == "" {
		credential = "(none)"
	}
	fmt.Fprintf(w, "path:          %s\n", v.Path)
	fmt.Fprintf(w, "base_url:      %s\n", v.BaseURL)
	fmt.Fprintf(w, "auth_mode:     %s\n", v.AuthMode)
	fmt.Fprintf(w, "header_name:   %s\n", v.HeaderName)
	fmt.Fprintf(w, "credential:    %s\n", credential)
	fmt.Fprintf(w, "remember:      %t\n", v.Remember)
	fmt.Fprintf(w, "requested_by:  %s\n", v.RequestedBy)
	fmt.Fprintf(w, "actions:       %s\n", strings.Join(v.Actions, ", "))
	if v.Timeout != "" {
		fmt.Fprintf(w, "timeout:       %s\n", v.Timeout)
	}
	if v.LogLevel != "" {
		fmt.Fprintf(w, "log_level:     %s\n", v.LogLevel)
	}
	names := make([]string, 0, len(v.Headers))
	for name := range v.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "headers.%s: %s\n", name, v.Headers[name])
	}
}

func runConfigSet(a *app, args []string) int {
	fs := a.flagSet("config set", "config set <key> <value>")
	if code, done := parseFlags(fs, args); done {
		return code
	}
	if fs.NArg() != 2 {
		return usageError("usage: cmdconsole config set <key> <value> (keys: %s)", strings.Join(configKeys, ", "))
	}
	if code := a.load(false); code != ExitOK {
		return code
	}
	key, value := fs.Arg(0), fs.Arg(1)

	switch key {
	case "api_key":
		return a.setCredential(value)
	case "remember":
		remember, err := strconv.ParseBool(value)
		if err != nil {
			return usageError("remember: expected true or false, got %q", value)
		}
		return a.setRemember(remember)
	}

	mutate, err := settingMutation(key, value)
	if err != nil {
		return usageError("%v", err)
	}

	// Validate against the effective settings before anything is written.
	candidate := *a.settings
	candidate.Headers = cloneHeaders(a.settings.Headers)
	mutate(&candidate)
	if err := config.Validate(&candidate); err != nil {
		fmt.Fprintf(rootStderr, "cmdconsole: %v\n", err)
		return ExitUsageErr
	}

	if _, err := a.store.Update(mutate); err != nil {
		fmt.Fprintf(rootStderr, "cmdconsole: %v\n", err)
		return ExitInternal
	}
	fmt.Fprintf(rootStdout, "%s updated in %s\n", key, a.store.Path())
	return ExitOK
}

// settingMutation returns the edit that sets key to value in the settings file.
func settingMutation(key, value string) (func(*config.Settings), error) {
	switch key {
	case "base_url":
		return func(s *config.Settings) { s.BaseURL = strings.TrimSpace(value) }, nil
	case "auth_mode":
		mode, err := config.ParseAuthMode(value)
		if err != nil {
			return nil, err
		}
		return func(s *config.Settings) { s.AuthMode = mode }, nil
	case "header_name":
		return func(s *config.Settings) { s.HeaderName = strings.TrimSpace(value) }, nil
	case "requested_by":
		return func(s *config.Settings) { s.RequestedBy = strings.TrimSpace(value) }, nil
	case "actions":
		var actions []string
		for _, part := range strings.Split(value, ",") {
			actions = append(actions, strings.TrimSpace(part))
		}
		return func(s *config.Settings) { s.Actions = actions }, nil
	case "timeout":
		return func(s *config.Settings) { s.Timeout = strings.TrimSpace(value) }, nil
	case "log_level":
		return func(s *config.Settings) { s.LogLevel = strings.TrimSpace(value) }, nil
	}

	if name, ok := strings.CutPrefix(key, "headers."); ok && name != "" {
		return func(s *config.Settings) {
			if value == "" {
				for existing := range s.Headers {
					if strings.EqualFold(existing, name) {
						delete(s.Headers, existing)
					}
				}
				return
			}
			s.Headers = httpheaders.Set(s.Headers, name, value)
		}, nil
	}
	return nil, fmt.Errorf("unknown key %q (keys: %s)", key, strings.Join(configKeys, ", "))
}

// setCredential remembers value for the login session. "-" reads it from
// stdin; an empty value forgets the stored credential.
func (a *app) setCredential(value string) int {
	value, err := readArgValue(value)
	if err != nil {
		fmt.Fprintf(rootStderr, "cmdconsole: api_key: %v\n", err)
		return ExitUsageErr
	}
	value = strings.TrimSpace(value)
	if value != "" {
		if _, ok := paths.SessionDir(); !ok {
			fmt.Fprintln(rootStderr, "cmdconsole: api_key: no session directory (XDG_RUNTIME_DIR is unset); use CMDCONSOLE_API_KEY instead")
			return ExitUsageErr
		}
	}

	conn := a.conn
	conn.Credential = value
	conn.RememberCredential = value != ""
	if err := a.store.SaveCredential(conn); err != nil {
		fmt.Fprintf(rootStderr, "cmdconsole: %v\n", err)
		return ExitInternal
	}
	if value == "" {
		fmt.Fprintln(rootStdout, "credential forgotten")
		return ExitOK
	}
	fmt.Fprintln(rootStdout, "credential remembered for this login session")
	if conn.AuthMode != config.AuthAPIKey {
		fmt.Fprintln(rootStderr, "cmdconsole: note: auth_mode is off; the credential is not sent until auth_mode is api_key")
	}
	return ExitOK
}

func (a *app) setRemember(remember bool) int {
	conn := a.conn
	conn.RememberCredential = remember
	if remember && conn.Credential == "" {
		return usageError("remember: no credential to remember (set api_key or CMDCONSOLE_API_KEY)")
	}
	if remember {
		if _, ok := paths.SessionDir(); !ok {
			return usageError("remember: no session directory (XDG_RUNTIME_DIR is unset)")
		}
	}
	if err := a.store.SaveCredential(conn); err != nil {
		fmt.Fprintf(rootStderr, "cmdconsole: %v\n", err)
		return ExitInternal
	}
	if remember {
		fmt.Fprintln(rootStdout, "credential remembered for this login session")
	} else {
		fmt.Fprintln(rootStdout, "credential forgotten")
	}
	return ExitOK
}

func cloneHeaders(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
