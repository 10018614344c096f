package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lydakis/cmdconsole/internal/activity"
	"github.com/lydakis/cmdconsole/internal/api"
	"github.com/lydakis/cmdconsole/internal/command"
	"github.com/lydakis/cmdconsole/internal/console"
	"github.com/lydakis/cmdconsole/internal/mcpserve"
	"github.com/lydakis/cmdconsole/internal/payload"
)

func runHealth(ctx context.Context, a *app, args []string) int {
	fs := a.flagSet("health", "health")
	if code, done := parseFlags(fs, args); done {
		return code
	}
	if fs.NArg() != 0 {
		return usageError("health takes no arguments")
	}
	if code := a.load(true); code != ExitOK {
		return code
	}

	p := a.exec.TestConnection(ctx, a.conn)
	code := ExitOK
	if p.State != console.ProbeSuccess {
		code = ExitCommandErr
	}
	if a.output.structured() {
		if werr := a.write(p); werr != ExitOK {
			return werr
		}
		return code
	}
	if code == ExitOK {
		fmt.Fprintf(rootStdout, "connection ok: %s\n", p.Message)
	} else {
		fmt.Fprintf(rootStderr, "cmdconsole: connection failed: %s\n", p.Message)
	}
	return code
}

// inputBuilder parses a subcommand's flags into a request. done is true when
// the caller should return code right away.
type inputBuilder func(a *app, usage string, args []string) (in command.Input, code int, done bool)

func buildNatural(a *app, usage string, args []string) (command.Input, int, bool) {
	fs := a.flagSet("run", usage)
	by := fs.String("by", "", "requested_by for this call (default from settings)")
	fallback := fs.String("fallback", "{}", "fallback payload JSON object; - reads stdin, @file reads a file")
	if code, done := parseFlags(fs, args); done {
		return nil, code, true
	}
	if code := a.load(true); code != ExitOK {
		return nil, code, true
	}

	text := strings.Join(fs.Args(), " ")
	if text == "-" {
		data, err := io.ReadAll(rootStdin)
		if err != nil {
			fmt.Fprintf(rootStderr, "cmdconsole: reading stdin: %v\n", err)
			return nil, ExitInternal, true
		}
		text = strings.TrimSpace(string(data))
	}
	fallbackText, err := readArgValue(*fallback)
	if err != nil {
		fmt.Fprintf(rootStderr, "cmdconsole: --fallback: %v\n", err)
		return nil, ExitUsageErr, true
	}

	return command.Natural{
		RequestedBy:     a.requestedBy(*by),
		RawText:         text,
		FallbackPayload: fallbackText,
	}, ExitOK, false
}

func buildDirect(a *app, usage string, args []string) (command.Input, int, bool) {
	fs := a.flagSet("exec", usage)
	action := fs.String("action", "", "action name (default: first configured action)")
	payloadArg := fs.String("payload", "{}", "payload JSON object; - reads stdin, @file reads a file")
	asset := fs.String("asset", "", "set payload.asset_id")
	task := fs.String("task", "", "set payload.task_id")
	by := fs.String("by", "", "requested_by for this call (default from settings)")
	if code, done := parseFlags(fs, args); done {
		return nil, code, true
	}
	if fs.NArg() != 0 {
		return nil, usageError("exec takes no arguments, got %q", strings.Join(fs.Args(), " ")), true
	}
	if code := a.load(true); code != ExitOK {
		return nil, code, true
	}

	text, err := readArgValue(*payloadArg)
	if err != nil {
		fmt.Fprintf(rootStderr, "cmdconsole: --payload: %v\n", err)
		return nil, ExitUsageErr, true
	}
	// An invalid payload is left alone so the precondition check reports it.
	if payload.Check(text) == nil {
		for _, f := range []struct{ flag, field, value string }{
			{"--asset", "asset_id", *asset},
			{"--task", "task_id", *task},
		} {
			if f.value == "" {
				continue
			}
			if text, err = payload.SetField(text, f.field, f.value); err != nil {
				fmt.Fprintf(rootStderr, "cmdconsole: %s: %v\n", f.flag, err)
				return nil, ExitUsageErr, true
			}
		}
	}

	name := *action
	if name == "" && len(a.settings.Actions) > 0 {
		name = a.settings.Actions[0]
	}
	return command.Direct{
		RequestedBy: a.requestedBy(*by),
		Action:      name,
		Payload:     text,
	}, ExitOK, false
}

func (a *app) requestedBy(flagValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	return a.settings.RequestedBy
}

// readArgValue resolves "-" to stdin and "@path" to the file's contents.
func readArgValue(v string) (string, error) {
	switch {
	case v == "-":
		data, err := io.ReadAll(rootStdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	case strings.HasPrefix(v, "@"):
		data, err := os.ReadFile(v[1:])
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return v, nil
	}
}

func runNatural(ctx context.Context, a *app, args []string) int {
	in, code, done := buildNatural(a, "run [FLAGS] TEXT...", args)
	if done {
		return code
	}
	return a.execute(ctx, in)
}

func runDirect(ctx context.Context, a *app, args []string) int {
	in, code, done := buildDirect(a, "exec [FLAGS]", args)
	if done {
		return code
	}
	return a.execute(ctx, in)
}

func (a *app) execute(ctx context.Context, in command.Input) int {
	out := a.exec.Execute(ctx, a.conn, in, a.settings.Actions)
	code := outcomeExitCode(out.Err)
	if a.output.structured() {
		if werr := a.write(out.Report()); werr != ExitOK {
			return werr
		}
		return code
	}
	writeOutcome(rootStdout, rootStderr, out)
	return code
}

func runPreview(_ context.Context, a *app, args []string) int {
	if len(args) == 0 {
		return usageError("usage: cmdconsole preview run|exec [FLAGS] ...")
	}

	var build inputBuilder
	switch args[0] {
	case "run":
		build = buildNatural
	case "exec":
		build = buildDirect
	default:
		return usageError("preview: unknown mode %q (expected run or exec)", args[0])
	}
	in, code, done := build(a, "preview "+args[0]+" [FLAGS] ...", args[1:])
	if done {
		return code
	}

	text, info := command.Preview(in, a.settings.Actions)
	if info != nil {
		writeErrorInfo(rootStderr, info)
		return outcomeExitCode(info)
	}
	if a.output.structured() {
		return a.write(command.Compose(in))
	}
	fmt.Fprintln(rootStdout, text)
	return ExitOK
}

func runLogs(ctx context.Context, a *app, args []string) int {
	fs := a.flagSet("logs", "logs [FLAGS]")
	status := fs.String("status", activity.StatusAll, "status filter: "+strings.Join(activity.Statuses, ", "))
	search := fs.String("search", "", "case-insensitive match on raw text or action")
	if code, done := parseFlags(fs, args); done {
		return code
	}
	if fs.NArg() != 0 {
		return usageError("logs takes no arguments")
	}
	if !activity.ValidStatus(*status) {
		return usageError("unknown status %q (expected one of %s)", *status, strings.Join(activity.Statuses, ", "))
	}
	if code := a.load(true); code != ExitOK {
		return code
	}

	records, err := a.exec.FetchLogs(ctx, a.conn)
	if err != nil {
		return logsFailure(err)
	}
	visible := activity.Filter(records, *status, *search)
	if a.output.structured() {
		return a.write(visible)
	}
	fmt.Fprintf(rootStdout, "%d of %d records\n", len(visible), len(records))
	writeLogTable(rootStdout, visible, terminalWidth(rootStdout))
	return ExitOK
}

func runLog(ctx context.Context, a *app, args []string) int {
	fs := a.flagSet("log", "log <id>")
	if code, done := parseFlags(fs, args); done {
		return code
	}
	if fs.NArg() != 1 {
		return usageError("usage: cmdconsole log <id>")
	}
	if code := a.load(true); code != ExitOK {
		return code
	}

	records, err := a.exec.FetchLogs(ctx, a.conn)
	if err != nil {
		return logsFailure(err)
	}
	id := fs.Arg(0)
	rec, ok := activity.Find(records, id)
	if !ok {
		fmt.Fprintf(rootStderr, "cmdconsole: no record %q among the latest %d\n", id, api.LogsLimit)
		return ExitCommandErr
	}
	if a.output.structured() {
		return a.write(rec)
	}
	writeRecord(rootStdout, rec)
	return ExitOK
}

// logsFailure reports a failed activity-log fetch. A reply from the service
// is a command error; anything else never reached it.
func logsFailure(err error) int {
	fmt.Fprintf(rootStderr, "cmdconsole: %v\n", err)
	var lerr *api.LogsError
	if errors.As(err, &lerr) {
		return ExitCommandErr
	}
	return ExitInternal
}

func runRefs(ctx context.Context, a *app, args []string) int {
	fs := a.flagSet("refs", "refs")
	if code, done := parseFlags(fs, args); done {
		return code
	}
	if fs.NArg() != 0 {
		return usageError("refs takes no arguments")
	}
	if code := a.load(true); code != ExitOK {
		return code
	}

	ref := a.exec.FetchReference(ctx, a.conn)
	if a.output.structured() {
		return a.write(ref)
	}
	writeReference(rootStdout, ref)
	return ExitOK
}

func runServeMCP(ctx context.Context, a *app, args []string) int {
	fs := a.flagSet("serve-mcp", "serve-mcp")
	if code, done := parseFlags(fs, args); done {
		return code
	}
	if fs.NArg() != 0 {
		return usageError("serve-mcp takes no arguments")
	}
	if code := a.load(true); code != ExitOK {
		return code
	}

	s := mcpserve.New(a.exec, a.conn, a.settings, buildVersion)
	if err := mcpserve.ServeStdio(s); err != nil && ctx.Err() == nil {
		fmt.Fprintf(rootStderr, "cmdconsole: serve-mcp: %v\n", err)
		return ExitInternal
	}
	return ExitOK
}
