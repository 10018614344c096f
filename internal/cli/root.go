package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/lydakis/cmdconsole/internal/api"
	"github.com/lydakis/cmdconsole/internal/config"
	"github.com/lydakis/cmdconsole/internal/console"
	"github.com/lydakis/cmdconsole/internal/log"
	"github.com/lydakis/cmdconsole/internal/paths"
	"github.com/lydakis/cmdconsole/internal/response"
	"github.com/lydakis/cmdconsole/internal/secret"
	"github.com/lydakis/cmdconsole/internal/tui"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitCommandErr = 1 // the service or a connection test reported a failure
	ExitUsageErr   = 2 // bad flags, a local precondition or invalid settings
	ExitInternal   = 3 // transport or local I/O failure
)

var (
	// interactive reports whether the console can take over the terminal.
	interactive = func() bool {
		return isTerminal(os.Stdin) && isTerminal(rootStdout)
	}
	runConsole = tui.Run
)

type subcommand struct {
	name    string
	usage   string
	summary string
	run     func(ctx context.Context, a *app, args []string) int
}

var subcommands []subcommand

func init() {
	subcommands = []subcommand{
		{"health", "health", "Test the connection (GET /health)", runHealth},
		{"run", "run [FLAGS] TEXT...", "Send a natural-language command", runNatural},
		{"exec", "exec [FLAGS]", "Send a direct action with a JSON payload", runDirect},
		{"preview", "preview run|exec [FLAGS] ...", "Print the request body without sending it", runPreview},
		{"logs", "logs [--status S] [--search Q]", "List the most recent command executions", runLogs},
		{"log", "log <id>", "Show one execution record", runLog},
		{"refs", "refs", "List assets and tasks", runRefs},
		{"config", "config show|set|path", "Show or change settings", runConfig},
		{"serve-mcp", "serve-mcp", "Serve the console operations as MCP tools on stdio", runServeMCP},
		{"completion", "completion <bash|zsh|fish>", "Print a shell completion script", nil},
	}
}

func lookupSubcommand(name string) (subcommand, bool) {
	for _, sc := range subcommands {
		if sc.name == name {
			return sc, true
		}
	}
	return subcommand{}, false
}

// Run executes the CLI and returns a process exit code.
func Run(args []string) int {
	if handled, code := handleRootFlags(args); handled {
		return code
	}

	a := &app{output: defaultOutputMode()}
	defer a.close()

	global := a.flagSet("cmdconsole", "[GLOBAL] <command> [FLAGS] [ARGS]")
	global.StringVar(&a.configPath, "config", "", "settings file path")
	global.Usage = func() { printRootHelp(rootStderr) }
	if code, done := parseFlags(global, args); done {
		return code
	}
	rest := global.Args()

	if handled, code := maybeHandleCompletionCommand(a, rest); handled {
		return code
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(rest) == 0 {
		if !interactive() {
			printRootHelp(rootStderr)
			return ExitUsageErr
		}
		return runInteractive(ctx, a)
	}

	sc, ok := lookupSubcommand(rest[0])
	if !ok || sc.run == nil {
		fmt.Fprintf(rootStderr, "cmdconsole: unknown command %q (see cmdconsole --help)\n", rest[0])
		return ExitUsageErr
	}
	return sc.run(ctx, a, rest[1:])
}

// app is the state shared by one invocation. Settings are loaded lazily so
// that flag errors and --help never touch the settings file.
type app struct {
	configPath string
	output     outputMode

	store    *config.Store
	conn     config.Connection
	settings *config.Settings
	exec     *console.Executor
	logFile  io.Closer
}

func (a *app) newStore() *config.Store {
	if a.configPath != "" {
		return config.NewStore(a.configPath, secret.Default())
	}
	return config.DefaultStore()
}

// load reads settings and wires the executor. With validate set, invalid
// settings are a usage error.
func (a *app) load(validate bool) int {
	if a.store != nil {
		return ExitOK
	}

	store := a.newStore()
	conn, settings, err := store.Load()
	if err != nil {
		fmt.Fprintf(rootStderr, "cmdconsole: %v\n", err)
		return ExitUsageErr
	}
	if validate {
		if err := config.Validate(settings); err != nil {
			fmt.Fprintf(rootStderr, "cmdconsole: invalid config %s:\n%v\n", store.Path(), err)
			return ExitUsageErr
		}
	}

	a.logFile = configureLogging(settings.LogLevel)
	a.store = store
	a.conn = conn
	a.settings = settings
	a.exec = console.NewExecutor(api.New(
		api.WithTimeout(settings.TimeoutDuration()),
		api.WithLogger(log.WithComponent("api")),
	))
	return ExitOK
}

func (a *app) close() {
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}

// configureLogging points the logger at the state-directory log file. The
// terminal is never a log sink.
func configureLogging(level string) io.Closer {
	f, err := log.OpenFile(paths.LogFile())
	if err != nil {
		fmt.Fprintf(rootStderr, "cmdconsole: warning: %v\n", err)
		log.Configure(log.Config{Level: level})
		return nil
	}
	log.Configure(log.Config{Level: level, Output: f})
	return f
}

// flagSet returns a subcommand flag set that also accepts the output flags.
func (a *app) flagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(rootStderr)
	fs.Var(&a.output, "output", "output format: text, json or yaml")
	fs.Var(&a.output, "o", "shorthand for --output")
	fs.BoolFunc("json", "shorthand for --output json", func(string) error {
		a.output = outputModeJSON
		return nil
	})
	fs.Usage = func() {
		fmt.Fprintf(rootStderr, "Usage: cmdconsole %s\n\nFlags:\n", usage)
		fs.PrintDefaults()
	}
	return fs
}

// parseFlags parses args into fs. done is true when the caller should return
// code right away.
func parseFlags(fs *flag.FlagSet, args []string) (code int, done bool) {
	err := fs.Parse(args)
	if err == nil {
		return ExitOK, false
	}
	if errors.Is(err, flag.ErrHelp) {
		return ExitOK, true
	}
	return ExitUsageErr, true
}

// write renders v in the structured output mode.
func (a *app) write(v any) int {
	if err := writeStructured(rootStdout, a.output, v); err != nil {
		fmt.Fprintf(rootStderr, "cmdconsole: %v\n", err)
		return ExitInternal
	}
	return ExitOK
}

func usageError(format string, args ...any) int {
	fmt.Fprintf(rootStderr, "cmdconsole: "+format+"\n", args...)
	return ExitUsageErr
}

// outcomeExitCode maps a classified failure to an exit code.
func outcomeExitCode(info *response.ErrorInfo) int {
	switch {
	case info == nil:
		return ExitOK
	case info.Local():
		return ExitUsageErr
	case info.Code == response.CodeNetwork:
		return ExitInternal
	default:
		return ExitCommandErr
	}
}

func runInteractive(ctx context.Context, a *app) int {
	if code := a.load(true); code != ExitOK {
		return code
	}
	session := console.NewSession(a.exec, a.store, a.conn, a.settings)
	if err := runConsole(ctx, session); err != nil {
		fmt.Fprintf(rootStderr, "cmdconsole: %v\n", err)
		return ExitInternal
	}
	return ExitOK
}
