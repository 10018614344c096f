package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
)

var (
	rootStdout   io.Writer = os.Stdout
	rootStderr   io.Writer = os.Stderr
	rootStdin    io.Reader = os.Stdin
	buildVersion           = "dev"
)

func init() {
	buildVersion = resolveBuildVersion(buildVersion)
}

func handleRootFlags(args []string) (bool, int) {
	if len(args) == 0 {
		return false, 0
	}

	if len(args) != 1 {
		return false, 0
	}

	switch args[0] {
	case "--version", "-V":
		fmt.Fprintf(rootStdout, "cmdconsole %s\n", buildVersion)
		return true, 0
	case "--help", "-h", "help":
		printRootHelp(rootStdout)
		return true, 0
	default:
		return false, 0
	}
}

func resolveBuildVersion(defaultVersion string) string {
	if defaultVersion != "" && defaultVersion != "dev" {
		return defaultVersion
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return defaultVersion
	}
	if info.Main.Version == "" || info.Main.Version == "(devel)" {
		return defaultVersion
	}
	return info.Main.Version
}

func printRootHelp(out io.Writer) {
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  cmdconsole                      Start the interactive console")
	fmt.Fprintln(out, "  cmdconsole [GLOBAL] <command> [FLAGS] [ARGS]")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Commands:")
	for _, sc := range subcommands {
		fmt.Fprintf(out, "  %-30s  %s\n", sc.usage, sc.summary)
	}
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Global flags:")
	fmt.Fprintln(out, "  --config <path>     Settings file (default $XDG_CONFIG_HOME/cmdconsole/config.toml)")
	fmt.Fprintln(out, "  --output, -o <fmt>  Output format: text, json or yaml (default text on a terminal, json otherwise)")
	fmt.Fprintln(out, "  --json              Shorthand for --output json")
	fmt.Fprintln(out, "  --help, -h          Show help")
	fmt.Fprintln(out, "  --version, -V       Show version")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Environment:")
	fmt.Fprintln(out, "  CMDCONSOLE_BASE_URL, CMDCONSOLE_AUTH_MODE, CMDCONSOLE_HEADER_NAME,")
	fmt.Fprintln(out, "  CMDCONSOLE_API_KEY, CMDCONSOLE_REQUESTED_BY, CMDCONSOLE_LOG_LEVEL override settings.")
	fmt.Fprintln(out, "  CMDCONSOLE_CONFIG overrides the settings file location.")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Exit codes:")
	fmt.Fprintln(out, "  0 success, 1 the service reported an error, 2 usage or local validation error,")
	fmt.Fprintln(out, "  3 network or internal error")
}
