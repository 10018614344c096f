package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/lydakis/cmdconsole/internal/activity"
	"github.com/lydakis/cmdconsole/internal/config"
)

func maybeHandleCompletionCommand(a *app, args []string) (bool, int) {
	if len(args) == 0 {
		return false, ExitOK
	}
	switch args[0] {
	case "completion":
		return true, runCompletionCommand(args[1:], rootStdout, rootStderr)
	case "__complete":
		return true, runInternalCompletion(a, args[1:], rootStdout, rootStderr)
	default:
		return false, ExitOK
	}
}

func runCompletionCommand(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "cmdconsole: usage: cmdconsole completion <bash|zsh|fish>")
		return ExitUsageErr
	}

	script, ok := completionScripts[strings.ToLower(args[0])]
	if !ok {
		fmt.Fprintf(stderr, "cmdconsole: unknown shell for completion: %s\n", args[0])
		return ExitUsageErr
	}

	_, _ = io.WriteString(stdout, script)
	return ExitOK
}

func runInternalCompletion(a *app, args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "cmdconsole: usage: cmdconsole __complete <commands|actions|statuses|config-keys>")
		return ExitUsageErr
	}

	var words []string
	switch args[0] {
	case "commands":
		for _, sc := range subcommands {
			words = append(words, sc.name)
		}
	case "actions":
		words = completionActions(a)
	case "statuses":
		words = activity.Statuses
	case "config-keys":
		for _, key := range configKeys {
			if key != "headers.<Name>" {
				words = append(words, key)
			}
		}
	default:
		fmt.Fprintf(stderr, "cmdconsole: unknown completion query: %s\n", args[0])
		return ExitUsageErr
	}

	for _, w := range words {
		fmt.Fprintln(stdout, w)
	}
	return ExitOK
}

// completionActions reads the action set without touching the log file or
// failing on invalid settings.
func completionActions(a *app) []string {
	_, settings, err := a.newStore().Load()
	if err != nil {
		return config.DefaultActions
	}
	return settings.Actions
}
