package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunCompletionCommandBash(t *testing.T) {
	var out bytes.Buffer
	var errOut bytes.Buffer

	code := runCompletionCommand([]string{"bash"}, &out, &errOut)
	if code != ExitOK {
		t.Fatalf("runCompletionCommand() code = %d, want %d", code, ExitOK)
	}
	if errOut.Len() != 0 {
		t.Fatalf("stderr = %q, want empty", errOut.String())
	}
	for _, want := range []string{
		"cmdconsole __complete commands",
		"cmdconsole __complete actions",
		"cmdconsole __complete statuses",
		"--action --payload --asset --task --by",
		"complete -F _cmdconsole_completion cmdconsole",
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("bash completion missing %q", want)
		}
	}
}

func TestRunCompletionCommandShells(t *testing.T) {
	for shell, marker := range map[string]string{
		"zsh":  "compdef _cmdconsole_completion cmdconsole",
		"FISH": "complete -c cmdconsole",
	} {
		var out, errOut bytes.Buffer
		if code := runCompletionCommand([]string{shell}, &out, &errOut); code != ExitOK {
			t.Fatalf("runCompletionCommand(%s) code = %d, want %d", shell, code, ExitOK)
		}
		if !strings.Contains(out.String(), marker) {
			t.Fatalf("%s completion missing %q", shell, marker)
		}
	}
}

func TestRunCompletionCommandUnknownShell(t *testing.T) {
	var out bytes.Buffer
	var errOut bytes.Buffer

	code := runCompletionCommand([]string{"powershell"}, &out, &errOut)
	if code != ExitUsageErr {
		t.Fatalf("runCompletionCommand() code = %d, want %d", code, ExitUsageErr)
	}
	if out.Len() != 0 {
		t.Fatalf("stdout = %q, want empty", out.String())
	}
	if !strings.Contains(errOut.String(), "unknown shell for completion: powershell") {
		t.Fatalf("stderr = %q", errOut.String())
	}
}

func TestInternalCompletionQueries(t *testing.T) {
	path := isolateEnv(t)
	writeConfig(t, path, "actions = [\"assign_task\", \"close_task\"]\n")

	cases := map[string]string{
		"commands":    "health\nrun\nexec\npreview\nlogs\nlog\nrefs\nconfig\nserve-mcp\ncompletion\n",
		"actions":     "assign_task\nclose_task\n",
		"statuses":    "all\nsuccess\nnoop\nerror\n",
		"config-keys": "base_url\nauth_mode\nheader_name\napi_key\nremember\nrequested_by\nactions\ntimeout\nlog_level\n",
	}
	for query, want := range cases {
		out, errOut := captureRoot(t)
		if code := Run([]string{"__complete", query}); code != ExitOK {
			t.Fatalf("Run(__complete %s) = %d, want %d (stderr %q)", query, code, ExitOK, errOut.String())
		}
		if out.String() != want {
			t.Fatalf("__complete %s = %q, want %q", query, out.String(), want)
		}
	}
}

func TestInternalCompletionActionsIgnoreInvalidSettings(t *testing.T) {
	path := isolateEnv(t)
	writeConfig(t, path, "base_url = \"ftp://nope\"\nactions = [\"reopen_task\"]\n")
	out, _ := captureRoot(t)

	if code := Run([]string{"__complete", "actions"}); code != ExitOK {
		t.Fatalf("Run() = %d, want %d", code, ExitOK)
	}
	if out.String() != "reopen_task\n" {
		t.Fatalf("actions = %q", out.String())
	}
}

func TestInternalCompletionUnknownQuery(t *testing.T) {
	isolateEnv(t)
	_, errOut := captureRoot(t)

	if code := Run([]string{"__complete", "servers"}); code != ExitUsageErr {
		t.Fatalf("Run() = %d, want %d", code, ExitUsageErr)
	}
	if !strings.Contains(errOut.String(), "unknown completion query: servers") {
		t.Fatalf("stderr = %q", errOut.String())
	}
}
