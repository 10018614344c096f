package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lydakis/cmdconsole/internal/response"
	"golang.org/x/term"
)

type outputMode int

const (
	outputModeText outputMode = iota
	outputModeJSON
	outputModeYAML
)

func parseOutputMode(raw string) (outputMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "text":
		return outputModeText, nil
	case "json":
		return outputModeJSON, nil
	case "yaml", "yml":
		return outputModeYAML, nil
	default:
		return outputModeText, fmt.Errorf("unknown output format %q (expected text, json or yaml)", raw)
	}
}

// defaultOutputMode is text on a terminal and JSON when piped.
func defaultOutputMode() outputMode {
	if isTerminal(rootStdout) {
		return outputModeText
	}
	return outputModeJSON
}

func (m outputMode) String() string {
	switch m {
	case outputModeJSON:
		return "json"
	case outputModeYAML:
		return "yaml"
	default:
		return "text"
	}
}

// Set implements flag.Value.
func (m *outputMode) Set(raw string) error {
	parsed, err := parseOutputMode(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m outputMode) isJSON() bool {
	return m == outputModeJSON
}

func (m outputMode) structured() bool {
	return m == outputModeJSON || m == outputModeYAML
}

// writeStructured renders v as JSON or YAML.
func writeStructured(w io.Writer, m outputMode, v any) error {
	var out []byte
	if m.isJSON() {
		out = []byte(response.PrettyJSON(v))
	} else {
		var err error
		if out, err = response.YAML(v); err != nil {
			return err
		}
	}
	_, err := w.Write(response.EnsureTrailingNewline(out))
	return err
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or 0 when w is not a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
