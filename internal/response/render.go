package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// RawBody is a reply body that was not valid JSON. It renders verbatim.
type RawBody string

// PrettyJSON renders v as 2-space indented JSON. A nil value renders empty.
func PrettyJSON(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case RawBody:
		return string(t)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// YAML renders v as a YAML document.
func YAML(v any) ([]byte, error) {
	if raw, ok := v.(RawBody); ok {
		v = string(raw)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatLatency renders a measured latency in whole milliseconds, or "--"
// before anything was measured.
func FormatLatency(d *time.Duration) string {
	if d == nil {
		return "--"
	}
	return fmt.Sprintf("%.0f ms", float64(*d)/float64(time.Millisecond))
}

// FormatStatus renders an HTTP status, or "--" before the first send.
func FormatStatus(status *int) string {
	if status == nil {
		return "--"
	}
	return fmt.Sprintf("%d", *status)
}

// EnsureTrailingNewline appends a newline to non-empty output that lacks one.
func EnsureTrailingNewline(out []byte) []byte {
	if len(out) == 0 {
		return out
	}
	if out[len(out)-1] != '\n' {
		return append(out, '\n')
	}
	return out
}
