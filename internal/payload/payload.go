// Package payload turns operator-typed JSON text into a request payload.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// ErrNotObject is the message for input that decodes to a bare scalar or null.
const ErrNotObject = "Payload must be a JSON object"

// ErrFieldNeedsObject is the message for setting a field on an array payload.
const ErrFieldNeedsObject = "Payload must be a JSON object to set a field"

// Error is a payload validation failure. Message is shown to the operator
// verbatim.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// Parse decodes text into a JSON object or array.
//
// Blank text yields ok == false and a nil error: the payload is omitted, which
// is different from an explicit {}. Numbers decode as json.Number so that
// re-encoding the value reproduces the input exactly.
func Parse(text string) (value any, ok bool, err error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, false, nil
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return nil, false, &Error{Message: err.Error()}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false, &Error{Message: "invalid character after top-level value"}
	}

	switch value.(type) {
	case map[string]any, []any:
		return value, true, nil
	default:
		return nil, false, &Error{Message: ErrNotObject}
	}
}

// Check reports the parse error for text, or nil when text is blank or valid.
func Check(text string) error {
	_, _, err := Parse(text)
	return err
}

// SetField sets a string field on the object in text and returns the result
// as indented JSON. Blank text starts a fresh object. Invalid text and arrays
// are returned as errors and text is left to the caller unchanged.
func SetField(text, field, value string) (string, error) {
	parsed, ok, err := Parse(text)
	if err != nil {
		return "", err
	}
	obj := map[string]any{}
	if ok {
		m, isObj := parsed.(map[string]any)
		if !isObj {
			return "", &Error{Message: ErrFieldNeedsObject}
		}
		obj = m
	}
	obj[field] = value
	return Format(obj), nil
}

// Format renders v as 2-space indented JSON without HTML escaping.
func Format(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}
