package response

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Typed readers over decoded JSON. Each reports ok == false instead of
// failing when the key is missing or holds a different type.

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok && m != nil
}

func stringField(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

func objectField(m map[string]any, key string) (map[string]any, bool) {
	return asObject(m[key])
}

func arrayField(m map[string]any, key string) ([]any, bool) {
	a, ok := m[key].([]any)
	return a, ok
}

// stringSliceField requires every element to be a string.
func stringSliceField(m map[string]any, key string) ([]string, bool) {
	items, ok := arrayField(m, key)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, isString := item.(string)
		if !isString {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// scalarText renders a location segment the way a JSON array join would.
func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
