// Package httpheaders manipulates the header maps attached to outgoing calls.
// Header names are matched case-insensitively everywhere, so a credential
// header configured as "x-api-key" replaces a static "X-API-Key" entry rather
// than being sent twice.
package httpheaders

import (
	"net/http"
	"sort"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Set writes a header value using case-insensitive key matching.
// If an equivalent key already exists with different casing, it is replaced.
func Set(headers map[string]string, name, value string) map[string]string {
	name = strings.TrimSpace(name)
	if name == "" {
		return headers
	}

	if headers == nil {
		headers = make(map[string]string, 1)
	}
	if existing, ok := lookupKeyFold(headers, name); ok && existing != name {
		delete(headers, existing)
	}
	headers[name] = value
	return headers
}

// Merge applies src entries into dst using case-insensitive key matching.
// When overwrite is false, existing dst entries win.
func Merge(dst map[string]string, src map[string]string, overwrite bool) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}

	for _, key := range sortedKeys(src) {
		name := strings.TrimSpace(key)
		if name == "" {
			continue
		}

		if existing, ok := lookupKeyFold(dst, name); ok {
			if !overwrite {
				continue
			}
			delete(dst, existing)
		}
		dst[name] = src[key]
	}
	return dst
}

// Apply copies headers onto an outgoing request header set in a stable order.
func Apply(dst http.Header, headers map[string]string) {
	for _, key := range sortedKeys(headers) {
		name := strings.TrimSpace(key)
		if name == "" {
			continue
		}
		dst.Set(name, headers[key])
	}
}

// ValidName reports whether name is a legal HTTP header field name.
func ValidName(name string) bool {
	return httpguts.ValidHeaderFieldName(name)
}

// Redact masks a secret for display, keeping only the last four characters
// of values long enough that doing so does not reveal most of the secret.
func Redact(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}

func sortedKeys(src map[string]string) []string {
	keys := make([]string, 0, len(src))
	for key := range src {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		li := strings.ToLower(strings.TrimSpace(keys[i]))
		lj := strings.ToLower(strings.TrimSpace(keys[j]))
		if li == lj {
			return keys[i] < keys[j]
		}
		return li < lj
	})
	return keys
}

func lookupKeyFold(headers map[string]string, name string) (string, bool) {
	for key := range headers {
		if strings.EqualFold(strings.TrimSpace(key), strings.TrimSpace(name)) {
			return key, true
		}
	}
	return "", false
}
