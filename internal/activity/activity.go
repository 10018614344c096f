// Package activity holds fetched execution records and filters them for
// display.
package activity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// StatusAll disables the status filter.
const StatusAll = "all"

// Statuses lists the status filter choices offered to the operator.
var Statuses = []string{StatusAll, "success", "noop", "error"}

// Record is one past command execution as returned by /command-logs.
type Record struct {
	ID         string         `json:"id" yaml:"id"`
	RawText    string         `json:"raw_text" yaml:"raw_text"`
	Status     string         `json:"status" yaml:"status"`
	CreatedAt  time.Time      `json:"created_at" yaml:"created_at"`
	APIKeyID   *string        `json:"api_key_id,omitempty" yaml:"api_key_id,omitempty"`
	APIKeyName *string        `json:"api_key_name,omitempty" yaml:"api_key_name,omitempty"`
	Role       *string        `json:"role,omitempty" yaml:"role,omitempty"`
	Intent     map[string]any `json:"intent_json" yaml:"intent_json"`
}

// naiveLayouts are the zone-less ISO 8601 forms the service emits for UTC
// timestamps.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// UnmarshalJSON accepts created_at with or without a zone offset. A missing
// offset means UTC.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var wire struct {
		plain
		CreatedAt *string `json:"created_at"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = Record(wire.plain)
	if wire.CreatedAt == nil {
		return nil
	}
	t, err := ParseTimestamp(*wire.CreatedAt)
	if err != nil {
		return err
	}
	r.CreatedAt = t
	return nil
}

// ParseTimestamp parses an RFC 3339 timestamp, falling back to the zone-less
// ISO forms read as UTC. An empty string is the zero time.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("created_at: unrecognized timestamp %q", raw)
}

// Action returns intent.action when it is a string.
func (r Record) Action() string {
	action, _ := r.Intent["action"].(string)
	return action
}

// Filter returns the records matching status and search, in their original
// order. An empty or "all" status keeps every status. A blank search keeps
// everything; otherwise search matches raw text or intent action,
// case-insensitively. records is never modified.
func Filter(records []Record, status, search string) []Record {
	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if status != "" && status != StatusAll && r.Status != status {
			continue
		}
		if term != "" && !matches(r, term) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matches(r Record, term string) bool {
	if strings.Contains(strings.ToLower(r.RawText), term) {
		return true
	}
	action := r.Action()
	return action != "" && strings.Contains(strings.ToLower(action), term)
}

// Find returns the record with the given id.
func Find(records []Record, id string) (Record, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// ValidStatus reports whether status is one of Statuses.
func ValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}
