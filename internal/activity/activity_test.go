package activity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func strPtr(s string) *string { return &s }

func sampleRecords() []Record {
	return []Record{
		{ID: "1", RawText: "Assign Deploy task to asset a-1", Status: "success", Intent: map[string]any{"action": "assign_task"}},
		{ID: "2", RawText: "something odd", Status: "error", Intent: map[string]any{"action": "deploy_service"}},
		{ID: "3", RawText: "noop run", Status: "noop", Intent: map[string]any{}},
		{ID: "4", RawText: "retry", Status: "error", Intent: map[string]any{"action": 42}},
		{ID: "5", RawText: "again", Status: "Error"},
	}
}

func ids(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestFilterByStatusIsExactAndOrdered(t *testing.T) {
	got := ids(Filter(sampleRecords(), "error", ""))
	if diff := cmp.Diff([]string{"2", "4"}, got); diff != "" {
		t.Fatalf("Filter(error) mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterAllPassesEverything(t *testing.T) {
	for _, status := range []string{"all", ""} {
		if got := Filter(sampleRecords(), status, "  "); len(got) != 5 {
			t.Fatalf("Filter(%q) len = %d, want 5", status, len(got))
		}
	}
}

func TestFilterSearchMatchesRawTextOrAction(t *testing.T) {
	got := ids(Filter(sampleRecords(), "all", "DEPLOY"))
	if diff := cmp.Diff([]string{"1", "2"}, got); diff != "" {
		t.Fatalf("Filter(all, DEPLOY) mismatch (-want +got):\n%s", diff)
	}

	got = ids(Filter(sampleRecords(), "all", " assign_"))
	if diff := cmp.Diff([]string{"1"}, got); diff != "" {
		t.Fatalf("Filter(all, assign_) mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterIgnoresNonStringAction(t *testing.T) {
	if got := Filter(sampleRecords(), "all", "42"); len(got) != 0 {
		t.Fatalf("Filter(42) = %v, want none", ids(got))
	}
}

func TestFilterCombinesStatusAndSearch(t *testing.T) {
	got := ids(Filter(sampleRecords(), "success", "deploy"))
	if diff := cmp.Diff([]string{"1"}, got); diff != "" {
		t.Fatalf("Filter(success, deploy) mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	records := sampleRecords()
	before := ids(records)
	_ = Filter(records, "noop", "x")
	if diff := cmp.Diff(before, ids(records)); diff != "" {
		t.Fatalf("input mutated (-before +after):\n%s", diff)
	}
}

func TestFind(t *testing.T) {
	r, ok := Find(sampleRecords(), "3")
	if !ok || r.RawText != "noop run" {
		t.Fatalf("Find(3) = %#v, %v", r, ok)
	}
	if _, ok := Find(sampleRecords(), "nope"); ok {
		t.Fatal("Find(nope) ok = true")
	}
}

func TestRecordDecodesWireShape(t *testing.T) {
	const raw = `{
		"id": "c0ffee",
		"raw_text": "assign t-1",
		"status": "success",
		"created_at": "2026-01-02T03:04:05Z",
		"api_key_id": "k-1",
		"api_key_name": null,
		"role": "operator",
		"intent_json": {"action": "assign_task"}
	}`
	var got Record
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := Record{
		ID:        "c0ffee",
		RawText:   "assign t-1",
		Status:    "success",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		APIKeyID:  strPtr("k-1"),
		Role:      strPtr("operator"),
		Intent:    map[string]any{"action": "assign_task"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Record mismatch (-want +got):\n%s", diff)
	}
	if got.Action() != "assign_task" {
		t.Fatalf("Action() = %q", got.Action())
	}
}

func TestRecordDecodesZonelessCreatedAt(t *testing.T) {
	cases := map[string]time.Time{
		"2026-03-01T10:00:00.123456": time.Date(2026, 3, 1, 10, 0, 0, 123456000, time.UTC),
		"2026-03-01T10:00:00":        time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		"2026-03-01 10:00:00.5":      time.Date(2026, 3, 1, 10, 0, 0, 500000000, time.UTC),
		"":                           {},
	}
	for raw, want := range cases {
		var got Record
		if err := json.Unmarshal([]byte(`{"id":"1","created_at":"`+raw+`","intent_json":{}}`), &got); err != nil {
			t.Fatalf("Unmarshal(%q) error = %v", raw, err)
		}
		if !got.CreatedAt.Equal(want) {
			t.Fatalf("CreatedAt(%q) = %v, want %v", raw, got.CreatedAt, want)
		}
		if got.ID != "1" {
			t.Fatalf("ID = %q, want 1", got.ID)
		}
	}
}

func TestRecordRejectsGarbageCreatedAt(t *testing.T) {
	var got Record
	if err := json.Unmarshal([]byte(`{"id":"1","created_at":"yesterday"}`), &got); err == nil {
		t.Fatal("Unmarshal() error = nil, want error")
	}
}

func TestValidStatus(t *testing.T) {
	if !ValidStatus("noop") || ValidStatus("pending") {
		t.Fatal("ValidStatus mismatch")
	}
}
