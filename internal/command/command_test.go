package command

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/lydakis/cmdconsole/internal/payload"
	"github.com/lydakis/cmdconsole/internal/response"
)

var allowed = []string{"assign_task"}

func TestComposeNaturalOmitsPayloadForBlankFallback(t *testing.T) {
	for _, text := range []string{"", "   "} {
		body := Compose(Natural{RequestedBy: "ops", RawText: "assign t-1 to a-2", FallbackPayload: text})
		if _, ok := body["payload"]; ok {
			t.Fatalf("Compose(fallback=%q) includes payload: %#v", text, body)
		}
		if body["requested_by"] != "ops" || body["raw_text"] != "assign t-1 to a-2" {
			t.Fatalf("Compose() = %#v", body)
		}
		if _, ok := body["action"]; ok {
			t.Fatalf("natural body carries action: %#v", body)
		}
	}
}

func TestComposeNaturalKeepsEmptyObjectFallback(t *testing.T) {
	body := Compose(Natural{RequestedBy: "ops", RawText: "x", FallbackPayload: "{}"})
	got, ok := body["payload"].(map[string]any)
	if !ok || len(got) != 0 {
		t.Fatalf("payload = %#v, want empty object", body["payload"])
	}
}

func TestComposeDirect(t *testing.T) {
	body := Compose(Direct{RequestedBy: "ops", Action: "assign_task", Payload: `{"asset_id":"a-1","task_id":"t-1"}`})
	if body["action"] != "assign_task" {
		t.Fatalf("action = %#v", body["action"])
	}
	if _, ok := body["raw_text"]; ok {
		t.Fatalf("direct body carries raw_text: %#v", body)
	}

	body = Compose(Direct{RequestedBy: "ops", Action: "assign_task"})
	if _, ok := body["payload"]; ok {
		t.Fatalf("Compose(blank payload) includes payload: %#v", body)
	}
}

func TestComposePayloadRoundTrip(t *testing.T) {
	const text = `{"asset_id":"a-1","priority":3,"tags":["x","y"]}`
	body := Compose(Direct{RequestedBy: "ops", Action: "assign_task", Payload: text})

	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var wire map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &wire); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	reparsed, _, err := payload.Parse(string(wire["payload"]))
	if err != nil {
		t.Fatalf("Parse(wire payload) error = %v", err)
	}
	want, _, _ := payload.Parse(text)
	if !reflect.DeepEqual(reparsed, want) {
		t.Fatalf("round trip = %#v, want %#v", reparsed, want)
	}
}

func TestCheckOrder(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		code string
		msg  string
	}{
		{"natural blank text wins over bad payload", Natural{RawText: "  ", FallbackPayload: "5"}, response.CodeInvalidRequest, "raw_text is required."},
		{"natural bad fallback", Natural{RawText: "go", FallbackPayload: "5"}, response.CodeInvalidPayload, payload.ErrNotObject},
		{"direct empty action", Direct{Payload: "{"}, response.CodeInvalidRequest, "action is required."},
		{"direct unknown action", Direct{Action: "drop_tables"}, response.CodeInvalidRequest, `action "drop_tables" is not allowed.`},
		{"direct bad payload", Direct{Action: "assign_task", Payload: "true"}, response.CodeInvalidPayload, payload.ErrNotObject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Check(tt.in, allowed)
			if got == nil {
				t.Fatal("Check() = nil, want error")
			}
			if got.Code != tt.code || got.Message != tt.msg {
				t.Fatalf("Check() = %s/%q, want %s/%q", got.Code, got.Message, tt.code, tt.msg)
			}
		})
	}
}

func TestCheckAcceptsValidInput(t *testing.T) {
	if got := Check(Natural{RawText: "assign", FallbackPayload: ""}, allowed); got != nil {
		t.Fatalf("Check(natural) = %#v, want nil", got)
	}
	if got := Check(Direct{Action: "assign_task", Payload: "[]"}, allowed); got != nil {
		t.Fatalf("Check(direct) = %#v, want nil", got)
	}
	if got := Check(Direct{Action: "anything"}, nil); got != nil {
		t.Fatalf("Check(nil allowed) = %#v, want nil", got)
	}
}

func TestPreview(t *testing.T) {
	got, info := Preview(Direct{RequestedBy: "ops", Action: "assign_task", Payload: `{"task_id":"t-1"}`}, allowed)
	if info != nil {
		t.Fatalf("Preview() error = %#v", info)
	}
	want := "{\n  \"action\": \"assign_task\",\n  \"payload\": {\n    \"task_id\": \"t-1\"\n  },\n  \"requested_by\": \"ops\"\n}"
	if got != want {
		t.Fatalf("Preview() = %q, want %q", got, want)
	}

	if _, info := Preview(Natural{}, allowed); info == nil || info.Code != response.CodeInvalidRequest {
		t.Fatalf("Preview(invalid) = %#v, want invalid_request", info)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(" Direct "); err != nil || m != ModeDirect {
		t.Fatalf("ParseMode(Direct) = %q, %v", m, err)
	}
	if _, err := ParseMode("auto"); err == nil {
		t.Fatal("ParseMode(auto) error = nil")
	}
}
