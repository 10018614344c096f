package payload

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseBlankMeansOmit(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		value, ok, err := Parse(text)
		if err != nil || ok || value != nil {
			t.Fatalf("Parse(%q) = %v, %v, %v; want nil, false, nil", text, value, ok, err)
		}
	}
}

func TestParseEmptyObjectIsNotOmit(t *testing.T) {
	value, ok, err := Parse("{}")
	if err != nil || !ok {
		t.Fatalf("Parse({}) ok=%v err=%v, want ok", ok, err)
	}
	if m, isMap := value.(map[string]any); !isMap || len(m) != 0 {
		t.Fatalf("Parse({}) = %#v, want empty object", value)
	}
}

func TestParseAcceptsObjectsAndArrays(t *testing.T) {
	value, ok, err := Parse(`{"asset_id":"a-1","count":3,"nested":{"x":[1,2]}}`)
	if err != nil || !ok {
		t.Fatalf("Parse(object) ok=%v err=%v", ok, err)
	}
	want := map[string]any{
		"asset_id": "a-1",
		"count":    json.Number("3"),
		"nested":   map[string]any{"x": []any{json.Number("1"), json.Number("2")}},
	}
	if !reflect.DeepEqual(value, want) {
		t.Fatalf("Parse(object) = %#v, want %#v", value, want)
	}

	value, ok, err = Parse(`[1, "two"]`)
	if err != nil || !ok {
		t.Fatalf("Parse(array) ok=%v err=%v", ok, err)
	}
	if got, isSlice := value.([]any); !isSlice || len(got) != 2 {
		t.Fatalf("Parse(array) = %#v, want 2-element slice", value)
	}
}

func TestParseRejectsScalars(t *testing.T) {
	for _, text := range []string{"5", "true", `"x"`, "null", " -1.5 "} {
		_, ok, err := Parse(text)
		if ok {
			t.Fatalf("Parse(%q) ok = true, want false", text)
		}
		var perr *Error
		if !errors.As(err, &perr) {
			t.Fatalf("Parse(%q) err = %v, want *Error", text, err)
		}
		if perr.Message != ErrNotObject {
			t.Fatalf("Parse(%q) message = %q, want %q", text, perr.Message, ErrNotObject)
		}
	}
}

func TestParseSurfacesDecoderMessage(t *testing.T) {
	_, _, err := Parse(`{"asset_id": }`)
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("Parse(malformed) err = %v, want *Error", err)
	}
	if perr.Message == "" || perr.Message == ErrNotObject {
		t.Fatalf("Parse(malformed) message = %q, want decoder message", perr.Message)
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	for _, text := range []string{`{} {}`, `{"a":1} x`, `[1] 2`} {
		if _, _, err := Parse(text); err == nil {
			t.Fatalf("Parse(%q) err = nil, want trailing data error", text)
		}
	}
}

func TestParseRoundTripPreservesNumbers(t *testing.T) {
	const text = `{"big":12345678901234567890,"f":0.1000}`
	value, _, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	out, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != text {
		t.Fatalf("round trip = %s, want %s", out, text)
	}
}

func TestCheck(t *testing.T) {
	if err := Check(""); err != nil {
		t.Fatalf("Check(\"\") = %v, want nil", err)
	}
	if err := Check("7"); err == nil {
		t.Fatal("Check(7) = nil, want error")
	}
}

func TestSetFieldKeepsExistingObject(t *testing.T) {
	got, err := SetField(`{"task_id":"t-9"}`, "asset_id", "a-1")
	if err != nil {
		t.Fatalf("SetField() error = %v", err)
	}
	want := "{\n  \"asset_id\": \"a-1\",\n  \"task_id\": \"t-9\"\n}"
	if got != want {
		t.Fatalf("SetField() = %q, want %q", got, want)
	}
}

func TestSetFieldStartsFromBlank(t *testing.T) {
	got, err := SetField("  ", "task_id", "t-1")
	if err != nil {
		t.Fatalf("SetField() error = %v", err)
	}
	if got != "{\n  \"task_id\": \"t-1\"\n}" {
		t.Fatalf("SetField() = %q", got)
	}
}

func TestSetFieldRefusesToDiscardPayload(t *testing.T) {
	cases := map[string]string{
		"[1,2]":    ErrFieldNeedsObject,
		"5":        ErrNotObject,
		"not json": "invalid character",
	}
	for text, want := range cases {
		got, err := SetField(text, "task_id", "t-1")
		if err == nil {
			t.Fatalf("SetField(%q) = %q, want error", text, got)
		}
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("SetField(%q) error = %q, want %q", text, err, want)
		}
	}
}

func TestFormatDoesNotEscapeHTML(t *testing.T) {
	if got := Format(map[string]any{"q": "a<b"}); got != "{\n  \"q\": \"a<b\"\n}" {
		t.Fatalf("Format() = %q", got)
	}
}
