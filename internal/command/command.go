// Package command builds the request body sent to the command service.
package command

import (
	"fmt"
	"strings"

	"github.com/lydakis/cmdconsole/internal/payload"
	"github.com/lydakis/cmdconsole/internal/response"
)

// Mode names an input mode.
type Mode string

const (
	ModeNatural Mode = "natural"
	ModeDirect  Mode = "direct"
)

// ParseMode accepts "natural" or "direct".
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeNatural:
		return ModeNatural, nil
	case ModeDirect:
		return ModeDirect, nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected natural or direct)", raw)
	}
}

// Input is either Natural or Direct.
type Input interface {
	Mode() Mode
	isInput()
}

// Natural asks the service to infer the action from free text. FallbackPayload
// is optional JSON text sent as a disambiguation hint.
type Natural struct {
	RequestedBy     string
	RawText         string
	FallbackPayload string
}

// Direct names the action explicitly. Payload is optional JSON text.
type Direct struct {
	RequestedBy string
	Action      string
	Payload     string
}

func (Natural) Mode() Mode { return ModeNatural }
func (Direct) Mode() Mode  { return ModeDirect }
func (Natural) isInput()   {}
func (Direct) isInput()    {}

// Body is the JSON object posted to /commands.
type Body map[string]any

// Check runs the local preconditions in order: request fields first, then the
// payload text. A non-nil result means no request may be sent.
func Check(in Input, allowed []string) *response.ErrorInfo {
	var payloadText string
	switch v := in.(type) {
	case Natural:
		if strings.TrimSpace(v.RawText) == "" {
			return response.InvalidRequest("raw_text is required.")
		}
		payloadText = v.FallbackPayload
	case Direct:
		if v.Action == "" {
			return response.InvalidRequest("action is required.")
		}
		if allowed != nil && !contains(allowed, v.Action) {
			return response.InvalidRequest(fmt.Sprintf("action %q is not allowed.", v.Action))
		}
		payloadText = v.Payload
	default:
		return response.InvalidRequest("unknown command mode.")
	}

	if err := payload.Check(payloadText); err != nil {
		return response.InvalidPayload(err.Error())
	}
	return nil
}

// Compose builds the wire body. It assumes Check passed: a payload that does
// not parse is left out rather than reported.
func Compose(in Input) Body {
	switch v := in.(type) {
	case Natural:
		body := Body{"requested_by": v.RequestedBy, "raw_text": v.RawText}
		attachPayload(body, v.FallbackPayload)
		return body
	case Direct:
		body := Body{"requested_by": v.RequestedBy, "action": v.Action}
		attachPayload(body, v.Payload)
		return body
	default:
		return Body{}
	}
}

// Preview checks in and returns the body that would be sent, indented.
func Preview(in Input, allowed []string) (string, *response.ErrorInfo) {
	if info := Check(in, allowed); info != nil {
		return "", info
	}
	return payload.Format(Compose(in)), nil
}

func attachPayload(body Body, text string) {
	if value, ok, err := payload.Parse(text); err == nil && ok {
		body["payload"] = value
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
