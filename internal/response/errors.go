// Package response classifies command-service replies and renders them for
// the operator.
package response

import (
	"fmt"
	"strings"
)

// Error codes produced locally. Domain codes come from the service verbatim.
const (
	CodeInvalidRequest = "invalid_request"
	CodeInvalidPayload = "invalid_payload"
	CodeValidation     = "validation_error"
	CodeNetwork        = "network_error"
	CodeUnexpected     = "error"
)

// ErrorInfo is a classified failure.
type ErrorInfo struct {
	Code          string   `json:"error_code,omitempty" yaml:"error_code,omitempty"`
	Message       string   `json:"message,omitempty" yaml:"message,omitempty"`
	MissingFields []string `json:"missing_fields,omitempty" yaml:"missing_fields,omitempty"`
	Details       []string `json:"details,omitempty" yaml:"details,omitempty"`
}

func (e *ErrorInfo) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	switch {
	case e.Code != "" && e.Message != "":
		fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	case e.Code != "":
		b.WriteString(e.Code)
	case e.Message != "":
		b.WriteString(e.Message)
	default:
		b.WriteString("request failed")
	}
	if len(e.MissingFields) > 0 {
		fmt.Fprintf(&b, " (missing: %s)", strings.Join(e.MissingFields, ", "))
	}
	return b.String()
}

// Local reports whether the failure was detected before any network call.
func (e *ErrorInfo) Local() bool {
	return e != nil && (e.Code == CodeInvalidRequest || e.Code == CodeInvalidPayload)
}

// InvalidRequest is a local precondition failure on the request fields.
func InvalidRequest(msg string) *ErrorInfo {
	return &ErrorInfo{Code: CodeInvalidRequest, Message: msg}
}

// InvalidPayload is a local payload parse failure.
func InvalidPayload(msg string) *ErrorInfo {
	return &ErrorInfo{Code: CodeInvalidPayload, Message: msg}
}

// NetworkError wraps a transport failure where no response was received.
func NetworkError(err error) *ErrorInfo {
	msg := "request failed"
	if err != nil {
		msg = err.Error()
	}
	return &ErrorInfo{Code: CodeNetwork, Message: msg}
}
