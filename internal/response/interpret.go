package response

import "strings"

const (
	validationMessage = "Schema validation failed."
	unexpectedMessage = "Unexpected error response."
	defaultLocation   = "field"
	defaultViolation  = "Invalid value"
)

// Success reports whether status is 2xx.
func Success(status int) bool {
	return status >= 200 && status < 300
}

// Interpret classifies a reply. It returns nil for a 2xx status; the caller
// displays body either way. Status 0 means no response was received; callers
// holding the transport error should use NetworkError instead.
//
// Interpret never panics on malformed bodies. Fields that are missing or
// mistyped are left out of the result.
func Interpret(status int, body any) *ErrorInfo {
	if Success(status) {
		return nil
	}
	if status == 0 {
		return &ErrorInfo{Code: CodeNetwork, Message: "no response received"}
	}

	obj, ok := asObject(body)
	if !ok {
		return &ErrorInfo{Code: CodeUnexpected, Message: unexpectedMessage}
	}

	if status == 422 {
		if violations, ok := arrayField(obj, "detail"); ok {
			info := &ErrorInfo{
				Code:    CodeValidation,
				Message: validationMessage,
				Details: formatViolations(violations),
			}
			if missing, ok := stringSliceField(obj, "missing_fields"); ok {
				info.MissingFields = missing
			}
			return info
		}
	}

	info := envelope(obj)
	if info.Code == "" && info.Message == "" && info.MissingFields == nil {
		if detail, ok := objectField(obj, "detail"); ok {
			info = envelope(detail)
		}
	}
	return info
}

func envelope(obj map[string]any) *ErrorInfo {
	info := &ErrorInfo{}
	if code, ok := stringField(obj, "error_code"); ok {
		info.Code = code
	}
	if msg, ok := stringField(obj, "message"); ok {
		info.Message = msg
	}
	if missing, ok := stringSliceField(obj, "missing_fields"); ok {
		info.MissingFields = missing
	}
	return info
}

func formatViolations(items []any) []string {
	details := make([]string, 0, len(items))
	for _, item := range items {
		entry, ok := asObject(item)
		if !ok {
			continue
		}
		details = append(details, violationLocation(entry)+": "+violationMessage(entry))
	}
	return details
}

func violationLocation(entry map[string]any) string {
	loc, ok := arrayField(entry, "loc")
	if !ok || len(loc) == 0 {
		return defaultLocation
	}
	parts := make([]string, len(loc))
	for i, segment := range loc {
		parts[i] = scalarText(segment)
	}
	return strings.Join(parts, ".")
}

func violationMessage(entry map[string]any) string {
	if msg, ok := stringField(entry, "msg"); ok {
		return msg
	}
	return defaultViolation
}
