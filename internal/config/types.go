package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/lydakis/cmdconsole/internal/httpheaders"
)

// AuthMode selects whether outgoing calls carry a credential header.
type AuthMode string

const (
	AuthOff    AuthMode = "off"
	AuthAPIKey AuthMode = "api_key"
)

// Defaults used when config.toml is missing or leaves a key empty.
const (
	DefaultBaseURL     = "http://localhost:8000"
	DefaultHeaderName  = "X-API-Key"
	DefaultRequestedBy = "cmdconsole"
)

// DefaultActions is the allowed direct-action set when none is configured.
var DefaultActions = []string{"assign_task"}

// ParseAuthMode accepts the two persisted spellings of an auth mode.
func ParseAuthMode(raw string) (AuthMode, error) {
	switch AuthMode(strings.TrimSpace(strings.ToLower(raw))) {
	case AuthOff:
		return AuthOff, nil
	case AuthAPIKey:
		return AuthAPIKey, nil
	default:
		return "", fmt.Errorf("unsupported auth mode %q (expected off or api_key)", raw)
	}
}

// Settings is the durable, non-secret configuration stored in config.toml.
type Settings struct {
	BaseURL    string   `toml:"base_url"`
	AuthMode   AuthMode `toml:"auth_mode"`
	HeaderName string   `toml:"header_name"`

	RequestedBy string            `toml:"requested_by,omitempty"`
	Actions     []string          `toml:"actions,omitempty"`
	Timeout     string            `toml:"timeout,omitempty"`
	LogLevel    string            `toml:"log_level,omitempty"`
	Headers     map[string]string `toml:"headers,omitempty"`
}

// Defaults returns the settings used for a fresh install.
func Defaults() *Settings {
	return &Settings{
		BaseURL:     DefaultBaseURL,
		AuthMode:    AuthOff,
		HeaderName:  DefaultHeaderName,
		RequestedBy: DefaultRequestedBy,
		Actions:     append([]string(nil), DefaultActions...),
	}
}

func (s *Settings) applyDefaults() {
	if strings.TrimSpace(s.BaseURL) == "" {
		s.BaseURL = DefaultBaseURL
	}
	if s.AuthMode == "" {
		s.AuthMode = AuthOff
	}
	if strings.TrimSpace(s.HeaderName) == "" {
		s.HeaderName = DefaultHeaderName
	}
	if strings.TrimSpace(s.RequestedBy) == "" {
		s.RequestedBy = DefaultRequestedBy
	}
	if len(s.Actions) == 0 {
		s.Actions = append([]string(nil), DefaultActions...)
	}
}

// TimeoutDuration returns the configured HTTP timeout, or zero for none.
// Invalid values are reported by Validate; here they mean no timeout.
func (s *Settings) TimeoutDuration() time.Duration {
	if s == nil || strings.TrimSpace(s.Timeout) == "" {
		return 0
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// AllowsAction reports whether action is in the configured action set.
func (s *Settings) AllowsAction(action string) bool {
	for _, a := range s.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Connection is the connection target plus authentication material that is
// attached to every outgoing call.
type Connection struct {
	BaseURL            string
	AuthMode           AuthMode
	HeaderName         string
	Credential         string
	RememberCredential bool

	// Extra holds static headers from config.toml, sent on every call.
	Extra map[string]string
}

// Connection projects the connection-related settings. The credential is
// filled in by Store.Load.
func (s *Settings) Connection() Connection {
	return Connection{
		BaseURL:    s.BaseURL,
		AuthMode:   s.AuthMode,
		HeaderName: s.HeaderName,
		Extra:      cloneStringMap(s.Headers),
	}
}

// AuthHeaders returns the credential header for the current mode. It is empty
// when auth is off or no credential is held, whatever Credential contains.
func (c Connection) AuthHeaders() map[string]string {
	if c.AuthMode != AuthAPIKey || c.Credential == "" || strings.TrimSpace(c.HeaderName) == "" {
		return map[string]string{}
	}
	return httpheaders.Set(nil, c.HeaderName, c.Credential)
}

// Headers returns every header an outgoing call carries. The credential
// header wins over a static header with the same name.
func (c Connection) Headers() map[string]string {
	out := httpheaders.Merge(nil, c.Extra, true)
	return httpheaders.Merge(out, c.AuthHeaders(), true)
}

// Clone returns a deep copy, safe to hand to an in-flight call.
func (c Connection) Clone() Connection {
	c.Extra = cloneStringMap(c.Extra)
	return c
}

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
