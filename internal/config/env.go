package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// envOverrides are read from CMDCONSOLE_* variables and win over config.toml.
type envOverrides struct {
	BaseURL     string `env:"BASE_URL"`
	AuthMode    string `env:"AUTH_MODE"`
	HeaderName  string `env:"HEADER_NAME"`
	APIKey      string `env:"API_KEY"`
	RequestedBy string `env:"REQUESTED_BY"`
	LogLevel    string `env:"LOG_LEVEL"`
}

// applyEnv overlays environment overrides onto s and returns the credential
// supplied through CMDCONSOLE_API_KEY, which is never persisted.
func applyEnv(s *Settings) (string, error) {
	var o envOverrides
	if err := env.ParseWithOptions(&o, env.Options{Prefix: "CMDCONSOLE_"}); err != nil {
		return "", fmt.Errorf("reading environment overrides: %w", err)
	}

	if v := strings.TrimSpace(o.BaseURL); v != "" {
		s.BaseURL = v
	}
	if v := strings.TrimSpace(o.AuthMode); v != "" {
		mode, err := ParseAuthMode(v)
		if err != nil {
			return "", fmt.Errorf("CMDCONSOLE_AUTH_MODE: %w", err)
		}
		s.AuthMode = mode
	}
	if v := strings.TrimSpace(o.HeaderName); v != "" {
		s.HeaderName = v
	}
	if v := strings.TrimSpace(o.RequestedBy); v != "" {
		s.RequestedBy = v
	}
	if v := strings.TrimSpace(o.LogLevel); v != "" {
		s.LogLevel = v
	}
	return strings.TrimSpace(o.APIKey), nil
}
