package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/lydakis/cmdconsole/internal/httpheaders"
	"github.com/rs/zerolog"
)

// Validate checks settings invariants and returns actionable errors.
func Validate(s *Settings) error {
	if s == nil {
		return nil
	}

	var errs []error
	errs = append(errs, validateConnection(s)...)

	if len(s.Actions) == 0 {
		errs = append(errs, errors.New("actions: at least one action is required"))
	}
	for i, action := range s.Actions {
		if strings.TrimSpace(action) == "" {
			errs = append(errs, fmt.Errorf("actions[%d]: action name is empty", i))
		}
	}

	if s.Timeout != "" {
		d, err := time.ParseDuration(s.Timeout)
		if err != nil {
			errs = append(errs, fmt.Errorf("timeout: invalid duration %q: %w", s.Timeout, err))
		} else if d < 0 {
			errs = append(errs, fmt.Errorf("timeout: must be >= 0, got %q", s.Timeout))
		}
	}

	if s.LogLevel != "" {
		if _, err := zerolog.ParseLevel(s.LogLevel); err != nil {
			errs = append(errs, fmt.Errorf("log_level: %w", err))
		}
	}

	names := make([]string, 0, len(s.Headers))
	for name := range s.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !httpheaders.ValidName(name) {
			errs = append(errs, fmt.Errorf("headers.%s: invalid header name", name))
		}
	}

	return errors.Join(errs...)
}

func validateConnection(s *Settings) []error {
	var errs []error

	if err := ValidateBaseURL(s.BaseURL); err != nil {
		errs = append(errs, err)
	}

	if _, err := ParseAuthMode(string(s.AuthMode)); err != nil {
		errs = append(errs, fmt.Errorf("auth_mode: %w", err))
	}

	if err := ValidateHeaderName(s.HeaderName); err != nil {
		errs = append(errs, err)
	}

	return errs
}

// ValidateBaseURL reports whether raw is an absolute http or https URL with
// a host.
func ValidateBaseURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	switch {
	case err != nil:
		return fmt.Errorf("base_url: invalid URL %q: %w", raw, err)
	case u.Scheme != "http" && u.Scheme != "https":
		return fmt.Errorf("base_url: unsupported scheme %q (expected http or https)", u.Scheme)
	case u.Host == "":
		return fmt.Errorf("base_url: missing host in %q", raw)
	}
	return nil
}

// ValidateHeaderName reports whether name is a valid HTTP header field name.
func ValidateHeaderName(name string) error {
	if !httpheaders.ValidName(name) {
		return fmt.Errorf("header_name: invalid header name %q", name)
	}
	return nil
}
