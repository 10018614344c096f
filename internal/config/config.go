package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
	"github.com/lydakis/cmdconsole/internal/paths"
)

var envVarRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads the settings file at the default path.
// If the file does not exist, it returns the defaults (no error).
func Load() (*Settings, error) {
	return LoadFrom(paths.ConfigFile())
}

// LoadFrom reads and parses a settings file at the given path, expanding
// ${ENV_VAR} placeholders and filling defaults for empty keys.
func LoadFrom(path string) (*Settings, error) {
	return loadFrom(path, true)
}

// LoadForEditFrom reads a settings file for in-place edits.
// It intentionally skips env expansion so writes do not bake secrets.
func LoadForEditFrom(path string) (*Settings, error) {
	return loadFrom(path, false)
}

func loadFrom(path string, expand bool) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var s Settings
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if expand {
		expandSettingsEnvVars(&s)
	}
	s.applyDefaults()
	return &s, nil
}

// ExampleConfigPath returns the default config file path (for help messages).
func ExampleConfigPath() string {
	return paths.ConfigFile()
}

func expandSettingsEnvVars(s *Settings) {
	s.BaseURL = expandEnvVars(s.BaseURL)
	s.HeaderName = expandEnvVars(s.HeaderName)
	s.RequestedBy = expandEnvVars(s.RequestedBy)
	for k, v := range s.Headers {
		s.Headers[k] = expandEnvVars(v)
	}
}

// expandEnvVars replaces ${VAR_NAME} with the value of the environment variable.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarRe.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match // leave unresolved vars as-is
	})
}
