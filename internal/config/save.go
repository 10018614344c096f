package config

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio/v2"
	"github.com/lydakis/cmdconsole/internal/paths"
)

// Save writes the settings to the default config path atomically.
func Save(s *Settings) error {
	return SaveTo(paths.ConfigFile(), s)
}

// SaveTo writes s to path atomically. Readers see either the old file or the
// complete new one.
func SaveTo(path string, s *Settings) error {
	if s == nil {
		s = Defaults()
	}

	var payload bytes.Buffer
	if err := toml.NewEncoder(&payload).Encode(s); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := paths.EnsureDir(dir); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	if err := renameio.WriteFile(path, payload.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
