package config

import (
	"fmt"

	"github.com/lydakis/cmdconsole/internal/paths"
	"github.com/lydakis/cmdconsole/internal/secret"
)

// Store decides what survives a restart: connection settings go to the
// durable config file, the credential goes to the session store and only when
// the operator asked to remember it.
type Store struct {
	path    string
	secrets secret.Store
}

// NewStore returns a store backed by the settings file at path.
func NewStore(path string, secrets secret.Store) *Store {
	if secrets == nil {
		secrets = secret.NewMemoryStore()
	}
	return &Store{path: path, secrets: secrets}
}

// DefaultStore uses the XDG config file and the session credential store.
func DefaultStore() *Store {
	return NewStore(paths.ConfigFile(), secret.Default())
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Load merges the persisted settings with the session credential. A stored
// credential means the operator chose to remember it last time.
func (s *Store) Load() (Connection, *Settings, error) {
	settings, err := LoadFrom(s.path)
	if err != nil {
		return Connection{}, nil, err
	}
	envCredential, err := applyEnv(settings)
	if err != nil {
		return Connection{}, nil, err
	}

	conn := settings.Connection()
	stored, ok, err := s.secrets.Get()
	if err != nil {
		return Connection{}, nil, err
	}
	switch {
	case ok:
		conn.Credential = stored
		conn.RememberCredential = true
	case envCredential != "":
		conn.Credential = envCredential
	}
	return conn, settings, nil
}

// Save persists base_url, auth_mode and header_name unconditionally and
// writes or removes the session credential according to RememberCredential.
func (s *Store) Save(conn Connection) error {
	if _, err := ParseAuthMode(string(conn.AuthMode)); err != nil {
		return err
	}

	if _, err := s.Update(func(settings *Settings) {
		settings.BaseURL = conn.BaseURL
		settings.AuthMode = conn.AuthMode
		settings.HeaderName = conn.HeaderName
	}); err != nil {
		return err
	}
	return s.SaveCredential(conn)
}

// SaveCredential applies only the credential half of Save.
func (s *Store) SaveCredential(conn Connection) error {
	if conn.RememberCredential && conn.Credential != "" {
		return s.secrets.Put(conn.Credential)
	}
	return s.secrets.Remove()
}

// SaveSettings writes the non-connection keys of s, leaving base_url,
// auth_mode and header_name as they are on disk.
func (s *Store) SaveSettings(in *Settings) error {
	if in == nil {
		return nil
	}
	_, err := s.Update(func(settings *Settings) {
		settings.RequestedBy = in.RequestedBy
		settings.Actions = append([]string(nil), in.Actions...)
		settings.Timeout = in.Timeout
		settings.LogLevel = in.LogLevel
		settings.Headers = cloneStringMap(in.Headers)
	})
	return err
}

// Update loads the settings file without env expansion, applies mutate and
// writes the result back. Keys mutate does not touch are preserved.
func (s *Store) Update(mutate func(*Settings)) (*Settings, error) {
	settings, err := LoadForEditFrom(s.path)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(settings)
	}
	if err := SaveTo(s.path, settings); err != nil {
		return nil, fmt.Errorf("saving settings: %w", err)
	}
	return settings, nil
}
