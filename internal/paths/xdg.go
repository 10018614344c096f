package paths

import (
	"os"
	"path/filepath"
)

const appName = "cmdconsole"

func homeDir() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	h, _ := os.UserHomeDir()
	return h
}

func xdgDir(envVar, fallbackSuffix string) string {
	if v := os.Getenv(envVar); v != "" {
		return filepath.Join(v, appName)
	}
	return filepath.Join(homeDir(), fallbackSuffix, appName)
}

// ConfigDir returns the cmdconsole config directory ($XDG_CONFIG_HOME/cmdconsole).
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the cmdconsole state directory ($XDG_STATE_HOME/cmdconsole).
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

// SessionDir returns the session-scoped directory under $XDG_RUNTIME_DIR.
// The second result is false when no runtime directory is available; there is
// no durable fallback because anything written here must not outlive the login
// session.
func SessionDir() (string, bool) {
	if v := os.Getenv("XDG_RUNTIME_DIR"); v != "" {
		return filepath.Join(v, appName), true
	}
	return "", false
}

// ConfigFile returns the path to config.toml.
// CMDCONSOLE_CONFIG overrides the default location.
func ConfigFile() string {
	if v := os.Getenv("CMDCONSOLE_CONFIG"); v != "" {
		return v
	}
	return filepath.Join(ConfigDir(), "config.toml")
}

// LogFile returns the path of the debug log.
func LogFile() string {
	return filepath.Join(StateDir(), appName+".log")
}

// EnsureDir creates a directory and parents if needed.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0700)
}
