// Package paths resolves climonitor's on-disk locations: the
// configuration file search order spec.md §6 specifies, plus XDG-style
// state/cache roots for everything else (log files, default socket
// path) that the spec leaves to OS convention.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "climonitor"

func configRoot() (string, error) {
	return rootWithFallback("XDG_CONFIG_HOME", os.UserConfigDir, ".config")
}

func cacheRoot() (string, error) {
	return rootWithFallback("XDG_CACHE_HOME", os.UserCacheDir, ".cache")
}

func stateRoot() (string, error) {
	noOSDefault := func() (string, error) {
		return "", fmt.Errorf("no OS state directory function")
	}

	return rootWithFallback("XDG_STATE_HOME", noOSDefault, filepath.Join(".local", "state"))
}

func rootWithFallback(xdgEnv string, osFn func() (string, error), fallbackDir string) (string, error) {
	if xdg := os.Getenv(xdgEnv); xdg != "" && filepath.IsAbs(xdg) {
		return filepath.Join(xdg, appName), nil
	}

	root, err := osFn()
	if err == nil && root != "" {
		return filepath.Join(root, appName), nil
	}

	home, homeErr := os.UserHomeDir()
	if homeErr == nil && home != "" {
		return filepath.Join(home, fallbackDir, appName), nil
	}

	if err != nil {
		return "", err
	}

	return "", fmt.Errorf("resolve user home directory")
}

// ConfigRoot returns the user config root directory for climonitor.
func ConfigRoot() (string, error) {
	return configRoot()
}

// CacheRoot returns the user cache root directory for climonitor.
func CacheRoot() (string, error) {
	return cacheRoot()
}

// StateRoot returns the user state root directory for climonitor.
func StateRoot() (string, error) {
	return stateRoot()
}

// LogsDir returns the default log directory for climonitor.
func LogsDir() (string, error) {
	root, err := stateRoot()
	if err != nil {
		return "", err
	}

	return filepath.Join(root, "logs"), nil
}

// DefaultLogFile returns the default path for the raw PTY transcript
// copy (spec.md §6: "--log-file PATH" / CLIMONITOR_LOG_FILE), used
// when no explicit path is configured. This file is a plain append-mode
// byte copy — no structure, no rotation.
func DefaultLogFile() (string, error) {
	logsDir, err := LogsDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(logsDir, "climonitor.log"), nil
}

// DefaultDiagnosticLogFile returns the default path for climonitor's
// own structured diagnostic trace (internal operation logging), kept
// distinct from the raw PTY transcript returned by DefaultLogFile.
func DefaultDiagnosticLogFile() (string, error) {
	logsDir, err := LogsDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(logsDir, "diagnostic.log"), nil
}

// DefaultSocketPath returns the platform-conventional local socket
// path used when CLIMONITOR_SOCKET_PATH is not set.
func DefaultSocketPath() (string, error) {
	root, err := stateRoot()
	if err != nil {
		return "", err
	}

	return filepath.Join(root, "climonitor.sock"), nil
}

// NotifyHookPath returns ~/.climonitor/notify.sh (or .ps1 on Windows),
// per spec.md §6's aggregator-side notification hook.
func NotifyHookPath(goos string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home directory: %w", err)
	}

	name := "notify.sh"
	if goos == "windows" {
		name = "notify.ps1"
	}

	return filepath.Join(home, ".climonitor", name), nil
}

// ConfigSearchPaths returns the config-file search order from
// spec.md §6, in priority order: ./climonitor/config.toml,
// ~/.climonitor/config.toml, ~/.config/climonitor/config.toml.
func ConfigSearchPaths() ([]string, error) {
	paths := []string{filepath.Join("climonitor", "config.toml")}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".climonitor", "config.toml"))
	}

	root, err := configRoot()
	if err != nil {
		return paths, nil //nolint:nilerr // config-root resolution failure just narrows the search list
	}

	paths = append(paths, filepath.Join(root, "config.toml"))

	return paths, nil
}
