// Package config handles climonitor configuration using Viper.
//
// Configuration sources, in precedence order (highest first):
//  1. Command-line flags
//  2. Environment variables (CLIMONITOR_*)
//  3. Config file (./climonitor/config.toml, ~/.climonitor/config.toml,
//     ~/.config/climonitor/config.toml — first found wins)
//  4. Built-in defaults
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/climonitor/climonitor/internal/paths"
)

// Defaults for the connection section.
const (
	DefaultConnectionType = "unix"
)

// Config holds the climonitor configuration.
type Config struct {
	v *viper.Viper
}

// Load reads configuration from all sources using the standard
// search-path discovery order. Command-line flags are folded in
// afterward via Set, which takes highest precedence.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom behaves like Load, but when explicitConfigPath is non-empty
// it is read directly (spec.md §6's `--config PATH`) instead of using
// the search-path discovery order.
func LoadFrom(explicitConfigPath string) (*Config, error) {
	v := viper.New()

	socketPath, _ := paths.DefaultSocketPath()
	logFile, _ := paths.DefaultLogFile()

	v.SetDefault("connection.type", DefaultConnectionType)
	v.SetDefault("connection.socket_path", socketPath)
	v.SetDefault("connection.bind_address", "")
	v.SetDefault("connection.allowlist", []string{"localhost"})
	v.SetDefault("logging.verbose", false)
	v.SetDefault("logging.log_file", logFile)

	if explicitConfigPath != "" {
		v.SetConfigFile(explicitConfigPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")

		searchPaths, err := paths.ConfigSearchPaths()
		if err == nil {
			for _, p := range searchPaths {
				v.AddConfigPath(filepath.Dir(p))
			}
		}
	}

	v.SetEnvPrefix("CLIMONITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// spec.md §6 names these exact environment variables, which do not
	// follow the section-prefixed AutomaticEnv convention above.
	_ = v.BindEnv("connection.socket_path", "CLIMONITOR_SOCKET_PATH")
	_ = v.BindEnv("connection.bind_address", "CLIMONITOR_GRPC_ADDR")
	_ = v.BindEnv("logging.verbose", "CLIMONITOR_VERBOSE")
	_ = v.BindEnv("logging.log_file", "CLIMONITOR_LOG_FILE")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			if explicitConfigPath != "" {
				return nil, fmt.Errorf("read config file %s: %w", explicitConfigPath, err)
			}

			slog.Default().Warn("error reading config file",
				slog.String("component", "config"),
				slog.String("event.type", "config.read.warning"),
				slog.String("error", err.Error()),
			)
		} else if explicitConfigPath != "" {
			return nil, fmt.Errorf("config file not found: %s", explicitConfigPath)
		}
	}

	return &Config{v: v}, nil
}

// GetString returns a configuration value as string.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetBool returns a configuration value as bool.
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice returns a configuration value as a string slice.
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// Set overrides a key at the highest precedence, used to fold parsed
// command-line flags into the resolved configuration.
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// ConnectionType returns "unix" or "network".
func (c *Config) ConnectionType() string {
	return c.GetString("connection.type")
}

// SocketPath returns the local socket path for the unix backend.
func (c *Config) SocketPath() string {
	return c.GetString("connection.socket_path")
}

// BindAddress returns the host:port for the network backend.
func (c *Config) BindAddress() string {
	return c.GetString("connection.bind_address")
}

// Allowlist returns the configured network allowlist entries.
func (c *Config) Allowlist() []string {
	return c.GetStringSlice("connection.allowlist")
}

// Verbose returns whether verbose tracing is enabled.
func (c *Config) Verbose() bool {
	return c.GetBool("logging.verbose")
}

// LogFile returns the configured raw PTY transcript path (spec.md §6's
// --log-file / CLIMONITOR_LOG_FILE) — a plain append-mode byte copy of
// the wrapped tool's output, distinct from climonitor's own diagnostic
// trace (see internal/obslog).
func (c *Config) LogFile() string {
	return c.GetString("logging.log_file")
}
