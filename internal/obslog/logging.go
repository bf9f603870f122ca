// Package obslog builds climonitor's structured logger: a slog.Logger
// writing JSON or text, with sensitive-key redaction and size-based
// rotation of the default log file.
package obslog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/climonitor/climonitor/internal/paths"
)

const redactedValue = "[REDACTED]"

const (
	defaultLogMaxBytes int64 = 10 * 1024 * 1024
	defaultLogBackups        = 5
)

type contextKey struct{}

// Config holds the configuration for climonitor's logger. LogFile, when
// set, overrides the default diagnostic trace path — it is NOT the raw
// PTY transcript configured by --log-file/CLIMONITOR_LOG_FILE (see
// internal/launcher's transcript writer for that).
type Config struct {
	Level      string
	Format     string
	LogFile    string
	Verbose    bool
	StderrMode string
}

// WithLogger returns a new context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts the logger from ctx, falling back to slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return slog.Default()
}

// New creates a structured logger from cfg. Verbose forces debug level
// regardless of cfg.Level, matching CLIMONITOR_VERBOSE/--verbose.
func New(cfg Config) (*slog.Logger, func() error, error) {
	levelStr := cfg.Level
	if cfg.Verbose {
		levelStr = "debug"
	}

	level, err := parseLevel(levelStr)
	if err != nil {
		return nil, nil, err
	}

	stderrEnabled, err := shouldEnableStderr(cfg.StderrMode)
	if err != nil {
		return nil, nil, err
	}

	logFilePath := strings.TrimSpace(cfg.LogFile)
	usingDefaultLogFile := false

	if logFilePath == "" {
		defaultLogFile, pathErr := paths.DefaultDiagnosticLogFile()
		if pathErr != nil {
			return nil, nil, fmt.Errorf("resolve default diagnostic log file: %w", pathErr)
		}

		logFilePath = defaultLogFile
		usingDefaultLogFile = true
	}

	writers := make([]io.Writer, 0, 2)
	closers := make([]io.Closer, 0, 1)

	if stderrEnabled {
		writers = append(writers, os.Stderr)
	}

	if usingDefaultLogFile {
		if rotateErr := rotateLogFile(logFilePath, defaultLogMaxBytes, defaultLogBackups); rotateErr != nil {
			return nil, nil, fmt.Errorf("rotate default log file: %w", rotateErr)
		}
	}

	logFile, openErr := openLogFile(logFilePath)
	if openErr != nil {
		return nil, nil, openErr
	}

	writers = append(writers, logFile)
	closers = append(closers, logFile)

	handlerOpts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redactAttr,
	}

	multiWriter := io.MultiWriter(writers...)

	var handler slog.Handler

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
		handler = slog.NewJSONHandler(multiWriter, handlerOpts)
	case "text":
		handler = slog.NewTextHandler(multiWriter, handlerOpts)
	default:
		for _, closer := range closers {
			_ = closer.Close()
		}

		return nil, nil, fmt.Errorf("invalid log format: %q (allowed: json, text)", cfg.Format)
	}

	logger := slog.New(handler)

	cleanup := func() error {
		var firstErr error
		for _, closer := range closers {
			if closeErr := closer.Close(); closeErr != nil && firstErr == nil {
				firstErr = closeErr
			}
		}

		return firstErr
	}

	return logger, cleanup, nil
}

func openLogFile(path string) (*os.File, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("log file path cannot be empty")
	}

	if mkErr := os.MkdirAll(filepath.Dir(cleanPath), 0o700); mkErr != nil {
		return nil, fmt.Errorf("create log file directory: %w", mkErr)
	}

	file, err := os.OpenFile(filepath.Clean(cleanPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return file, nil
}

func rotateLogFile(path string, maxBytes int64, maxBackups int) error {
	if maxBytes <= 0 || maxBackups <= 0 {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("stat log file: %w", err)
	}

	if info.Size() < maxBytes {
		return nil
	}

	lastBackup := fmt.Sprintf("%s.%d", path, maxBackups)
	if removeErr := os.Remove(lastBackup); removeErr != nil && !os.IsNotExist(removeErr) {
		return fmt.Errorf("remove oldest rotated log: %w", removeErr)
	}

	for i := maxBackups - 1; i >= 1; i-- {
		src := fmt.Sprintf("%s.%d", path, i)
		dst := fmt.Sprintf("%s.%d", path, i+1)

		if _, statErr := os.Stat(src); statErr != nil {
			if os.IsNotExist(statErr) {
				continue
			}

			return fmt.Errorf("stat rotated log %s: %w", src, statErr)
		}

		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("rotate log %s -> %s: %w", src, dst, err)
		}
	}

	firstBackup := fmt.Sprintf("%s.1", path)
	if err := os.Rename(path, firstBackup); err != nil {
		return fmt.Errorf("rotate current log to backup: %w", err)
	}

	return nil
}

func shouldEnableStderr(mode string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto", "off", "false", "0":
		return false, nil
	case "on", "true", "1":
		return true, nil
	default:
		return false, fmt.Errorf("invalid log-stderr value %q (allowed: auto, on, off)", mode)
	}
}

func parseLevel(level string) (slog.Leveler, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return nil, fmt.Errorf("invalid log level: %q (allowed: error, warn, info, debug)", level)
	}
}

// redactAttr scrubs attrs whose value may carry text the wrapped tool
// itself produced. "line" is the EL-2 trace sink's pre-clear screen
// content (internal/launcher's traceSink) — since it echoes whatever
// the wrapped AI CLI rendered, it can contain anything the user pasted
// into that session, including a credential, so it is never written
// to the diagnostic log verbatim.
func redactAttr(_ []string, attr slog.Attr) slog.Attr {
	if isSensitiveKey(strings.ToLower(attr.Key)) {
		return slog.String(attr.Key, redactedValue)
	}

	return attr
}

func isSensitiveKey(key string) bool {
	return key == "line"
}
