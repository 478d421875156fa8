// Package logging builds the zap logger used by every command.
//
// Logs go to a file, never the terminal, so they cannot tear the TUI.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Discard is the Path value that disables logging.
const Discard = "-"

// Options configures New.
type Options struct {
	// Path of the log file. Empty means DefaultPath(); Discard disables logging.
	Path string
	// Level is a zap level name ("debug", "info", "warn", "error"). Empty means info.
	Level string
}

// DefaultPath returns $XDG_STATE_HOME/splitwatch/splitwatch.log, falling back
// to ~/.local/state when XDG_STATE_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "splitwatch", "splitwatch.log"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "splitwatch", "splitwatch.log"), nil
}

// New returns a production JSON logger writing to opts.Path.
func New(opts Options) (*zap.Logger, error) {
	if opts.Path == Discard {
		return zap.NewNop(), nil
	}

	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	path := opts.Path
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}
	config.Sampling = nil

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
