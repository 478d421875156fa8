package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// ProjectFile is the per-directory config file name.
const ProjectFile = ".splitwatch"

// Config holds all configurable splitwatch settings.
type Config struct {
	OutputDir     string `json:"output_dir,omitempty" env:"SPLITWATCH_OUTPUT_DIR"`
	DefaultFormat string `json:"default_format,omitempty" env:"SPLITWATCH_FORMAT"` // "text" | "json" | "yaml"
	RefreshMs     int    `json:"refresh_ms,omitempty" env:"SPLITWATCH_REFRESH_MS"`
	LinesPerPage  int    `json:"lines_per_page,omitempty" env:"SPLITWATCH_LINES_PER_PAGE"`
	LogFile       string `json:"log_file,omitempty" env:"SPLITWATCH_LOG_FILE"` // "-" disables logging
	LogLevel      string `json:"log_level,omitempty" env:"SPLITWATCH_LOG_LEVEL"`
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		OutputDir:     ".",
		DefaultFormat: "text",
		RefreshMs:     33,
		LinesPerPage:  40,
		LogLevel:      "info",
	}
}

// GlobalPath returns the global config location, honouring XDG_CONFIG_HOME.
func GlobalPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "splitwatch", "config.json"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "splitwatch", "config.json"), nil
}

// LoadGlobal reads the global config.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	return loadFile(path, true)
}

// LoadProject reads .splitwatch in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(ProjectFile, false)
}

func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Save writes cfg as the global config, creating its directory if needed.
func Save(cfg *Config) (string, error) {
	path, err := GlobalPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, append(data, '\n'), 0o644)
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	overlay(&result, global)
	overlay(&result, project)
	return result
}

func overlay(dst, src *Config) {
	if src == nil {
		return
	}
	if src.OutputDir != "" {
		dst.OutputDir = src.OutputDir
	}
	if src.DefaultFormat != "" {
		dst.DefaultFormat = src.DefaultFormat
	}
	if src.RefreshMs > 0 {
		dst.RefreshMs = src.RefreshMs
	}
	if src.LinesPerPage > 0 {
		dst.LinesPerPage = src.LinesPerPage
	}
	if src.LogFile != "" {
		dst.LogFile = src.LogFile
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
}

// ApplyEnv overrides cfg with any SPLITWATCH_* variables that are set.
// Unset variables leave the field alone.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load resolves the effective configuration: defaults, then the global file,
// then the project file, then the environment.
func Load() (Config, error) {
	global, err := LoadGlobal()
	if err != nil {
		return Config{}, fmt.Errorf("loading global config: %w", err)
	}
	project, err := LoadProject()
	if err != nil {
		return Config{}, fmt.Errorf("loading project config: %w", err)
	}
	cfg := Merge(global, project)
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
