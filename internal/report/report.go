// Package report renders the final state of a review session into the
// exported document and parses exported documents back.
package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fakeyudi/splitwatch/internal/annotation"
	"github.com/fakeyudi/splitwatch/internal/split"
)

// ErrUnknownFormat is returned for an export format other than text, json or yaml.
var ErrUnknownFormat = errors.New("unknown report format")

// Supported formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Separator is the section divider line of the text report.
const Separator = "=== === === ==="

// Report is everything the exported document is rendered from.
type Report struct {
	// SessionID is carried by the json and yaml forms only.
	SessionID   string
	Total       time.Duration
	Splits      []split.Record
	Annotations []annotation.Entry
}

// FormatDuration renders d as MM:SS.mmm, truncating to the millisecond.
// Minutes are padded to two digits and never wrap.
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%02d:%02d.%03d", ms/60000, (ms%60000)/1000, ms%1000)
}

// ParseDuration is the inverse of FormatDuration.
func ParseDuration(s string) (time.Duration, error) {
	colon := strings.IndexByte(s, ':')
	if colon < 2 || len(s) != colon+7 || s[colon+3] != '.' {
		return 0, fmt.Errorf("malformed duration %q", s)
	}
	m, err1 := strconv.ParseUint(s[:colon], 10, 32)
	sec, err2 := strconv.ParseUint(s[colon+1:colon+3], 10, 8)
	ms, err3 := strconv.ParseUint(s[colon+4:], 10, 16)
	if err := errors.Join(err1, err2, err3); err != nil {
		return 0, fmt.Errorf("malformed duration %q: %w", s, err)
	}
	if sec >= 60 {
		return 0, fmt.Errorf("malformed duration %q: seconds out of range", s)
	}
	return time.Duration(m)*time.Minute + time.Duration(sec)*time.Second + time.Duration(ms)*time.Millisecond, nil
}

// NewRenderer returns the renderer for format. An empty format means text.
func NewRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return &TextRenderer{}, nil
	case FormatJSON:
		return &JSONRenderer{}, nil
	case FormatYAML, "yml":
		return &YAMLRenderer{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// NewParser returns the parser for format. An empty format means text.
func NewParser(format string) (Parser, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return &TextParser{}, nil
	case FormatJSON:
		return &JSONParser{}, nil
	case FormatYAML, "yml":
		return &YAMLParser{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Extension returns the file extension exported reports of format use.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case FormatJSON:
		return ".json"
	case FormatYAML, "yml":
		return ".yaml"
	}
	return ".txt"
}

// FormatForPath guesses the format of an exported report from its extension.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatText
}
