// Package export hands finished reports to storage: a timestamped file in
// the output directory, or any io.Writer.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fakeyudi/splitwatch/internal/report"
)

// FilenameLayout is the time layout export file names are built from.
const FilenameLayout = "2006-01-02_15-04-05"

// Writer writes each report to <Dir>/<stop time><Ext>. Existing files are
// never overwritten; a -1, -2, ... suffix is added instead.
type Writer struct {
	Dir      string
	Renderer report.Renderer
	Ext      string
	// Now supplies the wall-clock time used for the file name.
	Now func() time.Time

	mu   sync.Mutex
	last string
}

// NewWriter returns a Writer for format, creating dir if needed.
func NewWriter(dir, format string) (*Writer, error) {
	r, err := report.NewRenderer(format)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Writer{Dir: dir, Renderer: r, Ext: report.Extension(format), Now: time.Now}, nil
}

// Export renders r into a temp file in Dir and links it to the first free
// name. os.Link fails with EEXIST rather than replacing a file, so a report
// created concurrently under the same name is never clobbered.
func (w *Writer) Export(r *report.Report) error {
	data, err := w.Renderer.Render(r)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	tmp, err := os.CreateTemp(w.Dir, "report-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	path, err := w.link(tmpName)
	if err != nil {
		return err
	}
	w.last = path
	return nil
}

// LastPath returns the file written by the most recent successful Export.
func (w *Writer) LastPath() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// link gives tmpName its final name: the stop time, then -1, -2, ... until
// one is free.
func (w *Writer) link(tmpName string) (string, error) {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	base := now().Format(FilenameLayout)
	for n := 0; ; n++ {
		name := base
		if n > 0 {
			name += "-" + strconv.Itoa(n)
		}
		path := filepath.Join(w.Dir, name+w.Ext)
		err := os.Link(tmpName, path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("failed to write report: %w", err)
		}
	}
}

// StreamWriter renders each report to an io.Writer.
type StreamWriter struct {
	W        io.Writer
	Renderer report.Renderer
}

func (s *StreamWriter) Export(r *report.Report) error {
	data, err := s.Renderer.Render(r)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if _, err := s.W.Write(data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Exporter matches session.Exporter without importing it.
type Exporter interface {
	Export(r *report.Report) error
}

// Multi hands each report to every exporter in order and joins their errors.
type Multi []Exporter

func (m Multi) Export(r *report.Report) error {
	var errs []error
	for _, e := range m {
		if err := e.Export(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
