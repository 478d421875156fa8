package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fakeyudi/splitwatch/internal/clock"
	"github.com/fakeyudi/splitwatch/internal/document"
	"github.com/fakeyudi/splitwatch/internal/export"
	"github.com/fakeyudi/splitwatch/internal/session"
	"github.com/fakeyudi/splitwatch/internal/timer"
	"github.com/fakeyudi/splitwatch/internal/tui"
)

// outputFlags are shared by every command that writes reports.
type outputFlags struct {
	dir    string
	format string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.dir, "output", "o", "", "directory reports are written to (default from config)")
	cmd.Flags().StringVar(&f.format, "format", "", "report format: text, json or yaml (default from config)")
}

// writer resolves flags over config and returns the file exporter.
func (f *outputFlags) writer() (*export.Writer, error) {
	dir, format := cfg.OutputDir, cfg.DefaultFormat
	if f.dir != "" {
		dir = f.dir
	}
	if f.format != "" {
		format = f.format
	}
	return export.NewWriter(dir, format)
}

var (
	runOutput       outputFlags
	runLinesPerPage int
)

var runCmd = &cobra.Command{
	Use:   "run [document]",
	Short: "Start an interactive review session",
	Long: `Opens the session screen. Page through the optional document with ←/→,
press s to start, space to close the current page's split, x to stop and write
the report, and enter to write a note for the page on screen.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(os.Stdin.Fd()) {
			return errors.New("run needs an interactive terminal; use 'splitwatch batch' for scripted sessions")
		}

		w, err := runOutput.writer()
		if err != nil {
			return err
		}
		sess := session.New(clock.System{}, session.WithExporter(w), session.WithLogger(logger))
		logger.Info("session opened", zap.String("session", sess.ID()), zap.String("output_dir", w.Dir))

		lines := cfg.LinesPerPage
		if runLinesPerPage > 0 {
			lines = runLinesPerPage
		}
		var path string
		if len(args) == 1 {
			path = args[0]
		}
		return runSession(cmd.Context(), sess, w, path, lines)
	},
}

// runSession drives the TUI and the document watcher until the user quits.
// A session still running at quit is stopped so its report is written.
func runSession(ctx context.Context, sess *session.Session, w *export.Writer, path string, linesPerPage int) error {
	var doc *document.Document
	var loadErr error
	if path != "" {
		doc, loadErr = document.Load(path, linesPerPage)
		if loadErr != nil {
			logger.Warn("document load failed", zap.String("path", path), zap.Error(loadErr))
		}
	}

	model := tui.NewSession(tui.SessionOptions{
		Session:    sess,
		Document:   doc,
		Refresh:    refreshInterval(),
		LastExport: w.LastPath,
		Logger:     logger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	g, ctx := errgroup.WithContext(ctx)
	watchCtx, stopWatching := context.WithCancel(ctx)

	if path != "" {
		g.Go(func() error {
			if loadErr != nil {
				p.Send(tui.DocumentErrorMsg{Err: loadErr})
			}
			err := document.Watch(watchCtx, path, document.WatchOptions{
				OnChange: func() {
					d, err := document.Load(path, linesPerPage)
					if err != nil {
						logger.Warn("document reload failed", zap.String("path", path), zap.Error(err))
						p.Send(tui.DocumentErrorMsg{Err: err})
						return
					}
					logger.Debug("document reloaded", zap.String("path", path), zap.Int("pages", d.Len()))
					p.Send(tui.DocumentLoadedMsg{Doc: d})
				},
				OnError: func(err error) {
					logger.Warn("watcher error", zap.Error(err))
				},
			})
			if err != nil {
				// The pager just stops following edits; timing is unaffected.
				logger.Warn("document watch unavailable", zap.String("path", path), zap.Error(err))
				p.Send(tui.DocumentErrorMsg{Err: fmt.Errorf("watching document: %w", err)})
			}
			return nil
		})
	}

	g.Go(func() error {
		defer stopWatching()
		_, err := p.Run()
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if sess.State() == timer.StateRunning {
		if _, err := sess.Stop(); err != nil {
			return err
		}
	}
	if last := w.LastPath(); last != "" {
		fmt.Println("Last report:", last)
	}
	logger.Info("session closed", zap.String("session", sess.ID()))
	return nil
}

func refreshInterval() time.Duration {
	if cfg.RefreshMs > 0 {
		return time.Duration(cfg.RefreshMs) * time.Millisecond
	}
	return tui.DefaultRefresh
}

func init() {
	runOutput.register(runCmd)
	runCmd.Flags().IntVar(&runLinesPerPage, "lines-per-page", 0, "lines per page for documents without form feeds (default from config)")
	rootCmd.AddCommand(runCmd)
}
