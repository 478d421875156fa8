package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fakeyudi/splitwatch/internal/clock"
	"github.com/fakeyudi/splitwatch/internal/export"
	"github.com/fakeyudi/splitwatch/internal/report"
	"github.com/fakeyudi/splitwatch/internal/session"
)

var (
	batchOutput  outputFlags
	batchVirtual bool
	batchNoWrite bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run a scripted session from stdin, one intent per line",
	Long: `Reads intents from stdin and applies them to a fresh session:

  start            start or resume the clock
  stop             stop the clock and emit a report
  reset            clear the session (ignored while running)
  split            close the current page's split
  select N         make page N the target of the next note
  note TEXT        commit TEXT as a note for the selected page
  draft TEXT       replace the pending note without committing
  commit           commit the pending note
  wait DURATION    let time pass (e.g. 1.5s, 250ms)
  elapsed          print the elapsed time
  # ...            comment

"\n" inside TEXT is a line break. Each report is printed to stdout and,
unless --no-write is given, written to the output directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		format := cfg.DefaultFormat
		if batchOutput.format != "" {
			format = batchOutput.format
		}
		renderer, err := report.NewRenderer(format)
		if err != nil {
			return err
		}
		exporters := export.Multi{&export.StreamWriter{W: out, Renderer: renderer}}

		var clk clock.Clock = clock.System{}
		var manual *clock.Manual
		if batchVirtual {
			manual = clock.NewManual(time.Now())
			clk = manual
		}

		if !batchNoWrite {
			w, err := batchOutput.writer()
			if err != nil {
				return err
			}
			w.Now = clk.Now
			exporters = append(exporters, w)
		}

		sess := session.New(clk, session.WithExporter(exporters), session.WithLogger(logger))
		logger.Info("batch session", zap.String("session", sess.ID()), zap.Bool("virtual", batchVirtual))

		r := &batchRunner{sess: sess, clock: manual, out: out}
		return r.run(cmd.Context(), cmd.InOrStdin())
	},
}

// batchRunner applies intents to one session.
type batchRunner struct {
	sess *session.Session
	// clock is set in virtual mode; wait advances it instead of sleeping.
	clock *clock.Manual
	out   io.Writer
}

func (b *batchRunner) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := b.apply(ctx, line); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

func (b *batchRunner) apply(ctx context.Context, line string) error {
	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch verb {
	case "start":
		b.sess.Start()
	case "stop":
		if _, err := b.sess.Stop(); err != nil {
			return err
		}
	case "reset":
		b.sess.Reset()
	case "split":
		b.sess.MarkSplit()
	case "select":
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			return fmt.Errorf("select needs a page number, got %q", arg)
		}
		b.sess.SelectPage(n)
	case "note":
		b.sess.Commit(unescape(arg))
	case "draft":
		b.sess.SetDraft(unescape(arg))
	case "commit":
		b.sess.CommitDraft()
	case "wait":
		d, err := time.ParseDuration(arg)
		if err != nil || d < 0 {
			return fmt.Errorf("wait needs a duration, got %q", arg)
		}
		return b.wait(ctx, d)
	case "elapsed":
		fmt.Fprintln(b.out, report.FormatDuration(b.sess.Elapsed()))
	default:
		return fmt.Errorf("unknown intent %q", verb)
	}
	return nil
}

func (b *batchRunner) wait(ctx context.Context, d time.Duration) error {
	if b.clock != nil {
		b.clock.Advance(d)
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func unescape(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func init() {
	batchOutput.register(batchCmd)
	batchCmd.Flags().BoolVar(&batchVirtual, "virtual", false, "use a simulated clock so wait returns immediately")
	batchCmd.Flags().BoolVar(&batchNoWrite, "no-write", false, "print reports only; do not write report files")
	rootCmd.AddCommand(batchCmd)
}
