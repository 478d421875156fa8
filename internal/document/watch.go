package document

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a burst of file events must go quiet before
// the document is reloaded.
const DefaultDebounce = 200 * time.Millisecond

// Debouncer runs fn once after Trigger stops being called for delay.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func()
	timer *time.Timer
}

// NewDebouncer returns a Debouncer that calls fn.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger (re)starts the quiet period.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

// Stop cancels a pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// WatchOptions configures Watch.
type WatchOptions struct {
	// Delay is the debounce window; DefaultDebounce when zero.
	Delay time.Duration
	// OnChange is called after the file settles.
	OnChange func()
	// OnError receives watcher errors, which are not fatal. Optional.
	OnError func(error)
}

// Watch calls opts.OnChange whenever the file at path is written, created or
// replaced, until ctx is cancelled. The parent directory is watched so that
// editors which save by renaming a temp file over the original are seen.
func Watch(ctx context.Context, path string, opts WatchOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	delay := opts.Delay
	if delay <= 0 {
		delay = DefaultDebounce
	}
	debounce := NewDebouncer(delay, func() {
		if opts.OnChange != nil {
			opts.OnChange()
		}
	})
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				debounce.Trigger()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if opts.OnError != nil {
				opts.OnError(err)
			}
		}
	}
}
