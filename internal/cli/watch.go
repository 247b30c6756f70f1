package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/shotsearch/internal/domain"
)

// DefaultSettle is how long a folder must stay quiet before new files are sent.
const DefaultSettle = time.Second

var watchSettle time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Upload new screenshots from a folder as they appear",
	Long: `Watches a folder and uploads every PNG, JPEG or WebP file created or
written in it. Files are collected until the folder has been quiet for
--settle, then sent as one batch. Each file is uploaded once per session.
Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchSettle, "settle", DefaultSettle, "quiet period before uploading")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: not a directory", dir)
	}
	if watchSettle <= 0 {
		return errors.New("--settle must be positive")
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "Watching %s (server %s). Press Ctrl+C to stop.\n", dir, c.BaseURL())

	fw := &folderWatcher{settle: watchSettle, out: w, upload: c}
	return fw.run(ctx, watcher.Events, watcher.Errors)
}

// folderWatcher batches file events and uploads image files once.
type folderWatcher struct {
	settle time.Duration
	out    io.Writer
	upload uploader

	pending map[string]struct{}
	sent    map[string]struct{}
}

func (f *folderWatcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	f.pending = make(map[string]struct{})
	f.sent = make(map[string]struct{})

	timer := time.NewTimer(f.settle)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if f.track(ev) {
				timer.Reset(f.settle)
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			_, _ = fmt.Fprintf(f.out, "%s %v\n", styles.Warning.Render("watch error:"), err)
		case <-timer.C:
			f.flush(ctx)
		}
	}
}

// track records an event and reports whether it queued a file.
func (f *folderWatcher) track(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	if _, ok := domain.MIMEFromFilename(ev.Name); !ok {
		return false
	}
	if _, done := f.sent[ev.Name]; done {
		return false
	}
	f.pending[ev.Name] = struct{}{}
	return true
}

func (f *folderWatcher) flush(ctx context.Context) {
	if len(f.pending) == 0 {
		return
	}
	paths := make([]string, 0, len(f.pending))
	for p := range f.pending {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	clear(f.pending)

	for _, batch := range chunk(paths, DefaultBatchSize) {
		if _, err := uploadFiles(ctx, f.upload, batch, f.out); err != nil {
			_, _ = fmt.Fprintf(f.out, "%s %v\n", styles.Error.Render("✗"), err)
			continue
		}
		for _, p := range batch {
			f.sent[p] = struct{}{}
		}
	}
}
