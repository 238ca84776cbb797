package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"inkmap/internal/mindmap"
)

var (
	watchMap      string
	watchDebounce time.Duration
)

// docWatcher feeds a JSON document into an engine as external snapshots each
// time the file changes. Reads run off the event loop; a read that finishes
// after a newer one has started is discarded.
type docWatcher struct {
	path    string
	engine  *mindmap.Engine
	session *mapSession // nil unless results are saved to a stored map
	out     io.Writer
	logger  *zap.Logger

	requests mindmap.RequestTracker
	mu       sync.Mutex // serializes apply and output, guards closed
	closed   bool
	wg       sync.WaitGroup
}

// reload starts an asynchronous read of the document. It does nothing once
// the watcher is stopped.
func (w *docWatcher) reload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	id := w.requests.Begin()
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		doc, err := readDocument(w.path)
		w.apply(id, doc, err)
	}()
}

func (w *docWatcher) apply(id uint64, doc *mindmap.Document, readErr error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.requests.Accept(id) {
		w.logger.Debug("discarding superseded read", zap.Uint64("request", id))
		return
	}
	if readErr != nil {
		fmt.Fprintf(w.out, "  ! %v\n", readErr)
		return
	}
	outcome, err := w.engine.Load(doc.Nodes)
	if err != nil {
		fmt.Fprintf(w.out, "  ! rejected: %v\n", err)
		return
	}
	nodes := w.engine.Nodes()
	fmt.Fprintf(w.out, "  %s  %s: %d nodes, %d edges\n",
		time.Now().Format("15:04:05"), outcome, len(nodes), len(w.engine.Edges()))
	if outcome != mindmap.OutcomeApplied || w.session == nil {
		return
	}
	if err := mindmap.SaveSnapshot(w.session.db, w.session.m.ID, nodes); err != nil {
		w.logger.Error("saving watched document", zap.Error(err))
		fmt.Fprintf(w.out, "  ! save failed: %v\n", err)
	}
}

// stop refuses further reloads and waits for reads in progress
func (w *docWatcher) stop() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.wg.Wait()
}

// run watches the document's directory until ctx is done
func (w *docWatcher) run(ctx context.Context, debounce time.Duration) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fsw.Close()

	// Editors often replace files on save, so watch the directory.
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", w.path, err)
	}
	w.reload()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		w.stop()
	}()

	target := filepath.Clean(w.path)
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug("document changed", zap.String("op", event.Op.String()))
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, w.reload)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("file watcher error", zap.Error(err))

		case <-ctx.Done():
			return nil
		}
	}
}

var watchCmd = &cobra.Command{
	Use:   "watch <file.json>",
	Short: "Re-layout a JSON map document whenever it changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err != nil {
			return err
		}

		w := &docWatcher{path: path, out: cmd.OutOrStdout(), logger: logger.Named("watch")}
		if watchMap != "" {
			s, err := openSession(watchMap)
			if err != nil {
				return err
			}
			defer s.Close()
			w.session = s
			w.engine = s.engine
		} else {
			w.engine = mindmap.NewEngine(engineConfig(), mindmap.WithLogger(logger))
		}

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", path)
		return w.run(ctx, watchDebounce)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchMap, "map", "", "Also save each applied snapshot to this stored map")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 200*time.Millisecond, "Wait this long after the last change before reloading")
	rootCmd.AddCommand(watchCmd)
}
