// Package watch drives the pipeline from the inbox directory. Files already
// present at startup are processed first, then new arrivals trigger runs as
// the filesystem reports them.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/smallbiznis/churnscope/internal/config"
	"github.com/smallbiznis/churnscope/internal/filestore"
	"github.com/smallbiznis/churnscope/internal/pipeline"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// settleDelay gives the producer time to finish writing a freshly created
// file before the pipeline reads it.
const settleDelay = 2 * time.Second

type Params struct {
	fx.In

	Log    *zap.Logger
	Config config.Config
	Store  filestore.Store
	Runner *pipeline.Runner
}

type Watcher struct {
	log    *zap.Logger
	dir    string
	store  filestore.Store
	runner *pipeline.Runner
}

func New(p Params) *Watcher {
	return &Watcher{
		log:    p.Log.Named("watch"),
		dir:    filepath.Join(p.Config.DataDir, "inbox"),
		store:  p.Store,
		runner: p.Runner,
	}
}

// RunForever processes the inbox until the context is cancelled. Run failures
// are logged and absorbed: a bad file must not stop the watcher.
func (w *Watcher) RunForever(ctx context.Context) {
	w.drainInbox(ctx)

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		w.log.Error("could not create inbox directory", zap.Error(err))
		return
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Error("could not start filesystem watcher", zap.Error(err))
		return
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		w.log.Error("could not watch inbox directory", zap.String("dir", w.dir), zap.Error(err))
		return
	}
	w.log.Info("watching inbox", zap.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}
			name := filestore.InboxPrefix + filepath.Base(ev.Name)
			if !isSnapshotFile(name) {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(settleDelay):
			}
			w.process(ctx, name)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("filesystem watcher error", zap.Error(err))
		}
	}
}

// drainInbox scores any files that arrived while the service was down.
func (w *Watcher) drainInbox(ctx context.Context) {
	names, err := w.store.List(ctx, filestore.InboxPrefix)
	if err != nil {
		w.log.Warn("could not list inbox", zap.Error(err))
		return
	}
	for _, name := range names {
		if ctx.Err() != nil {
			return
		}
		if !isSnapshotFile(name) {
			continue
		}
		w.process(ctx, name)
	}
}

func (w *Watcher) process(ctx context.Context, name string) {
	if _, err := w.runner.Run(ctx, name); err != nil {
		w.log.Warn("scoring run failed", zap.String("object", name), zap.Error(err))
	}
}

func isSnapshotFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".csv")
}
