// Package watch drives ingestion from filesystem events: files dropped
// into a watched directory are ingested as they appear.
package watch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/quaystone-labs/ragkit/internal/core/ports/driving"
	"github.com/quaystone-labs/ragkit/internal/logger"
)

// settleDelay is how long a file must be quiet after its last write
// before it is ingested, so half-copied files are not picked up.
const settleDelay = 500 * time.Millisecond

// Supported reports whether a path is worth ingesting.
type Supported func(path string) bool

// Watcher ingests files created or modified under a directory.
type Watcher struct {
	ingestor driving.Ingestor
	supports Supported
	settle   time.Duration
}

// New creates a watcher feeding the ingestor.
func New(ingestor driving.Ingestor, supports Supported) *Watcher {
	return &Watcher{
		ingestor: ingestor,
		supports: supports,
		settle:   settleDelay,
	}
}

// Run watches dir until the context is cancelled. Each settled write to
// a supported file triggers an ingest; ingest failures are logged and
// do not stop the watcher.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch directory: %s is not a directory", dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("watching %s", dir)

	// Writes arrive in bursts; the debouncer reports each path at most
	// once per settled burst.
	deb := newDebouncer(w.settle)
	defer deb.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !w.supports(event.Name) {
				continue
			}
			deb.bump(event.Name)

		case <-deb.ready:
			for {
				path, ok := deb.take()
				if !ok {
					break
				}
				doc, err := w.ingestor.IngestFile(ctx, path)
				if err != nil {
					logger.Warn("ingest %s: %v", path, err)
					continue
				}
				logger.Info("ingested %s as document %s", path, doc.ID)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}
