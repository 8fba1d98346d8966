// SPDX-License-Identifier: MIT

package post

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher re-indexes the posts directory when files change. Events are
// debounced; editors emit bursts of writes for a single save.
type Watcher struct {
	indexer  *Indexer
	debounce time.Duration
	logger   zerolog.Logger
}

// NewWatcher creates a watcher around the indexer.
func NewWatcher(indexer *Indexer, debounce time.Duration, logger zerolog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{indexer: indexer, debounce: debounce, logger: logger}
}

// Run blocks until ctx is cancelled, re-indexing after quiet periods.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("post watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(w.indexer.Dir()); err != nil {
		return fmt.Errorf("post watcher: watch %s: %w", w.indexer.Dir(), err)
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("post file changed")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("post watcher error")

		case <-timerC:
			timer = nil
			timerC = nil
			if err := w.indexer.Reindex(ctx); err != nil {
				w.logger.Error().Err(err).Msg("reindex after change failed")
			}
		}
	}
}
