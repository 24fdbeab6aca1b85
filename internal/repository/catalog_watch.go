package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"kavak-agent/internal/service"
)

// CatalogWatcher reloads a CSV catalog when the file changes and installs
// the new snapshot in a holder. A failed reload keeps the previous one.
type CatalogWatcher struct {
	path     string
	holder   *service.CatalogHolder
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.Logger
	reloaded chan struct{}
}

// NewCatalogWatcher watches the directory of path, since editors often
// replace files instead of writing them in place.
func NewCatalogWatcher(path string, holder *service.CatalogHolder, logger *zap.Logger) (*CatalogWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogWatcher{
		path:     abs,
		holder:   holder,
		watcher:  w,
		debounce: 200 * time.Millisecond,
		logger:   logger,
		reloaded: make(chan struct{}, 1),
	}, nil
}

// Reload reads the file and swaps the snapshot.
func (w *CatalogWatcher) Reload() error {
	items, dropped, err := LoadCatalogCSV(w.path)
	if err != nil {
		return err
	}
	cat := service.NewCatalog(items)
	w.holder.Swap(cat)
	w.logger.Info("catalog reloaded",
		zap.String("path", w.path),
		zap.Int("items", cat.Len()),
		zap.Int("dropped", dropped),
	)
	select {
	case w.reloaded <- struct{}{}:
	default:
	}
	return nil
}

// Reloaded signals after each successful reload. Signals are coalesced.
func (w *CatalogWatcher) Reloaded() <-chan struct{} {
	return w.reloaded
}

// Run processes file events until ctx is done.
func (w *CatalogWatcher) Run(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			// writes come in bursts; reload once they settle
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := w.Reload(); err != nil {
				w.logger.Warn("catalog reload failed, keeping previous snapshot",
					zap.String("path", w.path),
					zap.Error(err),
				)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("catalog watcher error", zap.Error(err))
		}
	}
}

// Close stops watching.
func (w *CatalogWatcher) Close() error {
	return w.watcher.Close()
}
