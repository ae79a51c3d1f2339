package config

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/aigallery/gallery/logging"
)

// Watcher drops cached presets when their files change on disk, so the
// next session picks up the edit.
type Watcher struct {
	manager  *Manager
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	onChange func(path string)
}

// NewWatcher watches the preset directory of m. onChange, when set, is
// called after each invalidation.
func NewWatcher(m *Manager, logger *zap.Logger, onChange func(path string)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(m.Dir()); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", m.Dir(), err)
	}
	return &Watcher{manager: m, watcher: w, logger: logging.OrNop(logger), onChange: onChange}, nil
}

// Run handles events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !w.manager.Invalidate(event.Name) {
		return
	}
	w.logger.Info("preset changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
	if w.onChange != nil {
		w.onChange(event.Name)
	}
}
