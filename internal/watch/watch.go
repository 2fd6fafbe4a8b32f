// Package watch reruns a function when watched files change.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/node4good/gypninja/internal/errors"
	"github.com/node4good/gypninja/internal/logger"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// relevant are the operations that can change a file's content.
const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// Watch calls fn after any of files changes, once per burst of events
// separated by less than debounce. Errors from fn are logged and watching
// continues. Watch returns when ctx is done.
//
// The parent directories are watched rather than the files, so editors that
// replace a file by renaming over it keep being seen.
func Watch(ctx context.Context, files []string, debounce time.Duration, fn func(context.Context) error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to start file watcher")
	}
	defer w.Close()

	watched := make(map[string]bool, len(files))
	dirs := map[string]bool{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return errors.IO(err, f)
		}
		watched[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return errors.IO(errors.Wrap(err, "failed to watch directory"), dir)
		}
		dirs[dir] = true
	}

	l := &loop{
		watched:  watched,
		debounce: debounce,
		fn:       fn,
		log:      logger.ComponentLogger("watch"),
	}
	l.log.Infow("Watching for changes", logger.FieldCount, len(watched))

	return l.run(ctx, w.Events, w.Errors)
}

type loop struct {
	watched  map[string]bool
	debounce time.Duration
	fn       func(context.Context) error
	log      *zap.SugaredLogger
}

func (l *loop) matches(ev fsnotify.Event) bool {
	if ev.Op&relevant == 0 {
		return false
	}

	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return l.watched[abs]
}

func (l *loop) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	if l.debounce <= 0 {
		l.debounce = DefaultDebounce
	}

	timer := time.NewTimer(l.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !l.matches(ev) {
				continue
			}

			l.log.Debugw("File changed", logger.FieldPath, ev.Name, "op", ev.Op.String())
			timer.Reset(l.debounce)

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			l.log.Warnw("File watcher error", logger.FieldError, err)

		case <-timer.C:
			if err := l.fn(ctx); err != nil {
				l.log.Errorw("Regeneration failed", logger.FieldError, err)
			}
		}
	}
}
