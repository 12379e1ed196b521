package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync/atomic"

	"github.com/dshills/pressgreet/internal/config/watcher"
)

// Watch renders contentPath to out, then renders it again whenever the
// content file or the configuration file changes. A configuration change
// reloads the store first; if the new file is invalid the previous settings
// stay in effect. Watch returns nil when ctx is done.
func (a *App) Watch(ctx context.Context, contentPath string, out io.Writer) error {
	contentAbs, err := filepath.Abs(contentPath)
	if err != nil {
		return NewOperationError("watch", contentPath, err)
	}

	var configAbs string
	if p := a.store.Path(); p != "" {
		if configAbs, err = filepath.Abs(p); err != nil {
			return NewOperationError("watch", p, err)
		}
	}

	log := a.logger.WithComponent("watch")

	w, err := watcher.New(watcher.WithErrorHandler(func(err error) {
		log.Warn("watcher: %v", err)
	}))
	if err != nil {
		return NewOperationError("watch", contentPath, err)
	}
	defer w.Close()

	// A config change dropped by the non-blocking send must still reload.
	var reload atomic.Bool
	changes := make(chan watcher.Event, 1)
	w.OnChange(func(ev watcher.Event) {
		if configAbs != "" && ev.Path == configAbs {
			reload.Store(true)
		}
		select {
		case changes <- ev:
		default:
		}
	})

	if err := w.Watch(contentAbs); err != nil {
		return NewOperationError("watch", contentPath, err)
	}
	if configAbs != "" && configAbs != contentAbs {
		if err := w.Watch(configAbs); err != nil {
			return NewOperationError("watch", configAbs, err)
		}
	}

	a.renderTo(out, contentPath, log)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-changes:
			log.Debug("%s %s", ev.Op, ev.Path)
			if reload.Swap(false) {
				if err := a.store.Reload(); err != nil {
					log.Warn("reload config: %v", err)
				} else {
					log.Info("config reloaded")
				}
			}
			a.renderTo(out, contentPath, log)
		}
	}
}

func (a *App) renderTo(out io.Writer, path string, log *Logger) {
	rendered, err := a.RenderFile(path)
	if err != nil {
		log.Error("%v", err)
		return
	}
	if _, err := fmt.Fprint(out, rendered); err != nil {
		log.Error("write output: %v", err)
	}
}
