package workspace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of file events into one reload.
const DefaultDebounce = 250 * time.Millisecond

// Watch reloads the workspace when any source file changes. It blocks until
// ctx is cancelled.
func (h *Holder) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range h.watchDirs() {
		if err := w.Add(dir); err != nil {
			h.logger.Warn().Err(err).Str("dir", dir).Msg("Cannot watch directory")
		}
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.Add(ev.Name)
				}
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			h.logger.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("Workspace source changed")
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			h.logger.Warn().Err(err).Msg("Watcher error")

		case <-timer.C:
			if err := h.Reload(); err == nil {
				h.logger.Info().Msg("Workspace reloaded")
			}
		}
	}
}

// watchDirs lists the directories holding the sources, including every
// directory under the knowledge root.
func (h *Holder) watchDirs() []string {
	seen := make(map[string]struct{})
	var dirs []string
	add := func(d string) {
		if d == "" {
			return
		}
		if _, ok := seen[d]; ok {
			return
		}
		seen[d] = struct{}{}
		dirs = append(dirs, d)
	}

	add(filepath.Dir(h.src.Catalog))
	add(filepath.Dir(h.src.PricingRules))
	if h.src.KnowledgeDir != "" {
		_ = filepath.WalkDir(h.src.KnowledgeDir, func(path string, d fs.DirEntry, err error) error {
			if err == nil && d.IsDir() {
				add(path)
			}
			return nil
		})
	}
	return dirs
}
