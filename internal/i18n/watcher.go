package i18n

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
)

// Watcher invalidates cached bundles when files under a bundle directory
// change. It watches the directory and each locale subdirectory.
type Watcher struct {
	dir     string
	loader  *Loader
	watcher *fsnotify.Watcher
	logger  *logger.Logger
}

func NewWatcher(dir string, loader *Loader, log *logger.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		dir:     filepath.Clean(dir),
		loader:  loader,
		watcher: fw,
		logger:  log.WithFields(zap.String("component", "i18n-watcher")),
	}
	if err := fw.Add(w.dir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		_ = fw.Close()
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := fw.Add(filepath.Join(w.dir, e.Name())); err != nil {
				_ = fw.Close()
				return nil, err
			}
		}
	}
	return w, nil
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watching translation bundles", zap.String("dir", w.dir))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("bundle watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) handle(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.dir, ev.Name)
	if err != nil {
		return
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	switch len(parts) {
	case 1:
		// A new locale directory.
		if ev.Has(fsnotify.Create) {
			if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
				if err := w.watcher.Add(ev.Name); err != nil {
					w.logger.Warn("watch locale directory", zap.String("path", ev.Name), zap.Error(err))
				}
			}
		}
	case 2:
		ext := filepath.Ext(parts[1])
		if !isBundleExt(ext) {
			return
		}
		if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
			w.loader.Invalidate(parts[0], strings.TrimSuffix(parts[1], ext))
		}
	}
}

func isBundleExt(ext string) bool {
	for _, known := range Extensions {
		if strings.EqualFold(ext, known) {
			return true
		}
	}
	return false
}
