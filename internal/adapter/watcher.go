package adapter

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	m "gooze.dev/pkg/schemata/internal/model"
)

// Watcher reports changes to Go source files.
type Watcher interface {
	// Watch observes every directory below roots, except those below skip.
	// The returned channel yields changed .go files and is closed when ctx
	// is done.
	Watch(ctx context.Context, roots []m.Path, skip ...m.Path) (<-chan m.Path, error)
}

// FSWatcher implements Watcher with fsnotify.
type FSWatcher struct{}

// NewFSWatcher constructs an FSWatcher.
func NewFSWatcher() *FSWatcher {
	return &FSWatcher{}
}

// Watch implements Watcher.
func (w *FSWatcher) Watch(ctx context.Context, roots []m.Path, skip ...m.Path) (<-chan m.Path, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	skipped := func(path string) bool {
		for _, s := range skip {
			if path == string(s) || strings.HasPrefix(path, string(s)+string(filepath.Separator)) {
				return true
			}
		}

		return false
	}

	for _, root := range roots {
		if err := addTree(fw, string(root), skipped); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	changes := make(chan m.Path)

	go func() {
		defer close(changes)

		defer func() {
			if err := fw.Close(); err != nil {
				slog.Error("failed to close watcher", "error", err)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fw.Events:
				if !ok {
					return
				}

				path, ok := w.handle(fw, event, skipped)
				if !ok {
					continue
				}

				select {
				case changes <- path:
				case <-ctx.Done():
					return
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}

				slog.Error("watch error", "error", err)
			}
		}
	}()

	return changes, nil
}

func (w *FSWatcher) handle(fw *fsnotify.Watcher, event fsnotify.Event, skipped func(string) bool) (m.Path, bool) {
	if skipped(event.Name) {
		return "", false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addTree(fw, event.Name, skipped); err != nil {
				slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}

			return "", false
		}
	}

	if filepath.Ext(event.Name) != ".go" || event.Op == fsnotify.Chmod {
		return "", false
	}

	slog.Debug("source changed", "path", event.Name, "op", event.Op.String())

	return m.Path(event.Name), true
}

func addTree(fw *fsnotify.Watcher, root string, skipped func(string) bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata") {
			return filepath.SkipDir
		}

		if skipped(path) {
			return filepath.SkipDir
		}

		if err := fw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}

		return nil
	})
}
