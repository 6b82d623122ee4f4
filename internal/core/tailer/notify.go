package tailer

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// startNotify subscribes to change notifications for path. The returned
// channel receives a value whenever the file is written, created, renamed
// or removed. Notification is best effort: on failure the watcher polls.
func (watcher *Watcher) startNotify(path string) (<-chan struct{}, func()) {
	if !watcher.notify {
		return nil, func() {}
	}

	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		watcher.logger.Warn("change notification unavailable, polling only", "error", err)
		return nil, func() {}
	}

	// The directory is watched so that rotation keeps producing events.
	if err := notifier.Add(filepath.Dir(path)); err != nil {
		watcher.logger.Warn("change notification unavailable, polling only", "path", path, "error", err)
		_ = notifier.Close()
		return nil, func() {}
	}

	target := filepath.Clean(path)
	wake := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case event, ok := <-notifier.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || event.Op == fsnotify.Chmod {
					continue
				}
				select {
				case wake <- struct{}{}:
				default:
				}
			case err, ok := <-notifier.Errors:
				if !ok {
					return
				}
				watcher.logger.Debug("change notification error", "error", err)
			}
		}
	}()

	return wake, func() {
		close(done)
		_ = notifier.Close()
	}
}
