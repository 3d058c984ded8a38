package project

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// SettingsWatcher watches a project's on-disk settings file and calls
// onChange on write events, giving the SettingsUpdated project state a
// real producer (spec.md §5.J supplemental feature). The watcher itself
// only ever calls onChange; cmd/trailindex's watch command wires that to
// SetStateSettingsUpdated followed by a Refresh.
type SettingsWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchSettings starts watching path, calling onChange whenever it is
// written. The caller must call Close when done.
func WatchSettings(path string, onChange func()) (*SettingsWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create settings watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch settings file: %w", err)
	}

	sw := &SettingsWatcher{watcher: w, done: make(chan struct{})}
	go sw.run(onChange)
	return sw, nil
}

func (sw *SettingsWatcher) run(onChange func()) {
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) && onChange != nil {
				onChange()
			}
		case _, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
		case <-sw.done:
			return
		}
	}
}

// Close stops watching and releases the underlying fsnotify handle.
func (sw *SettingsWatcher) Close() error {
	close(sw.done)
	return sw.watcher.Close()
}
