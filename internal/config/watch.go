package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher notifies callers when the config file on disk changes, so the
// engine can reload and emit WmEvent.UserConfigChanged (spec.md §6.2).
type Watcher struct {
	fsw    *fsnotify.Watcher
	path   string
	Events chan *UserConfig
	Errors chan error
}

// WatchFile starts watching the directory containing path (fsnotify
// watches directories, not bare files, since editors typically replace
// a file rather than writing it in place) and reloads/parses on every
// write or rename event targeting it.
func WatchFile(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:    fsw,
		path:   path,
		Events: make(chan *UserConfig, 1),
		Errors: make(chan error, 1),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !(ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0) {
				continue
			}
			cfg, err := LoadFile(w.path)
			if err != nil {
				logger.Warn("config reload failed", "err", err)
				select {
				case w.Errors <- err:
				default:
				}
				continue
			}
			select {
			case w.Events <- cfg:
			default:
				logger.Debug("dropped config reload: consumer not keeping up")
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher error", "err", err)
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error { return w.fsw.Close() }
