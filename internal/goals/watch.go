package goals

import (
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	appLog "goaltick/internal/log"
)

// Watcher flags the goals file dirty when it changes on disk, so the next
// tick reloads it without waiting for the daily trigger. The watch is on
// the parent directory: editors and atomic savers replace the file rather
// than writing it in place.
type Watcher struct {
	fw    *fsnotify.Watcher
	path  string
	dirty atomic.Bool
	done  chan struct{}
}

// NewWatcher starts watching the goals file at path.
func NewWatcher(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		fw:   fw,
		path: filepath.Clean(path),
		done: make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			appLog.Info("goals file changed, reload scheduled", "file", w.path, "op", ev.Op.String())
			w.dirty.Store(true)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			appLog.Error("goals watcher error", err, "file", w.path)
		}
	}
}

// ConsumeDirty returns whether the file changed since the last call and
// clears the flag.
func (w *Watcher) ConsumeDirty() bool {
	return w.dirty.Swap(false)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	<-w.done
	return err
}
