package assets

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/auction-house/internal/logger"
)

// DefaultSettle is how long a file must stay quiet before a change is
// reported. Editors often write a file in several steps.
const DefaultSettle = 150 * time.Millisecond

// ErrWatcherClosed is returned when adding paths to a closed watcher.
var ErrWatcherClosed = errors.New("watcher closed")

// Watcher reports OBJ files that were created or rewritten.
type Watcher struct {
	fsnotify *fsnotify.Watcher
	settle   time.Duration
	changes  chan string
	done     chan struct{}
	wg       sync.WaitGroup

	mu       sync.Mutex
	pending  map[string]*time.Timer
	isClosed bool
}

// NewWatcher watches the given directories (non-recursively).
func NewWatcher(settle time.Duration, dirs ...string) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsnotify: fsWatch,
		settle:   settle,
		changes:  make(chan string, 16),
		done:     make(chan struct{}),
		pending:  make(map[string]*time.Timer),
	}

	for _, dir := range dirs {
		if err := fsWatch.Add(dir); err != nil {
			fsWatch.Close()
			return nil, err
		}
		logger.Debug("watching directory", zap.String("dir", dir))
	}

	w.wg.Add(1)
	go w.start()
	return w, nil
}

// Changes delivers absolute paths of changed OBJ files.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Add starts watching another directory.
func (w *Watcher) Add(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isClosed {
		return ErrWatcherClosed
	}
	return w.fsnotify.Add(dir)
}

func (w *Watcher) start() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if isMeshChange(e) {
				w.schedule(e.Name)
			}
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

// isMeshChange reports whether e created or rewrote an OBJ file.
func isMeshChange(e fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(e.Name), ".obj") {
		return false
	}
	return e.Op&(fsnotify.Create|fsnotify.Write) != 0
}

// schedule reports path once it has been quiet for the settle time.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isClosed {
		return
	}

	if t, ok := w.pending[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		closed := w.isClosed
		w.mu.Unlock()
		if closed {
			return
		}

		select {
		case w.changes <- path:
		default:
			logger.Warn("dropping mesh change, consumer is behind", zap.String("path", path))
		}
	})
}

// Close stops watching. Pending changes are discarded.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.isClosed {
		w.mu.Unlock()
		return nil
	}
	w.isClosed = true
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	close(w.done)
	err := w.fsnotify.Close()
	w.wg.Wait()
	return err
}
