// Package watch re-scans a sieved directory when its contents change, so a
// camera card dropping new files in shows up without a manual rescan.
package watch

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"imagesieve/internal/logging"
)

// Watcher observes one directory and requests a re-scan after changes
// settle. Bursts of filesystem events (a copy in progress writes many) are
// debounced into a single request.
type Watcher struct {
	root    string
	settle  time.Duration
	request func(path string)
	logger  *slog.Logger

	fsw  *fsnotify.Watcher
	wg   sync.WaitGroup
	once sync.Once
}

// New starts watching root. Every settled burst of create, remove, rename,
// or write events triggers one request(root) call; chmod-only noise does
// not.
func New(root string, settle time.Duration, request func(path string), logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(root); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	w := &Watcher{
		root:    root,
		settle:  settle,
		request: request,
		logger:  logging.NewComponentLogger(logger, "watch"),
		fsw:     fsw,
	}
	w.wg.Add(1)
	go w.loop()
	w.logger.Info("watching directory", logging.String("path", root))
	return w, nil
}

// Close stops the watcher. A pending settle window is abandoned.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.fsw.Close()
	})
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	// The timer stays stopped until a relevant event opens a settle window;
	// each further event pushes the window out.
	timer := time.NewTimer(w.settle)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.settle)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", logging.Error(err))
		case <-timer.C:
			w.logger.Debug("changes settled, requesting rescan",
				logging.String("path", w.root))
			w.request(w.root)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	return event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Remove) ||
		event.Op.Has(fsnotify.Rename) ||
		event.Op.Has(fsnotify.Write)
}
