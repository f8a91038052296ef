package sieve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"imagesieve/internal/collection"
	"imagesieve/internal/config"
	"imagesieve/internal/history"
	"imagesieve/internal/imagecache"
	"imagesieve/internal/logging"
	"imagesieve/internal/project"
)

// StatusNoImages is shown when a scan finds nothing to sieve.
const StatusNoImages = "No images found"

// Session ties the pipeline to one bridge. Its exported methods are called
// on the dispatcher thread; background work reaches the bridge only through
// dispatched closures.
type Session struct {
	cfg      *config.Config
	logger   *slog.Logger
	bridge   Bridge
	dispatch Dispatcher

	shared   *collection.Shared
	cache    *imagecache.Cache
	projects *project.Store
	history  *history.Store
	scans    *Synchronizer

	rows     []Row
	index    RowIndexMap
	selected int

	mu            sync.Mutex
	loading       bool
	commitRunning bool
	commitWG      sync.WaitGroup
}

// Options collects Session collaborators. History may be nil when commit
// auditing is not wanted.
type Options struct {
	Config   *config.Config
	Bridge   Bridge
	Dispatch Dispatcher
	Projects *project.Store
	History  *history.Store
	Logger   *slog.Logger
}

// NewSession wires the pipeline together and starts its workers.
func NewSession(opts Options) *Session {
	dispatch := opts.Dispatch
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	var bridge Bridge = NopBridge{}
	if opts.Bridge != nil {
		bridge = opts.Bridge
	}

	s := &Session{
		cfg:      opts.Config,
		logger:   logging.NewComponentLogger(opts.Logger, "session"),
		bridge:   bridge,
		dispatch: dispatch,
		shared:   collection.NewShared(collection.Collection{}),
		cache:    imagecache.New(opts.Config, opts.Logger),
		projects: opts.Projects,
		history:  opts.History,
		selected: -1,
	}
	s.scans = NewSynchronizer(opts.Config, s.shared, s.projects, s.published, opts.Logger)
	return s
}

// Close saves the active collection, then stops the workers.
func (s *Session) Close() {
	s.commitWG.Wait()
	s.scans.Close()
	s.cache.Close()

	snapshot := s.shared.Snapshot()
	if strings.TrimSpace(snapshot.Root) != "" && len(snapshot.Items) > 0 {
		if err := s.projects.Save(snapshot); err != nil {
			s.logger.Warn("save project on close failed", logging.Error(err))
		}
	}
}

// Scan requests a background scan of path. The bridge sees LoadingChanged
// true immediately and false when the resulting snapshot is published.
func (s *Session) Scan(path string) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	s.bridge.LoadingChanged(true)
	s.scans.Request(path)
}

// published receives each completed scan on the synchronizer goroutine and
// hands it to the bridge through the dispatcher.
func (s *Session) published(snapshot collection.Collection) {
	s.dispatch(func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()

		s.cache.Invalidate()
		s.bridge.CollectionChanged(snapshot)
		s.bridge.LoadingChanged(false)

		if snapshot.NumImages() == 0 {
			s.rows = nil
			s.index = nil
			s.selected = -1
			s.bridge.RowsChanged(nil, nil)
			s.bridge.StatusChanged(StatusNoImages)
			return
		}
		s.SelectImage(firstImageIndex(snapshot))
	})
}

// SelectImage makes the item at the collection index the displayed one and
// rebuilds the rows: the selected item first, then its similars in stored
// order, each loaded synchronously. Upcoming images beyond the shown set are
// prefetched so stepping forward is instant.
func (s *Session) SelectImage(index int) {
	snapshot := s.shared.Snapshot()
	if index < 0 || index >= len(snapshot.Items) || !snapshot.Items[index].IsImage() {
		return
	}
	s.selected = index

	// Fresh slices every selection: the previous ones were handed to the
	// bridge, which may still be holding them.
	similars := snapshot.Items[index].Similar
	s.rows = make([]Row, 0, 1+len(similars))
	s.index = make(RowIndexMap, 0, 1+len(similars))
	shown := map[int]struct{}{index: {}}

	s.appendRow(&snapshot, index)
	for _, similar := range similars {
		if _, ok := shown[similar]; ok || similar < 0 || similar >= len(snapshot.Items) {
			continue
		}
		shown[similar] = struct{}{}
		s.appendRow(&snapshot, similar)
	}

	s.prefetchAhead(&snapshot, index, shown)

	s.bridge.RowsChanged(s.rows, s.index)
	s.bridge.StatusChanged(statusText(&snapshot, index))
}

// Rows returns the current rows and index map.
func (s *Session) Rows() ([]Row, RowIndexMap) {
	return s.rows, s.index
}

// SelectedIndex returns the collection index of the displayed item, or -1.
func (s *Session) SelectedIndex() int {
	return s.selected
}

// NumImages reports how many image items the current collection holds.
func (s *Session) NumImages() int {
	snapshot := s.shared.Snapshot()
	return snapshot.NumImages()
}

// Loading reports whether a scan is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// CommitRunning reports whether a commit is in flight.
func (s *Session) CommitRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitRunning
}

// SetTakeOver flips the keep decision for the item at the collection index.
func (s *Session) SetTakeOver(index int, takeOver bool) {
	s.shared.With(func(c *collection.Collection) {
		if index >= 0 && index < len(c.Items) {
			c.Items[index].TakeOver = takeOver
		}
	})
}

// AddEvent attaches a named date range to the collection.
func (s *Session) AddEvent(name, start, end string) error {
	event, err := collection.NewEvent(name, start, end)
	if err != nil {
		return err
	}
	s.shared.With(func(c *collection.Collection) {
		c.Events = append(c.Events, event)
	})
	return nil
}

// RemoveEvent drops the first event with the given name.
func (s *Session) RemoveEvent(name string) bool {
	removed := false
	s.shared.With(func(c *collection.Collection) {
		for i := range c.Events {
			if c.Events[i].Name == name {
				c.Events = append(c.Events[:i], c.Events[i+1:]...)
				removed = true
				return
			}
		}
	})
	return removed
}

// Events returns the collection's events.
func (s *Session) Events() []collection.Event {
	return s.shared.Snapshot().Events
}

// Snapshot returns a deep copy of the current collection.
func (s *Session) Snapshot() collection.Collection {
	return s.shared.Snapshot()
}

var errCommitRunning = errors.New("a commit is already running")

// Commit applies the take-over decisions on a background goroutine. The
// snapshot is taken up front, so decisions changed mid-commit do not affect
// the run. Reports stream to the bridge through the dispatcher; the
// Completed report flips CommitRunningChanged false. The finished run is
// recorded in the history store.
func (s *Session) Commit(dest string, method collection.Method) error {
	s.mu.Lock()
	if s.commitRunning {
		s.mu.Unlock()
		return errCommitRunning
	}
	s.commitRunning = true
	s.mu.Unlock()

	snapshot := s.shared.Snapshot()
	s.bridge.CommitRunningChanged(true)

	s.commitWG.Add(1)
	go func() {
		defer s.commitWG.Done()
		started := time.Now().UTC()
		summary := snapshot.Commit(dest, method, func(report collection.Report) {
			s.dispatch(func() {
				s.bridge.CommitReport(report)
				if report.Kind == collection.ReportCompleted {
					s.mu.Lock()
					s.commitRunning = false
					s.mu.Unlock()
					s.bridge.CommitRunningChanged(false)
				}
			})
		})
		s.recordCommit(snapshot.Root, dest, method, summary, started)
	}()
	return nil
}

func (s *Session) recordCommit(root, dest string, method collection.Method, summary collection.Summary, started time.Time) {
	if s.history == nil {
		return
	}
	_, err := s.history.Record(context.Background(), history.Record{
		Root:       root,
		Dest:       dest,
		Method:     string(method),
		Committed:  summary.Committed,
		Failed:     summary.Failed,
		Deleted:    summary.Deleted,
		Message:    summary.Message,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("record commit history failed", logging.Error(err))
	}
}

func (s *Session) appendRow(snapshot *collection.Collection, index int) {
	item := snapshot.Items[index]
	img := s.cache.Load(imagecache.RequestFor(snapshot.Root, &item))
	s.rows = append(s.rows, Row{Index: index, Item: item, Image: img})
	s.index = append(s.index, index)
}

// prefetchAhead warms the cache with the next images the user is likely to
// step to, skipping anything already displayed and non-image items.
func (s *Session) prefetchAhead(snapshot *collection.Collection, from int, shown map[int]struct{}) {
	remaining := s.cfg.Cache.PrefetchCount
	for i := from + 1; i < len(snapshot.Items) && remaining > 0; i++ {
		if _, ok := shown[i]; ok || !snapshot.Items[i].IsImage() {
			continue
		}
		s.cache.Prefetch(imagecache.RequestFor(snapshot.Root, &snapshot.Items[i]))
		remaining--
	}
}

// statusText renders the selected item's status line, e.g.
// "IMG_001.jpg - 2024-06-07 12:31, 2.4 MB Summer Trip".
func statusText(snapshot *collection.Collection, index int) string {
	item := &snapshot.Items[index]
	text := fmt.Sprintf("%s - %s, %s", item.Name(), item.DateString(), humanize.Bytes(uint64(item.Size)))
	if event, ok := snapshot.EventFor(item); ok {
		text += " " + event.Name
	}
	return text
}

func firstImageIndex(snapshot collection.Collection) int {
	for i := range snapshot.Items {
		if snapshot.Items[i].IsImage() {
			return i
		}
	}
	return -1
}
