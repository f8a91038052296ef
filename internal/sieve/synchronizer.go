package sieve

import (
	"log/slog"
	"strings"
	"sync"

	"imagesieve/internal/collection"
	"imagesieve/internal/config"
	"imagesieve/internal/logging"
	"imagesieve/internal/project"
)

// Synchronizer is the single background worker that serializes directory
// scans. Requests are processed strictly in submission order; each one
// merges the persisted project, reconciles the collection with the live
// filesystem, regroups similar shots, and publishes a snapshot.
//
// The persisted project is read only when the requested directory differs
// from the current one. A re-scan of the current directory keeps the
// in-memory decisions as they stand, so a watch-triggered re-scan cannot
// roll them back to the last saved state.
type Synchronizer struct {
	cfg      *config.Config
	logger   *slog.Logger
	shared   *collection.Shared
	projects *project.Store
	publish  func(collection.Collection)

	requests chan string
	wg       sync.WaitGroup
	once     sync.Once
}

// NewSynchronizer starts the worker goroutine. The publish callback fires
// once per completed request; the caller routes it through its dispatcher.
func NewSynchronizer(cfg *config.Config, shared *collection.Shared, projects *project.Store, publish func(collection.Collection), logger *slog.Logger) *Synchronizer {
	s := &Synchronizer{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "synchronizer"),
		shared:   shared,
		projects: projects,
		publish:  publish,
		requests: make(chan string, 16),
	}
	if s.publish == nil {
		s.publish = func(collection.Collection) {}
	}
	s.wg.Add(1)
	go s.worker()
	return s
}

// Request enqueues a scan of path. Requests are never coalesced; each one
// produces exactly one publication, in submission order. A full queue drops
// the request, which only happens when scans are arriving faster than they
// can complete.
func (s *Synchronizer) Request(path string) {
	select {
	case s.requests <- path:
	default:
		s.logger.Warn("scan queue full, dropping request", logging.String("path", path))
	}
}

// Close drains outstanding requests and stops the worker.
func (s *Synchronizer) Close() {
	s.once.Do(func() {
		close(s.requests)
	})
	s.wg.Wait()
}

func (s *Synchronizer) worker() {
	defer s.wg.Done()
	for path := range s.requests {
		s.scan(path)
	}
}

// scan runs one request end to end. Ordering within a request is fixed:
// project load, then filesystem synchronize, then similarity grouping, then
// publication.
func (s *Synchronizer) scan(path string) {
	changingDirectory := s.shared.Snapshot().Root != path
	if changingDirectory {
		s.savePrevious(path)
	}

	var loaded collection.Collection
	found := false
	if changingDirectory {
		var err error
		loaded, found, err = s.projects.Load(path)
		if err != nil {
			// Unreadable project state falls back to a fresh scan.
			s.logger.Warn("load project failed, scanning fresh",
				logging.String("path", path),
				logging.Error(err))
			found = false
		}
	}

	s.shared.With(func(c *collection.Collection) {
		switch {
		case found:
			c.ReplaceWith(loaded)
		case changingDirectory:
			c.ReplaceWith(collection.Collection{Root: path})
		}
		// A rescan of the current directory keeps its in-memory decisions;
		// Synchronize reconciles them against the live filesystem.
		c.Synchronize(path)
		c.FindSimilar(s.cfg.Sieve.SimilarityWindow, s.cfg.Sieve.HashDistance)
	})

	snapshot := s.shared.Snapshot()
	s.logger.Info("scan complete",
		logging.String("path", path),
		logging.Int("item_count", len(snapshot.Items)),
		logging.Int("image_count", snapshot.NumImages()))
	s.publish(snapshot)
}

// savePrevious persists the collection for the directory scanned before
// this one, so switching projects never loses decisions.
func (s *Synchronizer) savePrevious(next string) {
	previous := s.shared.Snapshot()
	if strings.TrimSpace(previous.Root) == "" || previous.Root == next || len(previous.Items) == 0 {
		return
	}
	if err := s.projects.Save(previous); err != nil {
		s.logger.Warn("save previous project failed",
			logging.String("root", previous.Root),
			logging.Error(err))
	}
}
