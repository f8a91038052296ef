package imagecache

import (
	"container/list"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"imagesieve/internal/config"
	"imagesieve/internal/logging"
)

type entry struct {
	key Key
	img image.Image
	// consumed flips on the first Load; prefetched-but-unconsumed entries
	// are spared from eviction so speculative work survives until viewed.
	consumed bool
	element  *list.Element
}

// Cache is a bounded LRU of decoded images shared between the interactive
// thread and the prefetch pool.
type Cache struct {
	capacity  int
	maxWidth  int
	maxHeight int
	logger    *slog.Logger

	mu      sync.Mutex
	entries map[Key]*entry
	lru     *list.List // front = oldest
	pending map[Key]struct{}

	flights singleflight.Group
	decodes atomic.Int64

	jobs chan Request
	wg   sync.WaitGroup
	once sync.Once
}

// New builds the cache and starts the prefetch worker pool.
func New(cfg *config.Config, logger *slog.Logger) *Cache {
	c := &Cache{
		capacity:  cfg.Cache.Capacity,
		maxWidth:  cfg.Cache.MaxWidth,
		maxHeight: cfg.Cache.MaxHeight,
		logger:    logging.NewComponentLogger(logger, "imagecache"),
		entries:   make(map[Key]*entry),
		lru:       list.New(),
		pending:   make(map[Key]struct{}),
		jobs:      make(chan Request, 64),
	}
	workers := cfg.Cache.PrefetchWorkers
	c.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go c.prefetchWorker()
	}
	return c
}

// Load returns the decoded image for the request, decoding synchronously on
// a miss. Decode failures come back as the shared placeholder. Safe to call
// concurrently with Prefetch for the same or different keys; the same key
// decodes exactly once.
func (c *Cache) Load(req Request) image.Image {
	key := req.key()
	if img, ok := c.lookup(key, true); ok {
		return img
	}
	img := c.decodeOnce(req, true)
	return img
}

// Prefetch schedules an asynchronous decode when the request is neither
// resident nor already queued. Idempotent; never blocks the caller beyond a
// channel send into the bounded queue (a full queue drops the hint, since
// prefetching is purely speculative).
func (c *Cache) Prefetch(req Request) {
	key := req.key()
	c.mu.Lock()
	_, resident := c.entries[key]
	_, queued := c.pending[key]
	if resident || queued {
		c.mu.Unlock()
		return
	}
	c.pending[key] = struct{}{}
	c.mu.Unlock()

	select {
	case c.jobs <- req:
	default:
		// Queue full; forget the claim so a later attempt can requeue.
		c.mu.Lock()
		delete(c.pending, key)
		c.mu.Unlock()
	}
}

// Len reports the number of resident entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// DecodeCount reports how many decodes have run, successful or not.
func (c *Cache) DecodeCount() int64 {
	return c.decodes.Load()
}

// Purge drops a single key, e.g. after the file it describes was moved.
func (c *Cache) Purge(req Request) {
	key := req.key()
	c.mu.Lock()
	defer c.mu.Unlock()
	if ent, ok := c.entries[key]; ok {
		c.lru.Remove(ent.element)
		delete(c.entries, key)
	}
}

// Invalidate empties the cache, e.g. after a scan replaced the collection.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]*entry)
	c.lru.Init()
}

// Close stops the prefetch workers. Pending hints are drained, not decoded.
func (c *Cache) Close() {
	c.once.Do(func() {
		close(c.jobs)
	})
	c.wg.Wait()
}

func (c *Cache) prefetchWorker() {
	defer c.wg.Done()
	for req := range c.jobs {
		key := req.key()
		if _, ok := c.lookup(key, false); !ok {
			c.decodeOnce(req, false)
		}
		c.mu.Lock()
		delete(c.pending, key)
		c.mu.Unlock()
	}
}

// lookup returns the resident image for key and, when consume is set, marks
// it recently used.
func (c *Cache) lookup(key Key, consume bool) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ent, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if consume {
		ent.consumed = true
		c.lru.MoveToBack(ent.element)
	}
	return ent.img, true
}

// decodeOnce funnels all decodes for one key through singleflight so
// concurrent Load and Prefetch callers share a single decode. The map lock
// is not held here; only insert takes it.
func (c *Cache) decodeOnce(req Request, consume bool) image.Image {
	key := req.key()
	value, _, _ := c.flights.Do(key.flightID(), func() (any, error) {
		// Recheck residency: a decode that finished between the caller's
		// miss and this flight must not run again.
		if img, ok := c.lookup(key, false); ok {
			return img, nil
		}
		c.decodes.Add(1)
		img := decode(req.Path, req.Orientation, c.maxWidth, c.maxHeight)
		if img == image.Image(placeholder) {
			c.logger.Warn("decode failed, using placeholder", logging.String("path", req.Path))
		}
		c.insert(key, img, consume)
		return img, nil
	})
	img := value.(image.Image)
	if consume {
		// A Load that piggybacked on a prefetch's decode still counts as
		// consumption.
		c.lookup(key, true)
	}
	return img
}

func (c *Cache) insert(key Key, img image.Image, consumed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ent, ok := c.entries[key]; ok {
		ent.img = img
		c.lru.MoveToBack(ent.element)
		return
	}
	ent := &entry{key: key, img: img, consumed: consumed}
	ent.element = c.lru.PushBack(ent)
	c.entries[key] = ent
	c.evictLocked()
}

// evictLocked drops least-recently-used entries beyond capacity, sparing
// unconsumed prefetches unless nothing else is left to evict.
func (c *Cache) evictLocked() {
	for len(c.entries) > c.capacity {
		var victim *entry
		for el := c.lru.Front(); el != nil; el = el.Next() {
			ent := el.Value.(*entry)
			if ent.consumed {
				victim = ent
				break
			}
		}
		if victim == nil {
			victim = c.lru.Front().Value.(*entry)
		}
		c.lru.Remove(victim.element)
		delete(c.entries, victim.key)
	}
}
