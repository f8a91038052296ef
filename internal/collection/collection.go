package collection

import "sync"

// Collection is the ordered set of items under a scanned root plus the
// events annotating them. The zero value is an empty collection.
type Collection struct {
	Root   string  `json:"root"`
	Items  []Item  `json:"items"`
	Events []Event `json:"events"`
}

// Clone returns a deep copy safe to hand across threads.
func (c *Collection) Clone() Collection {
	out := Collection{Root: c.Root}
	if len(c.Items) > 0 {
		out.Items = make([]Item, len(c.Items))
		copy(out.Items, c.Items)
		for i := range out.Items {
			if len(c.Items[i].Similar) > 0 {
				out.Items[i].Similar = append([]int(nil), c.Items[i].Similar...)
			}
		}
	}
	if len(c.Events) > 0 {
		out.Events = append([]Event(nil), c.Events...)
	}
	return out
}

// ReplaceWith swaps in the contents of another collection.
func (c *Collection) ReplaceWith(other Collection) {
	clone := other.Clone()
	c.Root = clone.Root
	c.Items = clone.Items
	c.Events = clone.Events
}

// EventFor returns the first event whose range contains the item timestamp.
func (c *Collection) EventFor(item *Item) (Event, bool) {
	for _, event := range c.Events {
		if event.Contains(item.Timestamp) {
			return event, true
		}
	}
	return Event{}, false
}

// NumImages counts items classified as images.
func (c *Collection) NumImages() int {
	count := 0
	for i := range c.Items {
		if c.Items[i].IsImage() {
			count++
		}
	}
	return count
}

// Shared is the mutual-exclusion boundary around a Collection that crosses
// the synchronizer worker / interactive thread divide. Lock scope stays
// short: mutate or copy, then release before any slow work.
type Shared struct {
	mu sync.Mutex
	c  Collection
}

// NewShared wraps a collection for cross-thread use.
func NewShared(c Collection) *Shared {
	return &Shared{c: c}
}

// With runs fn while holding the lock. fn must not block on I/O, decode
// work, or callbacks into the presentation layer.
func (s *Shared) With(fn func(*Collection)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.c)
}

// Snapshot returns a deep copy taken under the lock.
func (s *Shared) Snapshot() Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Clone()
}
