package sieve

import (
	"image"

	"imagesieve/internal/collection"
)

// Dispatcher marshals a closure onto the thread that owns the bridge. The
// CLI uses a synchronous dispatcher; a GUI would post to its event loop.
type Dispatcher func(func())

// Row is one displayed image: the selected item or one of its similars.
type Row struct {
	// Index is the item's position in the collection.
	Index int
	Item  collection.Item
	Image image.Image
}

// RowIndexMap maps row position to collection index. It is rebuilt on every
// selection change and is the only reconciliation between row order and
// collection order.
type RowIndexMap []int

// Bridge is the presentation layer's view of the pipeline. Every method is
// invoked on the dispatcher thread, never from a worker goroutine.
type Bridge interface {
	// CollectionChanged delivers a fresh snapshot after a scan completes.
	CollectionChanged(snapshot collection.Collection)
	// RowsChanged replaces the displayed rows.
	RowsChanged(rows []Row, index RowIndexMap)
	// StatusChanged updates the status line for the selected item.
	StatusChanged(text string)
	// LoadingChanged reports whether a scan is in flight.
	LoadingChanged(loading bool)
	// CommitRunningChanged reports whether a commit is in flight.
	CommitRunningChanged(running bool)
	// CommitReport delivers one entry from the commit progress stream.
	CommitReport(report collection.Report)
}

// NopBridge discards all notifications. Embed it to implement only the
// callbacks a front end cares about.
type NopBridge struct{}

func (NopBridge) CollectionChanged(collection.Collection) {}
func (NopBridge) RowsChanged([]Row, RowIndexMap)          {}
func (NopBridge) StatusChanged(string)                    {}
func (NopBridge) LoadingChanged(bool)                     {}
func (NopBridge) CommitRunningChanged(bool)               {}
func (NopBridge) CommitReport(collection.Report)          {}
