package collection

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Synchronize walks root and reconciles the item list with the live
// filesystem: new files are added (take-over defaults to true), files that
// disappeared are dropped, and surviving items keep their take-over flag and
// cached hash when unchanged. Items end up sorted by timestamp, then path.
//
// A missing or unreadable root yields an empty collection, not an error; a
// user pointing the tool at a renamed directory should see "no images", not
// a crash.
func (c *Collection) Synchronize(root string) {
	c.Root = root

	existing := make(map[string]Item, len(c.Items))
	for _, item := range c.Items {
		existing[item.Path] = item
	}

	var items []Item
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !d.Type().IsRegular() {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}

		item := Item{
			Path:     rel,
			Kind:     KindForPath(rel),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			TakeOver: true,
		}
		if prev, ok := existing[rel]; ok {
			item.TakeOver = prev.TakeOver
			if prev.ModTime.Equal(item.ModTime) && prev.Size == item.Size {
				item.Hash = prev.Hash
				item.Timestamp = prev.Timestamp
				item.Orientation = prev.Orientation
			}
		}
		if item.Timestamp.IsZero() {
			item.Timestamp, item.Orientation = readExif(path, info.ModTime())
		}

		items = append(items, item)
		return nil
	})

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Timestamp.Equal(items[j].Timestamp) {
			return items[i].Timestamp.Before(items[j].Timestamp)
		}
		return items[i].Path < items[j].Path
	})

	// Similarity indices are positional; they are recomputed after every
	// synchronize, so drop the stale ones here.
	for i := range items {
		items[i].Similar = nil
	}
	c.Items = items
}

// readExif extracts the capture time and orientation for an image, falling
// back to the file modification time when EXIF data is absent or unreadable.
func readExif(path string, fallback time.Time) (time.Time, Orientation) {
	if KindForPath(path) != KindImage {
		return fallback, OrientNone
	}
	file, err := os.Open(path)
	if err != nil {
		return fallback, OrientNone
	}
	defer file.Close()

	meta, err := exif.Decode(file)
	if err != nil {
		return fallback, OrientNone
	}

	timestamp := fallback
	if taken, err := meta.DateTime(); err == nil {
		timestamp = taken
	}

	orientation := OrientNone
	if tag, err := meta.Get(exif.Orientation); err == nil {
		if value, err := tag.Int(0); err == nil {
			orientation = orientationFromExif(value)
		}
	}
	return timestamp, orientation
}

// orientationFromExif maps the EXIF orientation tag onto the clockwise
// rotation needed for upright display. Mirrored variants map to their
// rotation; mirroring itself is not applied.
func orientationFromExif(value int) Orientation {
	switch value {
	case 3, 4:
		return Orient180
	case 6, 5:
		return Orient90
	case 8, 7:
		return Orient270
	default:
		return OrientNone
	}
}
