package collection

import (
	"path/filepath"
	"strings"
	"time"
)

// Kind classifies a file found under the scanned root.
type Kind string

const (
	KindImage Kind = "image"
	KindOther Kind = "other"
)

// Orientation is the EXIF rotation applied when displaying an image.
// Values are the clockwise degrees needed to show the image upright.
type Orientation int

const (
	OrientNone Orientation = 0
	Orient90   Orientation = 90
	Orient180  Orientation = 180
	Orient270  Orientation = 270
)

// Item is one file on disk under the scanned root. Items are owned by the
// Collection and mutated only while the Shared lock is held.
type Item struct {
	// Path is relative to the collection root.
	Path        string      `json:"path"`
	Kind        Kind        `json:"kind"`
	Size        int64       `json:"size"`
	Timestamp   time.Time   `json:"timestamp"`
	ModTime     time.Time   `json:"mod_time"`
	Orientation Orientation `json:"orientation,omitempty"`
	TakeOver    bool        `json:"take_over"`
	// Similar holds collection indices of items grouped with this one.
	Similar []int `json:"similar,omitempty"`
	// Hash is the perceptual hash computed during grouping; zero means
	// not computed (non-image or decode failure).
	Hash uint64 `json:"hash,omitempty"`
}

// IsImage reports whether the item decodes as a picture.
func (it *Item) IsImage() bool {
	return it.Kind == KindImage
}

// AbsPath joins the item path onto the collection root.
func (it *Item) AbsPath(root string) string {
	return filepath.Join(root, it.Path)
}

// Name returns the file name without directories.
func (it *Item) Name() string {
	return filepath.Base(it.Path)
}

// DateString formats the item timestamp the way the status line shows it.
func (it *Item) DateString() string {
	return it.Timestamp.Format("2006-01-02 15:04")
}

// imageExtensions lists the formats the decoder understands. HEIC is indexed
// as an image so it survives commits even though decoding falls back to the
// placeholder.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
	".webp": {},
	".heic": {},
	".heif": {},
}

// KindForPath classifies a file by extension.
func KindForPath(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := imageExtensions[ext]; ok {
		return KindImage
	}
	return KindOther
}
