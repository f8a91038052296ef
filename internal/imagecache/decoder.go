package imagecache

import (
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"imagesieve/internal/collection"
)

// placeholder is the shared 1x1 image returned for anything that cannot be
// decoded. One unreadable file must not block browsing the rest.
var placeholder = image.NewRGBA(image.Rect(0, 0, 1, 1))

// Placeholder returns the shared empty image.
func Placeholder() image.Image {
	return placeholder
}

// IsPlaceholder reports whether img is the shared empty image.
func IsPlaceholder(img image.Image) bool {
	return img == image.Image(placeholder)
}

// decode loads, downsizes, and rotates one image. Pure: no cache state.
// Images are fitted within maxWidth x maxHeight (never upscaled) before the
// EXIF rotation is applied; bounding the decode target is what keeps display
// latency flat regardless of camera resolution.
func decode(path string, orientation collection.Orientation, maxWidth, maxHeight int) image.Image {
	img, err := imaging.Open(path)
	if err != nil {
		return placeholder
	}
	if maxWidth > 0 && maxHeight > 0 {
		img = imaging.Fit(img, maxWidth, maxHeight, imaging.NearestNeighbor)
	}
	switch orientation {
	case collection.Orient90:
		// imaging rotates counter-clockwise; orientation holds clockwise
		// degrees.
		img = imaging.Rotate270(img)
	case collection.Orient180:
		img = imaging.Rotate180(img)
	case collection.Orient270:
		img = imaging.Rotate90(img)
	}
	return img
}

// Request identifies one image to load or prefetch.
type Request struct {
	Path        string
	ModTime     time.Time
	Size        int64
	Orientation collection.Orientation
}

// RequestFor builds a cache request from a collection item.
func RequestFor(root string, item *collection.Item) Request {
	return Request{
		Path:        item.AbsPath(root),
		ModTime:     item.ModTime,
		Size:        item.Size,
		Orientation: item.Orientation,
	}
}

// Key is the cache identity for a request: path plus a staleness marker, so
// an edited file decodes fresh instead of serving the old pixels.
type Key struct {
	Path    string
	ModTime int64
	Size    int64
}

func (r Request) key() Key {
	return Key{Path: r.Path, ModTime: r.ModTime.UnixNano(), Size: r.Size}
}

func (k Key) flightID() string {
	return fmt.Sprintf("%s|%d|%d", k.Path, k.ModTime, k.Size)
}
