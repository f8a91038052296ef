package testsupport

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// WriteGradientPNG writes a small horizontal-gradient image. The seed shifts
// the gradient so different seeds produce images with distant perceptual
// hashes while the same seed reproduces the same pixels.
func WriteGradientPNG(t testing.TB, path string, seed int) {
	t.Helper()

	const side = 32
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			v := uint8((x*8 + y*seed*13) % 256)
			img.Set(x, y, color.RGBA{R: v, G: 255 - v, B: uint8(seed * 40 % 256), A: 255})
		}
	}
	writePNG(t, path, img)
}

// WriteCheckerPNG writes a checkerboard image whose hash sits far from any
// gradient produced by WriteGradientPNG.
func WriteCheckerPNG(t testing.TB, path string) {
	t.Helper()

	const side = 32
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			if (x/4+y/4)%2 == 0 {
				img.Set(x, y, color.RGBA{A: 255})
			} else {
				img.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
	}
	writePNG(t, path, img)
}

// WriteCorruptImage writes a file with an image extension that no decoder
// accepts.
func WriteCorruptImage(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Touch sets the file modification time, useful for deterministic timestamp
// ordering in scans of EXIF-less test images.
func Touch(t testing.TB, path string, when time.Time) {
	t.Helper()
	if err := os.Chtimes(path, when, when); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func writePNG(t testing.TB, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}
