package imagecache

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"imagesieve/internal/collection"
	"imagesieve/internal/testsupport"
)

func newTestCache(t *testing.T, capacity int) *Cache {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithCacheCapacity(capacity))
	cache := New(cfg, nil)
	t.Cleanup(cache.Close)
	return cache
}

func requestForFile(t *testing.T, path string) Request {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return Request{Path: path, ModTime: info.ModTime(), Size: info.Size()}
}

func TestLoadDecodesExactlyOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	testsupport.WriteGradientPNG(t, path, 1)

	cache := newTestCache(t, 8)
	req := requestForFile(t, path)

	first := cache.Load(req)
	second := cache.Load(req)

	if cache.DecodeCount() != 1 {
		t.Errorf("decodes = %d, want 1", cache.DecodeCount())
	}
	if first != second {
		t.Error("both loads should observe the same cached entry")
	}
}

func TestConcurrentLoadsShareOneDecode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	testsupport.WriteGradientPNG(t, path, 1)

	cache := newTestCache(t, 8)
	req := requestForFile(t, path)

	const callers = 16
	images := make([]image.Image, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(slot int) {
			defer wg.Done()
			images[slot] = cache.Load(req)
		}(i)
	}
	wg.Wait()

	if cache.DecodeCount() != 1 {
		t.Errorf("decodes = %d, want 1", cache.DecodeCount())
	}
	for i := 1; i < callers; i++ {
		if images[i] != images[0] {
			t.Fatal("callers observed different entries")
		}
	}
}

func TestConcurrentPrefetchCoalesces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	testsupport.WriteGradientPNG(t, path, 1)

	cache := newTestCache(t, 8)
	req := requestForFile(t, path)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.Prefetch(req)
		}()
	}
	wg.Wait()

	waitFor(t, func() bool { return cache.Len() == 1 })
	if got := cache.DecodeCount(); got != 1 {
		t.Errorf("decodes = %d, want 1", got)
	}

	// The consuming load must hit the prefetched entry.
	cache.Load(req)
	if got := cache.DecodeCount(); got != 1 {
		t.Errorf("decodes after load = %d, want 1", got)
	}
}

func TestCacheNeverExceedsCapacity(t *testing.T) {
	dir := t.TempDir()
	cache := newTestCache(t, 3)

	for i := 0; i < 10; i++ {
		path := filepath.Join(dir, "img"+string(rune('a'+i))+".png")
		testsupport.WriteGradientPNG(t, path, i+1)
		cache.Load(requestForFile(t, path))
		if cache.Len() > 3 {
			t.Fatalf("cache size %d exceeds capacity after %d loads", cache.Len(), i+1)
		}
	}
}

func TestEvictionSparesUnconsumedPrefetch(t *testing.T) {
	dir := t.TempDir()
	cache := newTestCache(t, 2)

	warm := filepath.Join(dir, "warm.png")
	testsupport.WriteGradientPNG(t, warm, 1)
	warmReq := requestForFile(t, warm)
	cache.Prefetch(warmReq)
	waitFor(t, func() bool { return cache.Len() == 1 })

	for _, name := range []string{"b.png", "c.png"} {
		path := filepath.Join(dir, name)
		testsupport.WriteGradientPNG(t, path, 7)
		cache.Load(requestForFile(t, path))
	}

	decodesBefore := cache.DecodeCount()
	cache.Load(warmReq)
	if cache.DecodeCount() != decodesBefore {
		t.Error("unconsumed prefetch was evicted before first view")
	}
}

func TestLoadReturnsPlaceholderOnDecodeFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.jpg")
	testsupport.WriteCorruptImage(t, path)

	cache := newTestCache(t, 8)
	img := cache.Load(requestForFile(t, path))
	if !IsPlaceholder(img) {
		t.Error("expected placeholder for undecodable file")
	}
}

func TestModifiedFileDecodesFresh(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	testsupport.WriteGradientPNG(t, path, 1)

	cache := newTestCache(t, 8)
	cache.Load(requestForFile(t, path))

	testsupport.WriteGradientPNG(t, path, 2)
	testsupport.Touch(t, path, time.Now().Add(time.Hour))
	cache.Load(requestForFile(t, path))

	if cache.DecodeCount() != 2 {
		t.Errorf("decodes = %d, want 2 for a changed file", cache.DecodeCount())
	}
}

func TestInvalidateEmptiesCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	testsupport.WriteGradientPNG(t, path, 1)

	cache := newTestCache(t, 8)
	cache.Load(requestForFile(t, path))
	cache.Invalidate()
	if cache.Len() != 0 {
		t.Errorf("Len = %d after invalidate", cache.Len())
	}
}

func TestDecodeBoundsAndRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wide.png")

	wide := image.NewRGBA(image.Rect(0, 0, 64, 16))
	for x := 0; x < 64; x++ {
		for y := 0; y < 16; y++ {
			wide.Set(x, y, color.RGBA{R: uint8(x * 4), A: 255})
		}
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(file, wide); err != nil {
		t.Fatalf("encode: %v", err)
	}
	file.Close()

	bounded := decode(path, collection.OrientNone, 32, 32)
	if b := bounded.Bounds(); b.Dx() != 32 || b.Dy() != 8 {
		t.Errorf("bounded dims = %dx%d, want 32x8", b.Dx(), b.Dy())
	}

	rotated := decode(path, collection.Orient90, 0, 0)
	if b := rotated.Bounds(); b.Dx() != 16 || b.Dy() != 64 {
		t.Errorf("rotated dims = %dx%d, want 16x64", b.Dx(), b.Dy())
	}
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}
