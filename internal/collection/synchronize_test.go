package collection

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"imagesieve/internal/testsupport"
)

func TestSynchronizeOrdersByTimestamp(t *testing.T) {
	root := t.TempDir()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)

	testsupport.WriteGradientPNG(t, filepath.Join(root, "late.png"), 1)
	testsupport.Touch(t, filepath.Join(root, "late.png"), base.Add(2*time.Hour))
	testsupport.WriteGradientPNG(t, filepath.Join(root, "early.png"), 2)
	testsupport.Touch(t, filepath.Join(root, "early.png"), base)

	var c Collection
	c.Synchronize(root)

	if len(c.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(c.Items))
	}
	if c.Items[0].Path != "early.png" || c.Items[1].Path != "late.png" {
		t.Errorf("order = %q, %q", c.Items[0].Path, c.Items[1].Path)
	}
	for _, item := range c.Items {
		if !item.IsImage() {
			t.Errorf("%s should be an image", item.Path)
		}
		if !item.TakeOver {
			t.Errorf("%s should default to take-over", item.Path)
		}
	}
}

func TestSynchronizePreservesDecisionsAndDropsMissing(t *testing.T) {
	root := t.TempDir()
	keep := filepath.Join(root, "keep.png")
	gone := filepath.Join(root, "gone.png")
	testsupport.WriteGradientPNG(t, keep, 1)
	testsupport.WriteGradientPNG(t, gone, 2)

	var c Collection
	c.Synchronize(root)
	if len(c.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(c.Items))
	}
	for i := range c.Items {
		c.Items[i].TakeOver = false
	}

	if err := os.Remove(gone); err != nil {
		t.Fatalf("remove: %v", err)
	}
	testsupport.WriteGradientPNG(t, filepath.Join(root, "new.png"), 3)

	c.Synchronize(root)
	if len(c.Items) != 2 {
		t.Fatalf("items after resync = %d, want 2", len(c.Items))
	}
	byPath := map[string]Item{}
	for _, item := range c.Items {
		byPath[item.Path] = item
	}
	if _, ok := byPath["gone.png"]; ok {
		t.Error("missing file should be dropped")
	}
	if byPath["keep.png"].TakeOver {
		t.Error("existing decision should survive a resync")
	}
	if !byPath["new.png"].TakeOver {
		t.Error("new file should default to take-over")
	}
}

func TestSynchronizeMissingDirectoryYieldsEmpty(t *testing.T) {
	var c Collection
	c.Items = []Item{{Path: "stale.png"}}
	c.Synchronize(filepath.Join(t.TempDir(), "nope"))
	if len(c.Items) != 0 {
		t.Errorf("items = %d, want 0", len(c.Items))
	}
}

func TestSynchronizeClassifiesNonImages(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteGradientPNG(t, filepath.Join(root, "a.png"), 1)
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var c Collection
	c.Synchronize(root)
	if len(c.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(c.Items))
	}
	if c.NumImages() != 1 {
		t.Errorf("NumImages = %d, want 1", c.NumImages())
	}
}

func TestSynchronizeSkipsHiddenFiles(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteGradientPNG(t, filepath.Join(root, ".hidden.png"), 1)
	testsupport.WriteGradientPNG(t, filepath.Join(root, ".thumbs", "cache.png"), 1)
	testsupport.WriteGradientPNG(t, filepath.Join(root, "visible.png"), 2)

	var c Collection
	c.Synchronize(root)
	if len(c.Items) != 1 || c.Items[0].Path != "visible.png" {
		t.Errorf("items = %+v, want only visible.png", c.Items)
	}
}

func TestOrientationFromExif(t *testing.T) {
	cases := map[int]Orientation{
		1: OrientNone,
		3: Orient180,
		6: Orient90,
		8: Orient270,
		0: OrientNone,
	}
	for value, want := range cases {
		if got := orientationFromExif(value); got != want {
			t.Errorf("orientationFromExif(%d) = %v, want %v", value, got, want)
		}
	}
}
