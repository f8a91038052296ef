package collection

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"imagesieve/internal/testsupport"
)

func countKinds(reports []Report) (progress, itemErrors, completed int) {
	for _, r := range reports {
		switch r.Kind {
		case ReportProgress:
			progress++
		case ReportItemError:
			itemErrors++
		case ReportCompleted:
			completed++
		}
	}
	return
}

func TestCommitCopyContinuesPastItemFailure(t *testing.T) {
	root := t.TempDir()
	dest := t.TempDir()
	for i, name := range []string{"a.png", "b.png", "c.png"} {
		testsupport.WriteGradientPNG(t, filepath.Join(root, name), i+1)
	}

	var c Collection
	c.Synchronize(root)
	if len(c.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(c.Items))
	}

	// Losing the backing file after the snapshot is the per-item failure
	// case: the commit must report it and keep going.
	if err := os.Remove(filepath.Join(root, "b.png")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	var reports []Report
	summary := c.Commit(dest, MethodCopy, func(r Report) { reports = append(reports, r) })

	progress, itemErrors, completed := countKinds(reports)
	if progress != 2 || itemErrors != 1 || completed != 1 {
		t.Errorf("reports = %d progress, %d errors, %d completed; want 2/1/1",
			progress, itemErrors, completed)
	}
	if reports[len(reports)-1].Kind != ReportCompleted {
		t.Error("completed report must be last")
	}
	if summary.Committed != 2 || summary.Failed != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestCommitMoveRemovesSources(t *testing.T) {
	root := t.TempDir()
	dest := t.TempDir()
	testsupport.WriteGradientPNG(t, filepath.Join(root, "a.png"), 1)

	var c Collection
	c.Synchronize(root)
	summary := c.Commit(dest, MethodMove, nil)

	if summary.Committed != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(root, "a.png")); !os.IsNotExist(err) {
		t.Error("moved source should be gone")
	}
}

func TestCommitDeleteDropsDiscardedItems(t *testing.T) {
	root := t.TempDir()
	dest := t.TempDir()
	testsupport.WriteGradientPNG(t, filepath.Join(root, "keep.png"), 1)
	testsupport.WriteGradientPNG(t, filepath.Join(root, "drop.png"), 2)

	var c Collection
	c.Synchronize(root)
	for i := range c.Items {
		if c.Items[i].Path == "drop.png" {
			c.Items[i].TakeOver = false
		}
	}

	summary := c.Commit(dest, MethodDelete, nil)
	if summary.Committed != 1 || summary.Deleted != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(root, "drop.png")); !os.IsNotExist(err) {
		t.Error("discarded file should be deleted")
	}
}

func TestCommitPlacesItemsUnderEventFolder(t *testing.T) {
	root := t.TempDir()
	dest := t.TempDir()
	testsupport.WriteGradientPNG(t, filepath.Join(root, "party.png"), 1)
	when := time.Date(2024, 7, 14, 10, 0, 0, 0, time.Local)
	testsupport.Touch(t, filepath.Join(root, "party.png"), when)

	var c Collection
	c.Synchronize(root)
	event, err := NewEvent("Summer Party", "2024-07-13", "2024-07-15")
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	c.Events = append(c.Events, event)

	if summary := c.Commit(dest, MethodCopy, nil); summary.Committed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(dest, "Summer Party", "party.png")); err != nil {
		t.Errorf("expected file under event folder: %v", err)
	}
}

func TestCommitPlacesItemsUnderYearMonth(t *testing.T) {
	root := t.TempDir()
	dest := t.TempDir()
	testsupport.WriteGradientPNG(t, filepath.Join(root, "shot.png"), 1)
	testsupport.Touch(t, filepath.Join(root, "shot.png"),
		time.Date(2023, 12, 24, 9, 0, 0, 0, time.Local))

	var c Collection
	c.Synchronize(root)
	if summary := c.Commit(dest, MethodCopy, nil); summary.Committed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(dest, "2023-12", "shot.png")); err != nil {
		t.Errorf("expected file under 2023-12: %v", err)
	}
}

func TestCommitResolvesNameCollisions(t *testing.T) {
	rootA := t.TempDir()
	dest := t.TempDir()
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	testsupport.WriteGradientPNG(t, filepath.Join(rootA, "img.png"), 1)
	testsupport.Touch(t, filepath.Join(rootA, "img.png"), when)

	var c Collection
	c.Synchronize(rootA)
	if summary := c.Commit(dest, MethodCopy, nil); summary.Committed != 1 {
		t.Fatalf("first commit: %+v", summary)
	}
	if summary := c.Commit(dest, MethodCopy, nil); summary.Committed != 1 {
		t.Fatalf("second commit: %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(dest, "2024-03", "img-1.png")); err != nil {
		t.Errorf("expected suffixed copy: %v", err)
	}
}

func TestCommitAbortsOnMissingDestination(t *testing.T) {
	var c Collection
	var reports []Report
	summary := c.Commit("", MethodCopy, func(r Report) { reports = append(reports, r) })

	if len(reports) != 1 || reports[0].Kind != ReportCompleted {
		t.Fatalf("reports = %+v, want single completed", reports)
	}
	if summary.Committed != 0 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestParseMethod(t *testing.T) {
	for _, valid := range []string{"copy", " Move ", "DELETE"} {
		if _, err := ParseMethod(valid); err != nil {
			t.Errorf("ParseMethod(%q) failed: %v", valid, err)
		}
	}
	if _, err := ParseMethod("archive"); err == nil {
		t.Error("expected error for unknown method")
	}
}
