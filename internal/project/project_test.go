package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"imagesieve/internal/collection"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir(), nil)

	original := collection.Collection{
		Root: "/photos/vacation",
		Items: []collection.Item{
			{Path: "a.png", Kind: collection.KindImage, TakeOver: true, Similar: []int{1}, Hash: 42},
			{Path: "b.png", Kind: collection.KindImage, Similar: []int{0}},
		},
		Events: []collection.Event{mustEvent(t, "Trip", "2024-06-01", "2024-06-10")},
	}
	if err := store.Save(original); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, found, err := store.Load("/photos/vacation")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatal("saved snapshot not found")
	}
	if len(loaded.Items) != 2 || len(loaded.Events) != 1 {
		t.Fatalf("loaded %d items, %d events", len(loaded.Items), len(loaded.Events))
	}
	if !loaded.Items[0].TakeOver || loaded.Items[0].Hash != 42 {
		t.Error("item decisions did not survive the round trip")
	}
	if got := loaded.Items[0].Similar; len(got) != 1 || got[0] != 1 {
		t.Errorf("Similar = %v, want [1]", got)
	}
	if loaded.Events[0].Name != "Trip" {
		t.Errorf("event name = %q", loaded.Events[0].Name)
	}
}

func TestLoadMissingSnapshotStartsFresh(t *testing.T) {
	store := NewStore(t.TempDir(), nil)

	c, found, err := store.Load("/photos/nothing")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if found {
		t.Error("found should be false for a missing snapshot")
	}
	if c.Root != "/photos/nothing" {
		t.Errorf("Root = %q", c.Root)
	}
}

func TestLoadCorruptSnapshotStartsFresh(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)

	path := store.PathFor("/photos/broken")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, found, err := store.Load("/photos/broken")
	if err != nil {
		t.Fatalf("Load should not fail on corrupt data: %v", err)
	}
	if found {
		t.Error("corrupt snapshot should behave as absent")
	}
}

func TestPathForDistinguishesDirectories(t *testing.T) {
	store := NewStore("/data/projects", nil)

	a := store.PathFor("/photos/2024")
	b := store.PathFor("/backup/2024")
	if a == b {
		t.Error("different roots with the same base name must map to different files")
	}
	if a != store.PathFor("/photos/2024") {
		t.Error("PathFor must be deterministic")
	}
	if filepath.Dir(a) != "/data/projects" {
		t.Errorf("snapshot outside projects directory: %s", a)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	store := NewStore(t.TempDir(), nil)

	for _, root := range []string{"/photos/first", "/photos/second"} {
		if err := store.Save(collection.Collection{Root: root}); err != nil {
			t.Fatalf("Save: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	snapshots, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("List returned %d snapshots", len(snapshots))
	}
	if snapshots[0].Root != "/photos/second" {
		t.Errorf("newest first, got %q", snapshots[0].Root)
	}
}

func TestRemoveDeletesSnapshot(t *testing.T) {
	store := NewStore(t.TempDir(), nil)

	if err := store.Save(collection.Collection{Root: "/photos/gone"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Remove("/photos/gone"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, found, _ := store.Load("/photos/gone"); found {
		t.Error("snapshot still present after Remove")
	}
	if err := store.Remove("/photos/gone"); err != nil {
		t.Errorf("Remove of absent snapshot should be a no-op: %v", err)
	}
}

func TestAcquireIsExclusive(t *testing.T) {
	store := NewStore(t.TempDir(), nil)

	lock, err := store.Acquire("/photos/locked")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lock.Release()

	secondStore := NewStore(filepath.Dir(store.PathFor("/photos/locked")), nil)
	if _, err := secondStore.Acquire("/photos/locked"); err != ErrLocked {
		t.Errorf("second Acquire = %v, want ErrLocked", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	relocked, err := store.Acquire("/photos/locked")
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	relocked.Release()
}

func mustEvent(t *testing.T, name, start, end string) collection.Event {
	t.Helper()
	event, err := collection.NewEvent(name, start, end)
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	return event
}
