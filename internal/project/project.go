package project

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"imagesieve/internal/collection"
	"imagesieve/internal/logging"
)

// snapshotVersion guards against reading snapshots written by an
// incompatible future layout.
const snapshotVersion = 1

// Snapshot is the on-disk form of one project.
type Snapshot struct {
	Version    int                   `json:"version"`
	Root       string                `json:"root"`
	SavedAt    time.Time             `json:"saved_at"`
	Collection collection.Collection `json:"collection"`
}

// Store reads and writes project snapshots in a single directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a store rooted at dir. The directory is created lazily
// on first save.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "project"),
	}
}

// PathFor returns the snapshot file for a scanned directory. The name
// combines a readable slug of the directory's base name with a hash of the
// full path, so distinct directories never collide and the projects
// directory stays browsable.
func (s *Store) PathFor(root string) string {
	sum := sha256.Sum256([]byte(root))
	name := fmt.Sprintf("%s-%s.json", slugify(filepath.Base(root)), hex.EncodeToString(sum[:4]))
	return filepath.Join(s.dir, name)
}

// Load returns the persisted collection for root. The boolean reports
// whether a usable snapshot existed; a missing or unreadable snapshot
// yields false so the caller starts the project fresh.
func (s *Store) Load(root string) (collection.Collection, bool, error) {
	path := s.PathFor(root)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return collection.Collection{Root: root}, false, nil
		}
		return collection.Collection{}, false, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("snapshot unreadable, starting fresh",
			logging.String("path", path),
			logging.Error(err))
		return collection.Collection{Root: root}, false, nil
	}
	if snap.Version != snapshotVersion {
		s.logger.Warn("snapshot version mismatch, starting fresh",
			logging.String("path", path),
			logging.Int("version", snap.Version))
		return collection.Collection{Root: root}, false, nil
	}

	snap.Collection.Root = root
	return snap.Collection, true, nil
}

// Save persists the collection atomically via a temp file rename.
func (s *Store) Save(c collection.Collection) error {
	if strings.TrimSpace(c.Root) == "" {
		return errors.New("collection root cannot be empty")
	}

	snap := Snapshot{
		Version:    snapshotVersion,
		Root:       c.Root,
		SavedAt:    time.Now().UTC(),
		Collection: c,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create projects directory: %w", err)
	}

	path := s.PathFor(c.Root)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename snapshot: %w", err)
	}

	s.logger.Debug("saved project snapshot",
		logging.String("root", c.Root),
		logging.Int("item_count", len(c.Items)))
	return nil
}

// Remove deletes the snapshot for root if one exists.
func (s *Store) Remove(root string) error {
	err := os.Remove(s.PathFor(root))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}

// List returns the roots of all snapshots in the store, newest first.
func (s *Store) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read projects directory: %w", err)
	}

	var snapshots []Snapshot
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil || snap.Version != snapshotVersion {
			continue
		}
		snapshots = append(snapshots, snap)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].SavedAt.After(snapshots[j].SavedAt)
	})
	return snapshots, nil
}

func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "project"
	}
	return slug
}
