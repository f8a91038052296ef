package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Sieve.SimilarityWindow != defaultSimilarityWindow {
		t.Errorf("similarity window = %d, want %d", cfg.Sieve.SimilarityWindow, defaultSimilarityWindow)
	}
	if cfg.Cache.Capacity != defaultCacheCapacity {
		t.Errorf("cache capacity = %d, want %d", cfg.Cache.Capacity, defaultCacheCapacity)
	}
	if cfg.Sieve.CommitMethod != "copy" {
		t.Errorf("commit method = %q, want copy", cfg.Sieve.CommitMethod)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
source_dir = "` + dir + `"
data_dir = "` + filepath.Join(dir, "data") + `"

[sieve]
commit_method = "  MOVE  "

[cache]
capacity = 8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Sieve.CommitMethod != "move" {
		t.Errorf("commit method not normalized: %q", cfg.Sieve.CommitMethod)
	}
	if cfg.Cache.Capacity != 8 {
		t.Errorf("cache capacity = %d, want 8", cfg.Cache.Capacity)
	}
	if cfg.Sieve.SimilarityWindow != defaultSimilarityWindow {
		t.Errorf("unset similarity window should default, got %d", cfg.Sieve.SimilarityWindow)
	}
}

func TestValidateRejectsUnknownCommitMethod(t *testing.T) {
	cfg := Default()
	cfg.Sieve.CommitMethod = "teleport"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for commit method")
	}
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected logging.format error, got %v", err)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/photos")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if got != filepath.Join(home, "photos") {
		t.Errorf("ExpandPath = %q", got)
	}
}

func TestSaveRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Paths.SourceDir = dir
	cfg.Sieve.CommitMethod = "move"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, _, exists, err := Load(path)
	if err != nil || !exists {
		t.Fatalf("reload: exists=%v err=%v", exists, err)
	}
	if loaded.Sieve.CommitMethod != "move" {
		t.Errorf("commit method = %q after round trip", loaded.Sieve.CommitMethod)
	}
	if loaded.Paths.SourceDir != dir {
		t.Errorf("source dir = %q after round trip", loaded.Paths.SourceDir)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, exists, err := Load(path); err != nil || !exists {
		t.Fatalf("sample config should load: exists=%v err=%v", exists, err)
	}
}
