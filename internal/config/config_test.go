package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if len(cfg.Categories) != 6 {
		t.Errorf("expected 6 categories, got %d", len(cfg.Categories))
	}
	if len(cfg.Hazards) != 4 {
		t.Errorf("expected 4 hazards, got %d", len(cfg.Hazards))
	}
	if cfg.Judge.Mode != "gates" {
		t.Errorf("expected default mode gates, got %q", cfg.Judge.Mode)
	}
}

func TestDefaultCategoryOrder(t *testing.T) {
	// Declaration order is the severity tie-break order.
	want := []string{"disaster", "electrical", "road", "water", "garbage", "nuisance"}
	cfg := Default()
	for i, name := range want {
		if cfg.Categories[i].Name != name {
			t.Errorf("category %d: expected %q, got %q", i, name, cfg.Categories[i].Name)
		}
	}
}

func TestDefaultHazardOrder(t *testing.T) {
	want := []string{"fire", "electrical", "flood", "structural"}
	cfg := Default()
	for i, typ := range want {
		if cfg.Hazards[i].Type != typ {
			t.Errorf("hazard %d: expected %q, got %q", i, typ, cfg.Hazards[i].Type)
		}
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, hash, err := LoadWithHash(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.Thresholds.CivicImage != 0.22 {
		t.Errorf("expected default civic threshold 0.22, got %v", cfg.Thresholds.CivicImage)
	}
	if hash != emptyHash() {
		t.Errorf("expected empty-input hash for defaults, got %s", hash)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "thresholds:\n  description_match: 0.35\nserver:\n  port: 9999\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, hash, err := LoadWithHash(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Thresholds.DescriptionMatch != 0.35 {
		t.Errorf("override not applied: got %v", cfg.Thresholds.DescriptionMatch)
	}
	if cfg.Thresholds.CivicImage != 0.22 {
		t.Errorf("unrelated default clobbered: got %v", cfg.Thresholds.CivicImage)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port override not applied: got %d", cfg.Server.Port)
	}
	if len(cfg.CivicKeywords) == 0 {
		t.Error("default keywords lost after merge")
	}
	if hash == emptyHash() {
		t.Error("expected content hash, got empty-input hash")
	}
}

func TestLoadHashChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.yaml")
	pathB := filepath.Join(dir, "b.yaml")
	os.WriteFile(pathA, []byte("server:\n  port: 8081\n"), 0600)
	os.WriteFile(pathB, []byte("server:\n  port: 8082\n"), 0600)

	_, hashA, _ := LoadWithHash(pathA)
	_, hashB, _ := LoadWithHash(pathB)
	if hashA == hashB {
		t.Error("different content must produce different hashes")
	}
}

func TestLoadRejectsInvalidMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("judge:\n  mode: oracle\n"), 0600)

	if _, _, err := LoadWithHash(path); err == nil {
		t.Error("expected error for invalid judge mode")
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("thresholds: [not a map"), 0600)

	if _, _, err := LoadWithHash(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidateKeywordWeightRange(t *testing.T) {
	cfg := Default()
	cfg.Categories[0].Keywords["nuke"] = 1.5
	if err := cfg.validate(); err == nil {
		t.Error("expected error for keyword weight above 1")
	}
}

func TestJunkSetLowercases(t *testing.T) {
	cfg := &Config{JunkObjects: []string{"Dog", "CAT"}}
	s := cfg.JunkSet()
	if !s["dog"] || !s["cat"] {
		t.Errorf("junk set not lowercased: %v", s)
	}
}

func TestDefaultYAMLRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(DefaultYAML()), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	def := Default()
	if cfg.Thresholds != def.Thresholds {
		t.Errorf("thresholds drifted: got %+v, want %+v", cfg.Thresholds, def.Thresholds)
	}
	if cfg.Judge.Mode != def.Judge.Mode {
		t.Errorf("judge mode drifted: got %q, want %q", cfg.Judge.Mode, def.Judge.Mode)
	}
}
