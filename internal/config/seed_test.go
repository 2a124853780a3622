package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSeedParsesUsersAndCells(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	contents := "users:\n  - x: 1.5\n    y: -2.5\n  - x: 0\n    y: 0\ncells:\n  - x: 10\n    y: 10\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	seed, err := LoadSeed(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(seed.Users) != 2 || len(seed.Cells) != 1 {
		t.Fatalf("unexpected seed: %+v", seed)
	}
	if seed.Users[0].X != 1.5 || seed.Users[0].Y != -2.5 {
		t.Fatalf("unexpected first user: %+v", seed.Users[0])
	}
}

func TestLoadSeedMissingFile(t *testing.T) {
	if _, err := LoadSeed("/nonexistent/seed.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
