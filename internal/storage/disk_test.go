package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMeasureDiskUsage(t *testing.T) {
	dir := t.TempDir()

	db := filepath.Join(dir, "catalog.db")
	if err := os.WriteFile(db, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(db+"-wal", []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}
	idx := filepath.Join(dir, "index")
	if err := os.MkdirAll(filepath.Join(idx, "store"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(idx, "meta"), []byte("ab"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(idx, "store", "seg"), []byte("c"), 0644); err != nil {
		t.Fatal(err)
	}

	u, err := MeasureDiskUsage(db, idx)
	if err != nil {
		t.Fatal(err)
	}
	if u.DatabaseBytes != 8 {
		t.Errorf("DatabaseBytes = %d, want 8", u.DatabaseBytes)
	}
	if u.IndexBytes != 3 {
		t.Errorf("IndexBytes = %d, want 3", u.IndexBytes)
	}
	if u.Total() != 11 {
		t.Errorf("Total = %d, want 11", u.Total())
	}
}

func TestMeasureDiskUsage_MissingAndMemory(t *testing.T) {
	u, err := MeasureDiskUsage(MemoryPath, "")
	if err != nil || u.Total() != 0 {
		t.Errorf("memory: got %+v, %v", u, err)
	}
	u, err = MeasureDiskUsage(filepath.Join(t.TempDir(), "missing.db"), filepath.Join(t.TempDir(), "nope"))
	if err != nil || u.Total() != 0 {
		t.Errorf("missing: got %+v, %v", u, err)
	}
}
