package backfill

import (
	"context"
	"path/filepath"
	"testing"
)

func TestFileCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "checkpoint.json")
	store := NewFileCheckpointStore(path, true)

	if _, found, err := store.Load(context.Background()); err != nil || found {
		t.Fatalf("missing checkpoint must load empty: found=%v err=%v", found, err)
	}

	if err := store.Save(context.Background(), 123456); err != nil {
		t.Fatalf("save: %v", err)
	}

	cp, found, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found {
		t.Fatalf("saved checkpoint not found")
	}
	if cp.LastProcessedBlock != 123456 {
		t.Fatalf("block mismatch: %d", cp.LastProcessedBlock)
	}
	if cp.UpdatedAt == "" {
		t.Fatalf("missing update timestamp")
	}
}

func TestFileCheckpointDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	store := NewFileCheckpointStore(path, false)

	if err := store.Save(context.Background(), 99); err != nil {
		t.Fatalf("disabled save must be a no-op: %v", err)
	}
	if _, found, err := store.Load(context.Background()); err != nil || found {
		t.Fatalf("disabled store must never find a checkpoint: found=%v err=%v", found, err)
	}

	enabled := NewFileCheckpointStore(path, true)
	if _, found, _ := enabled.Load(context.Background()); found {
		t.Fatalf("disabled save must not write the file")
	}
}
