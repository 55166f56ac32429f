package backfill

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"salescope/internal/storage/postgres"
)

// Checkpoint tracks the last processed block.
type Checkpoint struct {
	LastProcessedBlock uint64 `json:"last_processed_block"`
	UpdatedAt          string `json:"updated_at"`
}

// CheckpointStore persists backfill progress.
type CheckpointStore interface {
	Load(ctx context.Context) (Checkpoint, bool, error)
	Save(ctx context.Context, lastProcessed uint64) error
}

// FileCheckpointStore persists checkpoints to a local JSON file.
type FileCheckpointStore struct {
	path    string
	enabled bool
}

func NewFileCheckpointStore(path string, enabled bool) *FileCheckpointStore {
	return &FileCheckpointStore{path: path, enabled: enabled}
}

func (c *FileCheckpointStore) Load(_ context.Context) (Checkpoint, bool, error) {
	if !c.enabled {
		return Checkpoint{}, false, nil
	}

	stat, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, fmt.Errorf("stat checkpoint: %w", err)
	}
	if stat.IsDir() {
		return Checkpoint{}, false, fmt.Errorf("checkpoint path is a directory")
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("parse checkpoint: %w", err)
	}

	return cp, true, nil
}

func (c *FileCheckpointStore) Save(_ context.Context, lastProcessed uint64) error {
	if !c.enabled {
		return nil
	}

	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}

	cp := Checkpoint{
		LastProcessedBlock: lastProcessed,
		UpdatedAt:          time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint tmp: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("rename checkpoint: %w", err)
	}

	return nil
}

// DBCheckpointStore persists checkpoints in Postgres, keyed by name.
type DBCheckpointStore struct {
	Store *postgres.Store
	Name  string
}

func (c *DBCheckpointStore) Load(ctx context.Context) (Checkpoint, bool, error) {
	if c.Store == nil {
		return Checkpoint{}, false, fmt.Errorf("store is nil")
	}
	last, ok, err := c.Store.LoadCheckpoint(ctx, c.Name)
	if err != nil || !ok {
		return Checkpoint{}, false, err
	}
	return Checkpoint{LastProcessedBlock: last}, true, nil
}

func (c *DBCheckpointStore) Save(ctx context.Context, lastProcessed uint64) error {
	if c.Store == nil {
		return fmt.Errorf("store is nil")
	}
	return c.Store.SaveCheckpoint(ctx, c.Name, lastProcessed)
}
