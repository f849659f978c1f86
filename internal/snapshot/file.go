package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rcliao/companion/internal/model"
)

// FileStore keeps a single JSON snapshot on disk. Writes go to a temp file
// in the same directory and are renamed into place.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load(_ context.Context) (*model.Snapshot, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("load", err)
	}
	return decode("load", b)
}

func (f *FileStore) Save(_ context.Context, snap model.Snapshot) error {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return wrap("save", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return wrap("save", fmt.Errorf("create dir: %w", err))
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return wrap("save", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return wrap("save", err)
	}
	if err := tmp.Close(); err != nil {
		return wrap("save", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return wrap("save", err)
	}
	return nil
}

func (f *FileStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{Provider: ProviderFile, Location: f.path, Keep: 1}
	info, err := os.Stat(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, wrap("stats", err)
	}
	st.SizeBytes = info.Size()
	st.Snapshots = 1

	snap, err := f.Load(ctx)
	if err != nil {
		return st, err
	}
	st.LatestAt, st.OldestAt = snap.SavedAt, snap.SavedAt
	st.LatestBytes = int(info.Size())
	return st, nil
}

func (f *FileStore) Close() error { return nil }
