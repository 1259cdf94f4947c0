package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deusflow/ainews/internal/feed"
)

// FileStore keeps one JSON file per period key under a directory.
// Durable across restarts, which makes the cross-period Latest query work.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) path(key string) string {
	// Period keys are ISO-week ids; sanitize anyway so a bad key can't
	// escape the directory.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(fs.dir, safe+".json")
}

func (fs *FileStore) Get(key string) (*feed.Snapshot, bool, error) {
	data, err := os.ReadFile(fs.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot: %w", err)
	}

	var snap feed.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, true, nil
}

func (fs *FileStore) Put(key string, snap *feed.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(fs.path(key), data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (fs *FileStore) Latest() (*feed.Snapshot, bool, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, false, fmt.Errorf("list snapshots: %w", err)
	}

	var latest *feed.Snapshot
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(fs.dir, entry.Name()))
		if err != nil {
			continue
		}
		var snap feed.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			continue
		}
		if latest == nil || snap.CreatedAt.After(latest.CreatedAt) {
			s := snap
			latest = &s
		}
	}
	return latest, latest != nil, nil
}
