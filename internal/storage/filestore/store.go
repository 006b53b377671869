package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/eventstock/eventstock/internal/core/query"
	"github.com/eventstock/eventstock/internal/storage"
)

// Store keeps each collection as <dir>/<name>.json holding a JSON array.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *Store) Load(ctx context.Context, name string) ([]query.Record, error) {
	if err := storage.ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", storage.ErrCollectionNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	records, err := Decode(name, data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return records, nil
}

// Save replaces the collection file atomically.
func (s *Store) Save(ctx context.Context, name string, records []query.Record) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []query.Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// Decode accepts a bare JSON array or an object wrapping the array under the
// collection name, e.g. {"kwiaty": [...]}.
func Decode(name string, data []byte) ([]query.Record, error) {
	var records []query.Record
	if err := json.Unmarshal(data, &records); err == nil {
		if records == nil {
			records = []query.Record{}
		}
		return records, nil
	}

	var wrapped map[string][]query.Record
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	records, ok := wrapped[name]
	if !ok {
		return nil, fmt.Errorf("document has no %q array", name)
	}
	if records == nil {
		records = []query.Record{}
	}
	return records, nil
}
