package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/eventstock/eventstock/internal/core/collection"
	"github.com/eventstock/eventstock/internal/storage"
	"github.com/eventstock/eventstock/internal/storage/filestore"
)

// objectStore is the part of the MinIO client the importer needs.
type objectStore interface {
	Exists(ctx context.Context, ref string) (bool, error)
	Upload(ctx context.Context, ref string, r io.Reader, size int64, contentType string) error
}

type importer struct {
	collections *collection.Service
	store       storage.Store
	logger      *zap.Logger
	overwrite   bool
}

type summary struct {
	Imported map[string]int
	Skipped  []string
	Images   int
}

// importCollections loads <dir>/<name>.json for every known collection.
// Collections already stored are left alone unless overwrite is set.
func (im *importer) importCollections(ctx context.Context, dir string) (*summary, error) {
	sum := &summary{Imported: make(map[string]int)}

	for _, name := range im.collections.Views().Names() {
		path := filepath.Join(dir, name+".json")
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return sum, err
		}

		if !im.overwrite {
			_, err := im.store.Load(ctx, name)
			if err == nil {
				im.logger.Info("collection already stored, skipping", zap.String("collection", name))
				sum.Skipped = append(sum.Skipped, name)
				continue
			}
			if !errors.Is(err, storage.ErrCollectionNotFound) {
				return sum, fmt.Errorf("check %s: %w", name, err)
			}
		}

		records, err := filestore.Decode(name, data)
		if err != nil {
			return sum, fmt.Errorf("decode %s: %w", path, err)
		}
		res, err := im.collections.Replace(ctx, name, records)
		if err != nil {
			return sum, fmt.Errorf("import %s: %w", name, err)
		}
		if !res.Persisted {
			return sum, fmt.Errorf("import %s: store rejected the collection", name)
		}

		im.logger.Info("collection imported", zap.String("collection", name), zap.Int("records", len(res.Records)))
		sum.Imported[name] = len(res.Records)
	}
	return sum, nil
}

// uploadImages copies files under dir into object storage, keyed by their
// path relative to dir. Existing objects are kept.
func (im *importer) uploadImages(ctx context.Context, objects objectStore, dir string) (int, error) {
	uploaded := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ref, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		ref = filepath.ToSlash(ref)

		exists, err := objects.Exists(ctx, ref)
		if err != nil {
			return fmt.Errorf("stat %s: %w", ref, err)
		}
		if exists && !im.overwrite {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		contentType := mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := objects.Upload(ctx, ref, f, info.Size(), contentType); err != nil {
			return fmt.Errorf("upload %s: %w", ref, err)
		}
		uploaded++
		return nil
	})
	return uploaded, err
}
