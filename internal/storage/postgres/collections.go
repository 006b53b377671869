package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/eventstock/eventstock/internal/core/query"
	"github.com/eventstock/eventstock/internal/storage"
)

// CollectionRepository stores each collection as one JSONB document. Every
// save bumps the row version; concurrent writers are not detected.
type CollectionRepository struct {
	db *Client
}

func NewCollectionRepository(db *Client) *CollectionRepository {
	return &CollectionRepository{db: db}
}

func (r *CollectionRepository) Load(ctx context.Context, name string) ([]query.Record, error) {
	if err := storage.ValidateName(name); err != nil {
		return nil, err
	}

	var document []byte
	err := r.db.DB.QueryRowContext(ctx,
		`SELECT document FROM collections WHERE name = $1`, name,
	).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrCollectionNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	var records []query.Record
	if err := json.Unmarshal(document, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if records == nil {
		records = []query.Record{}
	}
	return records, nil
}

func (r *CollectionRepository) Save(ctx context.Context, name string, records []query.Record) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}
	if records == nil {
		records = []query.Record{}
	}

	document, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	q := `
		INSERT INTO collections (name, document)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE
		SET document = EXCLUDED.document,
		    version = collections.version + 1,
		    updated_at = CURRENT_TIMESTAMP`

	_, err = r.db.DB.ExecContext(ctx, q, name, document)
	return err
}

// Version returns the number of saves recorded for a collection.
func (r *CollectionRepository) Version(ctx context.Context, name string) (int64, error) {
	var version int64
	err := r.db.DB.QueryRowContext(ctx,
		`SELECT version FROM collections WHERE name = $1`, name,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", storage.ErrCollectionNotFound, name)
	}
	return version, err
}

func (r *CollectionRepository) Delete(ctx context.Context, name string) error {
	_, err := r.db.DB.ExecContext(ctx, `DELETE FROM collections WHERE name = $1`, name)
	return err
}
