// Package storage defines the Data Store contract shared by the backends:
// whole collections are loaded and saved as one document.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/eventstock/eventstock/internal/core/query"
)

var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrInvalidName        = errors.New("invalid collection name")
)

type Store interface {
	Load(ctx context.Context, name string) ([]query.Record, error)
	Save(ctx context.Context, name string, records []query.Record) error
}

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// ValidateName guards backends that turn collection names into paths or keys.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
