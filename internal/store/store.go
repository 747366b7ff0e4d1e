// Package store persists timeline entries behind a single interface with
// interchangeable backends. The backend is picked once at startup and
// injected; callers never inspect which one they hold.
package store

import (
	"context"
	"errors"

	models "io.winapps.depttimeline/internal/models/entry"
)

var (
	// ErrMissingID is returned by Update when the entry carries no id
	ErrMissingID = errors.New("store: entry id is required")
	// ErrNotFound is returned by Find when no entry has the requested id
	ErrNotFound = errors.New("store: entry not found")
)

// Store is the CRUD contract every backend implements. Entries returned by
// GetAll are normalized so consumers only ever see the mediaUrls form.
type Store interface {
	// GetAll returns every entry. Ordering is backend specific.
	GetAll(ctx context.Context) ([]models.Entry, error)
	// Add assigns id and createdAt, persists and returns the stored record.
	Add(ctx context.Context, entry models.NewEntry) (models.Entry, error)
	// Update replaces the record with the same id.
	Update(ctx context.Context, entry models.Entry) (models.Entry, error)
	// Delete removes the record. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

// Find loads every entry and returns the one with the given id
func Find(ctx context.Context, s Store, id string) (models.Entry, error) {
	entries, err := s.GetAll(ctx)
	if err != nil {
		return models.Entry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return models.Entry{}, ErrNotFound
}
