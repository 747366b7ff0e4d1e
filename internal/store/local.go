package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	models "io.winapps.depttimeline/internal/models/entry"
)

// LocalStorageKey is the well-known key holding the serialized entry array
const LocalStorageKey = "dept_timeline_data"

// LocalStore keeps every entry in one JSON array under a single KV key.
//
// Each mutation is a read-all, modify, write-all cycle. The mutex serializes
// the cycle within this process only; two processes sharing the same medium
// can still lose an update (last write wins).
type LocalStore struct {
	kv    KV
	key   string
	now   func() time.Time
	newID func() string

	mu sync.Mutex
}

// LocalOption customizes a LocalStore
type LocalOption func(*LocalStore)

// WithClock overrides the time source used for createdAt and the seed
func WithClock(now func() time.Time) LocalOption {
	return func(s *LocalStore) { s.now = now }
}

// WithIDGenerator overrides the id source used by Add
func WithIDGenerator(newID func() string) LocalOption {
	return func(s *LocalStore) { s.newID = newID }
}

// WithKey overrides LocalStorageKey
func WithKey(key string) LocalOption {
	return func(s *LocalStore) { s.key = key }
}

func NewLocalStore(kv KV, opts ...LocalOption) *LocalStore {
	s := &LocalStore{
		kv:    kv,
		key:   LocalStorageKey,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LocalStore) GetAll(ctx context.Context) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll(ctx)
}

func (s *LocalStore) Add(ctx context.Context, entry models.NewEntry) (models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := entry.WithIdentity(s.newID(), s.now())
	if err := stored.Prepare(); err != nil {
		return models.Entry{}, err
	}

	entries, err := s.readAll(ctx)
	if err != nil {
		return models.Entry{}, err
	}
	entries = append([]models.Entry{stored}, entries...)
	if err := s.writeAll(ctx, entries); err != nil {
		return models.Entry{}, err
	}
	return stored, nil
}

// Update overwrites the matching record in place. An unknown id leaves the
// store untouched and still returns the entry.
func (s *LocalStore) Update(ctx context.Context, entry models.Entry) (models.Entry, error) {
	if entry.ID == "" {
		return models.Entry{}, ErrMissingID
	}
	if err := entry.Prepare(); err != nil {
		return models.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readAll(ctx)
	if err != nil {
		return models.Entry{}, err
	}
	for i := range entries {
		if entries[i].ID == entry.ID {
			entries[i] = entry
			if err := s.writeAll(ctx, entries); err != nil {
				return models.Entry{}, err
			}
			break
		}
	}
	return entry, nil
}

func (s *LocalStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readAll(ctx)
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return s.writeAll(ctx, kept)
}

// readAll must be called with mu held. It seeds the medium on first use.
func (s *LocalStore) readAll(ctx context.Context) ([]models.Entry, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		seed := SeedEntries(s.now())
		if err := s.writeAll(ctx, seed); err != nil {
			return nil, fmt.Errorf("failed to persist seed data: %w", err)
		}
		for i := range seed {
			seed[i].Normalize()
		}
		return seed, nil
	}

	var entries []models.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.key, err)
	}
	for i := range entries {
		entries[i].Normalize()
	}
	return entries, nil
}

func (s *LocalStore) writeAll(ctx context.Context, entries []models.Entry) error {
	if entries == nil {
		entries = []models.Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}
	return s.kv.Set(ctx, s.key, data)
}
