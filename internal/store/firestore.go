package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	models "io.winapps.depttimeline/internal/models/entry"
)

// EntriesCollection is the Firestore collection holding timeline entries
const EntriesCollection = "entries"

// FirestoreStore is the remote document-database backend
type FirestoreStore struct {
	client     *firestore.Client
	collection string
	now        func() time.Time
}

// NewFirestoreStore creates a store over the entries collection
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{
		client:     client,
		collection: EntriesCollection,
		now:        time.Now,
	}
}

// GetAll returns entries newest first by createdAt
func (s *FirestoreStore) GetAll(ctx context.Context) ([]models.Entry, error) {
	docs, err := s.client.Collection(s.collection).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	entries := make([]models.Entry, 0, len(docs))
	for _, doc := range docs {
		var e models.Entry
		if err := doc.DataTo(&e); err != nil {
			return nil, fmt.Errorf("failed to decode entry %s: %w", doc.Ref.ID, err)
		}
		e.ID = doc.Ref.ID
		e.Normalize()
		entries = append(entries, e)
	}
	return entries, nil
}

// Add inserts one document and lets Firestore assign its id
func (s *FirestoreStore) Add(ctx context.Context, entry models.NewEntry) (models.Entry, error) {
	stored := entry.WithIdentity("", s.now())
	if err := stored.Prepare(); err != nil {
		return models.Entry{}, err
	}
	ref, _, err := s.client.Collection(s.collection).Add(ctx, toDocument(stored))
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to add entry: %w", err)
	}
	stored.ID = ref.ID
	return stored, nil
}

// Update merge-writes by id; fields absent from the document are preserved
func (s *FirestoreStore) Update(ctx context.Context, entry models.Entry) (models.Entry, error) {
	if entry.ID == "" {
		return models.Entry{}, ErrMissingID
	}
	if err := entry.Prepare(); err != nil {
		return models.Entry{}, err
	}
	_, err := s.client.Collection(s.collection).Doc(entry.ID).Set(ctx, toDocument(entry), firestore.MergeAll)
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to update entry %s: %w", entry.ID, err)
	}
	return entry, nil
}

// Delete removes the document; Firestore treats a missing document as success
func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	if _, err := s.client.Collection(s.collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", id, err)
	}
	return nil
}

// toDocument builds the map form required by MergeAll. mediaUrl is always
// written, even empty, so a merge cannot resurrect a removed attachment.
func toDocument(e models.Entry) map[string]interface{} {
	urls := e.MediaURLs
	if urls == nil {
		urls = []string{}
	}
	return map[string]interface{}{
		"title":       e.Title,
		"description": e.Description,
		"category":    string(e.Category),
		"date":        e.Date,
		"year":        e.Year,
		"mediaUrl":    e.MediaURL,
		"mediaUrls":   urls,
		"featured":    e.Featured,
		"createdAt":   e.CreatedAt,
	}
}
