// Package migrate copies a local timeline export into Firestore.
package migrate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"

	"io.winapps.depttimeline/internal/store"
)

// DefaultBatchSize is the Firestore limit on writes per batch
const DefaultBatchSize = 500

var ErrNoEntries = errors.New("unable to find entries array: expected an array or an object with key `" +
	store.LocalStorageKey + "` or `entries`")

// Record is one exported entry, kept as loose JSON so unknown fields survive
type Record map[string]interface{}

// Document is a record addressed to a Firestore document. An empty ID asks
// Firestore to allocate one.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// ParseExport accepts a bare array, an object wrapping the array under
// dept_timeline_data or entries, or a JSON string holding the array (the
// raw value saved to browser storage).
func ParseExport(data []byte) ([]Record, error) {
	payload, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse data JSON: %w", err)
	}

	switch v := payload.(type) {
	case []interface{}:
		return toRecords(v)
	case map[string]interface{}:
		for _, key := range []string{store.LocalStorageKey, "entries"} {
			if arr, ok := v[key].([]interface{}); ok {
				return toRecords(arr)
			}
		}
	case string:
		inner, err := decode([]byte(v))
		if err == nil {
			if arr, ok := inner.([]interface{}); ok {
				return toRecords(arr)
			}
		}
	}
	return nil, ErrNoEntries
}

func decode(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func toRecords(arr []interface{}) ([]Record, error) {
	out := make([]Record, 0, len(arr))
	for i, item := range arr {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("entry %d is not an object", i)
		}
		out = append(out, Record(m))
	}
	return out, nil
}

// Document converts the record for writing. The id field, when present,
// becomes the document key and is written through unchanged.
func (r Record) Document() Document {
	var id string
	switch v := r["id"].(type) {
	case string:
		id = v
	case json.Number:
		id = v.String()
	case nil:
	default:
		id = fmt.Sprint(v)
	}
	return Document{ID: id, Data: convertNumbers(map[string]interface{}(r)).(map[string]interface{})}
}

// convertNumbers turns json.Number into int64 or float64 so Firestore
// stores numbers rather than strings
func convertNumbers(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = convertNumbers(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = convertNumbers(val)
		}
		return out
	default:
		return v
	}
}

// BatchWriter commits one batch of documents atomically
type BatchWriter interface {
	WriteBatch(ctx context.Context, docs []Document) error
}

// Migrate writes records in batches of batchSize and reports progress after
// each committed batch. It stops at the first failed batch.
func Migrate(ctx context.Context, w BatchWriter, records []Record, batchSize int, progress func(done, total int)) (int, error) {
	if batchSize <= 0 || batchSize > DefaultBatchSize {
		batchSize = DefaultBatchSize
	}
	written := 0
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		docs := make([]Document, 0, end-start)
		for _, r := range records[start:end] {
			docs = append(docs, r.Document())
		}
		if err := w.WriteBatch(ctx, docs); err != nil {
			return written, fmt.Errorf("batch starting at entry %d: %w", start, err)
		}
		written += len(docs)
		if progress != nil {
			progress(written, len(records))
		}
	}
	return written, nil
}

// FirestoreWriter writes batches into a collection
type FirestoreWriter struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreWriter(client *firestore.Client, collection string) *FirestoreWriter {
	if collection == "" {
		collection = store.EntriesCollection
	}
	return &FirestoreWriter{client: client, collection: collection}
}

func (w *FirestoreWriter) WriteBatch(ctx context.Context, docs []Document) error {
	coll := w.client.Collection(w.collection)
	batch := w.client.Batch()
	for _, d := range docs {
		ref := coll.NewDoc()
		if d.ID != "" {
			ref = coll.Doc(d.ID)
		}
		batch.Set(ref, d.Data)
	}
	_, err := batch.Commit(ctx)
	return err
}
