package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BlobPathPrefix is the URL path the blob registry serves from
const BlobPathPrefix = "/blobs/"

// Blob is one attachment held by a MemoryUploader
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// MemoryUploader keeps attachments in process memory. The URLs it returns
// are only valid until the process restarts or the blob is purged; they
// are not meant to be shared.
type MemoryUploader struct {
	mu    sync.RWMutex
	blobs map[string]Blob
	now   func() time.Time
}

func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{
		blobs: make(map[string]Blob),
		now:   time.Now,
	}
}

func (u *MemoryUploader) Upload(ctx context.Context, f File) (string, error) {
	id := uuid.New().String()
	u.mu.Lock()
	u.blobs[id] = Blob{
		Name:        f.Name,
		ContentType: f.ContentType,
		Data:        append([]byte(nil), f.Data...),
		CreatedAt:   u.now(),
	}
	u.mu.Unlock()
	return BlobPathPrefix + id, nil
}

func (u *MemoryUploader) Ephemeral() bool { return true }

// Get returns the blob stored under id
func (u *MemoryUploader) Get(id string) (Blob, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	b, ok := u.blobs[id]
	return b, ok
}

// Open resolves a /blobs/<id> reference, ignoring any fragment marker
func (u *MemoryUploader) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if !strings.HasPrefix(ref, BlobPathPrefix) {
		return nil, fmt.Errorf("%s: %w", ref, os.ErrNotExist)
	}
	id := strings.TrimPrefix(ref, BlobPathPrefix)
	if i := strings.IndexAny(id, "#?"); i >= 0 {
		id = id[:i]
	}
	b, ok := u.Get(id)
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", id, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(b.Data)), nil
}

// Purge drops blobs older than maxAge and returns how many were removed
func (u *MemoryUploader) Purge(maxAge time.Duration) int {
	cutoff := u.now().Add(-maxAge)
	u.mu.Lock()
	defer u.mu.Unlock()
	removed := 0
	for id, b := range u.blobs {
		if b.CreatedAt.Before(cutoff) {
			delete(u.blobs, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of blobs held
func (u *MemoryUploader) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.blobs)
}
