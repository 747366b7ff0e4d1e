package store

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a scratch database when TIMELINE_TEST_DATABASE_URL is set.
// The entries table must already exist (db.InitPostgres creates it).
func TestPostgresStore_RoundTrip(t *testing.T) {
	url := os.Getenv("TIMELINE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TIMELINE_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	s := NewPostgresStore(pool)
	added, err := s.Add(ctx, sampleNewEntry())
	require.NoError(t, err)

	added.Title = "Renamed"
	_, err = s.Update(ctx, added)
	require.NoError(t, err)

	got, err := Find(ctx, s, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, added.MediaURLs, got.MediaURLs)

	require.NoError(t, s.Delete(ctx, added.ID))
	require.NoError(t, s.Delete(ctx, added.ID))
	_, err = Find(ctx, s, added.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
