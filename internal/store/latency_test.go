package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLatency_ZeroReturnsInner(t *testing.T) {
	inner := newTestLocalStore(NewMemoryKV())
	assert.Same(t, inner, WithLatency(inner, 0))
}

func TestWithLatency_Delays(t *testing.T) {
	s := WithLatency(newTestLocalStore(NewMemoryKV()), 20*time.Millisecond)
	start := time.Now()
	_, err := s.GetAll(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWithLatency_HonorsCancellation(t *testing.T) {
	kv := NewMemoryKV()
	s := WithLatency(newTestLocalStore(kv), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Add(ctx, sampleNewEntry())
	assert.ErrorIs(t, err, context.Canceled)

	_, ok, _ := kv.Get(context.Background(), LocalStorageKey)
	assert.False(t, ok, "cancelled call must not touch the medium")
}
