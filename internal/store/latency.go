package store

import (
	"context"
	"time"

	models "io.winapps.depttimeline/internal/models/entry"
)

// WithLatency delays every operation of next by d so loading states behave
// the same whichever backend is configured. A non-positive d returns next.
func WithLatency(next Store, d time.Duration) Store {
	if d <= 0 {
		return next
	}
	return &latencyStore{next: next, delay: d}
}

type latencyStore struct {
	next  Store
	delay time.Duration
}

func (s *latencyStore) GetAll(ctx context.Context) ([]models.Entry, error) {
	if err := Sleep(ctx, s.delay); err != nil {
		return nil, err
	}
	return s.next.GetAll(ctx)
}

func (s *latencyStore) Add(ctx context.Context, entry models.NewEntry) (models.Entry, error) {
	if err := Sleep(ctx, s.delay); err != nil {
		return models.Entry{}, err
	}
	return s.next.Add(ctx, entry)
}

func (s *latencyStore) Update(ctx context.Context, entry models.Entry) (models.Entry, error) {
	if err := Sleep(ctx, s.delay); err != nil {
		return models.Entry{}, err
	}
	return s.next.Update(ctx, entry)
}

func (s *latencyStore) Delete(ctx context.Context, id string) error {
	if err := Sleep(ctx, s.delay); err != nil {
		return err
	}
	return s.next.Delete(ctx, id)
}

// Sleep waits for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
