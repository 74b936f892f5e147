package core

import (
	"context"
	"fmt"
	"time"
)

// AgePurger deletes every capture older than a fixed retention window in a
// single store operation. Age is a global predicate, so no per-account
// iteration happens here; freed storage shows up in the next usage read.
type AgePurger struct {
	store RecordStore
	now   func() time.Time
}

func NewAgePurger(store RecordStore) (*AgePurger, error) {
	if store == nil {
		return nil, fmt.Errorf("core: record store is required")
	}
	return &AgePurger{
		store: store,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}, nil
}

// Purge removes all captures that arrived before now minus maxAge and
// returns the cutoff it used together with the number of rows deleted.
func (p *AgePurger) Purge(ctx context.Context, maxAge time.Duration) (int64, time.Time, error) {
	if p == nil || p.store == nil {
		return 0, time.Time{}, fmt.Errorf("core: age purger is not configured")
	}
	if maxAge <= 0 {
		return 0, time.Time{}, fmt.Errorf("core: max age must be positive")
	}
	cutoff := p.now().Add(-maxAge)
	deleted, err := p.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, cutoff, err
	}
	return deleted, cutoff, nil
}
