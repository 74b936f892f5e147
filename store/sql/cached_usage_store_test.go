package sqlstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-retention/core"
)

type stubUsageReader struct {
	mu            sync.Mutex
	snapshot      []core.AccountUsage
	usage         map[string]core.AccountUsage
	snapshotCalls int
	usageCalls    int
	err           error
}

func (s *stubUsageReader) Snapshot(_ context.Context) ([]core.AccountUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshotCalls++
	if s.err != nil {
		return nil, s.err
	}
	return append([]core.AccountUsage(nil), s.snapshot...), nil
}

func (s *stubUsageReader) AccountUsage(_ context.Context, accountID string) (core.AccountUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usageCalls++
	if s.err != nil {
		return core.AccountUsage{}, s.err
	}
	return s.usage[accountID], nil
}

func TestCachedUsageStore_AccountUsage_MissFetchThenHit(t *testing.T) {
	cacheService := newTestUsageCacheService(t)
	base := &stubUsageReader{
		usage: map[string]core.AccountUsage{
			"acct_1": {AccountID: "acct_1", Identifier: "alpha", RecordCount: 3, TotalBytes: 3000},
		},
	}

	store, err := NewCachedUsageStore(base, cacheService)
	if err != nil {
		t.Fatalf("new cached usage store: %v", err)
	}

	if _, err := store.AccountUsage(context.Background(), "acct_1"); err != nil {
		t.Fatalf("first read: %v", err)
	}
	if base.usageCalls != 1 {
		t.Fatalf("expected first read to hit the base store once, got %d", base.usageCalls)
	}

	usage, err := store.AccountUsage(context.Background(), "acct_1")
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if base.usageCalls != 1 {
		t.Fatalf("expected second read to be a cache hit, base calls=%d", base.usageCalls)
	}
	if usage.TotalBytes != 3000 {
		t.Fatalf("unexpected cached usage: %+v", usage)
	}
}

func TestCachedUsageStore_InvalidateForcesRefetch(t *testing.T) {
	cacheService := newTestUsageCacheService(t)
	base := &stubUsageReader{
		snapshot: []core.AccountUsage{{AccountID: "acct_1", Identifier: "alpha", TotalBytes: 5000}},
		usage: map[string]core.AccountUsage{
			"acct_1": {AccountID: "acct_1", Identifier: "alpha", TotalBytes: 5000},
		},
	}

	store, err := NewCachedUsageStore(base, cacheService)
	if err != nil {
		t.Fatalf("new cached usage store: %v", err)
	}

	if _, err := store.AccountUsage(context.Background(), "acct_1"); err != nil {
		t.Fatalf("prime account cache: %v", err)
	}
	if _, err := store.Snapshot(context.Background()); err != nil {
		t.Fatalf("prime snapshot cache: %v", err)
	}

	base.mu.Lock()
	base.usage["acct_1"] = core.AccountUsage{AccountID: "acct_1", Identifier: "alpha", TotalBytes: 1000}
	base.snapshot = []core.AccountUsage{{AccountID: "acct_1", Identifier: "alpha", TotalBytes: 1000}}
	base.mu.Unlock()

	if err := store.Invalidate(context.Background(), "acct_1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	usage, err := store.AccountUsage(context.Background(), "acct_1")
	if err != nil {
		t.Fatalf("read after invalidation: %v", err)
	}
	if usage.TotalBytes != 1000 {
		t.Fatalf("expected refreshed usage after invalidation, got %+v", usage)
	}
	snapshot, err := store.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot after invalidation: %v", err)
	}
	if len(snapshot) != 1 || snapshot[0].TotalBytes != 1000 {
		t.Fatalf("expected refreshed snapshot after invalidation, got %+v", snapshot)
	}
}

func TestCachedUsageStore_PropagatesBaseErrors(t *testing.T) {
	cacheService := newTestUsageCacheService(t)
	baseErr := errors.New("connection refused")
	base := &stubUsageReader{err: baseErr}

	store, err := NewCachedUsageStore(base, cacheService)
	if err != nil {
		t.Fatalf("new cached usage store: %v", err)
	}

	if _, err := store.Snapshot(context.Background()); !errors.Is(err, baseErr) {
		t.Fatalf("expected base error propagation, got %v", err)
	}
}

func TestAccountUsageCacheKey_Contract(t *testing.T) {
	key, err := AccountUsageCacheKey("acct/alpha team")
	if err != nil {
		t.Fatalf("build cache key: %v", err)
	}

	const expected = "go-retention::account_usage::v1::acct%2Falpha%20team"
	if key != expected {
		t.Fatalf("unexpected cache key contract: got %q want %q", key, expected)
	}

	if _, err := AccountUsageCacheKey("  "); err == nil {
		t.Fatalf("expected empty account id to fail")
	}
}

func newTestUsageCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}
