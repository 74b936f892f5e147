package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-retention/core"
)

const accountUsageCacheKeyPrefix = "go-retention::account_usage::v1"

// CachedUsageStore decorates a UsageReader for the admin panel's read path.
// The retention job must not read through it; the engine requires fresh
// measurements between deletion passes.
type CachedUsageStore struct {
	base  core.UsageReader
	cache repositorycache.CacheService
}

func NewCachedUsageStore(base core.UsageReader, cacheService repositorycache.CacheService) (*CachedUsageStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base usage store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: usage cache service is required")
	}
	return &CachedUsageStore{base: base, cache: cacheService}, nil
}

// AccountUsageCacheKey returns the deterministic cache key for one account's
// usage aggregate: go-retention::account_usage::v1::<account_id> with the id
// URL-path escaped.
func AccountUsageCacheKey(accountID string) (string, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return "", fmt.Errorf("sqlstore: account id is required")
	}
	return accountUsageCacheKeyPrefix + "::" + url.PathEscape(accountID), nil
}

func snapshotCacheKey() string {
	return accountUsageCacheKeyPrefix + "::all"
}

func (s *CachedUsageStore) Snapshot(ctx context.Context) ([]core.AccountUsage, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached usage store is not configured")
	}
	snapshot, err := repositorycache.GetOrFetch(ctx, s.cache, snapshotCacheKey(), func(ctx context.Context) ([]core.AccountUsage, error) {
		return s.base.Snapshot(ctx)
	})
	if err != nil {
		return nil, err
	}
	return append([]core.AccountUsage(nil), snapshot...), nil
}

func (s *CachedUsageStore) AccountUsage(ctx context.Context, accountID string) (core.AccountUsage, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.AccountUsage{}, fmt.Errorf("sqlstore: cached usage store is not configured")
	}
	cacheKey, err := AccountUsageCacheKey(accountID)
	if err != nil {
		return core.AccountUsage{}, err
	}
	return repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.AccountUsage, error) {
		return s.base.AccountUsage(ctx, accountID)
	})
}

// Invalidate drops the cached aggregates for one account and the cached
// snapshot. Callers invoke it after a retention run touches the account.
func (s *CachedUsageStore) Invalidate(ctx context.Context, accountID string) error {
	if s == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached usage store is not configured")
	}
	cacheKey, err := AccountUsageCacheKey(accountID)
	if err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		return err
	}
	return s.cache.Delete(ctx, snapshotCacheKey())
}

var _ core.UsageReader = (*CachedUsageStore)(nil)
