package core

import (
	"context"
	"fmt"
)

// QuotaEnforcer brings one account back under its byte budget by deleting
// its captures oldest-first. It works in two phases: a single bulk deletion
// sized from the account's mean capture size, then small exact batches that
// correct for size skew. The bulk estimate converges in one round-trip when
// sizes are uniform; the fine-tune loop handles everything else without
// re-scanning the account.
type QuotaEnforcer struct {
	store  RecordStore
	policy PolicyConfig
	config EnforcerConfig
}

func NewQuotaEnforcer(store RecordStore, policy PolicyConfig, config EnforcerConfig) (*QuotaEnforcer, error) {
	if store == nil {
		return nil, fmt.Errorf("core: record store is required")
	}
	if policy.MaxAccountBytes <= 0 {
		return nil, fmt.Errorf("core: max account bytes must be positive")
	}
	if config.FineTuneBatchSize <= 0 {
		config.FineTuneBatchSize = DefaultFineTuneBatchSize
	}
	if config.MaxEvictionsPerAccount <= 0 {
		config.MaxEvictionsPerAccount = DefaultMaxEvictionsPerAccount
	}
	return &QuotaEnforcer{
		store:  store,
		policy: policy,
		config: config,
	}, nil
}

// EnforceAccount measures the account and evicts oldest-first until usage
// is at or below the budget, the account is exhausted, or the per-account
// eviction ceiling is hit. The returned enforcement carries the freshly
// measured tally, the eviction totals, and whether the ceiling stopped the
// loop early.
//
// The measurement is not transactionally consistent with the deletions;
// drift between the two is expected and corrected by the fine-tune batches.
func (e *QuotaEnforcer) EnforceAccount(ctx context.Context, accountID string) (AccountEnforcement, error) {
	if e == nil || e.store == nil {
		return AccountEnforcement{}, fmt.Errorf("core: quota enforcer is not configured")
	}
	if accountID == "" {
		return AccountEnforcement{}, fmt.Errorf("core: account id is required")
	}

	enforcement := AccountEnforcement{AccountID: accountID}

	tally, err := e.store.CountAndSum(ctx, accountID)
	if err != nil {
		return enforcement, err
	}
	enforcement.Measured = tally

	if tally.TotalBytes <= e.policy.MaxAccountBytes || tally.Count == 0 {
		return enforcement, nil
	}

	avgRecordSize := tally.TotalBytes / tally.Count
	if avgRecordSize <= 0 {
		avgRecordSize = 1
	}
	excessBytes := tally.TotalBytes - e.policy.MaxAccountBytes
	approxToDelete := (excessBytes + avgRecordSize - 1) / avgRecordSize
	if approxToDelete > e.config.MaxEvictionsPerAccount {
		approxToDelete = e.config.MaxEvictionsPerAccount
	}

	outcome, err := e.store.DeleteOldestN(ctx, accountID, approxToDelete)
	if err != nil {
		return enforcement, err
	}
	remainingBytes := tally.TotalBytes - outcome.FreedBytes
	enforcement.Evicted = outcome.Deleted
	enforcement.FreedBytes = outcome.FreedBytes

	for remainingBytes > e.policy.MaxAccountBytes {
		if enforcement.Evicted >= e.config.MaxEvictionsPerAccount {
			enforcement.CapReached = true
			break
		}
		batch := e.config.FineTuneBatchSize
		if headroom := e.config.MaxEvictionsPerAccount - enforcement.Evicted; batch > headroom {
			batch = headroom
		}
		outcome, err = e.store.DeleteOldestN(ctx, accountID, batch)
		if err != nil {
			return enforcement, err
		}
		if outcome.Deleted == 0 {
			// Account exhausted; nothing left to shrink.
			break
		}
		remainingBytes -= outcome.FreedBytes
		enforcement.Evicted += outcome.Deleted
		enforcement.FreedBytes += outcome.FreedBytes
	}

	return enforcement, nil
}
