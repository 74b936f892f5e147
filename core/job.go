package core

import (
	"context"
	"fmt"
)

// Run executes one retention pass: snapshot usage, purge by age, enforce
// per-account quotas oldest-first, then dispatch the report. Accounts are
// processed sequentially because each one needs several dependent store
// round-trips against a freshly measured state.
//
// Infrastructure failures (snapshot or purge) abort the run; a failure on
// one account is logged and skipped so the remaining accounts still get
// processed. Reruns are idempotent: with an unchanged policy, a second run
// only deletes captures that still violate it. The engine assumes at most
// one concurrent run; callers whose scheduler can fire overlapping runs
// must add their own mutual exclusion.
func (s *Service) Run(ctx context.Context) (RunResult, error) {
	if s == nil || s.recordStore == nil || s.usageReader == nil {
		return RunResult{}, fmt.Errorf("core: retention service is not configured")
	}

	startedAt := s.now()
	result := RunResult{StartedAt: startedAt}

	snapshot, err := s.usageReader.Snapshot(ctx)
	if err != nil {
		s.observeOperation(ctx, startedAt, "run", err, map[string]any{"phase": "snapshot"})
		return result, s.mapError(err)
	}
	result.Accounts = snapshot

	purger := &AgePurger{store: s.recordStore, now: s.now}
	purged, cutoff, err := purger.Purge(ctx, s.config.Policy.MaxAge)
	if err != nil {
		s.observeOperation(ctx, startedAt, "run", err, map[string]any{"phase": "age_purge"})
		return result, s.mapError(err)
	}
	result.Cutoff = cutoff
	result.RecordsPurgedByAge = purged

	enforcer, err := NewQuotaEnforcer(s.recordStore, s.config.Policy, s.config.Enforcer)
	if err != nil {
		return result, s.mapError(err)
	}

	for _, usage := range snapshot {
		enforcement, enforceErr := enforcer.EnforceAccount(ctx, usage.AccountID)
		enforcement.AccountID = usage.AccountID
		enforcement.Identifier = usage.Identifier
		if enforceErr != nil {
			// Partial-failure isolation: log and move to the next account.
			enforcement.Skipped = true
			enforcement.Error = enforceErr.Error()
			s.logError(ctx, "quota enforcement skipped account", map[string]any{
				"event_type": "quota_enforcement_skipped",
				"account_id": usage.AccountID,
				"error":      enforceErr.Error(),
				"error_code": RetentionErrorAccountSkipped,
			})
			result.Enforcements = append(result.Enforcements, enforcement)
			continue
		}
		if enforcement.CapReached {
			s.logWarn(ctx, "eviction cap reached, account left over budget until next run", map[string]any{
				"event_type": "eviction_cap_reached",
				"account_id": usage.AccountID,
				"evicted":    enforcement.Evicted,
				"error_code": RetentionErrorCapReached,
			})
		}
		result.RecordsEvictedByQuota += enforcement.Evicted
		result.Enforcements = append(result.Enforcements, enforcement)
	}

	result.FinishedAt = s.now()

	s.dispatchReport(ctx, result)

	s.observeOperation(ctx, startedAt, "run", nil, map[string]any{
		"accounts":         len(snapshot),
		"purged_by_age":    result.RecordsPurgedByAge,
		"evicted_by_quota": result.RecordsEvictedByQuota,
		"accounts_skipped": result.AccountsSkipped(),
	})
	return result, nil
}

// Snapshot returns the fresh per-account usage aggregates without deleting
// anything. The admin panel uses this for its storage view.
func (s *Service) Snapshot(ctx context.Context) ([]AccountUsage, error) {
	if s == nil || s.usageReader == nil {
		return nil, fmt.Errorf("core: retention service is not configured")
	}
	snapshot, err := s.usageReader.Snapshot(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return snapshot, nil
}

// AccountUsage returns the fresh usage aggregate for a single account.
func (s *Service) AccountUsage(ctx context.Context, accountID string) (AccountUsage, error) {
	if s == nil || s.usageReader == nil {
		return AccountUsage{}, fmt.Errorf("core: retention service is not configured")
	}
	if accountID == "" {
		return AccountUsage{}, s.mapError(fmt.Errorf("core: account id is required"))
	}
	usage, err := s.usageReader.AccountUsage(ctx, accountID)
	if err != nil {
		return AccountUsage{}, s.mapError(err)
	}
	return usage, nil
}
