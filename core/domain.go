package core

import "time"

// AccountUsage is the per-account storage snapshot computed from live data
// on every read. Nothing here is persisted.
type AccountUsage struct {
	AccountID     string
	Identifier    string
	EndpointCount int64
	RecordCount   int64
	TotalBytes    int64
}

// RecordTally is the count/sum aggregate over one account's captures.
type RecordTally struct {
	Count      int64
	TotalBytes int64
}

// DeleteOutcome reports what an ordered batch deletion actually removed.
type DeleteOutcome struct {
	Deleted    int64
	FreedBytes int64
}

// AccountEnforcement is the outcome of quota enforcement for one account.
type AccountEnforcement struct {
	AccountID  string
	Identifier string
	Measured   RecordTally
	Evicted    int64
	FreedBytes int64
	// CapReached is set when the per-account eviction ceiling stopped the
	// fine-tune loop before the account was back under budget.
	CapReached bool
	// Skipped records a per-account failure that did not abort the run.
	Skipped bool
	Error   string
}

// RunResult is produced once per retention run and is not persisted beyond
// the dispatched report.
type RunResult struct {
	StartedAt             time.Time
	FinishedAt            time.Time
	Cutoff                time.Time
	RecordsPurgedByAge    int64
	RecordsEvictedByQuota int64
	// Accounts is the pre-run usage snapshot that seeds the report.
	Accounts     []AccountUsage
	Enforcements []AccountEnforcement
}

// AccountsSkipped counts accounts whose measurement or eviction failed.
func (r RunResult) AccountsSkipped() int {
	skipped := 0
	for _, enforcement := range r.Enforcements {
		if enforcement.Skipped {
			skipped++
		}
	}
	return skipped
}

// TotalBytes sums the snapshot usage across all accounts.
func (r RunResult) TotalBytes() int64 {
	var total int64
	for _, usage := range r.Accounts {
		total += usage.TotalBytes
	}
	return total
}

// TotalRecords sums the snapshot record counts across all accounts.
func (r RunResult) TotalRecords() int64 {
	var total int64
	for _, usage := range r.Accounts {
		total += usage.RecordCount
	}
	return total
}

// TotalEndpoints sums the snapshot endpoint counts across all accounts.
func (r RunResult) TotalEndpoints() int64 {
	var total int64
	for _, usage := range r.Accounts {
		total += usage.EndpointCount
	}
	return total
}
