package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-retention/core"
	"github.com/uptrace/bun"
)

// UsageStore aggregates storage usage per account straight from the tables.
// Every read recomputes the aggregate; no counters are maintained alongside
// writes, so the numbers are always consistent with the current rows.
type UsageStore struct {
	db *bun.DB
}

func NewUsageStore(db *bun.DB) (*UsageStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &UsageStore{db: db}, nil
}

type usageRow struct {
	AccountID     string `bun:"account_id"`
	Identifier    string `bun:"identifier"`
	EndpointCount int64  `bun:"endpoint_count"`
	RecordCount   int64  `bun:"record_count"`
	TotalBytes    int64  `bun:"total_bytes"`
}

const usageSelect = `
SELECT wa.id AS account_id,
       wa.identifier AS identifier,
       COUNT(DISTINCT we.id) AS endpoint_count,
       COUNT(wc.id) AS record_count,
       COALESCE(SUM(wc.size_bytes), 0) AS total_bytes
FROM webhook_accounts AS wa
LEFT JOIN webhook_endpoints AS we ON we.account_id = wa.id
LEFT JOIN webhook_captures AS wc ON wc.endpoint_id = we.id`

func (s *UsageStore) Snapshot(ctx context.Context) ([]core.AccountUsage, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: usage store is not configured")
	}
	var rows []usageRow
	err := s.db.NewRaw(
		usageSelect + `
GROUP BY wa.id, wa.identifier
ORDER BY wa.identifier ASC, wa.id ASC`,
	).Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	out := make([]core.AccountUsage, 0, len(rows))
	for _, row := range rows {
		out = append(out, usageRowToDomain(row))
	}
	return out, nil
}

func (s *UsageStore) AccountUsage(ctx context.Context, accountID string) (core.AccountUsage, error) {
	if s == nil || s.db == nil {
		return core.AccountUsage{}, fmt.Errorf("sqlstore: usage store is not configured")
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return core.AccountUsage{}, fmt.Errorf("sqlstore: account id is required")
	}
	var rows []usageRow
	err := s.db.NewRaw(
		usageSelect+`
WHERE wa.id = ?
GROUP BY wa.id, wa.identifier`,
		accountID,
	).Scan(ctx, &rows)
	if err != nil {
		return core.AccountUsage{}, err
	}
	if len(rows) == 0 {
		return core.AccountUsage{}, fmt.Errorf("sqlstore: account %s not found", accountID)
	}
	return usageRowToDomain(rows[0]), nil
}

func usageRowToDomain(row usageRow) core.AccountUsage {
	return core.AccountUsage{
		AccountID:     row.AccountID,
		Identifier:    row.Identifier,
		EndpointCount: row.EndpointCount,
		RecordCount:   row.RecordCount,
		TotalBytes:    row.TotalBytes,
	}
}
