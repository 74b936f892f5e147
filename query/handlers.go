package query

import (
	"context"

	"github.com/goliatone/go-retention/core"
)

// UsageReader is the read surface the query layer drives. *core.Service and
// the store/sql usage stores satisfy it.
type UsageReader interface {
	Snapshot(ctx context.Context) ([]core.AccountUsage, error)
	AccountUsage(ctx context.Context, accountID string) (core.AccountUsage, error)
}

type GetAccountUsageQuery struct {
	reader UsageReader
}

func NewGetAccountUsageQuery(reader UsageReader) *GetAccountUsageQuery {
	return &GetAccountUsageQuery{reader: reader}
}

func (q *GetAccountUsageQuery) Query(ctx context.Context, msg GetAccountUsageMessage) (core.AccountUsage, error) {
	if q == nil || q.reader == nil {
		return core.AccountUsage{}, queryDependencyError("query: usage reader is required")
	}
	return q.reader.AccountUsage(ctx, msg.AccountID)
}

type ListAccountUsageQuery struct {
	reader UsageReader
}

func NewListAccountUsageQuery(reader UsageReader) *ListAccountUsageQuery {
	return &ListAccountUsageQuery{reader: reader}
}

func (q *ListAccountUsageQuery) Query(ctx context.Context, _ ListAccountUsageMessage) ([]core.AccountUsage, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: usage reader is required")
	}
	return q.reader.Snapshot(ctx)
}
