package query

import (
	"fmt"
	"strings"
)

const (
	TypeGetAccountUsage  = "retention.query.account_usage.get"
	TypeListAccountUsage = "retention.query.account_usage.list"
)

// GetAccountUsageMessage fetches the fresh usage aggregate for one account.
type GetAccountUsageMessage struct {
	AccountID string
}

func (GetAccountUsageMessage) Type() string { return TypeGetAccountUsage }

func (m GetAccountUsageMessage) Validate() error {
	if strings.TrimSpace(m.AccountID) == "" {
		return fmt.Errorf("query: account id is required")
	}
	return nil
}

// ListAccountUsageMessage fetches the usage snapshot for every account,
// ordered by identifier.
type ListAccountUsageMessage struct{}

func (ListAccountUsageMessage) Type() string { return TypeListAccountUsage }

func (ListAccountUsageMessage) Validate() error { return nil }
