package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-retention/core"
)

var (
	_ gocmd.Querier[GetAccountUsageMessage, core.AccountUsage]    = (*GetAccountUsageQuery)(nil)
	_ gocmd.Querier[ListAccountUsageMessage, []core.AccountUsage] = (*ListAccountUsageQuery)(nil)
)
