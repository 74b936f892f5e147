package sqlstore

import "github.com/goliatone/go-retention/core"

var (
	_ core.RecordStore            = (*CaptureStore)(nil)
	_ core.UsageReader            = (*UsageStore)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
