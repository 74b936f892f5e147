package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type accountRecord struct {
	bun.BaseModel `bun:"table:webhook_accounts,alias:wa"`

	ID         string    `bun:"id,pk"`
	Identifier string    `bun:"identifier,notnull"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type endpointRecord struct {
	bun.BaseModel `bun:"table:webhook_endpoints,alias:we"`

	ID        string    `bun:"id,pk"`
	AccountID string    `bun:"account_id,notnull"`
	Label     string    `bun:"label"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type captureRecord struct {
	bun.BaseModel `bun:"table:webhook_captures,alias:wc"`

	ID         string    `bun:"id,pk"`
	EndpointID string    `bun:"endpoint_id,notnull"`
	Method     string    `bun:"method,notnull"`
	Headers    string    `bun:"headers"`
	Body       []byte    `bun:"body"`
	SizeBytes  int64     `bun:"size_bytes,notnull"`
	ReceivedAt time.Time `bun:"received_at,nullzero,notnull,default:current_timestamp"`
}
