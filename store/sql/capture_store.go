package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-retention/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CaptureStore persists webhook captures and implements the deletion
// primitives the retention engine runs on. Deletions always order by
// received_at with the id as tie-breaker so reruns are deterministic.
type CaptureStore struct {
	db        *bun.DB
	accounts  repository.Repository[*accountRecord]
	endpoints repository.Repository[*endpointRecord]
	captures  repository.Repository[*captureRecord]
}

func NewCaptureStore(db *bun.DB) (*CaptureStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	accounts := repository.NewRepository[*accountRecord](db, accountHandlers())
	if validator, ok := accounts.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid account repository wiring: %w", err)
		}
	}
	endpoints := repository.NewRepository[*endpointRecord](db, endpointHandlers())
	if validator, ok := endpoints.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid endpoint repository wiring: %w", err)
		}
	}
	captures := repository.NewRepository[*captureRecord](db, captureHandlers())
	if validator, ok := captures.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid capture repository wiring: %w", err)
		}
	}
	return &CaptureStore{
		db:        db,
		accounts:  accounts,
		endpoints: endpoints,
		captures:  captures,
	}, nil
}

func (s *CaptureStore) CountAndSum(ctx context.Context, accountID string) (core.RecordTally, error) {
	if s == nil || s.db == nil {
		return core.RecordTally{}, fmt.Errorf("sqlstore: capture store is not configured")
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return core.RecordTally{}, fmt.Errorf("sqlstore: account id is required")
	}

	var count, totalBytes int64
	err := s.db.NewSelect().
		Model((*captureRecord)(nil)).
		Join("JOIN webhook_endpoints AS we ON we.id = wc.endpoint_id").
		Where("we.account_id = ?", accountID).
		ColumnExpr("COUNT(wc.id)").
		ColumnExpr("COALESCE(SUM(wc.size_bytes), 0)").
		Scan(ctx, &count, &totalBytes)
	if err != nil {
		return core.RecordTally{}, err
	}
	return core.RecordTally{Count: count, TotalBytes: totalBytes}, nil
}

func (s *CaptureStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: capture store is not configured")
	}
	res, err := s.db.NewDelete().
		Model((*captureRecord)(nil)).
		Where("received_at < ?", cutoff.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

func (s *CaptureStore) DeleteOldestN(ctx context.Context, accountID string, n int64) (core.DeleteOutcome, error) {
	if s == nil || s.db == nil {
		return core.DeleteOutcome{}, fmt.Errorf("sqlstore: capture store is not configured")
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return core.DeleteOutcome{}, fmt.Errorf("sqlstore: account id is required")
	}
	if n <= 0 {
		return core.DeleteOutcome{}, nil
	}

	// RETURNING size_bytes gives the freed byte count without a second
	// round-trip. Supported on Postgres and on SQLite 3.35+.
	var sizes []int64
	err := s.db.NewRaw(
		`DELETE FROM webhook_captures WHERE id IN (
			SELECT wc.id FROM webhook_captures AS wc
			JOIN webhook_endpoints AS we ON we.id = wc.endpoint_id
			WHERE we.account_id = ?
			ORDER BY wc.received_at ASC, wc.id ASC
			LIMIT ?
		) RETURNING size_bytes`,
		accountID, n,
	).Scan(ctx, &sizes)
	if err != nil {
		return core.DeleteOutcome{}, err
	}

	outcome := core.DeleteOutcome{Deleted: int64(len(sizes))}
	for _, size := range sizes {
		outcome.FreedBytes += size
	}
	return outcome, nil
}

// CreateAccount inserts an account row, minting an id when none is given.
func (s *CaptureStore) CreateAccount(ctx context.Context, id, identifier string) (string, error) {
	if s == nil || s.accounts == nil {
		return "", fmt.Errorf("sqlstore: capture store is not configured")
	}
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", fmt.Errorf("sqlstore: account identifier is required")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	_, err := s.accounts.Create(ctx, &accountRecord{
		ID:         id,
		Identifier: identifier,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// CreateEndpoint inserts an endpoint row under an account.
func (s *CaptureStore) CreateEndpoint(ctx context.Context, id, accountID, label string) (string, error) {
	if s == nil || s.endpoints == nil {
		return "", fmt.Errorf("sqlstore: capture store is not configured")
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return "", fmt.Errorf("sqlstore: account id is required")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	_, err := s.endpoints.Create(ctx, &endpointRecord{
		ID:        id,
		AccountID: accountID,
		Label:     strings.TrimSpace(label),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// CaptureInput carries an inbound webhook capture. SizeBytes defaults to
// the body length and ReceivedAt to the current time.
type CaptureInput struct {
	ID         string
	EndpointID string
	Method     string
	Headers    string
	Body       []byte
	SizeBytes  int64
	ReceivedAt time.Time
}

func (s *CaptureStore) CreateCapture(ctx context.Context, input CaptureInput) (string, error) {
	if s == nil || s.captures == nil {
		return "", fmt.Errorf("sqlstore: capture store is not configured")
	}
	endpointID := strings.TrimSpace(input.EndpointID)
	if endpointID == "" {
		return "", fmt.Errorf("sqlstore: endpoint id is required")
	}
	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.NewString()
	}
	method := strings.TrimSpace(input.Method)
	if method == "" {
		method = "POST"
	}
	sizeBytes := input.SizeBytes
	if sizeBytes <= 0 {
		sizeBytes = int64(len(input.Body))
	}
	receivedAt := input.ReceivedAt.UTC()
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	_, err := s.captures.Create(ctx, &captureRecord{
		ID:         id,
		EndpointID: endpointID,
		Method:     method,
		Headers:    input.Headers,
		Body:       input.Body,
		SizeBytes:  sizeBytes,
		ReceivedAt: receivedAt,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
