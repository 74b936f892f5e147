package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// RecordStore is the persistence contract the engine deletes through. Any
// backend that can aggregate sizes per account, delete by age, and delete
// the oldest N captures for an account with freed-byte reporting satisfies
// it; the relational implementation lives in store/sql.
type RecordStore interface {
	// CountAndSum aggregates the capture count and total stored bytes for
	// one account across all of its endpoints.
	CountAndSum(ctx context.Context, accountID string) (RecordTally, error)

	// DeleteOlderThan removes every capture that arrived before cutoff,
	// across all accounts, and returns the number of rows removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldestN removes up to n of the account's oldest captures in
	// ascending arrival order and reports how many rows and bytes were
	// actually freed.
	DeleteOldestN(ctx context.Context, accountID string, n int64) (DeleteOutcome, error)
}

// UsageReader exposes fresh per-account usage aggregates. The retention job
// always reads through this directly; cached decorators are for the admin
// query path only.
type UsageReader interface {
	Snapshot(ctx context.Context) ([]AccountUsage, error)
	AccountUsage(ctx context.Context, accountID string) (AccountUsage, error)
}

// ReportMessage is the rendered run summary handed to the notification
// capability.
type ReportMessage struct {
	Subject   string
	Body      string
	Recipient string
}

// NotificationSender is consumed, not implemented, by this module. Send
// failures are logged and never fail a retention run.
type NotificationSender interface {
	Send(ctx context.Context, msg ReportMessage) error
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type StoreProvider interface {
	RecordStore() RecordStore
	UsageReader() UsageReader
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}

type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}
