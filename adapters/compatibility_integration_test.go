package adapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-command"
	job "github.com/goliatone/go-job"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-retention/adapters/gocommand"
	"github.com/goliatone/go-retention/adapters/gojob"
	"github.com/goliatone/go-retention/adapters/gologger"
	retentioncommand "github.com/goliatone/go-retention/command"
	"github.com/goliatone/go-retention/core"
)

func TestRuntimeCompatibility_GoJobGoCommandGoLogger(t *testing.T) {
	ctx := context.Background()

	logger := &compatLogger{}
	provider := &compatProvider{logger: logger}

	_, _, jobProvider, jobLogger := gologger.ResolveForJob("retention", provider, nil)
	if jobProvider == nil || jobLogger == nil {
		t.Fatalf("expected go-job logger bridges")
	}

	enqueueProbe := &compatEnqueuer{}
	enqueueAdapter := gojob.NewEnqueuerAdapter(enqueueProbe)
	window := time.Date(2026, 8, 26, 2, 0, 0, 0, time.UTC)
	if err := enqueueAdapter.Enqueue(ctx, gojob.RunMessage(window, "scheduled")); err != nil {
		t.Fatalf("enqueue via gojob adapter: %v", err)
	}
	if enqueueProbe.last == nil || enqueueProbe.last.JobID != gojob.JobIDRetentionRun {
		t.Fatalf("expected go-job message mapping through enqueuer adapter")
	}
	if enqueueProbe.last.IdempotencyKey != "retention.run:2026-08-26" {
		t.Fatalf("expected day-scoped idempotency key, got %q", enqueueProbe.last.IdempotencyKey)
	}

	queueRegistry := jobqueuecommand.NewRegistry()
	commandAdapter := gocommand.NewRegistryAdapter(command.NewRegistry())
	if err := commandAdapter.AddQueueResolver("queue", queueRegistry); err != nil {
		t.Fatalf("add queue resolver: %v", err)
	}

	runner := &compatRunner{}
	reader := &compatReader{
		usage: core.AccountUsage{AccountID: "acct_1", Identifier: "alpha"},
	}
	subscriptions, err := gocommand.RegisterRuntime(commandAdapter, gocommand.RuntimeDeps{
		Runner:      runner,
		UsageReader: reader,
	})
	if err != nil {
		t.Fatalf("register retention runtime: %v", err)
	}
	defer func() {
		for _, sub := range subscriptions {
			sub.Unsubscribe()
		}
	}()
	if err := commandAdapter.Initialize(); err != nil {
		t.Fatalf("initialize command registry: %v", err)
	}
	if _, ok := queueRegistry.Get(retentioncommand.TypeRunRetention); !ok {
		t.Fatalf("expected run command to mirror into go-job queue registry")
	}

	if err := gocommand.Dispatch(ctx, retentioncommand.RunRetentionMessage{Reason: "compat"}); err != nil {
		t.Fatalf("dispatch run command: %v", err)
	}
	if runner.calls != 1 {
		t.Fatalf("expected one retention run through the dispatcher, got %d", runner.calls)
	}
}

type compatEnqueuer struct {
	last *job.ExecutionMessage
}

func (s *compatEnqueuer) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	s.last = msg
	return nil
}

type compatRunner struct {
	calls int
}

func (r *compatRunner) Run(context.Context) (core.RunResult, error) {
	r.calls++
	return core.RunResult{}, nil
}

type compatReader struct {
	usage core.AccountUsage
}

func (r *compatReader) Snapshot(context.Context) ([]core.AccountUsage, error) {
	return []core.AccountUsage{r.usage}, nil
}

func (r *compatReader) AccountUsage(context.Context, string) (core.AccountUsage, error) {
	return r.usage, nil
}

var (
	_ glog.Logger         = (*compatLogger)(nil)
	_ glog.LoggerProvider = (*compatProvider)(nil)
)

type compatProvider struct {
	logger *compatLogger
}

func (p *compatProvider) GetLogger(string) glog.Logger {
	if p == nil || p.logger == nil {
		return glog.Nop()
	}
	return p.logger
}

type compatLogger struct{}

func (l *compatLogger) Trace(string, ...any) {}
func (l *compatLogger) Debug(string, ...any) {}
func (l *compatLogger) Info(string, ...any)  {}
func (l *compatLogger) Warn(string, ...any)  {}
func (l *compatLogger) Error(string, ...any) {}
func (l *compatLogger) Fatal(string, ...any) {}

func (l *compatLogger) WithContext(context.Context) glog.Logger {
	return l
}
