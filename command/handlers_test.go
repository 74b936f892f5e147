package command

import (
	"context"
	"errors"
	"testing"
	"time"

	gocmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-retention/core"
)

type stubRetentionRunner struct {
	runFn func(ctx context.Context) (core.RunResult, error)
}

func (s stubRetentionRunner) Run(ctx context.Context) (core.RunResult, error) {
	if s.runFn == nil {
		return core.RunResult{}, errors.New("run not configured")
	}
	return s.runFn(ctx)
}

func TestRunRetentionCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := core.RunResult{
		StartedAt:             time.Date(2026, 8, 26, 3, 0, 0, 0, time.UTC),
		RecordsPurgedByAge:    10,
		RecordsEvictedByQuota: 4,
	}
	called := false

	svc := stubRetentionRunner{
		runFn: func(_ context.Context) (core.RunResult, error) {
			called = true
			return expected, nil
		},
	}

	cmd := NewRunRetentionCommand(svc)
	collector := gocmd.NewResult[core.RunResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, RunRetentionMessage{Reason: "manual"}); err != nil {
		t.Fatalf("execute run retention: %v", err)
	}
	if !called {
		t.Fatalf("expected retention run invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.RecordsPurgedByAge != expected.RecordsPurgedByAge ||
		result.RecordsEvictedByQuota != expected.RecordsEvictedByQuota {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestRunRetentionCommand_PropagatesRunFailure(t *testing.T) {
	runErr := errors.New("connection refused")
	svc := stubRetentionRunner{
		runFn: func(_ context.Context) (core.RunResult, error) {
			return core.RunResult{}, runErr
		},
	}

	if err := NewRunRetentionCommand(svc).Execute(context.Background(), RunRetentionMessage{}); !errors.Is(err, runErr) {
		t.Fatalf("expected run error propagation, got %v", err)
	}
}

func TestRunRetentionCommand_NilServiceReturnsRichError(t *testing.T) {
	var cmd *RunRetentionCommand
	err := cmd.Execute(context.Background(), RunRetentionMessage{})
	if err == nil {
		t.Fatalf("expected command dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
	if rich.TextCode != core.RetentionErrorInternal {
		t.Fatalf("expected %q text code, got %q", core.RetentionErrorInternal, rich.TextCode)
	}
}

func TestRunRetentionMessage_TypeAndValidate(t *testing.T) {
	msg := RunRetentionMessage{}
	if msg.Type() != TypeRunRetention {
		t.Fatalf("unexpected message type %q", msg.Type())
	}
	if err := msg.Validate(); err != nil {
		t.Fatalf("run retention message must always validate: %v", err)
	}
}

var _ RetentionRunner = stubRetentionRunner{}
