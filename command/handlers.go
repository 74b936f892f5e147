package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-retention/core"
)

// RetentionRunner is the mutating surface the command layer drives.
// *core.Service satisfies it.
type RetentionRunner interface {
	Run(ctx context.Context) (core.RunResult, error)
}

type RunRetentionCommand struct {
	service RetentionRunner
}

func NewRunRetentionCommand(service RetentionRunner) *RunRetentionCommand {
	return &RunRetentionCommand{service: service}
}

func (c *RunRetentionCommand) Execute(ctx context.Context, msg RunRetentionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: retention runner is required")
	}
	out, err := c.service.Run(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
