package command

const (
	TypeRunRetention = "retention.command.run"
)

// RunRetentionMessage triggers one full retention pass: age purge, quota
// enforcement, report dispatch. The reason is carried into logs so operators
// can tell a scheduled run from a manual one.
type RunRetentionMessage struct {
	Reason string
}

func (RunRetentionMessage) Type() string { return TypeRunRetention }

func (RunRetentionMessage) Validate() error { return nil }
