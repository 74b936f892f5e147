package retention

import "github.com/goliatone/go-retention/core"

type Config = core.Config

type PolicyConfig = core.PolicyConfig

type EnforcerConfig = core.EnforcerConfig

type ReportConfig = core.ReportConfig

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type RecordStore = core.RecordStore
type UsageReader = core.UsageReader
type NotificationSender = core.NotificationSender
type MetricsRecorder = core.MetricsRecorder
type StoreProvider = core.StoreProvider
type RepositoryStoreFactory = core.RepositoryStoreFactory

type AccountUsage = core.AccountUsage
type AccountEnforcement = core.AccountEnforcement
type RunResult = core.RunResult
type RunReport = core.RunReport
type ReportMessage = core.ReportMessage

var (
	WithLogger             = core.WithLogger
	WithLoggerProvider     = core.WithLoggerProvider
	WithMetricsRecorder    = core.WithMetricsRecorder
	WithErrorFactory       = core.WithErrorFactory
	WithErrorMapper        = core.WithErrorMapper
	WithConfigProvider     = core.WithConfigProvider
	WithOptionsResolver    = core.WithOptionsResolver
	WithPersistenceClient  = core.WithPersistenceClient
	WithRepositoryFactory  = core.WithRepositoryFactory
	WithRecordStore        = core.WithRecordStore
	WithUsageReader        = core.WithUsageReader
	WithNotificationSender = core.WithNotificationSender
	WithClock              = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}
