package retention

import (
	"fmt"
	"reflect"

	retentioncommand "github.com/goliatone/go-retention/command"
	"github.com/goliatone/go-retention/core"
	retentionquery "github.com/goliatone/go-retention/query"
)

type CommandQueryService interface {
	retentioncommand.RetentionRunner
	retentionquery.UsageReader
}

type Commands struct {
	RunRetention *retentioncommand.RunRetentionCommand
}

type Queries struct {
	GetAccountUsage  *retentionquery.GetAccountUsageQuery
	ListAccountUsage *retentionquery.ListAccountUsageQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	usageReader retentionquery.UsageReader
}

// WithFacadeUsageReader routes the usage queries through the given reader.
// Admin panels pass the cached usage store here; the retention run itself
// always reads fresh through the service.
func WithFacadeUsageReader(reader retentionquery.UsageReader) FacadeOption {
	return func(options *facadeOptions) {
		options.usageReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("retention: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := cfg.usageReader
	if reader == nil {
		reader = resolveUsageReader(service)
	}
	if reader == nil {
		reader = service
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		RunRetention: retentioncommand.NewRunRetentionCommand(service),
	}
	facade.queries = Queries{
		GetAccountUsage:  retentionquery.NewGetAccountUsageQuery(reader),
		ListAccountUsage: retentionquery.NewListAccountUsageQuery(reader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

// resolveUsageReader probes the service's repository factory for a dedicated
// usage store so admin queries can bypass the service wrapper.
func resolveUsageReader(service CommandQueryService) retentionquery.UsageReader {
	if service == nil {
		return nil
	}
	provider, ok := service.(interface {
		Dependencies() core.ServiceDependencies
	})
	if !ok {
		return nil
	}
	deps := provider.Dependencies()
	if deps.RepositoryFactory == nil {
		return nil
	}

	factoryValue := reflect.ValueOf(deps.RepositoryFactory)
	if !factoryValue.IsValid() {
		return nil
	}
	if factoryValue.Kind() == reflect.Ptr && factoryValue.IsNil() {
		return nil
	}
	method := factoryValue.MethodByName("UsageReader")
	if !method.IsValid() || method.Type().NumIn() != 0 || method.Type().NumOut() != 1 {
		return nil
	}

	results, ok := safeReflectCall(method)
	if !ok {
		return nil
	}
	if len(results) != 1 {
		return nil
	}
	candidate := results[0]
	if !candidate.IsValid() {
		return nil
	}
	if candidate.Kind() == reflect.Ptr && candidate.IsNil() {
		return nil
	}
	reader, ok := candidate.Interface().(retentionquery.UsageReader)
	if !ok {
		return nil
	}
	return reader
}

func safeReflectCall(method reflect.Value) (_ []reflect.Value, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return method.Call(nil), true
}
