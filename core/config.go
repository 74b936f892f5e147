package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultMaxAge is the retention window: captures older than this are
	// unconditionally deleted regardless of account budget.
	DefaultMaxAge = 30 * 24 * time.Hour

	// DefaultMaxAccountBytes is the per-account storage ceiling.
	DefaultMaxAccountBytes int64 = 100 << 20

	// DefaultFineTuneBatchSize is the batch size used by the exact
	// correction loop after the estimated bulk deletion.
	DefaultFineTuneBatchSize int64 = 100

	// DefaultMaxEvictionsPerAccount bounds the total number of captures a
	// single run may evict from one account.
	DefaultMaxEvictionsPerAccount int64 = 200_000
)

type PolicyConfig struct {
	MaxAge          time.Duration `koanf:"max_age" mapstructure:"max_age"`
	MaxAccountBytes int64         `koanf:"max_account_bytes" mapstructure:"max_account_bytes"`
}

type EnforcerConfig struct {
	FineTuneBatchSize      int64 `koanf:"fine_tune_batch_size" mapstructure:"fine_tune_batch_size"`
	MaxEvictionsPerAccount int64 `koanf:"max_evictions_per_account" mapstructure:"max_evictions_per_account"`
}

type ReportConfig struct {
	// Recipient is optional; when empty the report dispatch is skipped
	// with a warning instead of failing the run.
	Recipient     string `koanf:"recipient" mapstructure:"recipient"`
	SubjectPrefix string `koanf:"subject_prefix" mapstructure:"subject_prefix"`
}

type Config struct {
	ServiceName string         `koanf:"service_name" mapstructure:"service_name"`
	Policy      PolicyConfig   `koanf:"policy" mapstructure:"policy"`
	Enforcer    EnforcerConfig `koanf:"enforcer" mapstructure:"enforcer"`
	Report      ReportConfig   `koanf:"report" mapstructure:"report"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "retention",
		Policy: PolicyConfig{
			MaxAge:          DefaultMaxAge,
			MaxAccountBytes: DefaultMaxAccountBytes,
		},
		Enforcer: EnforcerConfig{
			FineTuneBatchSize:      DefaultFineTuneBatchSize,
			MaxEvictionsPerAccount: DefaultMaxEvictionsPerAccount,
		},
		Report: ReportConfig{
			SubjectPrefix: "[retention]",
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Policy.MaxAge <= 0 {
		return fmt.Errorf("core: policy.max_age must be positive")
	}
	if c.Policy.MaxAccountBytes <= 0 {
		return fmt.Errorf("core: policy.max_account_bytes must be positive")
	}
	if c.Enforcer.FineTuneBatchSize <= 0 {
		return fmt.Errorf("core: enforcer.fine_tune_batch_size must be positive")
	}
	if c.Enforcer.MaxEvictionsPerAccount <= 0 {
		return fmt.Errorf("core: enforcer.max_evictions_per_account must be positive")
	}
	if c.Enforcer.FineTuneBatchSize > c.Enforcer.MaxEvictionsPerAccount {
		return fmt.Errorf("core: enforcer.fine_tune_batch_size cannot exceed max_evictions_per_account")
	}
	return nil
}
