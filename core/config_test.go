package core

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ServiceName != "retention" {
		t.Fatalf("unexpected service name %q", cfg.ServiceName)
	}
	if cfg.Policy.MaxAge != 30*24*time.Hour {
		t.Fatalf("unexpected max age %s", cfg.Policy.MaxAge)
	}
	if cfg.Policy.MaxAccountBytes != 100<<20 {
		t.Fatalf("unexpected account budget %d", cfg.Policy.MaxAccountBytes)
	}
	if cfg.Enforcer.FineTuneBatchSize != 100 {
		t.Fatalf("unexpected batch size %d", cfg.Enforcer.FineTuneBatchSize)
	}
	if cfg.Enforcer.MaxEvictionsPerAccount != 200_000 {
		t.Fatalf("unexpected eviction cap %d", cfg.Enforcer.MaxEvictionsPerAccount)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing service name",
			mutate:  func(c *Config) { c.ServiceName = " " },
			wantErr: "service_name",
		},
		{
			name:    "non positive max age",
			mutate:  func(c *Config) { c.Policy.MaxAge = 0 },
			wantErr: "max_age",
		},
		{
			name:    "non positive budget",
			mutate:  func(c *Config) { c.Policy.MaxAccountBytes = -1 },
			wantErr: "max_account_bytes",
		},
		{
			name:    "non positive batch size",
			mutate:  func(c *Config) { c.Enforcer.FineTuneBatchSize = 0 },
			wantErr: "fine_tune_batch_size",
		},
		{
			name:    "non positive eviction cap",
			mutate:  func(c *Config) { c.Enforcer.MaxEvictionsPerAccount = 0 },
			wantErr: "max_evictions_per_account",
		},
		{
			name: "batch exceeds cap",
			mutate: func(c *Config) {
				c.Enforcer.FineTuneBatchSize = 500
				c.Enforcer.MaxEvictionsPerAccount = 100
			},
			wantErr: "cannot exceed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err.Error(), tc.wantErr)
			}
		})
	}
}

func TestGoOptionsResolver_RuntimeOverridesDefaults(t *testing.T) {
	defaults := DefaultConfig()
	runtime := Config{
		Policy: PolicyConfig{MaxAccountBytes: 50 << 20},
		Report: ReportConfig{Recipient: "ops@example.com"},
	}

	resolved, err := GoOptionsResolver{}.Resolve(defaults, Config{}, runtime)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if resolved.Policy.MaxAccountBytes != 50<<20 {
		t.Fatalf("runtime budget not applied: %d", resolved.Policy.MaxAccountBytes)
	}
	// Fields the runtime layer leaves unset fall through to the defaults.
	if resolved.Policy.MaxAge != defaults.Policy.MaxAge {
		t.Fatalf("default max age lost: %s", resolved.Policy.MaxAge)
	}
	if resolved.Enforcer.FineTuneBatchSize != defaults.Enforcer.FineTuneBatchSize {
		t.Fatalf("default batch size lost: %d", resolved.Enforcer.FineTuneBatchSize)
	}
	if resolved.Report.Recipient != "ops@example.com" {
		t.Fatalf("runtime recipient not applied: %q", resolved.Report.Recipient)
	}
	if resolved.Report.SubjectPrefix != "[retention]" {
		t.Fatalf("default subject prefix lost: %q", resolved.Report.SubjectPrefix)
	}
}

func TestGoOptionsResolver_ConfigLayerSitsBetweenDefaultsAndRuntime(t *testing.T) {
	defaults := DefaultConfig()
	loaded := Config{
		Policy: PolicyConfig{MaxAge: 7 * 24 * time.Hour, MaxAccountBytes: 10 << 20},
	}
	runtime := Config{
		Policy: PolicyConfig{MaxAccountBytes: 20 << 20},
	}

	resolved, err := GoOptionsResolver{}.Resolve(defaults, loaded, runtime)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if resolved.Policy.MaxAge != 7*24*time.Hour {
		t.Fatalf("loaded max age lost: %s", resolved.Policy.MaxAge)
	}
	if resolved.Policy.MaxAccountBytes != 20<<20 {
		t.Fatalf("runtime layer must win over loaded: %d", resolved.Policy.MaxAccountBytes)
	}
}

func TestCfgxConfigProvider_DefaultsWhenNoSources(t *testing.T) {
	provider := NewCfgxConfigProvider(nil)

	loaded, err := provider.Load(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Policy.MaxAge != DefaultMaxAge {
		t.Fatalf("expected defaults to pass through, got %s", loaded.Policy.MaxAge)
	}
	if loaded.ServiceName != "retention" {
		t.Fatalf("expected default service name, got %q", loaded.ServiceName)
	}
}

func TestNewService_InvalidRuntimeConfigIsRejected(t *testing.T) {
	store := newMemRecordStore()
	bad := Config{Enforcer: EnforcerConfig{FineTuneBatchSize: 500_000}}

	_, err := NewService(bad,
		WithRecordStore(store),
		WithUsageReader(store),
	)
	if err == nil {
		t.Fatalf("expected invalid config to fail service construction")
	}
}
