package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesTemplates(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// First run writes the template files.
	for _, name := range []string{"config.toml", "credentials.toml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("template %s not created: %v", name, err)
		}
	}

	// Defaults apply when nothing is configured yet.
	if cfg.Trading.Mode != "paper" {
		t.Errorf("default mode = %q, want paper", cfg.Trading.Mode)
	}
	if cfg.Simulator.InitialCapital != 1_000_000 {
		t.Errorf("default capital = %v, want 1000000", cfg.Simulator.InitialCapital)
	}
	if cfg.Risk.MaxPositionSizePct != 0.02 {
		t.Errorf("default max position size = %v, want 0.02", cfg.Risk.MaxPositionSizePct)
	}
	if !cfg.IsPaperMode() {
		t.Error("default config should be paper mode")
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[trading]
mode = "paper"
default_exchange = "NFO"

[simulator]
initial_capital = 500000.0
slippage_pct = 0.01

[risk]
max_position_size_pct = 0.05
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulator.InitialCapital != 500_000 {
		t.Errorf("capital = %v, want 500000", cfg.Simulator.InitialCapital)
	}
	if cfg.Simulator.SlippagePct != 0.01 {
		t.Errorf("slippage = %v, want 0.01", cfg.Simulator.SlippagePct)
	}
	if cfg.Risk.MaxPositionSizePct != 0.05 {
		t.Errorf("max position size = %v, want 0.05", cfg.Risk.MaxPositionSizePct)
	}
	// Unset keys still get defaults.
	if cfg.Simulator.BrokeragePerOrder != 20 {
		t.Errorf("brokerage = %v, want default 20", cfg.Simulator.BrokeragePerOrder)
	}
	if cfg.Trading.DefaultExchange != "NFO" {
		t.Errorf("exchange = %q, want NFO", cfg.Trading.DefaultExchange)
	}
}

func TestLoadRejectsBadMode(t *testing.T) {
	dir := t.TempDir()
	content := `
[trading]
mode = "yolo"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected an error for an invalid trading mode")
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ANGEL_API_KEY", "key-from-env")
	t.Setenv("TRADING_MODE", "live")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Credentials.AngelOne.APIKey != "key-from-env" {
		t.Errorf("api key = %q, want env override", cfg.Credentials.AngelOne.APIKey)
	}
	if cfg.Trading.Mode != "live" {
		t.Errorf("mode = %q, want live from env", cfg.Trading.Mode)
	}
	if cfg.IsPaperMode() {
		t.Error("live mode should not report paper")
	}
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"zero config is valid", func(c *Config) {}, true},
		{"negative capital", func(c *Config) { c.Simulator.InitialCapital = -1 }, false},
		{"slippage above one", func(c *Config) { c.Simulator.SlippagePct = 1.5 }, false},
		{"negative brokerage", func(c *Config) { c.Simulator.BrokeragePerOrder = -5 }, false},
		{"position size above one", func(c *Config) { c.Risk.MaxPositionSizePct = 2 }, false},
		{"portfolio risk above one", func(c *Config) { c.Risk.MaxPortfolioRiskPct = 1.1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate = %v, want nil", err)
			}
			if !tt.ok && err == nil {
				t.Error("Validate = nil, want error")
			}
		})
	}
}

func TestTemplateNotOverwritten(t *testing.T) {
	dir := t.TempDir()
	custom := `
[trading]
mode = "paper"
`
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(custom), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != custom {
		t.Error("existing config file was overwritten")
	}
}
