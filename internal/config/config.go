// Package config provides configuration management for the trading application.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"angel-trader/internal/risk"
)

// Config holds all application configuration.
type Config struct {
	Trading     TradingConfig   `mapstructure:"trading"`
	Simulator   SimulatorConfig `mapstructure:"simulator"`
	Risk        risk.Config     `mapstructure:"risk"`
	Credentials Credentials     `mapstructure:"-"` // Loaded separately
}

// TradingConfig holds trading-related configuration.
type TradingConfig struct {
	Mode            string `mapstructure:"mode"`             // "live", "paper"
	DefaultProduct  string `mapstructure:"default_product"`  // INTRADAY, DELIVERY, CARRYFORWARD
	DefaultExchange string `mapstructure:"default_exchange"` // NSE, BSE, NFO
}

// SimulatorConfig holds paper-trading simulator configuration.
type SimulatorConfig struct {
	InitialCapital    float64 `mapstructure:"initial_capital"`
	SlippagePct       float64 `mapstructure:"slippage_pct"`
	BrokeragePerOrder float64 `mapstructure:"brokerage_per_order"`
	STTRate           float64 `mapstructure:"stt_rate"`
	ExchangeRate      float64 `mapstructure:"exchange_rate"`
	GSTRate           float64 `mapstructure:"gst_rate"`
	SEBIRate          float64 `mapstructure:"sebi_rate"`
	StampDutyRate     float64 `mapstructure:"stamp_duty_rate"`
}

// Credentials holds API credentials.
type Credentials struct {
	AngelOne AngelOneCredentials `mapstructure:"angelone"`
}

// AngelOneCredentials holds Angel One SmartAPI credentials.
type AngelOneCredentials struct {
	APIKey     string `mapstructure:"api_key"`
	ClientID   string `mapstructure:"client_id"`
	PIN        string `mapstructure:"pin"`
	TOTPSecret string `mapstructure:"totp_secret"` // For auto-login with 2FA
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/angel-trader"
	}
	return filepath.Join(home, ".config", "angel-trader")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createTemplateConfig(configDir); err != nil {
				return err
			}
			// Defaults still apply when the template was just created.
			return v.Unmarshal(target)
		}
		return err
	}

	return v.Unmarshal(target)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("trading.mode", "paper")
	v.SetDefault("trading.default_product", "INTRADAY")
	v.SetDefault("trading.default_exchange", "NSE")

	v.SetDefault("simulator.initial_capital", 1_000_000.0)
	v.SetDefault("simulator.slippage_pct", 0.005)
	v.SetDefault("simulator.brokerage_per_order", 20.0)
	v.SetDefault("simulator.stt_rate", 0.0005)
	v.SetDefault("simulator.exchange_rate", 0.00053)
	v.SetDefault("simulator.gst_rate", 0.18)
	v.SetDefault("simulator.sebi_rate", 0.0000005)
	v.SetDefault("simulator.stamp_duty_rate", 0.00003)

	v.SetDefault("risk.max_position_size_pct", 0.02)
	v.SetDefault("risk.max_portfolio_risk_pct", 0.10)
	v.SetDefault("risk.daily_loss_limit_pct", 0.05)
	v.SetDefault("risk.default_risk_per_trade_pct", 0.01)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ANGEL_API_KEY"); v != "" {
		cfg.Credentials.AngelOne.APIKey = v
	}
	if v := os.Getenv("ANGEL_CLIENT_ID"); v != "" {
		cfg.Credentials.AngelOne.ClientID = v
	}
	if v := os.Getenv("ANGEL_PIN"); v != "" {
		cfg.Credentials.AngelOne.PIN = v
	}
	if v := os.Getenv("ANGEL_TOTP_SECRET"); v != "" {
		cfg.Credentials.AngelOne.TOTPSecret = v
	}
	if v := os.Getenv("TRADING_MODE"); v != "" {
		cfg.Trading.Mode = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Trading.Mode != "" && c.Trading.Mode != "live" && c.Trading.Mode != "paper" {
		return fmt.Errorf("invalid trading mode: %s (must be 'live' or 'paper')", c.Trading.Mode)
	}

	if c.Simulator.InitialCapital < 0 {
		return fmt.Errorf("initial_capital must be non-negative")
	}
	if c.Simulator.SlippagePct < 0 || c.Simulator.SlippagePct > 1 {
		return fmt.Errorf("slippage_pct must be between 0 and 1")
	}
	if c.Simulator.BrokeragePerOrder < 0 {
		return fmt.Errorf("brokerage_per_order must be non-negative")
	}

	if c.Risk.MaxPositionSizePct < 0 || c.Risk.MaxPositionSizePct > 1 {
		return fmt.Errorf("max_position_size_pct must be between 0 and 1")
	}
	if c.Risk.MaxPortfolioRiskPct < 0 || c.Risk.MaxPortfolioRiskPct > 1 {
		return fmt.Errorf("max_portfolio_risk_pct must be between 0 and 1")
	}
	if c.Risk.DefaultRiskPerTradePct < 0 || c.Risk.DefaultRiskPerTradePct > 1 {
		return fmt.Errorf("default_risk_per_trade_pct must be between 0 and 1")
	}

	return nil
}

// IsPaperMode returns true if paper trading mode is enabled.
func (c *Config) IsPaperMode() bool {
	return c.Trading.Mode != "live"
}
