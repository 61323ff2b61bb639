package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Angel Trader Configuration

[trading]
# Trading mode: "live" or "paper"
mode = "paper"
# Default product type: INTRADAY, DELIVERY, CARRYFORWARD
default_product = "INTRADAY"
# Default exchange: NSE, BSE, NFO
default_exchange = "NSE"

[simulator]
# Starting cash for paper trading
initial_capital = 1000000.0
# Market-order price impact fraction
slippage_pct = 0.005
# Flat brokerage per order
brokerage_per_order = 20.0
# Securities transaction tax rate (sell side)
stt_rate = 0.0005
# Exchange transaction charges rate
exchange_rate = 0.00053
# GST rate on brokerage and exchange charges
gst_rate = 0.18
# SEBI turnover charges rate
sebi_rate = 0.0000005
# Stamp duty rate (buy side)
stamp_duty_rate = 0.00003

[risk]
# Maximum position as fraction of capital
max_position_size_pct = 0.02
# Maximum total portfolio risk as fraction of capital
max_portfolio_risk_pct = 0.10
# Daily loss limit as fraction of capital
daily_loss_limit_pct = 0.05
# Default risk per trade as fraction of capital
default_risk_per_trade_pct = 0.01
`

const credentialsTemplate = `# Angel One SmartAPI Credentials
# Get your API key from https://smartapi.angelbroking.com

[angelone]
api_key = ""
client_id = ""
pin = ""
# TOTP secret for auto-login (SmartAPI > Enable TOTP)
totp_secret = ""
`

func createTemplateConfig(configDir string) error {
	return writeTemplate(configDir, "config.toml", configTemplate)
}

func createTemplateCredentials(configDir string) error {
	return writeTemplate(configDir, "credentials.toml", credentialsTemplate)
}

func writeTemplate(configDir, name, content string) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	path := filepath.Join(configDir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
