package utils

import (
	"testing"
	"time"
)

func TestFormatOptionSymbol(t *testing.T) {
	expiry := time.Date(2025, time.September, 25, 0, 0, 0, 0, IndiaLocation)

	got := FormatOptionSymbol("NIFTY", expiry, 24800, "CE")
	if got != "NIFTY25SEP24800CE" {
		t.Errorf("FormatOptionSymbol = %q, want NIFTY25SEP24800CE", got)
	}

	got = FormatOptionSymbol("BANKNIFTY", expiry, 52000, "pe")
	if got != "BANKNIFTY25SEP52000PE" {
		t.Errorf("FormatOptionSymbol = %q, want BANKNIFTY25SEP52000PE", got)
	}
}

func TestParseOptionSymbol(t *testing.T) {
	contract, ok := ParseOptionSymbol("NIFTY25SEP24800CE")
	if !ok {
		t.Fatal("failed to parse a valid symbol")
	}
	if contract.Underlying != "NIFTY" {
		t.Errorf("underlying = %q", contract.Underlying)
	}
	if contract.Strike != 24800 {
		t.Errorf("strike = %v", contract.Strike)
	}
	if contract.OptionType != "CE" {
		t.Errorf("option type = %q", contract.OptionType)
	}
	if contract.Expiry.Year() != 2025 || contract.Expiry.Month() != time.September {
		t.Errorf("expiry = %v", contract.Expiry)
	}

	for _, bad := range []string{"RELIANCE", "NIFTY25SEP", "nifty25sep24800ce", "NIFTY25XXX24800CE", ""} {
		if _, ok := ParseOptionSymbol(bad); ok {
			t.Errorf("ParseOptionSymbol(%q) accepted an invalid symbol", bad)
		}
	}
}

func TestGetLotSize(t *testing.T) {
	tests := []struct {
		symbol string
		want   int
	}{
		{"NIFTY25SEP24800CE", 50},
		{"BANKNIFTY25SEP52000PE", 15},
		{"FINNIFTY25SEP23000CE", 40},
		{"MIDCPNIFTY25SEP12000PE", 75},
		{"SENSEX25SEP81000CE", 10},
		{"BANKEX25SEP57000PE", 15},
		{"RELIANCE", 1},
	}

	for _, tt := range tests {
		if got := GetLotSize(tt.symbol); got != tt.want {
			t.Errorf("GetLotSize(%q) = %d, want %d", tt.symbol, got, tt.want)
		}
	}
}

func TestRoundToTick(t *testing.T) {
	tests := []struct {
		price, tick, want float64
	}{
		{100.07, 0.05, 100.05},
		{100.08, 0.05, 100.10},
		{100.07, 0, 100.07},
		{24812, 100, 24800},
	}

	for _, tt := range tests {
		if got := RoundToTick(tt.price, tt.tick); got != tt.want {
			t.Errorf("RoundToTick(%v, %v) = %v, want %v", tt.price, tt.tick, got, tt.want)
		}
	}
}

func TestTokenHash(t *testing.T) {
	a := TokenHash("NIFTY25SEP24800CE", "NFO")
	b := TokenHash("NIFTY25SEP24800CE", "NFO")
	c := TokenHash("NIFTY25SEP24800CE", "BFO")

	if a != b {
		t.Errorf("hash not stable: %q vs %q", a, b)
	}
	if a == c {
		t.Errorf("hash ignores exchange: %q", a)
	}
	if len(a) != 16 {
		t.Errorf("hash length = %d, want 16", len(a))
	}
}
