package broker

import (
	"math"
	"testing"

	"angel-trader/internal/models"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// TestCostCalculateBuy verifies the full breakdown for a buy of value 5025.
func TestCostCalculateBuy(t *testing.T) {
	cfg := DefaultCostConfig()
	costs := cfg.Calculate(5025.0, false)

	if costs.Brokerage != 20.0 {
		t.Errorf("brokerage = %v, want 20", costs.Brokerage)
	}
	if costs.STT != 0 {
		t.Errorf("STT on buy = %v, want 0", costs.STT)
	}
	if !approxEqual(costs.ExchangeCharges, 5025*0.00053, 1e-9) {
		t.Errorf("exchange charges = %v, want %v", costs.ExchangeCharges, 5025*0.00053)
	}
	if !approxEqual(costs.GST, (20+5025*0.00053)*0.18, 1e-9) {
		t.Errorf("GST = %v, want %v", costs.GST, (20+5025*0.00053)*0.18)
	}
	if !approxEqual(costs.SEBICharges, 5025*0.0000005, 1e-12) {
		t.Errorf("SEBI charges = %v, want %v", costs.SEBICharges, 5025*0.0000005)
	}
	if !approxEqual(costs.StampDuty, 5025*0.00003, 1e-9) {
		t.Errorf("stamp duty = %v, want %v", costs.StampDuty, 5025*0.00003)
	}

	sum := costs.Brokerage + costs.STT + costs.ExchangeCharges + costs.GST +
		costs.SEBICharges + costs.StampDuty
	if !approxEqual(costs.Total, sum, 1e-9) {
		t.Errorf("total = %v, want sum of components %v", costs.Total, sum)
	}
}

// TestCostCalculateSell verifies the sell side charges STT and no stamp duty.
func TestCostCalculateSell(t *testing.T) {
	cfg := DefaultCostConfig()
	costs := cfg.Calculate(10000.0, true)

	if !approxEqual(costs.STT, 10000*0.0005, 1e-9) {
		t.Errorf("STT = %v, want %v", costs.STT, 10000*0.0005)
	}
	if costs.StampDuty != 0 {
		t.Errorf("stamp duty on sell = %v, want 0", costs.StampDuty)
	}
	if costs.Total <= costs.Brokerage {
		t.Errorf("total %v should exceed brokerage %v for a non-zero trade", costs.Total, costs.Brokerage)
	}
}

func TestCostCalculateZeroValue(t *testing.T) {
	cfg := DefaultCostConfig()
	costs := cfg.Calculate(0, false)

	// Flat brokerage plus GST on brokerage, everything else zero.
	want := 20.0 + 20.0*0.18
	if !approxEqual(costs.Total, want, 1e-9) {
		t.Errorf("total for zero value = %v, want %v", costs.Total, want)
	}
}

func TestApplySlippage(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		side     models.TransactionType
		slippage float64
		want     float64
	}{
		{"buy fills above reference", 100.0, models.TransactionBuy, 0.005, 100.5},
		{"sell fills below reference", 110.0, models.TransactionSell, 0.005, 109.45},
		{"zero slippage is identity buy", 250.0, models.TransactionBuy, 0, 250.0},
		{"zero slippage is identity sell", 250.0, models.TransactionSell, 0, 250.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplySlippage(tt.price, tt.side, tt.slippage)
			if !approxEqual(got, tt.want, 1e-9) {
				t.Errorf("ApplySlippage(%v, %v, %v) = %v, want %v",
					tt.price, tt.side, tt.slippage, got, tt.want)
			}
		})
	}
}
