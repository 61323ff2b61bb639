package broker

import (
	"angel-trader/internal/models"
)

// CostConfig holds the rates for the transaction cost model. Defaults
// follow Indian market charges for options.
type CostConfig struct {
	BrokeragePerOrder float64 // flat fee per order
	STTRate           float64 // securities transaction tax, sell side only
	ExchangeRate      float64 // exchange transaction charges, both sides
	GSTRate           float64 // GST on brokerage and exchange charges
	SEBIRate          float64 // SEBI turnover charges, both sides
	StampDutyRate     float64 // stamp duty, buy side only
}

// DefaultCostConfig returns the standard cost rates.
func DefaultCostConfig() CostConfig {
	return CostConfig{
		BrokeragePerOrder: 20.0,
		STTRate:           0.0005,
		ExchangeRate:      0.00053,
		GSTRate:           0.18,
		SEBIRate:          0.0000005,
		StampDutyRate:     0.00003,
	}
}

// Calculate computes the full cost breakdown for a trade of the given
// value. It is a pure function: STT applies only to sells, stamp duty
// only to buys, GST is charged on brokerage plus exchange charges.
func (c CostConfig) Calculate(value float64, isSell bool) models.CostBreakdown {
	costs := models.CostBreakdown{
		Brokerage:       c.BrokeragePerOrder,
		ExchangeCharges: value * c.ExchangeRate,
		SEBICharges:     value * c.SEBIRate,
	}

	if isSell {
		costs.STT = value * c.STTRate
	} else {
		costs.StampDuty = value * c.StampDutyRate
	}

	costs.GST = (costs.Brokerage + costs.ExchangeCharges) * c.GSTRate

	costs.Total = costs.Brokerage + costs.STT + costs.ExchangeCharges +
		costs.GST + costs.SEBICharges + costs.StampDuty
	return costs
}

// ApplySlippage adjusts a reference price for simulated market impact.
// Buys fill above the reference, sells below.
func ApplySlippage(price float64, side models.TransactionType, slippagePct float64) float64 {
	if side == models.TransactionBuy {
		return price * (1 + slippagePct)
	}
	return price * (1 - slippagePct)
}
