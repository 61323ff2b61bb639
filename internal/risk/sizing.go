// Package risk provides position sizing and portfolio risk validation.
package risk

import (
	"math"

	"github.com/rs/zerolog"

	"angel-trader/internal/errors"
)

// Config holds the risk limits shared by all sizing methods.
type Config struct {
	MaxPositionSizePct     float64 `mapstructure:"max_position_size_pct"`
	MaxPortfolioRiskPct    float64 `mapstructure:"max_portfolio_risk_pct"`
	DailyLossLimitPct      float64 `mapstructure:"daily_loss_limit_pct"`
	DefaultRiskPerTradePct float64 `mapstructure:"default_risk_per_trade_pct"`
}

// DefaultConfig returns the standard risk limits.
func DefaultConfig() Config {
	return Config{
		MaxPositionSizePct:     0.02,
		MaxPortfolioRiskPct:    0.10,
		DailyLossLimitPct:      0.05,
		DefaultRiskPerTradePct: 0.01,
	}
}

// Sizing method names.
const (
	MethodFixedPercentage = "fixed_percentage"
	MethodRiskBased       = "risk_based"
	MethodKelly           = "kelly"
	MethodVolatility      = "volatility"
)

// defaultKellyFraction applies quarter-Kelly for safety.
const defaultKellyFraction = 0.25

// tradingDaysPerYear converts annualized volatility to daily.
const tradingDaysPerYear = 252

// SizeRequest carries the inputs for a position size calculation.
// Method-specific fields are ignored by the other methods.
type SizeRequest struct {
	Capital float64
	Price   float64
	LotSize int
	Method  string

	// fixed_percentage
	PositionPct float64

	// risk_based
	StopLoss float64
	RiskPct  float64

	// kelly
	WinRate       float64
	WinLossRatio  float64
	KellyFraction float64

	// volatility
	Volatility    float64
	TargetRiskPct float64
}

// SizeResult is the immutable outcome of a sizing calculation.
type SizeResult struct {
	Quantity         int
	CapitalAllocated float64
	RiskAmount       float64
	Method           string
	Details          map[string]float64
}

// PositionRisk describes an existing position for portfolio validation.
type PositionRisk struct {
	Symbol     string
	RiskAmount float64
}

// ValidationResult reports whether a proposed position fits the limits.
type ValidationResult struct {
	IsValid       bool
	PositionValue float64
	PositionPct   float64
	Violations    []string
}

// PositionSizer calculates position sizes with multiple methods. It
// holds no mutable state: every call is a pure function of its inputs
// and the configured limits.
type PositionSizer struct {
	cfg           Config
	defaultMethod string
	logger        zerolog.Logger
}

// NewPositionSizer creates a sizer with the given limits. A zero config
// falls back to the defaults, as does an empty default method.
func NewPositionSizer(cfg Config, defaultMethod string, logger zerolog.Logger) *PositionSizer {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	if defaultMethod == "" {
		defaultMethod = MethodFixedPercentage
	}
	return &PositionSizer{cfg: cfg, defaultMethod: defaultMethod, logger: logger}
}

// Calculate dispatches to the requested sizing method. Unknown methods
// fall back to fixed percentage.
func (s *PositionSizer) Calculate(req SizeRequest) SizeResult {
	method := req.Method
	if method == "" {
		method = s.defaultMethod
	}

	switch method {
	case MethodFixedPercentage:
		return s.fixedPercentage(req)
	case MethodRiskBased:
		return s.riskBased(req)
	case MethodKelly:
		return s.kelly(req)
	case MethodVolatility:
		return s.volatility(req)
	default:
		s.logger.Warn().Str("method", method).Msg("Unknown sizing method, using fixed percentage")
		return s.fixedPercentage(req)
	}
}

// fixedPercentage allocates a fixed fraction of capital at the entry
// price: qty = floor(capital * pct / price / lot) * lot.
func (s *PositionSizer) fixedPercentage(req SizeRequest) SizeResult {
	pct := req.PositionPct
	if pct == 0 {
		pct = s.cfg.MaxPositionSizePct
	}
	lot := lotOrOne(req.LotSize)

	rawQty := req.Capital * pct / req.Price
	qty := floorToLot(rawQty, lot)
	if qty < lot {
		qty = lot
	}
	allocated := float64(qty) * req.Price

	return SizeResult{
		Quantity:         qty,
		CapitalAllocated: allocated,
		RiskAmount:       allocated, // full position at risk
		Method:           MethodFixedPercentage,
		Details: map[string]float64{
			"position_pct": pct,
			"raw_quantity": rawQty,
		},
	}
}

// riskBased sizes so a stop-loss hit loses a fixed fraction of capital:
// qty = floor(capital * risk_pct / |price - stop| / lot) * lot, capped
// by the maximum position size. Without a usable stop it falls back to
// fixed percentage.
func (s *PositionSizer) riskBased(req SizeRequest) SizeResult {
	riskPerUnit := math.Abs(req.Price - req.StopLoss)
	if req.StopLoss == 0 || riskPerUnit == 0 {
		s.logger.Warn().Msg("Stop loss required for risk-based sizing, using fixed percentage")
		return s.fixedPercentage(req)
	}

	riskPct := req.RiskPct
	if riskPct == 0 {
		riskPct = s.cfg.DefaultRiskPerTradePct
	}
	lot := lotOrOne(req.LotSize)

	maxRisk := req.Capital * riskPct
	qty := floorToLot(maxRisk/riskPerUnit, lot)

	maxByValue := floorToLot(req.Capital*s.cfg.MaxPositionSizePct/req.Price, lot)
	if qty > maxByValue {
		qty = maxByValue
	}
	if qty < lot {
		qty = lot
	}

	return SizeResult{
		Quantity:         qty,
		CapitalAllocated: float64(qty) * req.Price,
		RiskAmount:       float64(qty) * riskPerUnit,
		Method:           MethodRiskBased,
		Details: map[string]float64{
			"risk_pct":      riskPct,
			"risk_per_unit": riskPerUnit,
			"stop_loss":     req.StopLoss,
		},
	}
}

// kelly applies the Kelly criterion f* = (b*p - q) / b, scaled by a
// safety fraction and clamped to the maximum position size. A
// non-positive Kelly fraction yields a zero quantity.
func (s *PositionSizer) kelly(req SizeRequest) SizeResult {
	winRate := clamp(req.WinRate, 0.01, 0.99)
	winLossRatio := math.Max(0.1, req.WinLossRatio)
	fraction := req.KellyFraction
	if fraction == 0 {
		fraction = defaultKellyFraction
	}
	lot := lotOrOne(req.LotSize)

	b := winLossRatio
	p := winRate
	q := 1 - p
	kellyPct := (b*p - q) / b

	applied := clamp(kellyPct*fraction, 0, s.cfg.MaxPositionSizePct)

	qty := floorToLot(req.Capital*applied/req.Price, lot)
	if applied > 0 && qty < lot {
		qty = lot
	}
	if applied <= 0 {
		qty = 0
	}
	allocated := float64(qty) * req.Price

	return SizeResult{
		Quantity:         qty,
		CapitalAllocated: allocated,
		RiskAmount:       allocated,
		Method:           MethodKelly,
		Details: map[string]float64{
			"full_kelly_pct":     kellyPct,
			"adjusted_kelly_pct": applied,
			"win_rate":           winRate,
			"win_loss_ratio":     winLossRatio,
			"kelly_fraction":     fraction,
		},
	}
}

// volatility normalizes position risk to a two-sigma daily move:
// qty = floor(capital * target_risk / (price * daily_vol * 2) / lot) * lot,
// capped by the maximum position size.
func (s *PositionSizer) volatility(req SizeRequest) SizeResult {
	targetRisk := req.TargetRiskPct
	if targetRisk == 0 {
		targetRisk = s.cfg.DefaultRiskPerTradePct
	}
	lot := lotOrOne(req.LotSize)

	dailyVol := req.Volatility / math.Sqrt(tradingDaysPerYear)
	expectedMove := req.Price * dailyVol * 2

	if expectedMove <= 0 {
		s.logger.Warn().Msg("Invalid volatility, using fixed percentage")
		return s.fixedPercentage(req)
	}

	qty := floorToLot(req.Capital*targetRisk/expectedMove, lot)
	maxQty := floorToLot(req.Capital*s.cfg.MaxPositionSizePct/req.Price, lot)
	if qty > maxQty {
		qty = maxQty
	}
	if qty < lot {
		qty = lot
	}

	return SizeResult{
		Quantity:         qty,
		CapitalAllocated: float64(qty) * req.Price,
		RiskAmount:       float64(qty) * expectedMove,
		Method:           MethodVolatility,
		Details: map[string]float64{
			"annualized_volatility": req.Volatility,
			"daily_volatility":      dailyVol,
			"expected_daily_move":   expectedMove,
			"target_risk_pct":       targetRisk,
		},
	}
}

// ValidatePosition checks a proposed position against the position-size
// and portfolio-risk limits. Violations are itemised, not raised.
func (s *PositionSizer) ValidatePosition(quantity int, price, capital float64, existing []PositionRisk) ValidationResult {
	positionValue := float64(quantity) * price
	positionPct := positionValue / capital

	result := ValidationResult{
		IsValid:       true,
		PositionValue: positionValue,
		PositionPct:   positionPct,
	}

	if positionPct > s.cfg.MaxPositionSizePct {
		result.IsValid = false
		result.Violations = append(result.Violations, errors.NewRiskError(
			"position_size", positionPct*100, s.cfg.MaxPositionSizePct*100,
			"position size exceeds maximum").Error())
	}

	if len(existing) > 0 {
		totalRisk := positionValue
		for _, pos := range existing {
			totalRisk += pos.RiskAmount
		}
		portfolioRiskPct := totalRisk / capital
		if portfolioRiskPct > s.cfg.MaxPortfolioRiskPct {
			result.IsValid = false
			result.Violations = append(result.Violations, errors.NewRiskError(
				"portfolio_risk", portfolioRiskPct*100, s.cfg.MaxPortfolioRiskPct*100,
				"portfolio risk would exceed maximum").Error())
		}
	}

	return result
}

// AdjustForCorrelation shrinks a position when it correlates with
// existing exposure: a bucketed correlation multiplier times the
// remaining-capacity fraction, floored at zero.
func (s *PositionSizer) AdjustForCorrelation(baseQuantity int, correlation, existingExposure, maxExposure float64) int {
	var factor float64
	switch {
	case correlation >= 0.7:
		factor = 0.5
	case correlation >= 0.4:
		factor = 0.75
	default:
		factor = 1.0
	}

	var exposureFactor float64
	if maxExposure > 0 {
		remaining := math.Max(0, maxExposure-existingExposure)
		exposureFactor = remaining / maxExposure
	}

	adjusted := int(float64(baseQuantity) * factor * exposureFactor)
	if adjusted < 0 {
		return 0
	}
	return adjusted
}

// StranglePositionSize returns how many short strangles fit the risk
// budget. Risk per strangle is the combined premium times the stop-loss
// multiple times the lot size; the count is floored at one.
func (s *PositionSizer) StranglePositionSize(capital, callPremium, putPremium float64, lotSize int, stopLossMultiple, riskPct float64) int {
	if riskPct == 0 {
		riskPct = s.cfg.MaxPositionSizePct
	}
	if stopLossMultiple == 0 {
		stopLossMultiple = 1.50
	}

	totalPremium := callPremium + putPremium
	if totalPremium <= 0 {
		return 0
	}

	riskPerStrangle := totalPremium * stopLossMultiple * float64(lotOrOne(lotSize))
	count := int(capital * riskPct / riskPerStrangle)
	if count < 1 {
		return 1
	}
	return count
}

// Config returns the configured limits.
func (s *PositionSizer) Config() Config {
	return s.cfg
}

func floorToLot(raw float64, lot int) int {
	return int(raw/float64(lot)) * lot
}

func lotOrOne(lot int) int {
	if lot <= 0 {
		return 1
	}
	return lot
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
