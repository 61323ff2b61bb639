package models

import "time"

// Order represents a trading order.
type Order struct {
	ID           string
	Symbol       string
	Exchange     Exchange
	Side         TransactionType
	Type         OrderType
	Product      ProductType
	Quantity     int
	Price        float64
	TriggerPrice float64
	Variety      string // NORMAL, AMO
	Status       OrderStatus
	FilledQty    int
	AveragePrice float64
	Message      string
	PlacedAt     time.Time
	UpdatedAt    time.Time
}

// Position represents an open trading position. Quantity is signed:
// positive for long, negative for short.
type Position struct {
	Symbol          string
	Exchange        Exchange
	Product         ProductType
	Quantity        int
	AveragePrice    float64
	LastPrice       float64
	PnL             float64
	PnLPercent      float64
	DayBuyQuantity  int
	DaySellQuantity int
	DayBuyValue     float64
	DaySellValue    float64
}

// Value returns the current market value of the position.
func (p *Position) Value() float64 {
	return p.LastPrice * float64(p.Quantity)
}

// Holding represents a delivery-settled holding.
type Holding struct {
	Symbol       string
	Exchange     Exchange
	ISIN         string
	Quantity     int
	AveragePrice float64
	LastPrice    float64
	PnL          float64
	PnLPercent   float64
}

// CostBreakdown itemises the statutory and brokerage costs of a trade.
// It is a value object, never mutated after construction.
type CostBreakdown struct {
	Brokerage       float64
	STT             float64
	ExchangeCharges float64
	GST             float64
	SEBICharges     float64
	StampDuty       float64
	Total           float64
}
