// Package models provides domain models for the trading application.
package models

import (
	"time"
)

// Exchange represents a stock exchange.
type Exchange string

const (
	NSE Exchange = "NSE"
	BSE Exchange = "BSE"
	NFO Exchange = "NFO" // NSE F&O
	BFO Exchange = "BFO" // BSE F&O
	MCX Exchange = "MCX" // Commodity
)

// TransactionType represents the side of an order.
type TransactionType string

const (
	TransactionBuy  TransactionType = "BUY"
	TransactionSell TransactionType = "SELL"
)

// OrderType represents the type of an order.
type OrderType string

const (
	OrderTypeMarket         OrderType = "MARKET"
	OrderTypeLimit          OrderType = "LIMIT"
	OrderTypeStopLoss       OrderType = "STOPLOSS"
	OrderTypeStopLossMarket OrderType = "STOPLOSS_MARKET"
)

// ProductType represents the product type of an order.
type ProductType string

const (
	ProductIntraday     ProductType = "INTRADAY"     // MIS
	ProductDelivery     ProductType = "DELIVERY"     // CNC
	ProductCarryForward ProductType = "CARRYFORWARD" // NRML
)

// OrderStatus represents the lifecycle state of an order.
//
// Transitions are monotonic: pending -> {open, complete, rejected},
// open -> {complete, cancelled}. Complete, rejected and cancelled are
// terminal.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusOpen      OrderStatus = "open"
	StatusComplete  OrderStatus = "complete"
	StatusRejected  OrderStatus = "rejected"
	StatusCancelled OrderStatus = "cancelled"
)

// IsTerminal reports whether the status admits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusComplete || s == StatusRejected || s == StatusCancelled
}

// MarketStatus represents the current market status.
type MarketStatus string

const (
	MarketOpen    MarketStatus = "OPEN"
	MarketPreOpen MarketStatus = "PRE_OPEN"
	MarketClosed  MarketStatus = "CLOSED"
)

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Quote represents a market quote with synthetic depth.
type Quote struct {
	Symbol      string
	Exchange    Exchange
	LTP         float64
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      int64
	BidPrice    float64
	AskPrice    float64
	BidQuantity int64
	AskQuantity int64
	Timestamp   time.Time
}

// Instrument represents a tradeable instrument.
type Instrument struct {
	Token    uint32
	Symbol   string
	Name     string
	Exchange Exchange
	Segment  string
	LotSize  int
	TickSize float64
	Expiry   time.Time
	Strike   float64
}

// AccountInfo represents broker account details.
type AccountInfo struct {
	ClientID        string
	Name            string
	Email           string
	Broker          string
	AvailableMargin float64
	UsedMargin      float64
	TotalMargin     float64
}
