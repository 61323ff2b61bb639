// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"angel-trader/internal/models"
)

// DataStore defines the interface for the trading journal.
type DataStore interface {
	// Orders
	SaveOrder(ctx context.Context, order *models.Order) error
	GetOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error)

	// Account snapshots
	SaveSnapshot(ctx context.Context, snap *AccountSnapshot) error
	GetSnapshots(ctx context.Context, from, to time.Time) ([]AccountSnapshot, error)

	Close() error
}

// OrderFilter narrows order journal queries. Zero values match all.
type OrderFilter struct {
	Symbol string
	Status models.OrderStatus
	From   time.Time
	To     time.Time
	Limit  int
}

// AccountSnapshot is a point-in-time record of simulator statistics.
type AccountSnapshot struct {
	Timestamp       time.Time
	Cash            float64
	PortfolioValue  float64
	TotalPnL        float64
	TotalOrders     int
	TotalTrades     int
	TotalCommission float64
	OpenPositions   int
}
