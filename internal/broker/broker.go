// Package broker provides broker integration interfaces and implementations.
package broker

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"angel-trader/internal/errors"
	"angel-trader/internal/models"
)

// Broker defines the interface for broker operations. It is implemented
// by the paper trading simulator and by the Angel One live client.
type Broker interface {
	// Authentication
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	IsAuthenticated() bool

	// Account
	GetProfile(ctx context.Context) (*models.AccountInfo, error)
	GetMargin(ctx context.Context) (map[string]float64, error)
	GetRMSLimits(ctx context.Context) (map[string]interface{}, error)

	// Market Data
	GetLTP(ctx context.Context, symbol string, exchange models.Exchange) (float64, error)
	GetQuote(ctx context.Context, symbol string, exchange models.Exchange) (*models.Quote, error)
	GetHistorical(ctx context.Context, req HistoricalRequest) ([]models.Candle, error)

	// Orders
	PlaceOrder(ctx context.Context, req OrderRequest) (*OrderResult, error)
	ModifyOrder(ctx context.Context, orderID string, req ModifyRequest) (bool, error)
	CancelOrder(ctx context.Context, orderID string) (bool, error)
	GetOrderStatus(ctx context.Context, orderID string) (*models.Order, error)
	GetOrderHistory(ctx context.Context) ([]models.Order, error)

	// Positions & Holdings
	GetPositions(ctx context.Context) ([]models.Position, error)
	GetHoldings(ctx context.Context) ([]models.Holding, error)
	ConvertPosition(ctx context.Context, symbol string, exchange models.Exchange, from, to models.ProductType) (bool, error)
	SquareOffPosition(ctx context.Context, symbol string, exchange models.Exchange, product models.ProductType, quantity int) (string, error)
}

// OrderRequest carries the parameters for placing an order.
type OrderRequest struct {
	Symbol       string
	Exchange     models.Exchange
	Side         models.TransactionType
	Quantity     int
	Type         models.OrderType
	Product      models.ProductType
	Price        float64
	TriggerPrice float64
	Variety      string
}

// ModifyRequest carries the fields to change on a pending or open order.
// Zero values leave the corresponding field untouched.
type ModifyRequest struct {
	Quantity     int
	Price        float64
	TriggerPrice float64
	Type         models.OrderType
}

// OrderResult represents the outcome of an order placement. Business
// failures such as insufficient funds surface here as a rejected status,
// not as an error.
type OrderResult struct {
	OrderID string
	Status  models.OrderStatus
	Message string
}

// HistoricalRequest represents a request for historical candle data.
type HistoricalRequest struct {
	Symbol    string
	Exchange  models.Exchange
	Timeframe string
	From      time.Time
	To        time.Time
}

// Constructor builds a Broker for a given mode.
type Constructor func() (Broker, error)

// Factory maps broker mode names to constructors. It is created once at
// startup and passed explicitly to callers; there is no ambient registry.
type Factory struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewFactory creates an empty broker factory.
func NewFactory() *Factory {
	return &Factory{constructors: make(map[string]Constructor)}
}

// Register adds a constructor under the given mode name.
func (f *Factory) Register(mode string, c Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructors[strings.ToLower(mode)] = c
}

// Create builds a broker for the given mode. Unknown modes fail with an
// error listing the registered modes.
func (f *Factory) Create(mode string) (Broker, error) {
	f.mu.RLock()
	c, ok := f.constructors[strings.ToLower(mode)]
	f.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownMode, "mode %q, available modes: %v", mode, f.Modes())
	}
	return c()
}

// Modes returns the registered mode names, sorted.
func (f *Factory) Modes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	modes := make([]string, 0, len(f.constructors))
	for m := range f.constructors {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}
