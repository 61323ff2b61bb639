package broker

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"angel-trader/internal/errors"
	"angel-trader/internal/logging"
	"angel-trader/internal/models"
)

// orderIDPrefix prefixes every simulated order id.
const orderIDPrefix = "PAPER_"

// usedMarginRate approximates exchange margin at 15% of position value.
const usedMarginRate = 0.15

// quoteSpreadPct is the synthetic bid/ask spread fraction of price.
const quoteSpreadPct = 0.001

// PaperBroker implements the Broker interface as a full order-execution
// simulator: it validates orders, decides fills against cached market
// prices, applies slippage and transaction costs, and keeps a cash
// ledger and position book.
//
// One PaperBroker owns all state it creates; a single mutex serialises
// every mutation, so a shared instance is safe for concurrent callers.
type PaperBroker struct {
	initialCapital float64
	slippagePct    float64
	costs          CostConfig

	cash            float64
	book            *positionBook
	holdings        map[string]*models.Holding
	orders          map[string]*models.Order
	history         []*models.Order
	marketPrices    map[string]float64
	totalOrders     int
	totalTrades     int
	totalCommission float64

	authenticated bool
	logger        zerolog.Logger
	mu            sync.RWMutex
}

// PaperConfig holds configuration for the paper broker.
type PaperConfig struct {
	InitialCapital float64
	SlippagePct    float64
	Costs          CostConfig
	Logger         zerolog.Logger
}

// NewPaperBroker creates a new paper trading broker.
func NewPaperBroker(cfg PaperConfig) *PaperBroker {
	if cfg.InitialCapital == 0 {
		cfg.InitialCapital = 1_000_000 // 10 lakhs default
	}
	if cfg.SlippagePct == 0 {
		cfg.SlippagePct = 0.005
	}
	if cfg.Costs == (CostConfig{}) {
		cfg.Costs = DefaultCostConfig()
	}

	p := &PaperBroker{
		initialCapital: cfg.InitialCapital,
		slippagePct:    cfg.SlippagePct,
		costs:          cfg.Costs,
		cash:           cfg.InitialCapital,
		book:           newPositionBook(),
		holdings:       make(map[string]*models.Holding),
		orders:         make(map[string]*models.Order),
		marketPrices:   make(map[string]float64),
		logger:         cfg.Logger,
	}
	p.logger.Info().Float64("capital", p.initialCapital).Msg("Initialized paper broker")
	return p
}

// Login marks the session authenticated. Always succeeds.
func (p *PaperBroker) Login(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.authenticated = true
	return nil
}

// Logout clears the authenticated flag.
func (p *PaperBroker) Logout(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.authenticated = false
	return nil
}

// IsAuthenticated reports the simulated session state.
func (p *PaperBroker) IsAuthenticated() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.authenticated
}

// GetProfile returns the simulated account profile.
func (p *PaperBroker) GetProfile(ctx context.Context) (*models.AccountInfo, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &models.AccountInfo{
		ClientID:        "PAPER001",
		Name:            "Paper Trading Account",
		Email:           "paper@trading.com",
		Broker:          "Paper",
		AvailableMargin: p.cash,
		UsedMargin:      p.usedMarginLocked(),
		TotalMargin:     p.initialCapital,
	}, nil
}

// GetLTP returns the cached price for a symbol, or zero if unknown.
func (p *PaperBroker) GetLTP(ctx context.Context, symbol string, exchange models.Exchange) (float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.marketPrices[symbol], nil
}

// SetPrice updates the cached market price for a symbol, marks any open
// position to the new price, and re-evaluates resting orders on that
// symbol. This is the synchronous substitute for a matching loop: open
// limit and stop orders only fill when a price update arrives.
func (p *PaperBroker) SetPrice(symbol string, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.marketPrices[symbol] = price
	p.book.UpdateMark(symbol, price)
	p.reevaluateLocked(symbol, price)
}

// GetQuote returns a synthetic quote around the cached price.
func (p *PaperBroker) GetQuote(ctx context.Context, symbol string, exchange models.Exchange) (*models.Quote, error) {
	p.mu.RLock()
	price := p.marketPrices[symbol]
	p.mu.RUnlock()
	if price == 0 {
		price = 100.0
	}
	spread := price * quoteSpreadPct
	return &models.Quote{
		Symbol:      symbol,
		Exchange:    exchange,
		LTP:         price,
		Open:        price * 0.99,
		High:        price * 1.01,
		Low:         price * 0.98,
		Close:       price,
		Volume:      int64(10000 + rand.IntN(90000)),
		BidPrice:    price - spread/2,
		AskPrice:    price + spread/2,
		BidQuantity: int64(100 + rand.IntN(900)),
		AskQuantity: int64(100 + rand.IntN(900)),
		Timestamp:   time.Now(),
	}, nil
}

// GetHistorical returns no data; the simulator has no historical feed.
func (p *PaperBroker) GetHistorical(ctx context.Context, req HistoricalRequest) ([]models.Candle, error) {
	return []models.Candle{}, nil
}

// PlaceOrder validates the request, decides the fill and returns the
// resulting order id. Validation failures are hard errors and create no
// order record; execution failures such as insufficient funds come back
// as a rejected order, not an error.
func (p *PaperBroker) PlaceOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	if err := ValidateOrderRequest(req); err != nil {
		return nil, errors.Wrap(err, "place order")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	orderID := p.newOrderIDLocked()
	p.totalOrders++

	reference := p.marketPrices[req.Symbol]
	if reference == 0 {
		if req.Price > 0 {
			reference = req.Price
		} else {
			reference = 100.0
		}
	}

	now := time.Now()
	order := &models.Order{
		ID:           orderID,
		Symbol:       req.Symbol,
		Exchange:     req.Exchange,
		Side:         req.Side,
		Type:         req.Type,
		Product:      req.Product,
		Quantity:     req.Quantity,
		Price:        req.Price,
		TriggerPrice: req.TriggerPrice,
		Variety:      req.Variety,
		Status:       models.StatusPending,
		PlacedAt:     now,
		UpdatedAt:    now,
	}
	p.orders[orderID] = order
	p.history = append(p.history, order)

	switch {
	case req.Type == models.OrderTypeMarket:
		p.executeLocked(order, ApplySlippage(reference, req.Side, p.slippagePct))
	case req.Type == models.OrderTypeLimit && limitSatisfied(req.Side, req.Price, reference):
		p.executeLocked(order, req.Price)
	default:
		order.Status = models.StatusOpen
	}

	logger := logging.WithSymbol(p.logger, req.Symbol)
	logger.Info().
		Str("order_id", orderID).
		Str("side", string(req.Side)).
		Int("quantity", req.Quantity).
		Str("status", string(order.Status)).
		Msg("Paper order placed")

	return &OrderResult{
		OrderID: orderID,
		Status:  order.Status,
		Message: order.Message,
	}, nil
}

// executeLocked fills a freshly placed order at the given price. Buys
// that cannot be funded are rejected in full; there are no partial
// fills.
func (p *PaperBroker) executeLocked(order *models.Order, execPrice float64) {
	if p.fillLocked(order, execPrice) {
		return
	}
	order.Status = models.StatusRejected
	order.Message = "Insufficient funds"
	order.UpdatedAt = time.Now()
}

// fillLocked attempts to fill an order, applying transaction costs and
// directional cash flow. It reports false for a buy the cash balance
// cannot cover, leaving the order untouched.
func (p *PaperBroker) fillLocked(order *models.Order, execPrice float64) bool {
	value := execPrice * float64(order.Quantity)
	costs := p.costs.Calculate(value, order.Side == models.TransactionSell)

	if order.Side == models.TransactionBuy {
		total := value + costs.Total
		if total > p.cash {
			return false
		}
		p.cash -= total
	} else {
		p.cash += value - costs.Total
	}

	p.totalCommission += costs.Total
	order.Status = models.StatusComplete
	order.FilledQty = order.Quantity
	order.AveragePrice = execPrice
	order.UpdatedAt = time.Now()

	p.book.ApplyFill(order.Symbol, order.Exchange, order.Product, order.Side, order.Quantity, execPrice)
	p.totalTrades++
	logging.LogTrade(p.logger, order.Symbol, string(order.Side), order.Quantity, execPrice)
	return true
}

// reevaluateLocked re-checks resting orders on a symbol against a fresh
// price, in placement sequence so fills follow price-time priority.
// Limit orders fill at their limit price once satisfiable; stop orders
// fill once the trigger is crossed. An open buy the cash balance cannot
// cover stays open: it may fund on a later update or be cancelled, and
// rejection is reserved for placement.
func (p *PaperBroker) reevaluateLocked(symbol string, price float64) {
	for _, order := range p.history {
		if order.Symbol != symbol || order.Status != models.StatusOpen {
			continue
		}
		switch order.Type {
		case models.OrderTypeLimit:
			if limitSatisfied(order.Side, order.Price, price) {
				p.fillLocked(order, order.Price)
			}
		case models.OrderTypeStopLoss, models.OrderTypeStopLossMarket:
			if stopTriggered(order.Side, order.TriggerPrice, price) {
				execPrice := order.TriggerPrice
				if execPrice == 0 {
					execPrice = order.Price
				}
				p.fillLocked(order, execPrice)
			}
		}
	}
}

// limitSatisfied reports whether a limit order is fillable against the
// reference price: buy limit at or above it, sell limit at or below it.
func limitSatisfied(side models.TransactionType, limit, reference float64) bool {
	if side == models.TransactionBuy {
		return limit >= reference
	}
	return limit <= reference
}

// stopTriggered reports whether a stop order's trigger has been crossed.
func stopTriggered(side models.TransactionType, trigger, price float64) bool {
	if trigger <= 0 {
		return false
	}
	if side == models.TransactionBuy {
		return price >= trigger
	}
	return price <= trigger
}

// ModifyOrder mutates the requested fields of a pending or open order.
// It reports false for a terminal or unknown order. Modification does
// not re-run the fill check.
func (p *PaperBroker) ModifyOrder(ctx context.Context, orderID string, req ModifyRequest) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	order, ok := p.orders[orderID]
	if !ok || order.Status.IsTerminal() {
		return false, nil
	}
	if req.Quantity > 0 {
		order.Quantity = req.Quantity
	}
	if req.Price > 0 {
		order.Price = req.Price
	}
	if req.TriggerPrice > 0 {
		order.TriggerPrice = req.TriggerPrice
	}
	if req.Type != "" {
		order.Type = req.Type
	}
	order.UpdatedAt = time.Now()
	return true, nil
}

// CancelOrder marks a pending or open order cancelled. It reports false
// for a terminal or unknown order.
func (p *PaperBroker) CancelOrder(ctx context.Context, orderID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	order, ok := p.orders[orderID]
	if !ok || order.Status.IsTerminal() {
		return false, nil
	}
	order.Status = models.StatusCancelled
	order.UpdatedAt = time.Now()
	logging.LogOrder(p.logger, orderID, order.Symbol, string(order.Side), string(order.Status))
	return true, nil
}

// GetOrderStatus returns a copy of the order record. Looking up an
// unknown id is a contract error.
func (p *PaperBroker) GetOrderStatus(ctx context.Context, orderID string) (*models.Order, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	order, ok := p.orders[orderID]
	if !ok {
		return nil, errors.Wrapf(errors.ErrOrderNotFound, "order %s", orderID)
	}
	copied := *order
	return &copied, nil
}

// GetOrderHistory returns copies of all orders in placement sequence.
func (p *PaperBroker) GetOrderHistory(ctx context.Context) ([]models.Order, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]models.Order, 0, len(p.history))
	for _, o := range p.history {
		out = append(out, *o)
	}
	return out, nil
}

// GetPositions returns copies of all open positions.
func (p *PaperBroker) GetPositions(ctx context.Context) ([]models.Position, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.book.Snapshot(), nil
}

// GetHoldings returns copies of all delivery holdings.
func (p *PaperBroker) GetHoldings(ctx context.Context) ([]models.Holding, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]models.Holding, 0, len(p.holdings))
	for _, h := range p.holdings {
		out = append(out, *h)
	}
	return out, nil
}

// ConvertPosition switches the product type of an open position. It
// reports false when no position exists for the symbol.
func (p *PaperBroker) ConvertPosition(ctx context.Context, symbol string, exchange models.Exchange, from, to models.ProductType) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pos := p.book.Get(symbol)
	if pos == nil {
		return false, nil
	}
	pos.Product = to
	return true, nil
}

// SquareOffPosition closes an open position by routing the opposite
// market order through PlaceOrder. A zero quantity closes the full
// position. A missing position is a contract error.
func (p *PaperBroker) SquareOffPosition(ctx context.Context, symbol string, exchange models.Exchange, product models.ProductType, quantity int) (string, error) {
	p.mu.RLock()
	pos := p.book.Get(symbol)
	if pos == nil {
		p.mu.RUnlock()
		return "", errors.Wrapf(errors.ErrPositionNotFound, "square off %s", symbol)
	}
	side := models.TransactionSell
	if pos.Quantity < 0 {
		side = models.TransactionBuy
	}
	qty := quantity
	if qty == 0 {
		qty = pos.Quantity
		if qty < 0 {
			qty = -qty
		}
	}
	p.mu.RUnlock()

	result, err := p.PlaceOrder(ctx, OrderRequest{
		Symbol:   symbol,
		Exchange: exchange,
		Side:     side,
		Quantity: qty,
		Type:     models.OrderTypeMarket,
		Product:  product,
	})
	if err != nil {
		return "", errors.NewOrderError("", symbol, "squareoff", "placing closing order", err)
	}
	return result.OrderID, nil
}

// GetMargin returns the simulated margin figures.
func (p *PaperBroker) GetMargin(ctx context.Context) (map[string]float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	used := p.usedMarginLocked()
	var unrealized float64
	for _, pos := range p.book.Snapshot() {
		unrealized += pos.PnL
	}
	return map[string]float64{
		"available_margin": p.cash,
		"used_margin":      used,
		"total_margin":     p.cash + used,
		"unrealized_pnl":   unrealized,
		"collateral":       0,
	}, nil
}

// GetRMSLimits returns the simulated risk-management limits.
func (p *PaperBroker) GetRMSLimits(ctx context.Context) (map[string]interface{}, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return map[string]interface{}{
		"max_position_size":  p.initialCapital * 0.10,
		"daily_loss_limit":   p.initialCapital * 0.05,
		"max_orders_per_day": 100,
	}, nil
}

// PortfolioValue returns cash plus the marked value of all positions.
func (p *PaperBroker) PortfolioValue() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	value := p.cash
	for _, pos := range p.book.Snapshot() {
		value += pos.LastPrice * float64(pos.Quantity)
	}
	return value
}

// Statistics summarises the simulated account.
type Statistics struct {
	InitialCapital  float64
	CurrentCash     float64
	PortfolioValue  float64
	TotalPnL        float64
	TotalPnLPercent float64
	TotalOrders     int
	TotalTrades     int
	TotalCommission float64
	OpenPositions   int
}

// GetStatistics returns a snapshot of the account statistics.
func (p *PaperBroker) GetStatistics() Statistics {
	portfolio := p.PortfolioValue()

	p.mu.RLock()
	defer p.mu.RUnlock()

	totalPnL := portfolio - p.initialCapital
	return Statistics{
		InitialCapital:  p.initialCapital,
		CurrentCash:     p.cash,
		PortfolioValue:  portfolio,
		TotalPnL:        totalPnL,
		TotalPnLPercent: totalPnL / p.initialCapital * 100,
		TotalOrders:     p.totalOrders,
		TotalTrades:     p.totalTrades,
		TotalCommission: p.totalCommission,
		OpenPositions:   len(p.book.positions),
	}
}

// Reset restores the broker to its initial state.
func (p *PaperBroker) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cash = p.initialCapital
	p.book = newPositionBook()
	p.holdings = make(map[string]*models.Holding)
	p.orders = make(map[string]*models.Order)
	p.history = nil
	p.marketPrices = make(map[string]float64)
	p.totalOrders = 0
	p.totalTrades = 0
	p.totalCommission = 0
}

func (p *PaperBroker) usedMarginLocked() float64 {
	var margin float64
	for _, pos := range p.book.positions {
		margin += abs(float64(pos.Quantity)) * pos.AveragePrice * usedMarginRate
	}
	return margin
}

// newOrderIDLocked generates a unique order id: the fixed prefix plus a
// 12-character uppercase random token. Collisions are checked against
// live records so ids are unique for the broker's lifetime.
func (p *PaperBroker) newOrderIDLocked() string {
	for {
		buf := make([]byte, 6)
		if _, err := crand.Read(buf); err != nil {
			// crypto/rand only fails on a broken system; fall back to time.
			return orderIDPrefix + strings.ToUpper(hex.EncodeToString([]byte(time.Now().Format("150405.000"))))[:12]
		}
		id := orderIDPrefix + strings.ToUpper(hex.EncodeToString(buf))
		if _, exists := p.orders[id]; !exists {
			return id
		}
	}
}

// Ensure PaperBroker implements Broker interface
var _ Broker = (*PaperBroker)(nil)
