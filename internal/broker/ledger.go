package broker

import (
	"angel-trader/internal/models"
)

// positionBook tracks one position per symbol with weighted-average cost
// basis accounting. It is not safe for concurrent use; the owning broker
// serialises access.
type positionBook struct {
	positions map[string]*models.Position
}

func newPositionBook() *positionBook {
	return &positionBook{positions: make(map[string]*models.Position)}
}

// ApplyFill updates the book for an executed trade.
//
// Fills in the direction of the current position recompute the weighted
// average entry price. Fills that reduce the position leave the average
// price untouched; the cost basis of the remaining lots does not change
// when part of the position is closed. A fill that flips the sign
// liquidates the old lots and opens new ones, so the average price
// resets to the fill price. A position that reaches exactly zero is
// removed from the book.
func (b *positionBook) ApplyFill(symbol string, exchange models.Exchange, product models.ProductType, side models.TransactionType, qty int, price float64) {
	delta := qty
	if side == models.TransactionSell {
		delta = -qty
	}

	pos, exists := b.positions[symbol]
	if !exists {
		pos = &models.Position{
			Symbol:       symbol,
			Exchange:     exchange,
			Product:      product,
			Quantity:     delta,
			AveragePrice: price,
		}
		b.positions[symbol] = pos
		b.accumulateDay(pos, side, qty, price)
		b.UpdateMark(symbol, price)
		return
	}

	oldQty := pos.Quantity
	newQty := oldQty + delta

	switch {
	case sameSign(oldQty, delta):
		// Increasing magnitude: weighted-average cost basis.
		totalValue := pos.AveragePrice*abs(float64(oldQty)) + price*float64(qty)
		pos.AveragePrice = totalValue / abs(float64(newQty))
	case newQty == 0:
		b.accumulateDay(pos, side, qty, price)
		delete(b.positions, symbol)
		return
	case !sameSign(oldQty, newQty):
		// Sign flip: old lots liquidated, reopened at the fill price.
		pos.AveragePrice = price
	}
	// Reducing fill with unchanged sign keeps the average price.

	pos.Quantity = newQty
	b.accumulateDay(pos, side, qty, price)
	b.UpdateMark(symbol, price)
}

// UpdateMark sets the last observed price and recomputes unrealized P&L.
func (b *positionBook) UpdateMark(symbol string, price float64) {
	pos, ok := b.positions[symbol]
	if !ok || pos.Quantity == 0 {
		return
	}
	pos.LastPrice = price
	if pos.Quantity > 0 {
		pos.PnL = (price - pos.AveragePrice) * float64(pos.Quantity)
	} else {
		pos.PnL = (pos.AveragePrice - price) * abs(float64(pos.Quantity))
	}
	base := pos.AveragePrice * abs(float64(pos.Quantity))
	if base > 0 {
		pos.PnLPercent = pos.PnL / base * 100
	} else {
		pos.PnLPercent = 0
	}
}

// Get returns the position for a symbol, or nil.
func (b *positionBook) Get(symbol string) *models.Position {
	return b.positions[symbol]
}

// Snapshot returns copies of all positions.
func (b *positionBook) Snapshot() []models.Position {
	out := make([]models.Position, 0, len(b.positions))
	for _, pos := range b.positions {
		out = append(out, *pos)
	}
	return out
}

func (b *positionBook) accumulateDay(pos *models.Position, side models.TransactionType, qty int, price float64) {
	if side == models.TransactionBuy {
		pos.DayBuyQuantity += qty
		pos.DayBuyValue += price * float64(qty)
	} else {
		pos.DaySellQuantity += qty
		pos.DaySellValue += price * float64(qty)
	}
}

func sameSign(a, b int) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
