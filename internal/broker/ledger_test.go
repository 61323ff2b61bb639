package broker

import (
	"testing"

	"angel-trader/internal/models"
)

func bookFill(b *positionBook, side models.TransactionType, qty int, price float64) {
	b.ApplyFill("NIFTY25SEP24800CE", models.NFO, models.ProductIntraday, side, qty, price)
}

func TestLedgerWeightedAverageOnIncrease(t *testing.T) {
	b := newPositionBook()
	bookFill(b, models.TransactionBuy, 50, 100.0)
	bookFill(b, models.TransactionBuy, 50, 110.0)

	pos := b.Get("NIFTY25SEP24800CE")
	if pos == nil {
		t.Fatal("position missing after two buys")
	}
	if pos.Quantity != 100 {
		t.Errorf("quantity = %d, want 100", pos.Quantity)
	}
	if !approxEqual(pos.AveragePrice, 105.0, 1e-9) {
		t.Errorf("average price = %v, want 105", pos.AveragePrice)
	}
}

func TestLedgerReducingFillKeepsAverage(t *testing.T) {
	b := newPositionBook()
	bookFill(b, models.TransactionBuy, 100, 100.0)
	bookFill(b, models.TransactionSell, 40, 120.0)

	pos := b.Get("NIFTY25SEP24800CE")
	if pos == nil {
		t.Fatal("position missing after partial close")
	}
	if pos.Quantity != 60 {
		t.Errorf("quantity = %d, want 60", pos.Quantity)
	}
	if !approxEqual(pos.AveragePrice, 100.0, 1e-9) {
		t.Errorf("average price changed on reducing fill: %v, want 100", pos.AveragePrice)
	}
}

func TestLedgerFlatPositionRemoved(t *testing.T) {
	b := newPositionBook()
	bookFill(b, models.TransactionBuy, 50, 100.0)
	bookFill(b, models.TransactionSell, 50, 110.0)

	if pos := b.Get("NIFTY25SEP24800CE"); pos != nil {
		t.Errorf("position still present after full close: %+v", pos)
	}
	if len(b.Snapshot()) != 0 {
		t.Errorf("snapshot not empty after full close")
	}
}

func TestLedgerSignFlipResetsAverage(t *testing.T) {
	b := newPositionBook()
	bookFill(b, models.TransactionBuy, 50, 100.0)
	bookFill(b, models.TransactionSell, 80, 110.0)

	pos := b.Get("NIFTY25SEP24800CE")
	if pos == nil {
		t.Fatal("position missing after sign flip")
	}
	if pos.Quantity != -30 {
		t.Errorf("quantity = %d, want -30", pos.Quantity)
	}
	if !approxEqual(pos.AveragePrice, 110.0, 1e-9) {
		t.Errorf("average price after flip = %v, want fill price 110", pos.AveragePrice)
	}
}

func TestLedgerShortPosition(t *testing.T) {
	b := newPositionBook()
	bookFill(b, models.TransactionSell, 50, 200.0)

	pos := b.Get("NIFTY25SEP24800CE")
	if pos == nil {
		t.Fatal("short position missing")
	}
	if pos.Quantity != -50 {
		t.Errorf("quantity = %d, want -50", pos.Quantity)
	}

	// Shorts profit when the price falls.
	b.UpdateMark("NIFTY25SEP24800CE", 180.0)
	if !approxEqual(pos.PnL, 1000.0, 1e-9) {
		t.Errorf("short PnL = %v, want 1000", pos.PnL)
	}
	if !approxEqual(pos.PnLPercent, 10.0, 1e-9) {
		t.Errorf("short PnL%% = %v, want 10", pos.PnLPercent)
	}
}

func TestLedgerMarkToMarketLong(t *testing.T) {
	b := newPositionBook()
	bookFill(b, models.TransactionBuy, 100, 50.0)
	b.UpdateMark("NIFTY25SEP24800CE", 55.0)

	pos := b.Get("NIFTY25SEP24800CE")
	if !approxEqual(pos.PnL, 500.0, 1e-9) {
		t.Errorf("long PnL = %v, want 500", pos.PnL)
	}
	if !approxEqual(pos.PnLPercent, 10.0, 1e-9) {
		t.Errorf("long PnL%% = %v, want 10", pos.PnLPercent)
	}
	if pos.LastPrice != 55.0 {
		t.Errorf("last price = %v, want 55", pos.LastPrice)
	}
}

func TestLedgerDayAccumulation(t *testing.T) {
	b := newPositionBook()
	bookFill(b, models.TransactionBuy, 50, 100.0)
	bookFill(b, models.TransactionBuy, 50, 110.0)
	bookFill(b, models.TransactionSell, 30, 115.0)

	pos := b.Get("NIFTY25SEP24800CE")
	if pos.DayBuyQuantity != 100 {
		t.Errorf("day buy qty = %d, want 100", pos.DayBuyQuantity)
	}
	if !approxEqual(pos.DayBuyValue, 50*100.0+50*110.0, 1e-9) {
		t.Errorf("day buy value = %v", pos.DayBuyValue)
	}
	if pos.DaySellQuantity != 30 {
		t.Errorf("day sell qty = %d, want 30", pos.DaySellQuantity)
	}
	if !approxEqual(pos.DaySellValue, 30*115.0, 1e-9) {
		t.Errorf("day sell value = %v", pos.DaySellValue)
	}
}
