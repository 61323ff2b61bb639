package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"angel-trader/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testOrder(id, symbol string, status models.OrderStatus, placedAt time.Time) *models.Order {
	return &models.Order{
		ID:           id,
		Symbol:       symbol,
		Exchange:     models.NFO,
		Side:         models.TransactionBuy,
		Type:         models.OrderTypeMarket,
		Product:      models.ProductIntraday,
		Quantity:     50,
		Price:        0,
		Status:       status,
		FilledQty:    50,
		AveragePrice: 100.5,
		PlacedAt:     placedAt,
		UpdatedAt:    placedAt,
	}
}

func TestSaveAndGetOrders(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	if err := s.SaveOrder(ctx, testOrder("PAPER_A1", "NIFTY25SEP24800CE", models.StatusComplete, now)); err != nil {
		t.Fatalf("SaveOrder: %v", err)
	}
	if err := s.SaveOrder(ctx, testOrder("PAPER_A2", "BANKNIFTY25SEP52000PE", models.StatusRejected, now.Add(time.Minute))); err != nil {
		t.Fatalf("SaveOrder: %v", err)
	}

	orders, err := s.GetOrders(ctx, OrderFilter{})
	if err != nil {
		t.Fatalf("GetOrders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	// Newest first.
	if orders[0].ID != "PAPER_A2" {
		t.Errorf("first order = %s, want PAPER_A2", orders[0].ID)
	}
	if orders[1].Quantity != 50 || orders[1].AveragePrice != 100.5 {
		t.Errorf("round-tripped order = %+v", orders[1])
	}
}

func TestSaveOrderUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	order := testOrder("PAPER_B1", "NIFTY25SEP24800CE", models.StatusOpen, now)
	if err := s.SaveOrder(ctx, order); err != nil {
		t.Fatalf("SaveOrder: %v", err)
	}

	order.Status = models.StatusComplete
	order.FilledQty = 50
	order.UpdatedAt = now.Add(time.Second)
	if err := s.SaveOrder(ctx, order); err != nil {
		t.Fatalf("SaveOrder update: %v", err)
	}

	orders, err := s.GetOrders(ctx, OrderFilter{})
	if err != nil {
		t.Fatalf("GetOrders: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("got %d orders after upsert, want 1", len(orders))
	}
	if orders[0].Status != models.StatusComplete {
		t.Errorf("status = %v, want complete after upsert", orders[0].Status)
	}
}

func TestGetOrdersFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Now().UTC().Truncate(time.Second)
	s.SaveOrder(ctx, testOrder("PAPER_C1", "NIFTY25SEP24800CE", models.StatusComplete, base))
	s.SaveOrder(ctx, testOrder("PAPER_C2", "NIFTY25SEP24800CE", models.StatusRejected, base.Add(time.Minute)))
	s.SaveOrder(ctx, testOrder("PAPER_C3", "SENSEX25SEP81000CE", models.StatusComplete, base.Add(2*time.Minute)))

	bySymbol, err := s.GetOrders(ctx, OrderFilter{Symbol: "NIFTY25SEP24800CE"})
	if err != nil {
		t.Fatalf("GetOrders: %v", err)
	}
	if len(bySymbol) != 2 {
		t.Errorf("symbol filter: %d orders, want 2", len(bySymbol))
	}

	byStatus, err := s.GetOrders(ctx, OrderFilter{Status: models.StatusComplete})
	if err != nil {
		t.Fatalf("GetOrders: %v", err)
	}
	if len(byStatus) != 2 {
		t.Errorf("status filter: %d orders, want 2", len(byStatus))
	}

	limited, err := s.GetOrders(ctx, OrderFilter{Limit: 1})
	if err != nil {
		t.Fatalf("GetOrders: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "PAPER_C3" {
		t.Errorf("limit filter: %+v, want only the newest order", limited)
	}

	byTime, err := s.GetOrders(ctx, OrderFilter{From: base.Add(30 * time.Second)})
	if err != nil {
		t.Fatalf("GetOrders: %v", err)
	}
	if len(byTime) != 2 {
		t.Errorf("time filter: %d orders, want 2", len(byTime))
	}
}

func TestSnapshots(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		snap := &AccountSnapshot{
			Timestamp:      base.Add(time.Duration(i) * time.Hour),
			Cash:           1_000_000 - float64(i)*1000,
			PortfolioValue: 1_000_000 + float64(i)*500,
			TotalPnL:       float64(i) * 500,
			TotalOrders:    i,
			TotalTrades:    i,
			OpenPositions:  i,
		}
		if err := s.SaveSnapshot(ctx, snap); err != nil {
			t.Fatalf("SaveSnapshot: %v", err)
		}
	}

	snaps, err := s.GetSnapshots(ctx, base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("GetSnapshots: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(snaps))
	}
	// Oldest first.
	if !snaps[0].Timestamp.Before(snaps[2].Timestamp) {
		t.Errorf("snapshots not in ascending time order")
	}
	if snaps[2].TotalPnL != 1000 {
		t.Errorf("last snapshot PnL = %v, want 1000", snaps[2].TotalPnL)
	}

	// A window before the first snapshot is empty.
	empty, err := s.GetSnapshots(ctx, base.Add(-2*time.Hour), base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("GetSnapshots: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("got %d snapshots in empty window", len(empty))
	}
}
