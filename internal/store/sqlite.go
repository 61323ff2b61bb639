package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"angel-trader/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based journal.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Orders table for the paper trading journal
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		exchange TEXT NOT NULL,
		side TEXT NOT NULL,
		order_type TEXT NOT NULL,
		product TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		price REAL NOT NULL,
		trigger_price REAL NOT NULL,
		status TEXT NOT NULL,
		filled_qty INTEGER NOT NULL,
		average_price REAL NOT NULL,
		message TEXT,
		placed_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_orders_symbol ON orders(symbol);
	CREATE INDEX IF NOT EXISTS idx_orders_placed_at ON orders(placed_at);

	-- Account statistics snapshots
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		cash REAL NOT NULL,
		portfolio_value REAL NOT NULL,
		total_pnl REAL NOT NULL,
		total_orders INTEGER NOT NULL,
		total_trades INTEGER NOT NULL,
		total_commission REAL NOT NULL,
		open_positions INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_timestamp ON snapshots(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveOrder upserts an order record into the journal.
func (s *SQLiteStore) SaveOrder(ctx context.Context, order *models.Order) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (id, symbol, exchange, side, order_type, product, quantity,
			price, trigger_price, status, filled_qty, average_price, message, placed_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			quantity = excluded.quantity,
			price = excluded.price,
			trigger_price = excluded.trigger_price,
			status = excluded.status,
			filled_qty = excluded.filled_qty,
			average_price = excluded.average_price,
			message = excluded.message,
			updated_at = excluded.updated_at`,
		order.ID, order.Symbol, string(order.Exchange), string(order.Side),
		string(order.Type), string(order.Product), order.Quantity,
		order.Price, order.TriggerPrice, string(order.Status),
		order.FilledQty, order.AveragePrice, order.Message,
		order.PlacedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving order %s: %w", order.ID, err)
	}
	return nil
}

// GetOrders returns journal orders matching the filter, newest first.
func (s *SQLiteStore) GetOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := `SELECT id, symbol, exchange, side, order_type, product, quantity,
		price, trigger_price, status, filled_qty, average_price, message, placed_at, updated_at
		FROM orders WHERE 1=1`
	var args []interface{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if !filter.From.IsZero() {
		query += " AND placed_at >= ?"
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += " AND placed_at <= ?"
		args = append(args, filter.To)
	}
	query += " ORDER BY placed_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		var exchange, side, orderType, product, status string
		if err := rows.Scan(&o.ID, &o.Symbol, &exchange, &side, &orderType, &product,
			&o.Quantity, &o.Price, &o.TriggerPrice, &status, &o.FilledQty,
			&o.AveragePrice, &o.Message, &o.PlacedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		o.Exchange = models.Exchange(exchange)
		o.Side = models.TransactionType(side)
		o.Type = models.OrderType(orderType)
		o.Product = models.ProductType(product)
		o.Status = models.OrderStatus(status)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// SaveSnapshot appends an account statistics snapshot.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *AccountSnapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (timestamp, cash, portfolio_value, total_pnl,
			total_orders, total_trades, total_commission, open_positions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.Timestamp, snap.Cash, snap.PortfolioValue, snap.TotalPnL,
		snap.TotalOrders, snap.TotalTrades, snap.TotalCommission, snap.OpenPositions)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// GetSnapshots returns snapshots in a time range, oldest first.
func (s *SQLiteStore) GetSnapshots(ctx context.Context, from, to time.Time) ([]AccountSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, cash, portfolio_value, total_pnl,
			total_orders, total_trades, total_commission, open_positions
		FROM snapshots WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []AccountSnapshot
	for rows.Next() {
		var snap AccountSnapshot
		if err := rows.Scan(&snap.Timestamp, &snap.Cash, &snap.PortfolioValue,
			&snap.TotalPnL, &snap.TotalOrders, &snap.TotalTrades,
			&snap.TotalCommission, &snap.OpenPositions); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStore implements DataStore interface
var _ DataStore = (*SQLiteStore)(nil)
