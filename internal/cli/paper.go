package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"angel-trader/internal/broker"
	"angel-trader/internal/logging"
	"angel-trader/internal/models"
	"angel-trader/internal/store"
	"angel-trader/pkg/utils"
)

// addPaperCommands wires the paper trading simulator commands.
func addPaperCommands(rootCmd *cobra.Command, app *App) {
	paperCmd := &cobra.Command{
		Use:   "paper",
		Short: "Paper trading simulator",
	}

	paperCmd.AddCommand(newPaperPlaceCmd(app))
	paperCmd.AddCommand(newPaperCancelCmd(app))
	paperCmd.AddCommand(newPaperOrdersCmd(app))
	paperCmd.AddCommand(newPaperPositionsCmd(app))
	paperCmd.AddCommand(newPaperSquareOffCmd(app))
	paperCmd.AddCommand(newPaperSetPriceCmd(app))
	paperCmd.AddCommand(newPaperStatsCmd(app))
	paperCmd.AddCommand(newPaperResetCmd(app))

	rootCmd.AddCommand(paperCmd)
}

// paperBroker returns the active broker as a PaperBroker, or an error
// when running in live mode.
func (app *App) paperBroker() (*broker.PaperBroker, error) {
	pb, ok := app.Broker.(*broker.PaperBroker)
	if !ok {
		return nil, fmt.Errorf("paper commands require trading mode 'paper' (current: %s)", app.Config.Trading.Mode)
	}
	return pb, nil
}

func newPaperPlaceCmd(app *App) *cobra.Command {
	var (
		exchange     string
		side         string
		quantity     int
		orderType    string
		product      string
		price        float64
		triggerPrice float64
	)

	cmd := &cobra.Command{
		Use:   "place SYMBOL",
		Short: "Place a simulated order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := app.paperBroker()
			if err != nil {
				return err
			}
			ctx := context.Background()

			result, err := pb.PlaceOrder(ctx, broker.OrderRequest{
				Symbol:       args[0],
				Exchange:     models.Exchange(exchange),
				Side:         models.TransactionType(side),
				Quantity:     quantity,
				Type:         models.OrderType(orderType),
				Product:      models.ProductType(product),
				Price:        price,
				TriggerPrice: triggerPrice,
			})
			if err != nil {
				return err
			}

			switch result.Status {
			case models.StatusComplete:
				printSuccess("Order %s complete", result.OrderID)
			case models.StatusRejected:
				printError("Order %s rejected: %s", result.OrderID, result.Message)
			default:
				printInfo("Order %s %s", result.OrderID, result.Status)
			}

			app.journalOrder(ctx, pb, result.OrderID)
			return nil
		},
	}

	cmd.Flags().StringVar(&exchange, "exchange", "NSE", "exchange (NSE, BSE, NFO)")
	cmd.Flags().StringVar(&side, "side", "BUY", "transaction type (BUY, SELL)")
	cmd.Flags().IntVar(&quantity, "qty", 1, "order quantity")
	cmd.Flags().StringVar(&orderType, "type", "MARKET", "order type (MARKET, LIMIT, STOPLOSS, STOPLOSS_MARKET)")
	cmd.Flags().StringVar(&product, "product", "INTRADAY", "product type (INTRADAY, DELIVERY, CARRYFORWARD)")
	cmd.Flags().Float64Var(&price, "price", 0, "limit price")
	cmd.Flags().Float64Var(&triggerPrice, "trigger", 0, "trigger price")

	return cmd
}

func newPaperCancelCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ORDER_ID",
		Short: "Cancel a pending or open simulated order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := app.paperBroker()
			if err != nil {
				return err
			}
			ok, err := pb.CancelOrder(context.Background(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				printError("Order %s cannot be cancelled", args[0])
				return nil
			}
			printSuccess("Order %s cancelled", args[0])
			return nil
		},
	}
}

func newPaperOrdersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List simulated orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := app.paperBroker()
			if err != nil {
				return err
			}
			orders, err := pb.GetOrderHistory(context.Background())
			if err != nil {
				return err
			}
			if len(orders) == 0 {
				printInfo("No orders")
				return nil
			}
			for _, o := range orders {
				printInfo("%-20s %-12s %-4s %6d %-8s %10.2f  %s",
					o.ID, o.Symbol, o.Side, o.Quantity, o.Type, o.AveragePrice, o.Status)
			}
			return nil
		},
	}
}

func newPaperPositionsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "positions",
		Short: "List open simulated positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := app.paperBroker()
			if err != nil {
				return err
			}
			positions, err := pb.GetPositions(context.Background())
			if err != nil {
				return err
			}
			if len(positions) == 0 {
				printInfo("No open positions")
				return nil
			}
			for _, pos := range positions {
				printInfo("%-12s %6d @ %10.2f  LTP %10.2f  P&L %s (%s)",
					pos.Symbol, pos.Quantity, pos.AveragePrice, pos.LastPrice,
					utils.FormatPnL(pos.PnL), utils.FormatPercent(pos.PnLPercent))
			}
			return nil
		},
	}
}

func newPaperSquareOffCmd(app *App) *cobra.Command {
	var exchange, product string
	var quantity int

	cmd := &cobra.Command{
		Use:   "squareoff SYMBOL",
		Short: "Close an open simulated position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := app.paperBroker()
			if err != nil {
				return err
			}
			ctx := context.Background()
			orderID, err := pb.SquareOffPosition(ctx, args[0],
				models.Exchange(exchange), models.ProductType(product), quantity)
			if err != nil {
				return err
			}
			printSuccess("Square-off order %s placed", orderID)
			app.journalOrder(ctx, pb, orderID)
			return nil
		},
	}

	cmd.Flags().StringVar(&exchange, "exchange", "NSE", "exchange")
	cmd.Flags().StringVar(&product, "product", "INTRADAY", "product type")
	cmd.Flags().IntVar(&quantity, "qty", 0, "quantity to close (0 = full position)")
	return cmd
}

func newPaperSetPriceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "setprice SYMBOL PRICE",
		Short: "Set the simulated market price for a symbol",
		Long: `Set the simulated market price for a symbol.

Updating a price marks open positions to market and re-evaluates any
resting limit or stop orders on that symbol.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := app.paperBroker()
			if err != nil {
				return err
			}
			var price float64
			if _, err := fmt.Sscanf(args[1], "%f", &price); err != nil || price <= 0 {
				return fmt.Errorf("invalid price: %s", args[1])
			}
			pb.SetPrice(args[0], price)
			printSuccess("%s price set to %.2f", args[0], price)
			return nil
		},
	}
}

func newPaperStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show simulated account statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := app.paperBroker()
			if err != nil {
				return err
			}
			stats := pb.GetStatistics()
			printInfo("Initial capital:  %s", utils.FormatIndianCurrency(stats.InitialCapital))
			printInfo("Current cash:     %s", utils.FormatIndianCurrency(stats.CurrentCash))
			printInfo("Portfolio value:  %s", utils.FormatIndianCurrency(stats.PortfolioValue))
			printInfo("Total P&L:        %s (%s)", utils.FormatPnL(stats.TotalPnL), utils.FormatPercent(stats.TotalPnLPercent))
			printInfo("Orders / trades:  %d / %d", stats.TotalOrders, stats.TotalTrades)
			printInfo("Commission paid:  %s", utils.FormatIndianCurrency(stats.TotalCommission))
			printInfo("Open positions:   %d", stats.OpenPositions)

			if app.Store != nil {
				snap := &store.AccountSnapshot{
					Timestamp:       time.Now(),
					Cash:            stats.CurrentCash,
					PortfolioValue:  stats.PortfolioValue,
					TotalPnL:        stats.TotalPnL,
					TotalOrders:     stats.TotalOrders,
					TotalTrades:     stats.TotalTrades,
					TotalCommission: stats.TotalCommission,
					OpenPositions:   stats.OpenPositions,
				}
				if err := app.Store.SaveSnapshot(context.Background(), snap); err != nil {
					app.Logger.Warn().Err(err).Msg("Failed to save snapshot")
				}
			}
			return nil
		},
	}
}

func newPaperResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the simulator to its initial state",
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := app.paperBroker()
			if err != nil {
				return err
			}
			pb.Reset()
			printSuccess("Simulator reset")
			return nil
		},
	}
}

// journalOrder records the order's final state in the journal store.
func (app *App) journalOrder(ctx context.Context, b broker.Broker, orderID string) {
	if app.Store == nil {
		return
	}
	logger := logging.WithOrderID(app.Logger, orderID)
	order, err := b.GetOrderStatus(ctx, orderID)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to fetch order for journal")
		return
	}
	if err := app.Store.SaveOrder(ctx, order); err != nil {
		logger.Warn().Err(err).Msg("Failed to journal order")
	}
}
