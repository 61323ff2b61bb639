// Package cli provides the command-line interface for the trading application.
package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"angel-trader/internal/broker"
	"angel-trader/internal/config"
	"angel-trader/internal/logging"
	"angel-trader/internal/risk"
	"angel-trader/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Factory *broker.Factory
	Broker  broker.Broker
	Sizer   *risk.PositionSizer
	Store   store.DataStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
		Sizer:  risk.NewPositionSizer(cfg.Risk, "", logger),
	}

	app.Factory = NewBrokerFactory(cfg, logger)

	b, err := app.Factory.Create(cfg.Trading.Mode)
	if err != nil {
		logger.Warn().Err(err).Str("mode", cfg.Trading.Mode).Msg("Failed to create broker")
	} else {
		app.Broker = b
	}

	dbPath := config.DefaultConfigDir() + "/trader.db"
	dataStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, journaling unavailable")
	} else {
		app.Store = dataStore
	}

	rootCmd := &cobra.Command{
		Use:   "trader",
		Short: "Angel Trader - order-execution simulator and risk sizing CLI",
		Long: `Angel Trader simulates order execution for the Indian stock market.

It offers a paper broker with realistic slippage and transaction costs,
a position-sizing risk engine, and a thin Angel One SmartAPI client for
live account data.

Use 'trader help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/angel-trader)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addPaperCommands(rootCmd, app)
	addSizeCommand(rootCmd, app)
	addAuthCommands(rootCmd, app)
	addVersionCommand(rootCmd)

	return rootCmd
}

// NewBrokerFactory builds the broker registry for the configured modes.
func NewBrokerFactory(cfg *config.Config, logger zerolog.Logger) *broker.Factory {
	factory := broker.NewFactory()

	factory.Register("paper", func() (broker.Broker, error) {
		return broker.NewPaperBroker(broker.PaperConfig{
			InitialCapital: cfg.Simulator.InitialCapital,
			SlippagePct:    cfg.Simulator.SlippagePct,
			Costs: broker.CostConfig{
				BrokeragePerOrder: cfg.Simulator.BrokeragePerOrder,
				STTRate:           cfg.Simulator.STTRate,
				ExchangeRate:      cfg.Simulator.ExchangeRate,
				GSTRate:           cfg.Simulator.GSTRate,
				SEBIRate:          cfg.Simulator.SEBIRate,
				StampDutyRate:     cfg.Simulator.StampDutyRate,
			},
			Logger: logger,
		}), nil
	})

	factory.Register("live", func() (broker.Broker, error) {
		creds := cfg.Credentials.AngelOne
		if creds.APIKey == "" {
			return nil, fmt.Errorf("live mode requires Angel One credentials in credentials.toml")
		}
		return broker.NewAngelOneBroker(broker.AngelConfig{
			APIKey:     creds.APIKey,
			ClientID:   creds.ClientID,
			PIN:        creds.PIN,
			TOTPSecret: creds.TOTPSecret,
		}), nil
	})

	return factory
}

// activeBroker returns the configured broker, or an error when startup
// could not create one (bad mode, missing credentials).
func (app *App) activeBroker() (broker.Broker, error) {
	if app.Broker == nil {
		return nil, fmt.Errorf("no broker available for mode %q, check configuration and credentials", app.Config.Trading.Mode)
	}
	return app.Broker, nil
}

func addVersionCommand(rootCmd *cobra.Command) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("angel-trader %s\n", Version)
		},
	})
}
