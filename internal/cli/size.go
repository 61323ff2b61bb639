package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"angel-trader/internal/risk"
	"angel-trader/pkg/utils"
)

// addSizeCommand wires the position sizing command.
func addSizeCommand(rootCmd *cobra.Command, app *App) {
	var (
		method       string
		capital      float64
		price        float64
		stopLoss     float64
		lotSize      int
		positionPct  float64
		riskPct      float64
		winRate      float64
		winLossRatio float64
		kellyFrac    float64
		volatility   float64
	)

	cmd := &cobra.Command{
		Use:   "size",
		Short: "Calculate a position size",
		Long: `Calculate a recommended position size.

Methods: fixed_percentage, risk_based, kelly, volatility.
Quantities are rounded down to the instrument lot size.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result := app.Sizer.Calculate(risk.SizeRequest{
				Method:        method,
				Capital:       capital,
				Price:         price,
				StopLoss:      stopLoss,
				LotSize:       lotSize,
				PositionPct:   positionPct,
				RiskPct:       riskPct,
				WinRate:       winRate,
				WinLossRatio:  winLossRatio,
				KellyFraction: kellyFrac,
				Volatility:    volatility,
			})

			printInfo("Method:             %s", result.Method)
			printInfo("Quantity:           %d", result.Quantity)
			printInfo("Capital allocated:  %s", utils.FormatIndianCurrency(result.CapitalAllocated))
			printInfo("Risk amount:        %s", utils.FormatIndianCurrency(result.RiskAmount))

			keys := make([]string, 0, len(result.Details))
			for k := range result.Details {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				printInfo("  %-22s %.6f", k, result.Details[k])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&method, "method", "fixed_percentage", "sizing method")
	cmd.Flags().Float64Var(&capital, "capital", 1_000_000, "available capital")
	cmd.Flags().Float64Var(&price, "price", 0, "entry price")
	cmd.Flags().Float64Var(&stopLoss, "stop-loss", 0, "stop loss price (risk_based)")
	cmd.Flags().IntVar(&lotSize, "lot", 1, "instrument lot size")
	cmd.Flags().Float64Var(&positionPct, "position-pct", 0, "position fraction override (fixed_percentage)")
	cmd.Flags().Float64Var(&riskPct, "risk-pct", 0, "risk fraction override (risk_based)")
	cmd.Flags().Float64Var(&winRate, "win-rate", 0.5, "historical win rate (kelly)")
	cmd.Flags().Float64Var(&winLossRatio, "win-loss-ratio", 1.5, "average win / average loss (kelly)")
	cmd.Flags().Float64Var(&kellyFrac, "kelly-fraction", 0, "fraction of Kelly to apply (kelly)")
	cmd.Flags().Float64Var(&volatility, "volatility", 0, "annualized volatility (volatility)")
	_ = cmd.MarkFlagRequired("price")

	rootCmd.AddCommand(cmd)
}
