package cli

import (
	"context"

	"github.com/spf13/cobra"

	"angel-trader/pkg/utils"
)

// addAuthCommands wires login/logout/profile commands.
func addAuthCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "login",
		Short: "Login to the configured broker",
		Long: `Login to the configured broker.

In live mode this authenticates against the Angel One SmartAPI using the
client PIN and a TOTP code generated from the configured secret. Paper
mode logins always succeed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.activeBroker()
			if err != nil {
				return err
			}
			if err := b.Login(context.Background()); err != nil {
				return err
			}
			printSuccess("Logged in (%s mode)", app.Config.Trading.Mode)
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Logout from the configured broker",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.activeBroker()
			if err != nil {
				return err
			}
			if err := b.Logout(context.Background()); err != nil {
				return err
			}
			printSuccess("Logged out")
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "profile",
		Short: "Show broker account profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.activeBroker()
			if err != nil {
				return err
			}
			profile, err := b.GetProfile(context.Background())
			if err != nil {
				return err
			}
			printInfo("Client:           %s (%s)", profile.Name, profile.ClientID)
			printInfo("Broker:           %s", profile.Broker)
			printInfo("Available margin: %s", utils.FormatIndianCurrency(profile.AvailableMargin))
			printInfo("Used margin:      %s", utils.FormatIndianCurrency(profile.UsedMargin))
			return nil
		},
	})
}
