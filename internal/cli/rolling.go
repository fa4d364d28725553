package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"crypto-tracker/internal/app"
)

var (
	rollingCoin   string
	rollingDays   int
	rollingWindow int
)

var rollingCmd = &cobra.Command{
	Use:   "rolling",
	Short: "Display rolling-average prices for a coin",
	RunE: func(cmd *cobra.Command, args []string) error {
		if rollingDays <= 0 {
			return fmt.Errorf("--days must be greater than zero")
		}
		if rollingWindow <= 0 {
			return fmt.Errorf("--window must be greater than zero")
		}

		opts := app.RollingOptions{
			CoinID: rollingCoin,
			Days:   rollingDays,
			Window: rollingWindow,
		}

		return getApp().Rolling(cmd.Context(), opts)
	},
}

func init() {
	rollingCmd.Flags().StringVar(&rollingCoin, "coin", "bitcoin", "Coin id (e.g. bitcoin)")
	rollingCmd.Flags().IntVar(&rollingDays, "days", 30, "Number of trailing days to analyze")
	rollingCmd.Flags().IntVar(&rollingWindow, "window", 7, "Rolling window size in rows")
}
