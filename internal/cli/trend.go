package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"crypto-tracker/internal/app"
)

var (
	trendCoin string
	trendDays int
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Classify daily market trend for a coin",
	RunE: func(cmd *cobra.Command, args []string) error {
		if trendDays <= 0 {
			return fmt.Errorf("--days must be greater than zero")
		}

		opts := app.TrendOptions{
			CoinID: trendCoin,
			Days:   trendDays,
		}

		return getApp().Trend(cmd.Context(), opts)
	},
}

func init() {
	trendCmd.Flags().StringVar(&trendCoin, "coin", "bitcoin", "Coin id (e.g. bitcoin)")
	trendCmd.Flags().IntVar(&trendDays, "days", 30, "Number of trailing days to analyze")
}
