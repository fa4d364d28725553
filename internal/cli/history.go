package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"crypto-tracker/internal/app"
)

var (
	historyCoin string
	historyDays int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Display price history for a coin",
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyDays <= 0 {
			return fmt.Errorf("--days must be greater than zero")
		}

		opts := app.HistoryOptions{
			CoinID: historyCoin,
			Days:   historyDays,
		}

		return getApp().History(cmd.Context(), opts)
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyCoin, "coin", "bitcoin", "Coin id (e.g. bitcoin)")
	historyCmd.Flags().IntVar(&historyDays, "days", 30, "Number of trailing days to display")
}
