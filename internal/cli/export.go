package cli

import (
	"github.com/spf13/cobra"

	"crypto-tracker/internal/app"
)

var (
	exportCSVPath   string
	exportPNGPath   string
	exportCoin      string
	exportDays      int
	exportMaxPoints int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored observations as CSV and/or a PNG price chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			CSVPath:   exportCSVPath,
			PNGPath:   exportPNGPath,
			CoinID:    exportCoin,
			Days:      exportDays,
			MaxPoints: exportMaxPoints,
		}

		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV data (all coins)")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write PNG chart (one coin)")
	exportCmd.Flags().StringVar(&exportCoin, "coin", "bitcoin", "Coin id to chart")
	exportCmd.Flags().IntVar(&exportDays, "days", 30, "Number of trailing days to chart")
	exportCmd.Flags().IntVar(&exportMaxPoints, "max-points", 0, "Maximum data points to export (defaults to config)")
}
