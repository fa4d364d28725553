package cli

import (
	"github.com/spf13/cobra"
)

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Display the latest price for every tracked coin",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Latest(cmd.Context())
	},
}
