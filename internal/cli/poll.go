package cli

import (
	"github.com/spf13/cobra"
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Fetch and store a single poll cycle immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().PollOnce(cmd.Context())
	},
}
