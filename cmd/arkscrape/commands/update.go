package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	updateIDs   *[]int64
	updateSpecs *[]string
)

func init() {
	updateIDs = updateCmd.Flags().Int64Slice("id", nil, "Re-fetch specific log ids")
	updateSpecs = updateCmd.Flags().StringSlice("spec", nil, "Re-fetch all logs containing the given specs")
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update BOSS [GATE] [DIFFICULTY]",
	Short: "Re-fetch stored logs by id or spec.",
	Args:  cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(*updateIDs) == 0 && len(*updateSpecs) == 0 {
			return fmt.Errorf("either --id or --spec must be set")
		}
		return fmt.Errorf("updating stored logs by id or spec is not implemented")
	},
}
