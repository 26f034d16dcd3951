// Package cli implements spacectl, the operator tool for offline pricing checks
// and store maintenance.
package cli

import (
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"
)

var outputJSON bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "spacectl",
		Short:        "Inspect space pricing and availability, and maintain the booking store",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output JSON")

	root.AddCommand(quoteCmd())
	root.AddCommand(calendarCmd())
	root.AddCommand(sweepCmd())
	return root
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
