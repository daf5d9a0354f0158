package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pscheid92/anchorkeep/internal/platform/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of anchorctl",
	// No tab state is touched.
	PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
	PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "anchorctl %s\n", version.Get())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
