package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pscheid92/anchorkeep/internal/history"
)

var backCmd = &cobra.Command{
	Use:   "back [URL]",
	Short: "Follow the page's back link",
	Long: `back loads the page (the current one by default) and follows its back
link to the previous application page in this tab's history. Nothing
happens when the tab did not arrive from the same host.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawURL, err := target(args)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		p, err := tab.Open(ctx, rawURL)
		if err != nil {
			return err
		}
		previous, ok := history.Back(p)
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "no navigation")
			return nil
		}

		p, err = tab.Open(ctx, previous)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p.Href())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backCmd)
}
