package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pscheid92/anchorkeep/internal/anchor"
)

var restoreCmd = &cobra.Command{
	Use:   "restore [URL]",
	Short: "Open a page and restore the saved anchor",
	Args:  cobra.MaximumNArgs(1),
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
		client, err := tab.AnchorClient(p)
		if err != nil {
			return err
		}

		outcome := anchor.NewRestorer(client).Restore(ctx, p)
		tab.Track(p)

		slog.Info("Anchor restore finished", "outcome", outcome.String(), "href", p.Href())
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", outcome, p.Href())
		if focused := p.Target(); focused != nil && outcome == anchor.Applied {
			fmt.Fprintf(cmd.OutOrStdout(), "focused <%s id=%q> %s\n", focused.Tag, focused.ID(), focused.Text())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
