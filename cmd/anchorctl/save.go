package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pscheid92/anchorkeep/internal/anchor"
	"github.com/pscheid92/anchorkeep/internal/page"
)

var (
	triggerID   string
	useKeyboard bool
)

var saveCmd = &cobra.Command{
	Use:   "save [URL#anchor]",
	Short: "Open a page and activate its save-anchor button",
	Long: `save loads the page and activates the save button, which posts the
page's current fragment to the server. A URL without a fragment sends
nothing.`,
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
		trigger := p.Element(triggerID)
		if trigger == nil {
			return fmt.Errorf("page %s has no element #%s", p.Href(), triggerID)
		}
		client, err := tab.AnchorClient(p)
		if err != nil {
			return err
		}

		saver := anchor.NewSaver(client)
		var sent bool
		trigger.OnActivate(func() { sent = saver.Save(p) })
		p.HardenButtons()

		if useKeyboard {
			trigger.KeyDown(page.KeySpace)
		} else {
			trigger.Click()
		}
		saver.Wait()

		if !sent {
			slog.Info("No anchor on page, nothing sent", "href", p.Href())
			fmt.Fprintln(cmd.OutOrStdout(), "nothing to save")
			return nil
		}
		slog.Info("Anchor sent", "href", p.Href(), "anchor", p.Fragment())
		fmt.Fprintf(cmd.OutOrStdout(), "sent %q\n", p.Fragment())
		return nil
	},
}

func init() {
	saveCmd.Flags().StringVar(&triggerID, "trigger", "save-anchor", "id of the save button")
	saveCmd.Flags().BoolVar(&useKeyboard, "keyboard", false, "press space on the button instead of clicking it")
	rootCmd.AddCommand(saveCmd)
}
