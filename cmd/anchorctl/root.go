package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pscheid92/anchorkeep/internal/browser"
	"github.com/pscheid92/anchorkeep/internal/platform/logging"
)

var (
	statePath string
	logLevel  string
	timeout   time.Duration

	tab *browser.Tab
)

var rootCmd = &cobra.Command{
	Use:   "anchorctl",
	Short: "Drive anchorkeep pages from the command line",
	Long: `anchorctl behaves like one browser tab against an anchorkeep server.
Cookies, session storage and the current location are kept in a state
file between runs, so "save" in one run can be restored by the next.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.InitLogger(logLevel, "text")

		t, err := browser.NewTab()
		if err != nil {
			return err
		}
		if err := t.LoadState(statePath); err != nil {
			return err
		}
		tab = t
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if tab == nil {
			return nil
		}
		return tab.SaveState(statePath)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&statePath, "state", defaultStatePath(), "tab state file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "timeout per command")
}

func defaultStatePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "anchorkeep", "tab.json")
}

// target resolves the URL argument, falling back to the tab's current page.
func target(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if tab.Current() == "" {
		return "", fmt.Errorf("no URL given and no current page in %s", statePath)
	}
	return tab.Current(), nil
}
