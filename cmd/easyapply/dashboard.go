package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/easyapply/internal/model"
	"github.com/amishk599/easyapply/internal/store"
	"github.com/amishk599/easyapply/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Browse application outcomes interactively (TUI)",
	Long:  "Shows the outcome filter picker, then the job list with today's stats.",
	RunE:  runDashboardCmd,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboardCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Any log output before the alt-screen starts corrupts the display.
	st, err := openStore(context.Background(), cfg, setupSettings(cfg, discardLogger()))
	if err != nil {
		return err
	}
	defer st.Close()

	runDashboard(st)
	return nil
}

func runDashboard(st store.Store) {
	for {
		status, ok, err := tui.RunStatusPicker()
		if err != nil {
			fmt.Printf("Picker error: %v\n", err)
			return
		}
		if !ok {
			return
		}

		for {
			snap, err := tui.RunLoader("application history", loadSnapshot(st, status))
			if err != nil {
				fmt.Printf("Error loading outcomes: %v\n", err)
				break
			}

			action, err := tui.RunDashboard(snap, status)
			if err != nil {
				fmt.Printf("TUI error: %v\n", err)
			}
			if action == tui.ActionQuit {
				return
			}
			if action == tui.ActionBack {
				break
			}
			// ActionReload: load again with the same filter.
		}
	}
}

func loadSnapshot(st store.Store, status model.Status) tui.LoadFunc {
	return func(ctx context.Context) (tui.Snapshot, error) {
		jobs, err := st.List(ctx, store.ListOptions{Limit: store.DefaultListLimit, Status: status})
		if err != nil {
			return tui.Snapshot{}, err
		}
		stats, err := st.Stats(ctx, time.Now())
		if err != nil {
			return tui.Snapshot{}, err
		}
		return tui.Snapshot{Stats: stats, Jobs: jobs}, nil
	}
}
