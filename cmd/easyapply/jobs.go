package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/easyapply/internal/model"
	"github.com/amishk599/easyapply/internal/store"
)

var jobsFlags struct {
	limit  int
	status string
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List recent application outcomes",
	Long:  "Reads the outcome store and prints a table of the most recent jobs, newest first.",
	RunE:  runJobs,
}

func init() {
	jobsCmd.Flags().IntVarP(&jobsFlags.limit, "limit", "n", store.DefaultListLimit, "maximum rows")
	jobsCmd.Flags().StringVar(&jobsFlags.status, "status", "", "only rows with this status")
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	status := model.Status(jobsFlags.status)
	if status != "" && !status.Valid() {
		return fmt.Errorf("unknown status %q", jobsFlags.status)
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg, setupSettings(cfg, discardLogger()))
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.List(ctx, store.ListOptions{Limit: jobsFlags.limit, Status: status})
	if err != nil {
		return err
	}
	stats, err := st.Stats(ctx, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("%-12s %-10s %-25s %-30s %s\n", "Job ID", "Status", "Company", "Title", "Updated")
	fmt.Println(strings.Repeat("─", 96))
	for _, r := range records {
		fmt.Printf("%-12s %-10s %-25s %-30s %s\n",
			truncate(r.JobID, 12), r.Status, truncate(r.Company, 25), truncate(r.Title, 30),
			r.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}

	fmt.Printf("\nShown: %d | Applied total: %d | Today (%s): %d applied, %d skipped, %d failed\n",
		len(records), stats.TotalApplied, stats.Date, stats.AppliedToday, stats.SkippedToday, stats.FailedToday)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
