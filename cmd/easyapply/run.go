package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/easyapply/internal/model"
	"github.com/amishk599/easyapply/internal/store"
)

var runFlags struct {
	positions []string
	locations []string
	keywords  []string
	remote    bool
	anyApply  bool
	maxJobs   int
	reapply   bool
	dryRun    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run once in the foreground",
	Long:  "Signs in, applies to the discovered jobs and exits. Filters default to run.defaults from the config.",
	RunE:  runOnce,
}

func init() {
	f := runCmd.Flags()
	f.StringSliceVar(&runFlags.positions, "position", nil, "position to search for (repeatable)")
	f.StringSliceVar(&runFlags.locations, "location", nil, "location to search in (repeatable)")
	f.StringSliceVar(&runFlags.keywords, "keyword", nil, "keep only jobs whose title or company contains a keyword (repeatable)")
	f.BoolVar(&runFlags.remote, "remote", false, "remote jobs only")
	f.BoolVar(&runFlags.anyApply, "any-apply", false, "do not restrict the search to quick-apply postings")
	f.IntVar(&runFlags.maxJobs, "max-jobs", 0, "maximum jobs this run (default from config)")
	f.BoolVar(&runFlags.reapply, "reapply", false, "do not skip jobs already applied to")
	f.BoolVar(&runFlags.dryRun, "dry-run", false, "do not persist outcomes")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustLoad(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, logger := setupTelemetry(ctx, cfg, logger)
	defer shutdownTelemetry(tel, logger)

	s := setupSettings(cfg, logger)

	var st store.Store
	if runFlags.dryRun {
		logger.Info("dry-run mode enabled, no outcomes will be stored")
		st = store.NewNopStore()
	} else {
		var err error
		st, err = openStore(ctx, cfg, s)
		if err != nil {
			logger.Error("failed to open store", "error", err)
			os.Exit(1)
		}
	}
	defer st.Close()

	redisClient, err := setupRedis(ctx, cfg, logger)
	if err != nil {
		logger.Warn("event stream disabled", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	coord := buildCoordinator(ctx, cfg, s, st, redisClient, logger)
	if err := coord.Run(ctx, runFilters(cmd, cfg.Run.Defaults)); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
	return nil
}

// runFilters overlays the flags the user set on defaults.
func runFilters(cmd *cobra.Command, defaults model.SearchFilters) model.SearchFilters {
	f := defaults
	flags := cmd.Flags()
	if flags.Changed("position") {
		f.Positions = runFlags.positions
	}
	if flags.Changed("location") {
		f.Locations = runFlags.locations
	}
	if flags.Changed("keyword") {
		f.Keywords = runFlags.keywords
	}
	if flags.Changed("remote") {
		f.RemoteOnly = runFlags.remote
	}
	if flags.Changed("any-apply") {
		f.EasyApplyOnly = !runFlags.anyApply
	}
	if flags.Changed("max-jobs") {
		f.MaxJobsPerRun = runFlags.maxJobs
	}
	if flags.Changed("reapply") {
		f.SkipApplied = !runFlags.reapply
	}
	return f
}
