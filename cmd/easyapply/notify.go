package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/easyapply/internal/model"
	"github.com/amishk599/easyapply/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Sends a sample applied outcome through the configured notifier and, when events.redis_url is set, the status stream.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustLoad(logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sinks := []model.EventSink{setupNotifier(cfg, &http.Client{Timeout: 30 * time.Second}, logger)}
	redisClient, err := setupRedis(ctx, cfg, logger)
	if err != nil {
		logger.Error("event stream unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		sinks = append(sinks, notifier.NewRedisStreamNotifier(redisClient, cfg.Events.Stream, logger))
	}

	if err := notifier.SendTestMessage(ctx, notifier.NewFanout(sinks...)); err != nil {
		logger.Error("test notification failed", "error", err)
		os.Exit(1)
	}
	logger.Info("test notification sent", "sinks", len(sinks), "type", cfg.Notification.Type)
	return nil
}
