package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/babelkb/babelkb/internal/core/domain"
	"github.com/babelkb/babelkb/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the content directory and keep indexes in sync",
	Long: `Watches the configured content directory for entry changes and
feeds every create, edit and delete through the reindex pipeline.
Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if contentPlatform == nil {
		return errors.New("content platform not configured")
	}
	if coordinator == nil {
		return errors.New("reindex coordinator not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	contentPlatform.Subscribe(func(event domain.EntryEvent) {
		if err := coordinator.HandleEvent(ctx, event); err != nil {
			logger.Warn("Event %s for %s failed: %v", event.Kind, event.EntryID, err)
		}
	})

	cmd.Println("Watching for entry changes. Press Ctrl+C to stop.")
	if err := contentPlatform.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
