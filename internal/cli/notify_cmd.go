package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyike/WealthGo/internal/display"
	"github.com/dyike/WealthGo/internal/models"
	"github.com/dyike/WealthGo/internal/notify"
)

func newNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notify"},
		Short:   "Show new-article notifications",
		Long: `Fetch notifications for the configured client_id. --watch keeps polling
every notification_interval_sec until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			watch, _ := cmd.Flags().GetBool("watch")
			markRead, _ := cmd.Flags().GetBool("mark-read")

			app, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer app.Close()

			poller := notify.NewPoller(app.API, app.Config.ClientID,
				notify.WithInterval(app.Config.NotificationInterval()),
				notify.WithLogger(app.Logger.Named("notify")))

			ctx := commandContext(cmd)
			if watch {
				return watchNotifications(ctx, app, poller, markRead)
			}

			updated, err := poller.Poll(ctx)
			if err != nil {
				display.DisplayError(err, "loading notifications")
				return err
			}
			if !updated {
				display.DisplayEmpty("No new notifications")
				return nil
			}
			current := poller.Current()
			printNotifications(app, current)
			if markRead {
				return acknowledge(ctx, poller, current)
			}
			return nil
		},
	}
	cmd.Flags().Bool("watch", false, "Keep polling until interrupted")
	cmd.Flags().Bool("mark-read", false, "Mark shown notifications as read")
	return cmd
}

func watchNotifications(ctx context.Context, app *App, poller *notify.Poller, markRead bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	display.DisplayInfo(fmt.Sprintf("Watching notifications for %s every %s (Ctrl+C to stop)",
		app.Config.ClientID, app.Config.NotificationInterval()))

	seen := map[string]bool{}
	err := poller.Run(ctx, func(ns []models.Notification) {
		var fresh []models.Notification
		for _, n := range ns {
			if !seen[n.ID] {
				seen[n.ID] = true
				fresh = append(fresh, n)
			}
		}
		if len(fresh) == 0 {
			return
		}
		printNotifications(app, fresh)
		if markRead {
			_ = acknowledge(ctx, poller, fresh)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printNotifications(app *App, ns []models.Notification) {
	for _, n := range ns {
		fmt.Fprintln(app.Out, toastStyle.Render(notify.Format(n, time.Local)))
	}
}

func acknowledge(ctx context.Context, poller *notify.Poller, ns []models.Notification) error {
	ids := notify.IDs(ns)
	if err := poller.MarkRead(ctx, ids); err != nil {
		display.DisplayError(err, "marking notifications read")
		return err
	}
	display.DisplaySuccess(fmt.Sprintf("Marked %d notification(s) read", len(ids)))
	return nil
}
