package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/existflow/neocount/internal/logger"
	"github.com/existflow/neocount/internal/model"
	"github.com/existflow/neocount/internal/notify"
	"github.com/existflow/neocount/internal/store"
	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Run the daily reminder in the foreground",
	Long: `Check the clock on a schedule and show one reminder a day at the
configured time (notify.at in ~/.neocount/config.yaml).

Examples:
  neocount notify
  neocount notify --once`,
	RunE: runNotify,
}

var notifyOnce bool

func init() {
	notifyCmd.Flags().BoolVar(&notifyOnce, "once", false, "Show the reminder now and exit")
}

func runNotify(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := rt.store(ctx)
	if err != nil {
		return err
	}
	events := func() []model.Event { return listOrEmpty(ctx, s) }

	if notifyOnce {
		title, body := reminderText(events(), time.Now())
		var n notify.Notifier = notify.NewDesktop()
		if n.Permission() == notify.PermissionUnsupported {
			n = notify.LogNotifier{}
		}
		if err := n.Notify(ctx, title, body); err != nil {
			return fmt.Errorf("failed to show reminder: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🔔 %s: %s\n", title, body)
		return nil
	}

	poller, err := rt.newPoller(events)
	if err != nil {
		return err
	}
	if err := poller.Start(ctx); err != nil {
		return err
	}
	defer poller.Stop()

	fmt.Fprintf(cmd.OutOrStdout(), "⏰ Reminding daily at %s, press Ctrl+C to stop\n", cfg.Notify.At)
	<-ctx.Done()
	return nil
}

// listOrEmpty reads the events for a reminder, logging failures
func listOrEmpty(ctx context.Context, s store.Store) []model.Event {
	events, err := s.List(ctx)
	if err != nil {
		logger.Warn("Failed to list countdowns for reminder", logger.F("error", err))
		return nil
	}
	return events
}
