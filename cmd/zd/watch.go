package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/zayafka/internal/controller"
	"github.com/alfredjeanlab/zayafka/internal/events"
	"github.com/alfredjeanlab/zayafka/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Show the request list and refresh it when requests change",
	GroupID: "views",
	Example: `  zd watch --department Cardiology
  zd watch --interval 30s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		once, _ := cmd.Flags().GetBool("once")

		ctrl, err := newController(cmd, nil)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		ctrl.OnChange(watchRenderer(cmd.OutOrStdout(), time.Now))

		ctx := cmd.Context()
		if err := ctrl.Refresh(ctx); err != nil {
			return err
		}
		if once {
			return nil
		}

		if cfg.NATSURL != "" {
			return watchNATS(ctx, cfg.NATSURL, ctrl)
		}
		return watchPoll(ctx, interval, ctrl)
	},
}

// watchRenderer prints every settled or failed view. It serializes output
// because scheduled refreshes settle on timer goroutines.
func watchRenderer(w io.Writer, now func() time.Time) func(controller.View) {
	var mu sync.Mutex
	return func(v controller.View) {
		if v.Status != controller.StatusSettled && v.Status != controller.StatusFailed {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if jsonOutput {
			_ = printPageJSON(w, v)
			return
		}
		fmt.Fprintln(w, ui.RenderMuted("── "+now().Format("15:04:05")+" ──"))
		printPage(w, v)
	}
}

// watchNATS subscribes to request events and schedules a debounced refresh
// for each one.
func watchNATS(ctx context.Context, natsURL string, ctrl *controller.Controller) error {
	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", slog.Any("err", err))
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats_reconnected")
			// Events may have been missed while disconnected.
			_ = ctrl.Schedule(nil)
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(events.TopicAllRequests)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	return forwardEvents(ctx, ch, ctrl)
}

// forwardEvents schedules a refresh for every message until ctx ends or ch
// closes.
func forwardEvents(ctx context.Context, ch <-chan events.Message, ctrl *controller.Controller) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			logger.Debug("request_event", slog.String("action", msg.Action()), slog.String("id", msg.RequestID()))
			if err := ctrl.Schedule(nil); err != nil {
				return err
			}
		}
	}
}

// watchPoll refreshes at the given interval.
func watchPoll(ctx context.Context, interval time.Duration, ctrl *controller.Controller) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		// Failures are rendered by the watch renderer; keep polling.
		_ = ctrl.Refresh(ctx)
	}
}

func init() {
	addQueryFlags(watchCmd)
	watchCmd.Flags().Duration("interval", 10*time.Second, "polling interval when NATS is not configured")
	watchCmd.Flags().Bool("once", false, "print the list once and exit")
}
