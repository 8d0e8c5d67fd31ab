package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/zayafka/internal/controller"
	"github.com/alfredjeanlab/zayafka/internal/events"
	"github.com/alfredjeanlab/zayafka/internal/session"
	"github.com/alfredjeanlab/zayafka/internal/ui"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Short:   "Delete one or more clinic requests",
	GroupID: "requests",
	Example: `  zd delete 65f1c2
  zd delete 65f1c2 65f1c3 --yes`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		ctrl, err := newController(cmd, nil)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		pub := newPublisher()
		defer pub.Close()

		in := bufio.NewReader(cmd.InOrStdin())
		out := cmd.OutOrStdout()
		deleted := 0
		for _, id := range args {
			ok, err := deleteOne(cmd.Context(), ctrl, id, yes, in, out)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(out, "Kept %s\n", id)
				continue
			}
			deleted++
			fmt.Fprintf(out, "Deleted %s\n", id)
			announceDeleted(cmd.Context(), pub, id)
		}

		if deleted > 0 && !jsonOutput {
			fmt.Fprintln(out, pageSummary(ctrl.View()))
		}
		return nil
	},
}

// deleteOne runs the two-phase delete for id, asking for confirmation on
// in/out unless yes is set. It reports whether the request was deleted.
func deleteOne(ctx context.Context, ctrl *controller.Controller, id string, yes bool, in io.Reader, out io.Writer) (bool, error) {
	if err := ctrl.RequestDelete(id); err != nil {
		return false, err
	}
	if !yes && !ui.Confirm(fmt.Sprintf("Delete request %s?", id), in, out) {
		ctrl.CancelDelete()
		return false, nil
	}
	if err := ctrl.ConfirmDelete(ctx); err != nil {
		if ctrl.View().ActionErr == nil {
			// The delete went through; only the follow-up refresh failed.
			logger.Warn("refresh_after_delete_failed", slog.String("id", id), slog.String("err", err.Error()))
			return true, nil
		}
		return false, err
	}
	return true, nil
}

func newPublisher() events.Publisher {
	if cfg.NATSURL == "" {
		return &events.NoopPublisher{}
	}
	pub, err := events.NewNATSPublisher(cfg.NATSURL)
	if err != nil {
		logger.Warn("nats_unavailable", slog.String("err", err.Error()))
		return &events.NoopPublisher{}
	}
	return pub
}

func announceDeleted(ctx context.Context, pub events.Publisher, id string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	ev := events.RequestDeleted{RequestID: id, DeletedBy: currentAdmin()}
	if err := pub.Publish(ctx, events.TopicRequestDeleted, ev); err != nil {
		logger.Warn("publish_failed", slog.String("topic", events.TopicRequestDeleted), slog.String("err", err.Error()))
	}
}

// currentAdmin names the logged-in admin for event attribution.
func currentAdmin() string {
	if tokenFlag != "" {
		return ""
	}
	fs, err := session.Open(store, profileName, nil)
	if err != nil {
		return ""
	}
	return fs.Profile().Admin.Email
}

func init() {
	addQueryFlags(deleteCmd)
	deleteCmd.Flags().BoolP("yes", "y", false, "delete without asking for confirmation")
}
