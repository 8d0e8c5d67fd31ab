package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/zayafka/internal/controller"
	"github.com/alfredjeanlab/zayafka/internal/export"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Download the filtered request list as a spreadsheet",
	GroupID: "requests",
	Example: `  zd export --department Neurology --out ~/Downloads
  zd export --search ali --s3
  zd export --every 24h --s3`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		every, _ := cmd.Flags().GetDuration("every")
		if every < 0 {
			return fmt.Errorf("invalid --every %s (must be positive)", every)
		}
		sink, err := sinkFromFlags(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		ctrl, err := newController(cmd, sink)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		if every > 0 {
			return exportEvery(cmd, ctrl, every)
		}

		loc, err := ctrl.ExportCurrentView(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			data, _ := json.Marshal(map[string]string{
				"location": loc,
				"params":   ctrl.Query().Params().Encode(),
			})
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", loc)
		return nil
	},
}

// exportEvery repeats the export at the given interval until interrupted.
// Each run is named after its own date, so a daily schedule keeps one file
// per day.
func exportEvery(cmd *cobra.Command, ctrl *controller.Controller, every time.Duration) error {
	out := cmd.OutOrStdout()
	sched := export.NewScheduler(func(ctx context.Context) (string, error) {
		loc, err := ctrl.ExportCurrentView(ctx)
		if err == nil {
			fmt.Fprintf(out, "Exported to %s\n", loc)
		}
		return loc, err
	}, every, logger)

	sched.Start(cmd.Context())
	<-cmd.Context().Done()
	sched.Stop()

	runs, failures := sched.Stats()
	fmt.Fprintf(out, "%d exports, %d failed\n", runs, failures)
	return nil
}

func init() {
	addQueryFlags(exportCmd)
	addSinkFlags(exportCmd)
	exportCmd.Flags().Duration("every", 0, "repeat the export at this interval until interrupted (e.g. 24h)")
}
