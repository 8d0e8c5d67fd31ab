package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/zayafka/internal/controller"
	"github.com/alfredjeanlab/zayafka/internal/export"
	"github.com/alfredjeanlab/zayafka/internal/report"
)

var reportCmd = &cobra.Command{
	Use:     "report",
	Short:   "Render the current page of requests as a PDF",
	GroupID: "requests",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sink, err := sinkFromFlags(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		ctrl, err := newController(cmd, sink)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		if err := ctrl.Refresh(cmd.Context()); err != nil {
			return err
		}
		loc, err := deliverReport(cmd.Context(), ctrl)
		if err != nil {
			return err
		}
		if jsonOutput {
			data, _ := json.Marshal(map[string]string{"location": loc})
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", loc)
		return nil
	},
}

// deliverReport renders the controller's current page and hands it to the
// controller's sink as clinic_requests_<date>.pdf.
func deliverReport(ctx context.Context, ctrl *controller.Controller) (string, error) {
	v := ctrl.View()
	now := ctrl.Now()
	data, err := report.Render(report.Page{Query: v.Query, Result: v.Result, GeneratedAt: now})
	if err != nil {
		return "", err
	}
	return ctrl.Deliver(ctx, export.Artifact{
		Name:        export.FileName(now, export.ExtPDF),
		ContentType: export.ContentTypePDF,
		Data:        data,
	})
}

func init() {
	addQueryFlags(reportCmd)
	addSinkFlags(reportCmd)
}
