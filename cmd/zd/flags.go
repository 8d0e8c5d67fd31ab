package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/zayafka/internal/controller"
	"github.com/alfredjeanlab/zayafka/internal/export"
	"github.com/alfredjeanlab/zayafka/internal/model"
	"github.com/alfredjeanlab/zayafka/internal/query"
)

// addQueryFlags registers the list view parameters on cmd.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("search", "s", "", "free-text search")
	cmd.Flags().StringP("department", "d", "", "only show this department")
	cmd.Flags().String("sort", string(query.DefaultSort), "sort by createdAt, appointment_date or full_name")
	cmd.Flags().String("order", string(query.DefaultOrder), "sort order (asc or desc)")
	cmd.Flags().IntP("page", "p", 1, "page number")
	cmd.Flags().IntP("limit", "l", query.DefaultLimit, "page size (5, 10, 20 or 50)")
}

// queryFromFlags builds the query state from the flags added by
// addQueryFlags. The page is applied last because every other setter
// resets it.
func queryFromFlags(cmd *cobra.Command) (query.State, error) {
	search, _ := cmd.Flags().GetString("search")
	department, _ := cmd.Flags().GetString("department")
	sortBy, _ := cmd.Flags().GetString("sort")
	order, _ := cmd.Flags().GetString("order")
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")

	q := query.New()
	q.SetSearch(strings.TrimSpace(search))
	q.SetDepartment(strings.TrimSpace(department))

	field, ok := model.ParseSortField(sortBy)
	if !ok {
		return q, fmt.Errorf("invalid --sort %q (must be createdAt, appointment_date or full_name)", sortBy)
	}
	if err := q.SetSortField(field); err != nil {
		return q, err
	}
	if err := q.SetSortOrder(model.SortOrder(strings.ToLower(order))); err != nil {
		return q, fmt.Errorf("invalid --order: %w", err)
	}
	if err := q.SetLimit(limit); err != nil {
		return q, fmt.Errorf("invalid --limit: %w", err)
	}
	if err := q.SetPage(page); err != nil {
		return q, fmt.Errorf("invalid --page: %w", err)
	}
	return q, nil
}

// addSinkFlags registers the export destination flags on cmd.
func addSinkFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("out", "o", "", "directory to write the file to (default $ZAYAFKA_EXPORT_DIR or .)")
	cmd.Flags().Bool("s3", false, "upload to $ZAYAFKA_EXPORT_S3_BUCKET instead of writing a local file")
}

func sinkFromFlags(ctx context.Context, cmd *cobra.Command) (export.Sink, error) {
	useS3, _ := cmd.Flags().GetBool("s3")
	if useS3 {
		if cfg.ExportS3Bucket == "" {
			return nil, fmt.Errorf("--s3 requires ZAYAFKA_EXPORT_S3_BUCKET")
		}
		s3, err := export.NewS3Sink(ctx, cfg.ExportS3Bucket, cfg.ExportS3Prefix, cfg.ExportS3Region, cfg.ExportS3Endpoint)
		if err != nil {
			return nil, err
		}
		return s3, nil
	}
	dir, _ := cmd.Flags().GetString("out")
	if dir == "" {
		dir = cfg.ExportDir
	}
	return export.NewDirSink(dir), nil
}

// newController wires a controller for cmd from its query flags. sink may
// be nil for commands that never export.
func newController(cmd *cobra.Command, sink export.Sink) (*controller.Controller, error) {
	q, err := queryFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	c, err := newClient(cmd)
	if err != nil {
		return nil, err
	}
	return controller.New(controller.Options{
		Client:   c,
		Sink:     sink,
		Logger:   logger,
		Debounce: cfg.Debounce,
		Query:    &q,
	})
}
