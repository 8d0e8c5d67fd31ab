package controller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alfredjeanlab/zayafka/internal/export"
	"github.com/alfredjeanlab/zayafka/internal/query"
)

// RequestDelete marks id for deletion. Nothing is sent until ConfirmDelete.
func (c *Controller) RequestDelete(id string) error {
	if id == "" {
		return fmt.Errorf("request id is required")
	}
	c.mu.Lock()
	if c.pendingDelete != "" && c.pendingDelete != id {
		c.mu.Unlock()
		return ErrDeletePending
	}
	c.pendingDelete = id
	v := c.viewLocked()
	c.mu.Unlock()
	c.notify(v)
	return nil
}

// PendingDelete returns the id awaiting confirmation, if any.
func (c *Controller) PendingDelete() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingDelete, c.pendingDelete != ""
}

// CancelDelete drops the pending delete without any network call.
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	if c.pendingDelete == "" {
		c.mu.Unlock()
		return
	}
	c.pendingDelete = ""
	v := c.viewLocked()
	c.mu.Unlock()
	c.notify(v)
}

// ConfirmDelete deletes the pending request and then refreshes the list
// with the query state current at that moment. On failure the list is left
// exactly as it was.
//
// When the deletion empties the last page, the page is moved back to the
// new last page and fetched again.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	id := c.pendingDelete
	if id == "" {
		c.mu.Unlock()
		return ErrNoPendingDelete
	}
	c.pendingDelete = ""
	c.mu.Unlock()

	if err := c.client.DeleteRequest(ctx, id); err != nil {
		err = fmt.Errorf("deleting %s: %w", id, err)
		c.logger.Warn("delete_failed", slog.String("id", id), slog.String("err", err.Error()))
		c.setActionErr(err)
		return err
	}
	c.logger.Info("request_deleted", slog.String("id", id))
	c.setActionErr(nil)

	if err := c.Refresh(ctx); err != nil {
		return err
	}

	v := c.View()
	meta := v.Result.Meta
	if len(v.Result.Records) == 0 && meta.Page > 1 && meta.TotalPages < meta.Page {
		last := max(meta.TotalPages, 1)
		return c.Update(ctx, func(s *query.State) error { return s.SetPage(last) })
	}
	return nil
}

// ExportCurrentView downloads the spreadsheet for the current query state
// and hands it to the sink as clinic_requests_<date>.xlsx. It returns the
// delivered location. List state is never touched.
func (c *Controller) ExportCurrentView(ctx context.Context) (string, error) {
	c.mu.Lock()
	params := c.query.Params()
	sink := c.sink
	c.mu.Unlock()

	if sink == nil {
		c.setActionErr(ErrNoSink)
		return "", ErrNoSink
	}

	exp, err := c.client.ExportRequests(ctx, params)
	if err != nil {
		err = fmt.Errorf("exporting: %w", err)
		c.logger.Warn("export_failed", slog.String("params", params.Encode()), slog.String("err", err.Error()))
		c.setActionErr(err)
		return "", err
	}

	contentType := exp.ContentType
	if contentType == "" {
		contentType = export.ContentTypeXLSX
	}
	loc, err := sink.Deliver(ctx, export.Artifact{
		Name:        export.FileName(c.now(), export.ExtXLSX),
		ContentType: contentType,
		Data:        exp.Data,
	})
	if err != nil {
		err = fmt.Errorf("delivering export: %w", err)
		c.logger.Warn("export_delivery_failed", slog.String("err", err.Error()))
		c.setActionErr(err)
		return "", err
	}
	c.logger.Info("export_delivered", slog.String("location", loc), slog.Int("bytes", len(exp.Data)))
	c.setActionErr(nil)
	return loc, nil
}

// Deliver hands an arbitrary artifact, such as a rendered page report, to
// the controller's sink.
func (c *Controller) Deliver(ctx context.Context, a export.Artifact) (string, error) {
	c.mu.Lock()
	sink := c.sink
	c.mu.Unlock()
	if sink == nil {
		return "", ErrNoSink
	}
	return sink.Deliver(ctx, a)
}

// Now returns the controller's clock reading.
func (c *Controller) Now() time.Time { return c.now() }
