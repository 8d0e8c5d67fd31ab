// Package controller drives the clinic request list: it keeps the query
// state, fetches pages when the state changes, and runs the delete and
// export actions against the same parameters the list was fetched with.
//
// Every fetch is tagged with a generation number. Starting a new fetch
// cancels the one in flight, and a response whose generation is no longer
// current is dropped, so the displayed page always belongs to the most
// recent request.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/alfredjeanlab/zayafka/internal/client"
	"github.com/alfredjeanlab/zayafka/internal/export"
	"github.com/alfredjeanlab/zayafka/internal/model"
	"github.com/alfredjeanlab/zayafka/internal/query"
)

// Status is the list's fetch state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSettled Status = "settled"
	StatusFailed  Status = "failed"
)

var (
	// ErrSuperseded is returned by a fetch whose response arrived after a
	// newer fetch was started. Its result was discarded.
	ErrSuperseded = errors.New("superseded by a newer refresh")

	ErrNoPendingDelete = errors.New("no delete awaiting confirmation")
	ErrDeletePending   = errors.New("another delete is awaiting confirmation")
	ErrNoSink          = errors.New("no export destination configured")
	ErrClosed          = errors.New("controller closed")
)

// DefaultDebounce is the quiet period used by Schedule when none is set.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a Controller.
type Options struct {
	Client   client.ClinicClient
	Sink     export.Sink
	Logger   *slog.Logger
	Debounce time.Duration
	// Now defaults to time.Now. It dates export files and stats.
	Now func() time.Time
	// Query is the initial state; the zero value means query.New().
	Query *query.State
}

// Controller owns one list view's query state and page result. It is safe
// for concurrent use.
type Controller struct {
	client   client.ClinicClient
	sink     export.Sink
	logger   *slog.Logger
	debounce time.Duration
	now      func() time.Time

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu            sync.Mutex
	query         query.State
	status        Status
	result        model.PageResult
	departments   []string
	loaded        bool
	err           error
	actionErr     error
	pendingDelete string
	lastParams    query.Params
	gen           uint64
	cancel        context.CancelFunc
	timer         *time.Timer
	closed        bool
	listeners     []func(View)
}

// New creates a controller in the idle state. No fetch is issued until
// Refresh, Update or Schedule is called.
func New(opts Options) (*Controller, error) {
	if opts.Client == nil {
		return nil, errors.New("controller: client is required")
	}
	q := query.New()
	if opts.Query != nil {
		if err := opts.Query.Validate(); err != nil {
			return nil, fmt.Errorf("controller: initial query: %w", err)
		}
		q = *opts.Query
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		client:     opts.Client,
		sink:       opts.Sink,
		logger:     logger,
		debounce:   debounce,
		now:        now,
		baseCtx:    ctx,
		baseCancel: cancel,
		query:      q,
		status:     StatusIdle,
		result:     model.PageResult{Meta: model.DefaultMeta()},
	}, nil
}

// OnChange registers fn to be called with a fresh View after every state
// transition. Callbacks run on the goroutine that caused the transition.
func (c *Controller) OnChange(fn func(View)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Query returns a copy of the current query state.
func (c *Controller) Query() query.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// LastParams returns the parameters of the most recently issued fetch.
func (c *Controller) LastParams() query.Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastParams
}

// Refresh fetches the page for the current query state.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.fetch(ctx, nil)
}

// Update applies mutate to a copy of the query state and, if it succeeds,
// installs the copy and fetches. A failed mutation leaves everything as it
// was and issues no fetch.
func (c *Controller) Update(ctx context.Context, mutate func(*query.State) error) error {
	return c.fetch(ctx, mutate)
}

// Schedule applies mutate immediately and fetches once the query has been
// quiet for the debounce period. Calls within the period collapse into a
// single fetch for the final state. A mutation that changes the query
// supersedes the fetch in flight.
func (c *Controller) Schedule(mutate func(*query.State) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if mutate != nil {
		next := c.query
		if err := mutate(&next); err != nil {
			return err
		}
		if !next.Params().Equal(c.query.Params()) {
			c.supersedeLocked()
		}
		c.query = next
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		_ = c.Refresh(c.baseCtx)
	})
	return nil
}

// supersedeLocked invalidates the fetch in flight, if any. Its response
// will be discarded with ErrSuperseded.
func (c *Controller) supersedeLocked() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Close cancels any in-flight fetch and pending scheduled fetch.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
	c.baseCancel()
}

func (c *Controller) fetch(ctx context.Context, mutate func(*query.State) error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if mutate != nil {
		next := c.query
		if err := mutate(&next); err != nil {
			c.mu.Unlock()
			return err
		}
		c.query = next
	}
	params := c.query.Params()
	c.supersedeLocked()
	gen := c.gen
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.cancel = cancel
	c.status = StatusLoading
	c.lastParams = params
	v := c.viewLocked()
	c.mu.Unlock()
	c.notify(v)

	c.logger.Debug("list_fetch", slog.Uint64("gen", gen), slog.String("params", params.Encode()))
	res, err := c.client.ListRequests(fetchCtx, params)
	if err == nil && res == nil {
		err = &client.MalformedError{Reason: "empty result"}
	}

	c.mu.Lock()
	if gen != c.gen || !params.Equal(c.query.Params()) {
		c.mu.Unlock()
		c.logger.Debug("list_stale_discarded", slog.Uint64("gen", gen), slog.String("params", params.Encode()))
		return ErrSuperseded
	}
	c.cancel = nil
	if err != nil {
		c.status = StatusFailed
		c.err = err
	} else {
		c.result = *res
		c.departments = model.Departments(res.Records)
		c.loaded = true
		c.status = StatusSettled
		c.err = nil
	}
	v = c.viewLocked()
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("list_fetch_failed",
			slog.Uint64("gen", gen),
			slog.String("kind", string(client.Classify(err))),
			slog.String("err", err.Error()),
		)
	} else {
		c.logger.Debug("list_settled",
			slog.Uint64("gen", gen),
			slog.Int("records", len(res.Records)),
			slog.Int("total", res.Meta.Total),
		)
	}
	c.notify(v)
	return err
}

func (c *Controller) notify(v View) {
	c.mu.Lock()
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(v)
	}
}

// setActionErr records the outcome of a delete or export and notifies.
func (c *Controller) setActionErr(err error) {
	c.mu.Lock()
	c.actionErr = err
	v := c.viewLocked()
	c.mu.Unlock()
	c.notify(v)
}
