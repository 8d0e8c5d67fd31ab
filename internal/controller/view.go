package controller

import (
	"github.com/alfredjeanlab/zayafka/internal/model"
	"github.com/alfredjeanlab/zayafka/internal/query"
)

// View is a point-in-time snapshot of the list for rendering. Its slices
// are shared with the controller and must not be modified.
type View struct {
	Query  query.State
	Status Status
	Result model.PageResult
	// Departments is the department facet of the current page only.
	Departments []string
	// Loaded is true once any fetch has settled.
	Loaded bool
	// Err is the last fetch failure; it is cleared by the next settled fetch.
	Err error
	// ActionErr is the last delete or export failure.
	ActionErr     error
	PendingDelete string
	Window        []int
	Nav           query.Nav
	Stats         model.PageStats
}

// Failed reports whether the last fetch failed.
func (v View) Failed() bool { return v.Status == StatusFailed }

// Loading reports whether a fetch is in flight.
func (v View) Loading() bool { return v.Status == StatusLoading }

// View returns a snapshot of the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	meta := c.result.Meta
	return View{
		Query:         c.query,
		Status:        c.status,
		Result:        c.result,
		Departments:   c.departments,
		Loaded:        c.loaded,
		Err:           c.err,
		ActionErr:     c.actionErr,
		PendingDelete: c.pendingDelete,
		Window:        query.Window(meta.TotalPages, meta.Page),
		Nav:           query.Navigation(meta.TotalPages, meta.Page),
		Stats:         model.Stats(c.result, c.now()),
	}
}
