// Package query holds the list view's filter, sort and paging parameters and
// their serialization into API query parameters.
//
// Changing any filter, sort or limit field resets the page to 1: a page
// number chosen under one filter context is meaningless under another.
package query

import (
	"fmt"
	"slices"

	"github.com/alfredjeanlab/zayafka/internal/model"
)

// Defaults applied by New.
const (
	DefaultLimit = 10
	DefaultSort  = model.SortCreatedAt
	DefaultOrder = model.SortDesc
)

// Limits lists the page sizes the list view offers.
var Limits = []int{5, 10, 20, 50}

// State is the canonical parameter set of the clinic request list. The zero
// value is not valid; use New.
type State struct {
	search     string
	department string
	sortField  model.SortField
	sortOrder  model.SortOrder
	page       int
	limit      int
}

// New returns a State with the list view defaults.
func New() State {
	return State{
		sortField: DefaultSort,
		sortOrder: DefaultOrder,
		page:      1,
		limit:     DefaultLimit,
	}
}

func (s State) Search() string             { return s.search }
func (s State) Department() string         { return s.department }
func (s State) SortField() model.SortField { return s.sortField }
func (s State) SortOrder() model.SortOrder { return s.sortOrder }
func (s State) Page() int                  { return s.page }
func (s State) Limit() int                 { return s.limit }

// SetSearch sets the free-text filter. An empty string clears it.
func (s *State) SetSearch(v string) {
	if v == s.search {
		return
	}
	s.search = v
	s.page = 1
}

// SetDepartment sets the exact-match department filter. An empty string
// means all departments.
func (s *State) SetDepartment(v string) {
	if v == s.department {
		return
	}
	s.department = v
	s.page = 1
}

// SetSortField changes the sort column.
func (s *State) SetSortField(f model.SortField) error {
	if !f.IsValid() {
		return fmt.Errorf("invalid sort field %q", f)
	}
	if f == s.sortField {
		return nil
	}
	s.sortField = f
	s.page = 1
	return nil
}

// SetSortOrder changes the sort direction.
func (s *State) SetSortOrder(o model.SortOrder) error {
	if !o.IsValid() {
		return fmt.Errorf("invalid sort order %q (must be asc or desc)", o)
	}
	if o == s.sortOrder {
		return nil
	}
	s.sortOrder = o
	s.page = 1
	return nil
}

// SetLimit changes the page size. Only the values in Limits are accepted.
func (s *State) SetLimit(n int) error {
	if !slices.Contains(Limits, n) {
		return fmt.Errorf("invalid limit %d (must be one of %v)", n, Limits)
	}
	if n == s.limit {
		return nil
	}
	s.limit = n
	s.page = 1
	return nil
}

// SetPage moves to page n without touching any other field.
func (s *State) SetPage(n int) error {
	if n < 1 {
		return fmt.Errorf("invalid page %d (must be >= 1)", n)
	}
	s.page = n
	return nil
}

// Validate checks every field. A State built with New and mutated only via
// its setters is always valid.
func (s State) Validate() error {
	var ve model.ValidationError
	if !s.sortField.IsValid() {
		ve.Add("sortBy", fmt.Sprintf("invalid value %q", s.sortField))
	}
	if !s.sortOrder.IsValid() {
		ve.Add("sortOrder", fmt.Sprintf("invalid value %q", s.sortOrder))
	}
	if s.page < 1 {
		ve.Add("page", fmt.Sprintf("must be >= 1, got %d", s.page))
	}
	if !slices.Contains(Limits, s.limit) {
		ve.Add("limit", fmt.Sprintf("must be one of %v, got %d", Limits, s.limit))
	}
	return ve.Err()
}

// Params serializes the state in canonical order:
// page, limit, sortBy, sortOrder, then search and department only when set.
func (s State) Params() Params {
	p := Params{
		{Key: KeyPage, Value: fmt.Sprintf("%d", s.page)},
		{Key: KeyLimit, Value: fmt.Sprintf("%d", s.limit)},
		{Key: KeySortBy, Value: s.sortField.String()},
		{Key: KeySortOrder, Value: s.sortOrder.String()},
	}
	if s.search != "" {
		p = append(p, Param{Key: KeySearch, Value: s.search})
	}
	if s.department != "" {
		p = append(p, Param{Key: KeyDepartment, Value: s.department})
	}
	return p
}
