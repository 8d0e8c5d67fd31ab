package controller

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredjeanlab/zayafka/internal/client"
	"github.com/alfredjeanlab/zayafka/internal/export"
	"github.com/alfredjeanlab/zayafka/internal/model"
	"github.com/alfredjeanlab/zayafka/internal/query"
)

// fakeClient is an in-memory ClinicClient. When listFn is nil it serves
// pages from records.
type fakeClient struct {
	mu          sync.Mutex
	records     []model.ClinicRequest
	listFn      func(ctx context.Context, p query.Params) (*model.PageResult, error)
	deleteErr   error
	exportErr   error
	listCalls   []query.Params
	deleteCalls []string
	exportCalls []query.Params
}

func (f *fakeClient) ListRequests(ctx context.Context, p query.Params) (*model.PageResult, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, p)
	fn := f.listFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, p)
	}
	return f.page(p), nil
}

func (f *fakeClient) page(p query.Params) *model.PageResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	page, limit := 1, 10
	if v, ok := p.Get(query.KeyPage); ok {
		page, _ = strconv.Atoi(v)
	}
	if v, ok := p.Get(query.KeyLimit); ok {
		limit, _ = strconv.Atoi(v)
	}
	total := len(f.records)
	pages := (total + limit - 1) / limit
	start := min((page-1)*limit, total)
	end := min(start+limit, total)
	return &model.PageResult{
		Records: append([]model.ClinicRequest(nil), f.records[start:end]...),
		Meta:    model.Meta{Total: total, Page: page, Limit: limit, TotalPages: pages},
	}
}

func (f *fakeClient) DeleteRequest(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return &client.APIError{StatusCode: 404, Message: "not found"}
}

func (f *fakeClient) ExportRequests(_ context.Context, p query.Params) (*client.Export, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exportCalls = append(f.exportCalls, p)
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return &client.Export{ContentType: export.ContentTypeXLSX, Data: []byte("PK\x03\x04")}, nil
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) calls() (list []query.Params, deletes []string, exports []query.Params) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]query.Params(nil), f.listCalls...),
		append([]string(nil), f.deleteCalls...),
		append([]query.Params(nil), f.exportCalls...)
}

type memSink struct {
	mu        sync.Mutex
	artifacts []export.Artifact
	err       error
}

func (s *memSink) Deliver(_ context.Context, a export.Artifact) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.artifacts = append(s.artifacts, a)
	return "mem://" + a.Name, nil
}

func records(n int, dept func(i int) string) []model.ClinicRequest {
	out := make([]model.ClinicRequest, n)
	for i := range out {
		out[i] = model.ClinicRequest{
			ID:         "r" + strconv.Itoa(i+1),
			FullName:   "Patient " + strconv.Itoa(i+1),
			Department: dept(i),
		}
	}
	return out
}

func cardiology(int) string { return "Cardiology" }

var fixedNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func newController(t *testing.T, fc *fakeClient, sink export.Sink) *Controller {
	t.Helper()
	c, err := New(Options{Client: fc, Sink: sink, Now: func() time.Time { return fixedNow }, Debounce: 40 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func setSearch(v string) func(*query.State) error {
	return func(s *query.State) error { s.SetSearch(v); return nil }
}

func TestNewRequiresClient(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestInitialViewIsIdle(t *testing.T) {
	c := newController(t, &fakeClient{}, nil)
	v := c.View()
	assert.Equal(t, StatusIdle, v.Status)
	assert.False(t, v.Loaded)
	assert.Equal(t, model.DefaultMeta(), v.Result.Meta)
	assert.Equal(t, query.New(), v.Query)
	assert.Empty(t, v.Window)
	assert.Equal(t, query.Nav{}, v.Nav)
}

func TestRefreshSettles(t *testing.T) {
	fc := &fakeClient{records: records(25, cardiology)}
	c := newController(t, fc, nil)

	require.NoError(t, c.Refresh(context.Background()))
	v := c.View()
	assert.Equal(t, StatusSettled, v.Status)
	assert.True(t, v.Loaded)
	assert.Len(t, v.Result.Records, 10)
	assert.Equal(t, model.Meta{Total: 25, Page: 1, Limit: 10, TotalPages: 3}, v.Result.Meta)
	assert.Equal(t, []string{"Cardiology"}, v.Departments)
	assert.Equal(t, 25, v.Stats.Total)
}

func TestScenarioMiddlePage(t *testing.T) {
	fc := &fakeClient{records: records(25, cardiology)}
	c := newController(t, fc, nil)

	require.NoError(t, c.Update(context.Background(), func(s *query.State) error { return s.SetPage(2) }))
	v := c.View()
	assert.Equal(t, []int{1, 2, 3}, v.Window)
	assert.Equal(t, query.Nav{Prev: true, Next: true}, v.Nav)
	from, to := v.Result.ShowingRange()
	assert.Equal(t, 11, from)
	assert.Equal(t, 20, to)
}

func TestUpdateRejectedMutationIssuesNoFetch(t *testing.T) {
	fc := &fakeClient{records: records(3, cardiology)}
	c := newController(t, fc, nil)

	err := c.Update(context.Background(), func(s *query.State) error { return s.SetLimit(7) })
	require.Error(t, err)
	list, _, _ := fc.calls()
	assert.Empty(t, list)
	assert.Equal(t, 10, c.Query().Limit())
}

func TestUpdateFilterResetsPage(t *testing.T) {
	fc := &fakeClient{records: records(25, cardiology)}
	c := newController(t, fc, nil)
	ctx := context.Background()

	require.NoError(t, c.Update(ctx, func(s *query.State) error { return s.SetPage(3) }))
	require.NoError(t, c.Update(ctx, func(s *query.State) error { s.SetDepartment("Cardiology"); return nil }))

	list, _, _ := fc.calls()
	last := list[len(list)-1]
	page, _ := last.Get(query.KeyPage)
	dept, _ := last.Get(query.KeyDepartment)
	assert.Equal(t, "1", page)
	assert.Equal(t, "Cardiology", dept)
}

func TestStaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var firstCtx context.Context

	fc := &fakeClient{}
	fc.listFn = func(ctx context.Context, p query.Params) (*model.PageResult, error) {
		search, _ := p.Get(query.KeySearch)
		if search == "ali" {
			firstCtx = ctx
			close(started)
			<-release
			return &model.PageResult{
				Records: []model.ClinicRequest{{ID: "old", FullName: "Ali Stale"}},
				Meta:    model.Meta{Total: 1, Page: 1, Limit: 10, TotalPages: 1},
			}, nil
		}
		return &model.PageResult{
			Records: []model.ClinicRequest{{ID: "new", FullName: "Alice Fresh"}, {ID: "new2", FullName: "Alice Two"}},
			Meta:    model.Meta{Total: 2, Page: 1, Limit: 10, TotalPages: 1},
		}, nil
	}
	c := newController(t, fc, nil)
	ctx := context.Background()

	firstErr := make(chan error, 1)
	go func() { firstErr <- c.Update(ctx, setSearch("ali")) }()
	<-started

	require.NoError(t, c.Update(ctx, setSearch("alice")))
	assert.Error(t, firstCtx.Err(), "superseded fetch should be canceled")

	close(release)
	assert.ErrorIs(t, <-firstErr, ErrSuperseded)

	v := c.View()
	assert.Equal(t, StatusSettled, v.Status)
	require.Len(t, v.Result.Records, 2)
	assert.Equal(t, "new", v.Result.Records[0].ID)
	assert.Equal(t, "alice", v.Query.Search())
}

func TestScheduleSupersedesFetchInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var firstCtx context.Context

	fc := &fakeClient{}
	fc.listFn = func(ctx context.Context, p query.Params) (*model.PageResult, error) {
		if _, ok := p.Get(query.KeySearch); !ok {
			firstCtx = ctx
			close(started)
			<-release
		}
		return &model.PageResult{
			Records: []model.ClinicRequest{{ID: "r1"}},
			Meta:    model.Meta{Total: 1, Page: 1, Limit: 10, TotalPages: 1},
		}, nil
	}
	c, err := New(Options{Client: fc, Now: func() time.Time { return fixedNow }, Debounce: time.Hour})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	firstErr := make(chan error, 1)
	go func() { firstErr <- c.Refresh(context.Background()) }()
	<-started

	require.NoError(t, c.Schedule(setSearch("x")))
	assert.Error(t, firstCtx.Err(), "fetch for the old query should be canceled")

	close(release)
	assert.ErrorIs(t, <-firstErr, ErrSuperseded)

	v := c.View()
	assert.Equal(t, "x", v.Query.Search())
	assert.NotEqual(t, StatusSettled, v.Status)
	assert.False(t, v.Loaded)
	assert.Empty(t, v.Result.Records)
}

func TestScheduleWithoutChangeKeepsFetchInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	fc := &fakeClient{records: records(3, cardiology)}
	fc.listFn = func(_ context.Context, p query.Params) (*model.PageResult, error) {
		close(started)
		<-release
		return fc.page(p), nil
	}
	c, err := New(Options{Client: fc, Now: func() time.Time { return fixedNow }, Debounce: time.Hour})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	firstErr := make(chan error, 1)
	go func() { firstErr <- c.Refresh(context.Background()) }()
	<-started

	require.NoError(t, c.Schedule(setSearch("")))
	close(release)
	require.NoError(t, <-firstErr)
	assert.Equal(t, StatusSettled, c.View().Status)
	assert.Len(t, c.View().Result.Records, 3)
}

func TestFailurePreservesPreviousResult(t *testing.T) {
	fc := &fakeClient{records: records(12, cardiology)}
	c := newController(t, fc, nil)
	ctx := context.Background()

	require.NoError(t, c.Refresh(ctx))
	before := c.View().Result

	fc.mu.Lock()
	fc.listFn = func(context.Context, query.Params) (*model.PageResult, error) {
		return nil, &client.APIError{StatusCode: 500, Message: "boom"}
	}
	fc.mu.Unlock()

	err := c.Update(ctx, func(s *query.State) error { return s.SetPage(2) })
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrServer)

	v := c.View()
	assert.True(t, v.Failed())
	assert.Equal(t, before, v.Result)
	assert.Equal(t, 2, v.Query.Page())
	assert.ErrorIs(t, v.Err, client.ErrServer)
}

func TestRecoveryClearsError(t *testing.T) {
	fail := true
	fc := &fakeClient{records: records(3, cardiology)}
	fc.listFn = func(_ context.Context, p query.Params) (*model.PageResult, error) {
		if fail {
			return nil, &client.NetworkError{Op: "GET /users", Err: errors.New("refused")}
		}
		return fc.page(p), nil
	}
	c := newController(t, fc, nil)
	ctx := context.Background()

	require.Error(t, c.Refresh(ctx))
	assert.False(t, c.View().Loaded)

	fail = false
	require.NoError(t, c.Refresh(ctx))
	v := c.View()
	assert.Equal(t, StatusSettled, v.Status)
	assert.NoError(t, v.Err)
	assert.Len(t, v.Result.Records, 3)
}

func TestNilResultIsMalformed(t *testing.T) {
	fc := &fakeClient{listFn: func(context.Context, query.Params) (*model.PageResult, error) { return nil, nil }}
	c := newController(t, fc, nil)
	err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, client.ErrMalformedResponse)
}

func TestDepartmentFacetFromCurrentPage(t *testing.T) {
	depts := []string{"Neurology", "", "Cardiology", "Neurology", "Pediatrics"}
	fc := &fakeClient{records: records(5, func(i int) string { return depts[i] })}
	c := newController(t, fc, nil)

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, []string{"Neurology", "Cardiology", "Pediatrics"}, c.View().Departments)
}

func TestScheduleDebounces(t *testing.T) {
	fc := &fakeClient{records: records(3, cardiology)}
	c := newController(t, fc, nil)

	for _, s := range []string{"a", "al", "ali", "alic", "alice"} {
		require.NoError(t, c.Schedule(setSearch(s)))
	}
	assert.Equal(t, "alice", c.Query().Search())

	require.Eventually(t, func() bool { return c.View().Status == StatusSettled }, 2*time.Second, 5*time.Millisecond)
	list, _, _ := fc.calls()
	require.Len(t, list, 1)
	search, _ := list[0].Get(query.KeySearch)
	assert.Equal(t, "alice", search)
}

func TestScheduleAfterClose(t *testing.T) {
	c := newController(t, &fakeClient{}, nil)
	c.Close()
	assert.ErrorIs(t, c.Schedule(nil), ErrClosed)
	assert.ErrorIs(t, c.Refresh(context.Background()), ErrClosed)
}

func TestOnChangeSequence(t *testing.T) {
	fc := &fakeClient{records: records(2, cardiology)}
	c := newController(t, fc, nil)

	var mu sync.Mutex
	var seen []Status
	c.OnChange(func(v View) {
		mu.Lock()
		seen = append(seen, v.Status)
		mu.Unlock()
	})
	require.NoError(t, c.Refresh(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{StatusLoading, StatusSettled}, seen)
}

func TestDeleteConfirmRefreshes(t *testing.T) {
	fc := &fakeClient{records: records(11, cardiology)}
	c := newController(t, fc, nil)
	ctx := context.Background()
	require.NoError(t, c.Refresh(ctx))

	require.NoError(t, c.RequestDelete("r3"))
	id, ok := c.PendingDelete()
	assert.True(t, ok)
	assert.Equal(t, "r3", id)
	assert.Equal(t, "r3", c.View().PendingDelete)

	require.NoError(t, c.ConfirmDelete(ctx))
	v := c.View()
	assert.Equal(t, 10, v.Result.Meta.Total)
	for _, r := range v.Result.Records {
		assert.NotEqual(t, "r3", r.ID)
	}
	_, pending := c.PendingDelete()
	assert.False(t, pending)
	_, deletes, _ := fc.calls()
	assert.Equal(t, []string{"r3"}, deletes)
}

func TestDeleteCancelSendsNothing(t *testing.T) {
	fc := &fakeClient{records: records(4, cardiology)}
	c := newController(t, fc, nil)
	ctx := context.Background()
	require.NoError(t, c.Refresh(ctx))
	before := c.View()

	require.NoError(t, c.RequestDelete("r1"))
	c.CancelDelete()

	list, deletes, _ := fc.calls()
	assert.Empty(t, deletes)
	assert.Len(t, list, 1)
	assert.Equal(t, before.Result, c.View().Result)
	assert.ErrorIs(t, c.ConfirmDelete(ctx), ErrNoPendingDelete)
}

func TestDeleteSecondRequestWhilePending(t *testing.T) {
	c := newController(t, &fakeClient{}, nil)
	require.NoError(t, c.RequestDelete("a"))
	require.NoError(t, c.RequestDelete("a"))
	assert.ErrorIs(t, c.RequestDelete("b"), ErrDeletePending)
	assert.Error(t, c.RequestDelete(""))
}

func TestDeleteFailureLeavesList(t *testing.T) {
	fc := &fakeClient{records: records(4, cardiology), deleteErr: &client.APIError{StatusCode: 500, Message: "db down"}}
	c := newController(t, fc, nil)
	ctx := context.Background()
	require.NoError(t, c.Refresh(ctx))
	before := c.View()

	require.NoError(t, c.RequestDelete("r2"))
	err := c.ConfirmDelete(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrServer)

	v := c.View()
	assert.Equal(t, before.Result, v.Result)
	assert.Equal(t, StatusSettled, v.Status)
	assert.ErrorIs(t, v.ActionErr, client.ErrServer)
	list, _, _ := fc.calls()
	assert.Len(t, list, 1, "no refresh after failed delete")
}

func TestDeleteLastRecordOnLastPageStepsBack(t *testing.T) {
	fc := &fakeClient{records: records(11, cardiology)}
	c := newController(t, fc, nil)
	ctx := context.Background()
	require.NoError(t, c.Update(ctx, func(s *query.State) error { return s.SetPage(2) }))
	require.Len(t, c.View().Result.Records, 1)

	require.NoError(t, c.RequestDelete("r11"))
	require.NoError(t, c.ConfirmDelete(ctx))

	v := c.View()
	assert.Equal(t, 1, v.Query.Page())
	assert.Len(t, v.Result.Records, 10)
	assert.Equal(t, 10, v.Result.Meta.Total)
}

func TestExportUsesListParams(t *testing.T) {
	fc := &fakeClient{records: records(30, cardiology)}
	sink := &memSink{}
	c := newController(t, fc, sink)
	ctx := context.Background()

	mutations := []func(*query.State) error{
		nil,
		setSearch("patient"),
		func(s *query.State) error { s.SetDepartment("Cardiology"); return nil },
		func(s *query.State) error { return s.SetSortField(model.SortFullName) },
		func(s *query.State) error { return s.SetSortOrder(model.SortAsc) },
		func(s *query.State) error { return s.SetPage(2) },
		func(s *query.State) error { return s.SetLimit(20) },
	}
	for _, m := range mutations {
		require.NoError(t, c.Update(ctx, m))
		_, err := c.ExportCurrentView(ctx)
		require.NoError(t, err)

		list, _, exports := fc.calls()
		assert.True(t, list[len(list)-1].Equal(exports[len(exports)-1]),
			"list %s vs export %s", list[len(list)-1], exports[len(exports)-1])
	}
}

func TestExportDeliversDatedXLSX(t *testing.T) {
	sink := &memSink{}
	c := newController(t, &fakeClient{}, sink)

	loc, err := c.ExportCurrentView(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mem://clinic_requests_2026-10-18.xlsx", loc)
	require.Len(t, sink.artifacts, 1)
	assert.Equal(t, export.ContentTypeXLSX, sink.artifacts[0].ContentType)
	assert.Equal(t, []byte("PK\x03\x04"), sink.artifacts[0].Data)
}

func TestExportFailureLeavesState(t *testing.T) {
	fc := &fakeClient{records: records(5, cardiology), exportErr: &client.APIError{StatusCode: 500, Message: "no"}}
	sink := &memSink{}
	c := newController(t, fc, sink)
	ctx := context.Background()
	require.NoError(t, c.Refresh(ctx))
	before := c.View()

	_, err := c.ExportCurrentView(ctx)
	require.Error(t, err)
	v := c.View()
	assert.Equal(t, before.Query, v.Query)
	assert.Equal(t, before.Result, v.Result)
	assert.Equal(t, before.Status, v.Status)
	assert.ErrorIs(t, v.ActionErr, client.ErrServer)
	assert.Empty(t, sink.artifacts)
}

func TestExportWithoutSink(t *testing.T) {
	c := newController(t, &fakeClient{}, nil)
	_, err := c.ExportCurrentView(context.Background())
	assert.ErrorIs(t, err, ErrNoSink)
}

func TestExportSinkFailure(t *testing.T) {
	sink := &memSink{err: errors.New("disk full")}
	c := newController(t, &fakeClient{}, sink)
	_, err := c.ExportCurrentView(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Error(t, c.View().ActionErr)
}
