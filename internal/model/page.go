package model

import "time"

// Meta is the paging metadata reported by the server. It is trusted as is;
// TotalPages is never recomputed on the client.
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// DefaultMeta is used when a response carries records but no meta block.
func DefaultMeta() Meta {
	return Meta{Total: 0, Page: 1, Limit: 10, TotalPages: 0}
}

// PageResult is one fetched page. It is replaced wholesale on every
// successful fetch.
type PageResult struct {
	Records []ClinicRequest `json:"data"`
	Meta    Meta            `json:"meta"`
}

// ShowingRange returns the 1-based span of records on the page, clamped to
// the total, for "from-to of total" lines. Both values are 0 when the result
// is empty.
func (p PageResult) ShowingRange() (from, to int) {
	m := p.Meta
	if m.Total <= 0 || m.Page < 1 || m.Limit < 1 {
		return 0, 0
	}
	from = min((m.Page-1)*m.Limit+1, m.Total)
	to = min(m.Page*m.Limit, m.Total)
	return from, to
}

// Departments projects the distinct non-empty departments of records in
// first-seen order. It only sees the current page, not the whole data set.
func Departments(records []ClinicRequest) []string {
	return distinct(records, func(r *ClinicRequest) string { return r.Department })
}

// Doctors projects the distinct non-empty doctor names of records.
func Doctors(records []ClinicRequest) []string {
	return distinct(records, func(r *ClinicRequest) string { return r.DoctorName })
}

func distinct(records []ClinicRequest, key func(*ClinicRequest) string) []string {
	seen := make(map[string]bool, len(records))
	out := make([]string, 0, len(records))
	for i := range records {
		v := key(&records[i])
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// PageStats summarises the current page the way the dashboard cards do.
type PageStats struct {
	Total       int `json:"total"`
	Upcoming    int `json:"upcoming"`
	Departments int `json:"departments"`
	Doctors     int `json:"doctors"`
}

// Stats computes PageStats for p. Upcoming counts records whose appointment
// date is strictly after now.
func Stats(p PageResult, now time.Time) PageStats {
	upcoming := 0
	for i := range p.Records {
		if at, ok := p.Records[i].AppointmentAt(); ok && at.After(now) {
			upcoming++
		}
	}
	return PageStats{
		Total:       p.Meta.Total,
		Upcoming:    upcoming,
		Departments: len(Departments(p.Records)),
		Doctors:     len(Doctors(p.Records)),
	}
}
