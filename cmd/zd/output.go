package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alfredjeanlab/zayafka/internal/controller"
	"github.com/alfredjeanlab/zayafka/internal/model"
	"github.com/alfredjeanlab/zayafka/internal/ui"
)

// pageJSON is the --json shape of a list page.
type pageJSON struct {
	Params      string                `json:"params"`
	Data        []model.ClinicRequest `json:"data"`
	Meta        model.Meta            `json:"meta"`
	Departments []string              `json:"departments"`
	Stats       model.PageStats       `json:"stats"`
}

func printPageJSON(w io.Writer, v controller.View) error {
	out := pageJSON{
		Params:      v.Query.Params().Encode(),
		Data:        v.Result.Records,
		Meta:        v.Result.Meta,
		Departments: v.Departments,
		Stats:       v.Stats,
	}
	if out.Data == nil {
		out.Data = []model.ClinicRequest{}
	}
	if out.Departments == nil {
		out.Departments = []string{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printPage(w io.Writer, v controller.View) {
	if len(v.Result.Records) == 0 {
		fmt.Fprintln(w, ui.RenderMuted("No requests found."))
	} else {
		printRequestTable(w, v.Result.Records)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, pageSummary(v))
	if v.Result.Meta.TotalPages > 0 {
		fmt.Fprintln(w, ui.PaginationBar(v.Window, v.Result.Meta.Page, v.Nav))
	}
	if len(v.Departments) > 0 {
		fmt.Fprintf(w, "%s %s\n", ui.RenderMuted("Departments on this page:"), strings.Join(v.Departments, ", "))
	}
	fmt.Fprintln(w, statsLine(v.Stats))
	if v.Failed() {
		fmt.Fprintln(w, ui.RenderFail("Error: "+v.Err.Error()))
	}
}

func printRequestTable(w io.Writer, records []model.ClinicRequest) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPATIENT\tPHONE\tDEPARTMENT\tDOCTOR\tAPPOINTMENT\tCREATED")
	for i := range records {
		r := &records[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			truncate(r.FullName, 30),
			r.PhoneNumber,
			r.Department,
			truncate(r.DoctorName, 24),
			appointment(r),
			formatCreated(r),
		)
	}
	tw.Flush()
}

// pageSummary renders the "Showing X-Y of N" line with the active sort.
func pageSummary(v controller.View) string {
	m := v.Result.Meta
	sorted := fmt.Sprintf("sorted by %s %s", v.Query.SortField(), v.Query.SortOrder())
	if m.Total == 0 {
		return fmt.Sprintf("0 requests · %s", sorted)
	}
	from, to := v.Result.ShowingRange()
	return fmt.Sprintf("Showing %d-%d of %d · page %d/%d · %s", from, to, m.Total, m.Page, m.TotalPages, sorted)
}

func statsLine(s model.PageStats) string {
	return ui.RenderMuted(fmt.Sprintf("Total %d · Upcoming %d · Departments %d · Doctors %d",
		s.Total, s.Upcoming, s.Departments, s.Doctors))
}

func appointment(r *model.ClinicRequest) string {
	date := r.AppointmentDate
	if at, ok := r.AppointmentAt(); ok {
		date = at.Format(time.DateOnly)
	}
	return strings.TrimSpace(date + " " + r.AppointmentTime)
}

func formatCreated(r *model.ClinicRequest) string {
	if t, ok := r.CreatedTime(); ok {
		return t.Local().Format("2006-01-02 15:04")
	}
	return truncate(r.CreatedAt, 16)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
