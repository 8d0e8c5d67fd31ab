// Package report renders the currently displayed page of clinic requests
// as a printable PDF.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/alfredjeanlab/zayafka/internal/model"
	"github.com/alfredjeanlab/zayafka/internal/query"
)

// Page is the input to Render: the query that produced the page and the
// page itself.
type Page struct {
	Query       query.State
	Result      model.PageResult
	GeneratedAt time.Time
}

type column struct {
	title string
	width float64
	value func(*model.ClinicRequest) string
}

// Landscape A4 leaves 277mm between the default margins.
var columns = []column{
	{"Patient", 45, func(r *model.ClinicRequest) string { return r.FullName }},
	{"Phone", 32, func(r *model.ClinicRequest) string { return r.PhoneNumber }},
	{"Department", 38, func(r *model.ClinicRequest) string { return r.Department }},
	{"Doctor", 40, func(r *model.ClinicRequest) string { return r.DoctorName }},
	{"Date", 24, func(r *model.ClinicRequest) string { return appointmentDate(r) }},
	{"Time", 16, func(r *model.ClinicRequest) string { return r.AppointmentTime }},
	{"Message", 82, func(r *model.ClinicRequest) string { return r.Message }},
}

// Render produces the PDF bytes for p.
func Render(p Page) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Clinic requests", false)
	pdf.SetCreator("zayafka", false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Clinic requests")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, tr(summary(p)))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(filters(p.Query)))
	pdf.Ln(6)
	if !p.GeneratedAt.IsZero() {
		pdf.Cell(0, 6, "Generated "+p.GeneratedAt.Format("2006-01-02 15:04"))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range columns {
			pdf.CellFormat(c.width, 7, c.title, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}
	header()

	if len(p.Result.Records) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 8, "No requests match the current filters.", "", 1, "L", false, 0, "")
	}
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for i := range p.Result.Records {
		if pdf.GetY()+6 > pageHeight-bottom-10 {
			pdf.AddPage()
			header()
		}
		r := &p.Result.Records[i]
		for _, c := range columns {
			pdf.CellFormat(c.width, 6, tr(fit(pdf, c.value(r), c.width)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}
	return buf.Bytes(), nil
}

func summary(p Page) string {
	m := p.Result.Meta
	from, to := p.Result.ShowingRange()
	if m.Total == 0 {
		return "No requests"
	}
	return fmt.Sprintf("Showing %d-%d of %d requests, page %d of %d", from, to, m.Total, m.Page, m.TotalPages)
}

func filters(q query.State) string {
	parts := []string{fmt.Sprintf("sorted by %s %s", q.SortField(), q.SortOrder())}
	if q.Search() != "" {
		parts = append(parts, fmt.Sprintf("search %q", q.Search()))
	}
	if q.Department() != "" {
		parts = append(parts, "department "+q.Department())
	}
	return strings.Join(parts, ", ")
}

func appointmentDate(r *model.ClinicRequest) string {
	if at, ok := r.AppointmentAt(); ok {
		return at.Format(time.DateOnly)
	}
	return r.AppointmentDate
}

// fit truncates s with an ellipsis so it fits a cell of width w.
func fit(pdf *gofpdf.Fpdf, s string, w float64) string {
	s = strings.Join(strings.Fields(s), " ")
	limit := w - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
