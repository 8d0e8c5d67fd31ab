// Package export delivers named binary artifacts (spreadsheets, reports) to
// the user: a local directory by default, or an S3-compatible bucket.
package export

import (
	"context"
	"fmt"
	"time"
)

// FilePrefix starts every artifact name.
const FilePrefix = "clinic_requests"

// Common artifact extensions and content types.
const (
	ExtXLSX = "xlsx"
	ExtPDF  = "pdf"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

// Artifact is a named file ready for delivery.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// Sink delivers an artifact and returns where it ended up (a path or URL).
type Sink interface {
	Deliver(ctx context.Context, a Artifact) (string, error)
}

// FileName returns clinic_requests_<YYYY-MM-DD>.<ext> for the moment of
// export. The date is taken in UTC, matching the ISO date the dashboard used.
func FileName(at time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", FilePrefix, at.UTC().Format(time.DateOnly), ext)
}
