// Package model defines the records and paging metadata exchanged with the
// clinic requests API.
package model

import (
	"strings"
	"time"
)

// ClinicRequest is a single appointment request ("zayafka") as returned by
// the API. The client never edits these fields. Dates are kept as sent so
// one odd timestamp cannot fail a whole page; use the *At helpers to parse.
type ClinicRequest struct {
	ID              string `json:"id"`
	FullName        string `json:"full_name"`
	PhoneNumber     string `json:"phone_number"`
	Photo           string `json:"photo,omitempty"`
	Department      string `json:"department"`
	DoctorName      string `json:"doctor_name"`
	Message         string `json:"message"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

// timeLayouts are the date forms the API has been seen to emit.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AppointmentAt parses AppointmentDate. The second result is false when the
// field is empty or in an unrecognised format.
func (r *ClinicRequest) AppointmentAt() (time.Time, bool) {
	return parseTime(r.AppointmentDate)
}

// CreatedTime parses CreatedAt, with the same rules as AppointmentAt.
func (r *ClinicRequest) CreatedTime() (time.Time, bool) {
	return parseTime(r.CreatedAt)
}

// UpdatedTime parses UpdatedAt.
func (r *ClinicRequest) UpdatedTime() (time.Time, bool) {
	return parseTime(r.UpdatedAt)
}

// HasPhoto reports whether the request carries a photo URL.
func (r *ClinicRequest) HasPhoto() bool {
	return strings.TrimSpace(r.Photo) != ""
}
