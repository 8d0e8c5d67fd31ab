package model

// SortField is the column the API orders results by. The values are the
// literal sortBy parameters the API accepts.
type SortField string

const (
	SortCreatedAt       SortField = "createdAt"
	SortAppointmentDate SortField = "appointment_date"
	SortFullName        SortField = "full_name"
)

// String returns the wire value of the sort field.
func (f SortField) String() string {
	return string(f)
}

// IsValid checks whether the sort field is a known value.
func (f SortField) IsValid() bool {
	switch f {
	case SortCreatedAt, SortAppointmentDate, SortFullName:
		return true
	}
	return false
}

// SortFields lists the accepted sort fields in display order.
func SortFields() []SortField {
	return []SortField{SortCreatedAt, SortAppointmentDate, SortFullName}
}

// ParseSortField accepts either the wire value or a short alias
// ("created", "appointment", "name").
func ParseSortField(s string) (SortField, bool) {
	switch s {
	case "createdAt", "created", "created_at":
		return SortCreatedAt, true
	case "appointment_date", "appointment", "appointmentDate":
		return SortAppointmentDate, true
	case "full_name", "name", "fullName":
		return SortFullName, true
	}
	return "", false
}

// SortOrder is the direction of ordering.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// String returns the wire value of the sort order.
func (o SortOrder) String() string {
	return string(o)
}

// IsValid checks whether the sort order is a known value.
func (o SortOrder) IsValid() bool {
	return o == SortAsc || o == SortDesc
}
