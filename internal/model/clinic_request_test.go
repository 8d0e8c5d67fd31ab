package model

import (
	"encoding/json"
	"slices"
	"testing"
	"time"
)

func TestSortField_IsValid(t *testing.T) {
	for _, tc := range []struct {
		field SortField
		want  bool
	}{
		{SortCreatedAt, true},
		{SortAppointmentDate, true},
		{SortFullName, true},
		{SortField(""), false},
		{SortField("phone_number"), false},
	} {
		if got := tc.field.IsValid(); got != tc.want {
			t.Errorf("SortField(%q).IsValid() = %v, want %v", tc.field, got, tc.want)
		}
	}
}

func TestParseSortField(t *testing.T) {
	for _, tc := range []struct {
		in     string
		want   SortField
		wantOK bool
	}{
		{"createdAt", SortCreatedAt, true},
		{"created", SortCreatedAt, true},
		{"appointment_date", SortAppointmentDate, true},
		{"appointment", SortAppointmentDate, true},
		{"full_name", SortFullName, true},
		{"name", SortFullName, true},
		{"doctor", "", false},
		{"", "", false},
	} {
		got, ok := ParseSortField(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("ParseSortField(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestSortOrder_IsValid(t *testing.T) {
	if !SortAsc.IsValid() || !SortDesc.IsValid() {
		t.Error("asc and desc must be valid")
	}
	if SortOrder("up").IsValid() {
		t.Error("unknown order must be invalid")
	}
}

func TestClinicRequest_JSON(t *testing.T) {
	raw := `{
		"id": "65f1",
		"full_name": "Aziza Karimova",
		"phone_number": "+998901234567",
		"photo": "https://cdn.example/a.jpg",
		"department": "Cardiology",
		"doctor_name": "Dr. Usmonov",
		"message": "chest pain",
		"appointment_date": "2026-11-02",
		"appointment_time": "10:30",
		"createdAt": "2026-10-01T08:00:00Z",
		"updatedAt": "2026-10-02T08:00:00Z"
	}`
	var r ClinicRequest
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.ID != "65f1" || r.FullName != "Aziza Karimova" || r.DoctorName != "Dr. Usmonov" {
		t.Errorf("unexpected record: %+v", r)
	}
	if at, ok := r.CreatedTime(); !ok || !at.Equal(time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("CreatedTime() = %v, %v", at, ok)
	}
	if !r.HasPhoto() {
		t.Error("HasPhoto = false, want true")
	}
}

func TestClinicRequest_AppointmentAt(t *testing.T) {
	for _, tc := range []struct {
		in     string
		want   time.Time
		wantOK bool
	}{
		{"2026-11-02", time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), true},
		{"2026-11-02T09:15:00.000Z", time.Date(2026, 11, 2, 9, 15, 0, 0, time.UTC), true},
		{"2026-11-02T09:15:00", time.Date(2026, 11, 2, 9, 15, 0, 0, time.UTC), true},
		{" 2026-11-02 ", time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"next tuesday", time.Time{}, false},
	} {
		r := ClinicRequest{AppointmentDate: tc.in}
		got, ok := r.AppointmentAt()
		if ok != tc.wantOK || !got.Equal(tc.want) {
			t.Errorf("AppointmentAt(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestClinicRequest_IrregularTimestamps(t *testing.T) {
	raw := `[
		{"id": "a", "createdAt": "2024-05-01 10:00:00", "updatedAt": ""},
		{"id": "b", "createdAt": "yesterday", "updatedAt": null},
		{"id": "c"}
	]`
	var rs []ClinicRequest
	if err := json.Unmarshal([]byte(raw), &rs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rs) != 3 {
		t.Fatalf("len = %d, want 3", len(rs))
	}
	if at, ok := rs[0].CreatedTime(); !ok || !at.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("CreatedTime() = %v, %v", at, ok)
	}
	if _, ok := rs[0].UpdatedTime(); ok {
		t.Error("empty updatedAt parsed")
	}
	if _, ok := rs[1].CreatedTime(); ok {
		t.Error("free-text createdAt parsed")
	}
	if rs[1].CreatedAt != "yesterday" {
		t.Errorf("CreatedAt = %q, want raw value kept", rs[1].CreatedAt)
	}
}

func TestPageResult_ShowingRange(t *testing.T) {
	for _, tc := range []struct {
		name     string
		meta     Meta
		from, to int
	}{
		{"first page", Meta{Total: 25, Page: 1, Limit: 10, TotalPages: 3}, 1, 10},
		{"middle page", Meta{Total: 25, Page: 2, Limit: 10, TotalPages: 3}, 11, 20},
		{"short last page", Meta{Total: 25, Page: 3, Limit: 10, TotalPages: 3}, 21, 25},
		{"empty", Meta{Total: 0, Page: 1, Limit: 10}, 0, 0},
		{"default meta", DefaultMeta(), 0, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			from, to := PageResult{Meta: tc.meta}.ShowingRange()
			if from != tc.from || to != tc.to {
				t.Errorf("ShowingRange() = %d-%d, want %d-%d", from, to, tc.from, tc.to)
			}
		})
	}
}

func TestDepartments(t *testing.T) {
	records := []ClinicRequest{
		{Department: "Neurology"},
		{Department: ""},
		{Department: "Cardiology"},
		{Department: "Neurology"},
	}
	want := []string{"Neurology", "Cardiology"}
	if got := Departments(records); !slices.Equal(got, want) {
		t.Errorf("Departments() = %v, want %v", got, want)
	}
	if got := Departments(nil); len(got) != 0 {
		t.Errorf("Departments(nil) = %v, want empty", got)
	}
}

func TestStats(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	p := PageResult{
		Records: []ClinicRequest{
			{Department: "Cardiology", DoctorName: "A", AppointmentDate: "2026-10-20"},
			{Department: "Cardiology", DoctorName: "B", AppointmentDate: "2026-10-01"},
			{Department: "ENT", DoctorName: "A", AppointmentDate: ""},
		},
		Meta: Meta{Total: 42, Page: 1, Limit: 10, TotalPages: 5},
	}
	got := Stats(p, now)
	want := PageStats{Total: 42, Upcoming: 1, Departments: 2, Doctors: 2}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}
