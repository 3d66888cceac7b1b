package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"attendlog/attendance"
)

func mustParse(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return &parsed
}

func TestConsolidate_TwoPunchesOnOneDay(t *testing.T) {
	t.Parallel()

	day := Day{
		EmployeeID: 1,
		Date:       "2025-05-01",
		Records: []attendance.AttendanceRecord{
			{ID: 10, Date: "2025-05-01", CheckIn: mustParse(t, "2025-05-01T08:00:00Z"), WorkedHours: attendance.ParseHours("0"), Status: "Present"},
			{ID: 11, Date: "2025-05-01", CheckIn: mustParse(t, "2025-05-01T08:05:00Z"), CheckOut: mustParse(t, "2025-05-01T17:00:00Z"), WorkedHours: attendance.ParseHours("8.9"), Status: "Late"},
		},
	}

	entry := Consolidate(day)
	if !entry.Consolidated() {
		t.Fatalf("expected consolidated entry")
	}
	if got := entry.CheckIn.Format("15:04"); got != "08:00" {
		t.Fatalf("expected earliest check-in 08:00, got %s", got)
	}
	if got := entry.CheckOut.Format("15:04"); got != "17:00" {
		t.Fatalf("expected latest check-out 17:00, got %s", got)
	}
	if got := entry.WorkedHours.Value.StringFixed(2); got != "8.90" {
		t.Fatalf("expected 8.90 hours, got %s", got)
	}
	if entry.Status != "Present, Late" {
		t.Fatalf("unexpected status %q", entry.Status)
	}

	want := "Consolidated 2 records. Earliest check-in: 08:00, latest check-out: 17:00, total hours: 8.90."
	if got := entry.Summary(time.UTC); got != want {
		t.Fatalf("unexpected summary:\n got %q\nwant %q", got, want)
	}
}

func TestConsolidate_SumTreatsMissingHoursAsZero(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		hours []string
		want  string
	}{
		{name: "all numeric", hours: []string{"1.25", "2.5", "3"}, want: "6.75"},
		{name: "missing and garbage", hours: []string{"", "abc", "4.5"}, want: "4.50"},
		{name: "nothing numeric", hours: []string{"null", ""}, want: "0.00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			records := make([]attendance.AttendanceRecord, 0, len(tc.hours))
			for _, hours := range tc.hours {
				records = append(records, attendance.AttendanceRecord{Date: "2025-05-02", WorkedHours: attendance.ParseHours(hours)})
			}
			entry := Consolidate(Day{EmployeeID: 2, Date: "2025-05-02", Records: records})
			if got := entry.WorkedHours.Value.StringFixed(2); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestConsolidate_EarliestCheckInNotAfterLatestCheckOut(t *testing.T) {
	t.Parallel()

	records := []attendance.AttendanceRecord{
		{CheckIn: mustParse(t, "2025-05-01T13:00:00Z"), CheckOut: mustParse(t, "2025-05-01T15:00:00Z")},
		{CheckIn: mustParse(t, "2025-05-01T09:00:00Z"), CheckOut: mustParse(t, "2025-05-01T12:00:00Z")},
		{CheckIn: mustParse(t, "2025-05-01T16:00:00Z")},
		{CheckOut: mustParse(t, "2025-05-01T18:30:00Z")},
	}

	entry := Consolidate(Day{Date: "2025-05-01", Records: records})
	if entry.CheckIn == nil || entry.CheckOut == nil {
		t.Fatalf("expected both times, got %v / %v", entry.CheckIn, entry.CheckOut)
	}
	if entry.CheckIn.After(*entry.CheckOut) {
		t.Fatalf("check-in %v after check-out %v", entry.CheckIn, entry.CheckOut)
	}
	if got := entry.CheckIn.Format("15:04") + "-" + entry.CheckOut.Format("15:04"); got != "09:00-18:30" {
		t.Fatalf("unexpected span %s", got)
	}
	if entry.Status != "" {
		t.Fatalf("expected empty statuses to be skipped, got %q", entry.Status)
	}
}

func TestConsolidate_SingleRecordPassesThrough(t *testing.T) {
	t.Parallel()

	notes := attendance.NewVerificationNotes(map[string]string{"checkin_verified_by": "mgr"})
	record := attendance.AttendanceRecord{
		ID:          5,
		Date:        "2025-05-03",
		CheckIn:     mustParse(t, "2025-05-03T09:00:00Z"),
		WorkedHours: attendance.ParseHours(""),
		Status:      " Present ",
		Notes:       notes,
	}

	entry := Consolidate(Day{EmployeeID: 3, Date: "2025-05-03", Records: []attendance.AttendanceRecord{record}})
	if entry.Consolidated() {
		t.Fatalf("single record must not be consolidated")
	}
	if entry.WorkedHours.Valid {
		t.Fatalf("missing hours must stay missing for a single record")
	}
	if entry.Status != "Present" || entry.CheckOut != nil || len(entry.Notes) != 1 {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.Summary(time.UTC) != "" {
		t.Fatalf("single record must not carry a summary")
	}
}

func TestConsolidate_SummaryUsesPlaceholders(t *testing.T) {
	t.Parallel()

	entry := Consolidate(Day{Date: "2025-05-04", Records: []attendance.AttendanceRecord{{Status: "Absent"}, {Status: "Absent"}}})
	want := "Consolidated 2 records. Earliest check-in: -, latest check-out: -, total hours: 0.00."
	if got := entry.Summary(time.UTC); got != want {
		t.Fatalf("unexpected summary %q", got)
	}
	if entry.Status != "Absent, Absent" {
		t.Fatalf("statuses must not be deduplicated, got %q", entry.Status)
	}
}

func TestRun_GroupsPerEmployeeAndCountsHours(t *testing.T) {
	t.Parallel()

	employees := []attendance.Employee{
		{
			ID: 1,
			Attendance: []attendance.AttendanceRecord{
				{Date: "2025-05-01", WorkedHours: attendance.ParseHours("4")},
				{Date: "2025-05-02", WorkedHours: attendance.ParseHours("8")},
				{Date: "2025-05-01", WorkedHours: attendance.ParseHours("")},
			},
		},
		{
			ID:         2,
			Attendance: []attendance.AttendanceRecord{{Date: "2025-05-01", WorkedHours: attendance.ParseHours("7.5")}},
		},
	}

	entries, result := Run(employees)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].EmployeeID != 1 || entries[0].Date != "2025-05-01" || len(entries[0].Records) != 2 {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[2].EmployeeID != 2 {
		t.Fatalf("expected employee 2 last, got %d", entries[2].EmployeeID)
	}

	if result.EmployeesProcessed != 2 || result.RecordsProcessed != 4 || result.DaysProcessed != 3 {
		t.Fatalf("unexpected counts %+v", result)
	}
	if result.DaysConsolidated != 1 || result.RecordsMerged != 2 {
		t.Fatalf("unexpected consolidation counts %+v", result)
	}
	if result.HoursReported != 3 || result.HoursMissing != 1 {
		t.Fatalf("unexpected hours counts %+v", result)
	}
	if !result.TotalHours.Equal(decimal.RequireFromString("19.5")) {
		t.Fatalf("unexpected total hours %s", result.TotalHours)
	}
}
