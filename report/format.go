package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"attendlog/attendance"
	"attendlog/internal/timeutil"
	"attendlog/reconcile"
)

const (
	EventAttendance = "Attendance"
	EventLeave      = "Leave"

	ClassAttendance = "attendance"
	ClassLeave      = "leave"
)

// Row is one line of the activity log, ready for display.
type Row struct {
	EmployeeID   int64           `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	Date         attendance.Date `json:"date"`
	EventType    string          `json:"event_type"`
	Status       string          `json:"status"`
	Details      string          `json:"details"`
	CheckIn      string          `json:"check_in"`
	CheckOut     string          `json:"check_out"`
	WorkedHours  string          `json:"worked_hours"`
	Notes        string          `json:"notes"`
	Class        string          `json:"class"`
	Summary      string          `json:"summary,omitempty"`
	LeaveID      int64           `json:"leave_id,omitempty"`

	// Hours is the numeric value behind WorkedHours; invalid for leave rows.
	Hours attendance.Hours `json:"-"`
	// SubRows are the formatted contributing records of a consolidated row.
	SubRows []Row `json:"sub_rows,omitempty"`
	// Records are the raw contributing records of a consolidated row.
	Records []attendance.AttendanceRecord `json:"-"`
}

func (r Row) Consolidated() bool {
	return len(r.Records) > 1
}

// noteLabels gives known verification keys a readable label and fixes their order.
var noteLabels = []struct {
	key   string
	label string
}{
	{key: "checkin_verified_by", label: "Check-in verified by"},
	{key: "checkin_verified_at", label: "Check-in verified at"},
	{key: "checkout_verified_by", label: "Check-out verified by"},
	{key: "checkout_verified_at", label: "Check-out verified at"},
}

// Formatter renders times in a fixed location.
type Formatter struct {
	Location *time.Location
}

func NewFormatter(loc *time.Location) Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return Formatter{Location: loc}
}

// Clock formats value as HH:MM in the formatter location, or "-" when nil.
func (f Formatter) Clock(value *time.Time) string {
	return timeutil.Clock(value, f.Location)
}

// FormatHours formats with two decimals, or the placeholder when missing.
func FormatHours(h attendance.Hours) string {
	if !h.Valid {
		return timeutil.Placeholder
	}
	return h.Value.StringFixed(2)
}

// Notes flattens verification notes into "label value" parts joined by "; ".
func (f Formatter) Notes(notes attendance.VerificationNotes) string {
	if len(notes) == 0 {
		return ""
	}

	parts := make([]string, 0, len(notes))
	known := make(map[string]struct{}, len(noteLabels))
	for _, item := range noteLabels {
		known[item.key] = struct{}{}
		value, ok := notes.Get(item.key)
		if !ok {
			continue
		}
		if strings.HasSuffix(item.key, "_at") {
			value = f.noteTime(value)
		}
		parts = append(parts, item.label+" "+value)
	}

	rest := make([]attendance.Note, 0, len(notes))
	for _, note := range notes {
		if _, ok := known[note.Key]; !ok {
			rest = append(rest, note)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].Key < rest[j].Key })
	for _, note := range rest {
		parts = append(parts, fmt.Sprintf("%s: %s", note.Key, note.Value))
	}

	return strings.Join(parts, "; ")
}

// JoinNotes formats each note set and joins the non-empty results with "; ".
func (f Formatter) JoinNotes(sets []attendance.VerificationNotes) string {
	parts := make([]string, 0, len(sets))
	for _, notes := range sets {
		if formatted := f.Notes(notes); formatted != "" {
			parts = append(parts, formatted)
		}
	}
	return strings.Join(parts, "; ")
}

func (f Formatter) noteTime(raw string) string {
	parsed, err := timeutil.ParseTimestamp(raw)
	if err != nil || parsed == nil {
		return raw
	}
	return parsed.In(f.Location).Format("2006-01-02 15:04")
}

// ClassFor maps an event type to its row class.
func ClassFor(eventType string) string {
	if eventType == EventLeave {
		return ClassLeave
	}
	return ClassAttendance
}

// AttendanceRow renders a reconcile entry. Consolidated entries carry their
// summary and formatted sub-rows.
func (f Formatter) AttendanceRow(entry reconcile.Entry, employeeName string) Row {
	row := Row{
		EmployeeID:   entry.EmployeeID,
		EmployeeName: employeeName,
		Date:         entry.Date,
		EventType:    EventAttendance,
		Status:       entry.Status,
		CheckIn:      f.Clock(entry.CheckIn),
		CheckOut:     f.Clock(entry.CheckOut),
		WorkedHours:  FormatHours(entry.WorkedHours),
		Hours:        entry.WorkedHours,
		Notes:        f.JoinNotes(entry.Notes),
		Class:        ClassFor(EventAttendance),
	}
	if !entry.Consolidated() {
		return row
	}

	row.Summary = entry.Summary(f.Location)
	row.Details = fmt.Sprintf("%d records", len(entry.Records))
	row.Records = entry.Records
	row.SubRows = make([]Row, 0, len(entry.Records))
	for _, record := range entry.Records {
		row.SubRows = append(row.SubRows, f.AttendanceRow(reconcile.Consolidate(reconcile.Day{
			EmployeeID: entry.EmployeeID,
			Date:       record.Date,
			Records:    []attendance.AttendanceRecord{record},
		}), employeeName))
	}
	return row
}
