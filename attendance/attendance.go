// Package attendance holds the typed employee, attendance, leave and outlet
// records shared by the API client, the report pipeline and the outputs.
package attendance

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the zero-padded calendar day format. Lexicographic order of
// values in this layout equals chronological order.
const DateLayout = "2006-01-02"

// Date is a calendar day kept as an opaque YYYY-MM-DD string. It is never
// converted to a timestamp for comparisons.
type Date string

// ParseDate accepts YYYY-MM-DD and timestamps whose first ten characters are a
// calendar day (e.g. 2025-05-01T00:00:00Z).
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if len(value) > len(DateLayout) && value[len(DateLayout)] == 'T' {
		value = value[:len(DateLayout)]
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		return "", fmt.Errorf("parse date %q: %w", value, err)
	}
	return Date(value), nil
}

// DateOf returns the calendar day of value in its own location.
func DateOf(value time.Time) Date {
	return Date(value.Format(DateLayout))
}

func (d Date) String() string {
	return string(d)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == ""
}

func (d Date) Before(other Date) bool {
	return d < other
}

func (d Date) After(other Date) bool {
	return d > other
}

// Hours is a worked-hours value as reported by the API. Valid is false when
// the source value was absent or not a number.
type Hours struct {
	Value decimal.Decimal
	Valid bool
}

// ParseHours parses a decimal hours value. Empty, null or non-numeric input
// gives a missing (invalid) Hours.
func ParseHours(raw string) Hours {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "null") {
		return Hours{}
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return Hours{}
	}
	return Hours{Value: value, Valid: true}
}

// HoursOf wraps a numeric hours value as valid Hours.
func HoursOf(value float64) Hours {
	return Hours{Value: decimal.NewFromFloat(value), Valid: true}
}

// OrZero returns the value, or zero when the hours are missing.
func (h Hours) OrZero() decimal.Decimal {
	if !h.Valid {
		return decimal.Zero
	}
	return h.Value
}

// Note is one verification annotation, e.g. checkin_verified_by=manager1.
type Note struct {
	Key   string
	Value string
}

// VerificationNotes is sorted by key.
type VerificationNotes []Note

func NewVerificationNotes(values map[string]string) VerificationNotes {
	notes := make(VerificationNotes, 0, len(values))
	for key, value := range values {
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		notes = append(notes, Note{Key: key, Value: value})
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].Key < notes[j].Key })
	return notes
}

func (n VerificationNotes) Get(key string) (string, bool) {
	for _, note := range n {
		if note.Key == key {
			return note.Value, true
		}
	}
	return "", false
}

type AttendanceRecord struct {
	ID          int64
	EmployeeID  int64
	Date        Date
	CheckIn     *time.Time
	CheckOut    *time.Time
	WorkedHours Hours
	Status      string
	Notes       VerificationNotes
}

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

var (
	ErrUnknownLeaveStatus     = errors.New("unknown leave status")
	ErrInvalidLeaveTransition = errors.New("invalid leave status transition")
)

func ParseLeaveStatus(value string) (LeaveStatus, error) {
	status := LeaveStatus(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case LeavePending, LeaveApproved, LeaveRejected:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLeaveStatus, value)
	}
}

// CanTransitionTo reports whether a leave may move from s to next. Decisions
// are final: only pending leaves can be approved or rejected.
func (s LeaveStatus) CanTransitionTo(next LeaveStatus) bool {
	return s == LeavePending && (next == LeaveApproved || next == LeaveRejected)
}

func (s LeaveStatus) TransitionTo(next LeaveStatus) error {
	if !s.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidLeaveTransition, s, next)
	}
	return nil
}

type LeaveRecord struct {
	ID         int64
	EmployeeID int64
	LeaveDate  Date
	LeaveType  string
	Status     LeaveStatus
	Remarks    string
	CreatedAt  Date
}

type Employee struct {
	ID           int64
	FullName     string
	FirstName    string
	LastName     string
	OutletIDs    []int64
	Attendance   []AttendanceRecord
	Leaves       []LeaveRecord
	InactiveDate *Date
}

func (e Employee) DisplayName() string {
	if name := strings.TrimSpace(e.FullName); name != "" {
		return name
	}
	if name := strings.TrimSpace(strings.TrimSpace(e.FirstName) + " " + strings.TrimSpace(e.LastName)); name != "" {
		return name
	}
	return fmt.Sprintf("Employee %d", e.ID)
}

type Outlet struct {
	ID           int64
	Name         string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	ManagerID    *int64
	AgencyID     *int64
	Status       int
}

// Hidden reports whether the outlet is disabled (status 0).
func (o Outlet) Hidden() bool {
	return o.Status == 0
}

// VisibleOutlets drops hidden outlets and sorts the rest by name, then ID.
func VisibleOutlets(outlets []Outlet) []Outlet {
	out := make([]Outlet, 0, len(outlets))
	for _, outlet := range outlets {
		if outlet.Hidden() {
			continue
		}
		out = append(out, outlet)
	}
	sort.SliceStable(out, func(i, j int) bool {
		left := strings.ToLower(out[i].Name)
		right := strings.ToLower(out[j].Name)
		if left == right {
			return out[i].ID < out[j].ID
		}
		return left < right
	})
	return out
}
