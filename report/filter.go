package report

import (
	"errors"
	"fmt"
	"strings"

	"attendlog/attendance"
)

var (
	ErrRangeRequired = errors.New("both start and end date are required")
	ErrRangeInverted = errors.New("start date is after end date")
)

// DateRange is an inclusive window of calendar days.
type DateRange struct {
	Start attendance.Date `json:"start"`
	End   attendance.Date `json:"end"`
}

// ParseDateRange parses both bounds. Empty input yields ErrRangeRequired.
func ParseDateRange(from, to string) (DateRange, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		return DateRange{}, ErrRangeRequired
	}

	start, err := attendance.ParseDate(from)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := attendance.ParseDate(to)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date: %w", err)
	}

	r := DateRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

func (r DateRange) Complete() bool {
	return !r.Start.IsZero() && !r.End.IsZero()
}

func (r DateRange) Validate() error {
	if !r.Complete() {
		return ErrRangeRequired
	}
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: %s > %s", ErrRangeInverted, r.Start, r.End)
	}
	return nil
}

// Contains compares zero-padded dates as strings. An incomplete range
// contains nothing.
func (r DateRange) Contains(d attendance.Date) bool {
	if !r.Complete() {
		return false
	}
	return r.Start <= d && d <= r.End
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.Start, r.End)
}

// FilterEmployees returns copies of employees whose attendance and leave
// entries are restricted to r. The input is not modified.
func FilterEmployees(employees []attendance.Employee, r DateRange) []attendance.Employee {
	out := make([]attendance.Employee, 0, len(employees))
	for _, employee := range employees {
		filtered := employee
		filtered.Attendance = make([]attendance.AttendanceRecord, 0, len(employee.Attendance))
		for _, record := range employee.Attendance {
			if r.Contains(record.Date) {
				filtered.Attendance = append(filtered.Attendance, record)
			}
		}
		filtered.Leaves = make([]attendance.LeaveRecord, 0, len(employee.Leaves))
		for _, leave := range employee.Leaves {
			if r.Contains(leave.LeaveDate) {
				filtered.Leaves = append(filtered.Leaves, leave)
			}
		}
		out = append(out, filtered)
	}
	return out
}
