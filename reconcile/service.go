// Package reconcile folds duplicate attendance punches of one employee on one
// day into a single consolidated entry.
package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"attendlog/attendance"
	"attendlog/internal/timeutil"
)

type Result struct {
	EmployeesProcessed int
	RecordsProcessed   int
	DaysProcessed      int
	DaysConsolidated   int
	RecordsMerged      int
	HoursReported      int
	HoursMissing       int
	TotalHours         decimal.Decimal
}

// Day is one employee-date group with its records in source order.
type Day struct {
	EmployeeID int64
	Date       attendance.Date
	Records    []attendance.AttendanceRecord
}

// Entry is the outcome for one Day. For a single record it mirrors that
// record; for more than one it holds the consolidated values.
type Entry struct {
	EmployeeID  int64
	Date        attendance.Date
	CheckIn     *time.Time
	CheckOut    *time.Time
	WorkedHours attendance.Hours
	Status      string
	Notes       []attendance.VerificationNotes
	Records     []attendance.AttendanceRecord
}

func (e Entry) Consolidated() bool {
	return len(e.Records) > 1
}

// Summary describes a consolidated entry, e.g.
// "Consolidated 2 records. Earliest check-in: 08:00, latest check-out: 17:00, total hours: 8.90."
// It is empty for single-record entries.
func (e Entry) Summary(loc *time.Location) string {
	if !e.Consolidated() {
		return ""
	}
	return fmt.Sprintf(
		"Consolidated %d records. Earliest check-in: %s, latest check-out: %s, total hours: %s.",
		len(e.Records),
		timeutil.Clock(e.CheckIn, loc),
		timeutil.Clock(e.CheckOut, loc),
		e.WorkedHours.OrZero().StringFixed(2),
	)
}

// Run groups the attendance of every employee by day and consolidates each
// group. Entries keep the order in which their day first appears.
func Run(employees []attendance.Employee) ([]Entry, *Result) {
	result := &Result{TotalHours: decimal.Zero}
	entries := make([]Entry, 0, 64)

	for _, employee := range employees {
		result.EmployeesProcessed++
		for _, day := range GroupByDay(employee.ID, employee.Attendance) {
			entry := Consolidate(day)
			entries = append(entries, entry)

			result.DaysProcessed++
			result.RecordsProcessed += len(day.Records)
			if entry.Consolidated() {
				result.DaysConsolidated++
				result.RecordsMerged += len(day.Records)
			}
			for _, record := range day.Records {
				if record.WorkedHours.Valid {
					result.HoursReported++
					result.TotalHours = result.TotalHours.Add(record.WorkedHours.Value)
					continue
				}
				result.HoursMissing++
			}
		}
	}

	return entries, result
}

// GroupByDay groups records by date. Duplicates are kept.
func GroupByDay(employeeID int64, records []attendance.AttendanceRecord) []Day {
	byDate := make(map[attendance.Date]int, len(records))
	days := make([]Day, 0, len(records))
	for _, record := range records {
		index, ok := byDate[record.Date]
		if !ok {
			index = len(days)
			byDate[record.Date] = index
			days = append(days, Day{EmployeeID: employeeID, Date: record.Date})
		}
		days[index].Records = append(days[index].Records, record)
	}
	return days
}

// Consolidate takes the earliest check-in and latest check-out present in
// the group, sums worked hours with missing values counted as zero, and
// comma-joins non-empty statuses in record order.
func Consolidate(day Day) Entry {
	entry := Entry{
		EmployeeID: day.EmployeeID,
		Date:       day.Date,
		Records:    day.Records,
	}

	if len(day.Records) == 1 {
		record := day.Records[0]
		entry.CheckIn = record.CheckIn
		entry.CheckOut = record.CheckOut
		entry.WorkedHours = record.WorkedHours
		entry.Status = strings.TrimSpace(record.Status)
		if len(record.Notes) > 0 {
			entry.Notes = []attendance.VerificationNotes{record.Notes}
		}
		return entry
	}

	total := decimal.Zero
	statuses := make([]string, 0, len(day.Records))
	for _, record := range day.Records {
		if record.CheckIn != nil && (entry.CheckIn == nil || record.CheckIn.Before(*entry.CheckIn)) {
			entry.CheckIn = record.CheckIn
		}
		if record.CheckOut != nil && (entry.CheckOut == nil || record.CheckOut.After(*entry.CheckOut)) {
			entry.CheckOut = record.CheckOut
		}
		total = total.Add(record.WorkedHours.OrZero())

		if status := strings.TrimSpace(record.Status); status != "" {
			statuses = append(statuses, status)
		}
		if len(record.Notes) > 0 {
			entry.Notes = append(entry.Notes, record.Notes)
		}
	}

	entry.WorkedHours = attendance.Hours{Value: total, Valid: true}
	entry.Status = strings.Join(statuses, ", ")
	return entry
}
