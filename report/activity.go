package report

import (
	"sort"

	"attendlog/attendance"
	"attendlog/reconcile"
)

// Pipeline is the outcome of BuildRows before any rendering.
type Pipeline struct {
	Rows           []Row
	Reconcile      *reconcile.Result
	HiddenInactive int
	LeaveRows      int
}

// BuildRows applies visibility, the date filter, consolidation and leave
// projection, then returns the merged rows sorted by date descending.
func BuildRows(employees []attendance.Employee, r DateRange, f Formatter) Pipeline {
	visible, hidden := VisibleEmployees(employees, r)
	filtered := FilterEmployees(visible, r)

	names := make(map[int64]string, len(filtered))
	for _, employee := range filtered {
		names[employee.ID] = employee.DisplayName()
	}

	entries, stats := reconcile.Run(filtered)
	rows := make([]Row, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, f.AttendanceRow(entry, names[entry.EmployeeID]))
	}

	leaves := LeaveRows(filtered)
	rows = append(rows, leaves...)
	SortRows(rows)

	return Pipeline{
		Rows:           rows,
		Reconcile:      stats,
		HiddenInactive: hidden,
		LeaveRows:      len(leaves),
	}
}

// SortRows orders rows by date descending. Rows on the same date keep their
// relative order.
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date > rows[j].Date
	})
}
