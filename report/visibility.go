package report

import "attendlog/attendance"

// Visible reports whether an employee belongs in a report for r. Only an
// inactivation strictly before the range start hides the employee.
func Visible(employee attendance.Employee, r DateRange) bool {
	if employee.InactiveDate == nil || employee.InactiveDate.IsZero() {
		return true
	}
	return !employee.InactiveDate.Before(r.Start)
}

func VisibleEmployees(employees []attendance.Employee, r DateRange) ([]attendance.Employee, int) {
	out := make([]attendance.Employee, 0, len(employees))
	hidden := 0
	for _, employee := range employees {
		if !Visible(employee, r) {
			hidden++
			continue
		}
		out = append(out, employee)
	}
	return out, hidden
}
