package report

import (
	"attendlog/attendance"
	"attendlog/internal/timeutil"
)

// LeaveRow projects one leave entry into the activity row shape.
func LeaveRow(leave attendance.LeaveRecord, employee attendance.Employee) Row {
	employeeID := leave.EmployeeID
	if employeeID == 0 {
		employeeID = employee.ID
	}
	return Row{
		EmployeeID:   employeeID,
		EmployeeName: employee.DisplayName(),
		Date:         leave.LeaveDate,
		EventType:    EventLeave,
		Status:       string(leave.Status),
		Details:      leave.LeaveType,
		CheckIn:      timeutil.Placeholder,
		CheckOut:     timeutil.Placeholder,
		WorkedHours:  timeutil.Placeholder,
		Notes:        leave.Remarks,
		Class:        ClassFor(EventLeave),
		LeaveID:      leave.ID,
	}
}

// LeaveRows projects every leave of the given employees without grouping.
func LeaveRows(employees []attendance.Employee) []Row {
	rows := make([]Row, 0, len(employees))
	for _, employee := range employees {
		for _, leave := range employee.Leaves {
			rows = append(rows, LeaveRow(leave, employee))
		}
	}
	return rows
}
