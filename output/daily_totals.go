package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"attendlog/attendance"
	"attendlog/report"
)

// DailyTotal sums the activity rows of one date.
type DailyTotal struct {
	Date             attendance.Date `json:"date"`
	WorkedHours      decimal.Decimal `json:"worked_hours"`
	AttendanceRows   int             `json:"attendance_rows"`
	LeaveRows        int             `json:"leave_rows"`
	ConsolidatedRows int             `json:"consolidated_rows"`
	Employees        int             `json:"employees"`
}

var totalHeaders = []string{"Date", "WorkedHours", "AttendanceRows", "LeaveRows", "ConsolidatedRows", "Employees"}

func (t DailyTotal) values() []string {
	return []string{
		t.Date.String(),
		t.WorkedHours.StringFixed(2),
		strconv.Itoa(t.AttendanceRows),
		strconv.Itoa(t.LeaveRows),
		strconv.Itoa(t.ConsolidatedRows),
		strconv.Itoa(t.Employees),
	}
}

// BuildDailyTotals returns one total per date, newest first. Missing hours
// count as zero.
func BuildDailyTotals(rows []report.Row) []DailyTotal {
	if len(rows) == 0 {
		return []DailyTotal{}
	}

	byDay := make(map[attendance.Date]*DailyTotal)
	employees := make(map[attendance.Date]map[int64]struct{})
	for _, row := range rows {
		total, ok := byDay[row.Date]
		if !ok {
			total = &DailyTotal{Date: row.Date, WorkedHours: decimal.Zero}
			byDay[row.Date] = total
			employees[row.Date] = make(map[int64]struct{})
		}
		employees[row.Date][row.EmployeeID] = struct{}{}

		if row.EventType == report.EventLeave {
			total.LeaveRows++
			continue
		}
		total.AttendanceRows++
		total.WorkedHours = total.WorkedHours.Add(row.Hours.OrZero())
		if row.Consolidated() {
			total.ConsolidatedRows++
		}
	}

	days := make([]attendance.Date, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] > days[j] })

	totals := make([]DailyTotal, 0, len(days))
	for _, day := range days {
		total := *byDay[day]
		total.Employees = len(employees[day])
		totals = append(totals, total)
	}
	return totals
}

// SumHours adds the worked hours of all totals.
func SumHours(totals []DailyTotal) decimal.Decimal {
	sum := decimal.Zero
	for _, total := range totals {
		sum = sum.Add(total.WorkedHours)
	}
	return sum
}

func WriteDailyTotals(path, format string, totals []DailyTotal) error {
	switch normalizeFormat(format) {
	case "csv":
		return writeDailyTotalsCSV(path, totals)
	case "excel", "xlsx":
		return writeDailyTotalsExcel(path, totals)
	default:
		return fmt.Errorf("unsupported output format for daily totals: %s", format)
	}
}

func writeDailyTotalsCSV(path string, totals []DailyTotal) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(totalHeaders); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	for _, total := range totals {
		if err := writer.Write(total.values()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}

func writeDailyTotalsExcel(path string, totals []DailyTotal) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	values := make([][]string, 0, len(totals))
	for _, total := range totals {
		values = append(values, total.values())
	}
	if err := writeSheet(file, sheet, totalHeaders, values); err != nil {
		return err
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}
	return nil
}
