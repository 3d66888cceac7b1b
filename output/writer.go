package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"attendlog/report"
)

type Writer interface {
	Write(path string, rows []report.Row) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// DetectFormat infers the export format from the file extension.
func DetectFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}

var rowHeaders = []string{"Date", "EmployeeID", "Employee", "EventType", "Status", "Details", "CheckIn", "CheckOut", "WorkedHours", "Notes", "Summary"}

func rowValues(row report.Row) []string {
	return []string{
		row.Date.String(),
		fmt.Sprintf("%d", row.EmployeeID),
		row.EmployeeName,
		row.EventType,
		row.Status,
		row.Details,
		row.CheckIn,
		row.CheckOut,
		row.WorkedHours,
		row.Notes,
		row.Summary,
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
