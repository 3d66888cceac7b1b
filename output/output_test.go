package output

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"attendlog/attendance"
	"attendlog/report"
)

func sampleRows() []report.Row {
	consolidated := report.Row{
		EmployeeID:   1,
		EmployeeName: "Ana Silva",
		Date:         "2025-05-01",
		EventType:    report.EventAttendance,
		Status:       "Present, Present",
		Details:      "2 records",
		CheckIn:      "08:00",
		CheckOut:     "17:00",
		WorkedHours:  "8.90",
		Hours:        attendance.ParseHours("8.9"),
		Class:        report.ClassAttendance,
		Summary:      "Consolidated 2 records. Earliest check-in: 08:00, latest check-out: 17:00, total hours: 8.90.",
		Records:      []attendance.AttendanceRecord{{ID: 10}, {ID: 11}},
		SubRows: []report.Row{
			{EmployeeID: 1, Date: "2025-05-01", EventType: report.EventAttendance, CheckIn: "08:00", CheckOut: "-", WorkedHours: "0.00"},
			{EmployeeID: 1, Date: "2025-05-01", EventType: report.EventAttendance, CheckIn: "08:05", CheckOut: "17:00", WorkedHours: "8.90"},
		},
	}
	return []report.Row{
		{
			EmployeeID: 2, EmployeeName: "Ben Cruz", Date: "2025-05-03", EventType: report.EventLeave,
			Status: "approved", Details: "Sick Leave", CheckIn: "-", CheckOut: "-", WorkedHours: "-",
			Notes: "flu", Class: report.ClassLeave,
		},
		{
			EmployeeID: 3, EmployeeName: "Cid", Date: "2025-05-01", EventType: report.EventAttendance,
			Status: "Present", CheckIn: "09:00", CheckOut: "-", WorkedHours: "-", Class: report.ClassAttendance,
		},
		consolidated,
	}
}

func TestBuildDailyTotals(t *testing.T) {
	t.Parallel()

	totals := BuildDailyTotals(sampleRows())
	require.Len(t, totals, 2)

	assert.Equal(t, attendance.Date("2025-05-03"), totals[0].Date)
	assert.Equal(t, 1, totals[0].LeaveRows)
	assert.Equal(t, 0, totals[0].AttendanceRows)
	assert.Equal(t, "0.00", totals[0].WorkedHours.StringFixed(2))

	assert.Equal(t, attendance.Date("2025-05-01"), totals[1].Date)
	assert.Equal(t, 2, totals[1].AttendanceRows)
	assert.Equal(t, 1, totals[1].ConsolidatedRows)
	assert.Equal(t, 2, totals[1].Employees)
	assert.Equal(t, "8.90", totals[1].WorkedHours.StringFixed(2))

	assert.Equal(t, "8.90", SumHours(totals).StringFixed(2))
	assert.Empty(t, BuildDailyTotals(nil))
}

func TestCSVWriter_WritesHeaderAndRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "activity.csv")
	writer, err := WriterForFormat("CSV")
	require.NoError(t, err)
	require.NoError(t, writer.Write(path, sampleRows()))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, rowHeaders, records[0])
	assert.Equal(t, []string{"2025-05-03", "2", "Ben Cruz", "Leave", "approved", "Sick Leave", "-", "-", "-", "flu", ""}, records[1])
	assert.Contains(t, records[3][10], "Consolidated 2 records.")
}

func TestExcelWriter_WritesActivityDetailsAndTotals(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "activity.xlsx")
	writer, err := WriterForFormat(DetectFormat(path))
	require.NoError(t, err)
	require.NoError(t, writer.Write(path, sampleRows()))

	file, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer file.Close()

	activity, err := file.GetRows(activitySheet)
	require.NoError(t, err)
	require.Len(t, activity, 4)
	assert.Equal(t, "EventType", activity[0][3])
	assert.Equal(t, "Leave", activity[1][3])

	details, err := file.GetRows(detailSheet)
	require.NoError(t, err)
	assert.Len(t, details, 3)

	totals, err := file.GetRows(totalsSheet)
	require.NoError(t, err)
	require.Len(t, totals, 3)
	assert.Equal(t, []string{"2025-05-03", "0.00", "0", "1", "0", "1"}, totals[1])
}

func TestWriteDailyTotals(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	totals := BuildDailyTotals(sampleRows())

	csvPath := filepath.Join(dir, "totals.csv")
	require.NoError(t, WriteDailyTotals(csvPath, "csv", totals))
	content, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "Date,WorkedHours,AttendanceRows"))

	xlsxPath := filepath.Join(dir, "totals.xlsx")
	require.NoError(t, WriteDailyTotals(xlsxPath, "excel", totals))
	_, err = os.Stat(xlsxPath)
	require.NoError(t, err)

	assert.Error(t, WriteDailyTotals(filepath.Join(dir, "x.pdf"), "pdf", totals))
}

func TestWriteTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleRows(), true))

	out := buf.String()
	assert.Contains(t, out, "Sick Leave")
	assert.Contains(t, out, "record")
	assert.Contains(t, out, "08:05")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "8.90")
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "excel", DetectFormat("out.XLSX"))
	assert.Equal(t, "csv", DetectFormat("out.csv"))
	assert.Equal(t, "csv", DetectFormat("out"))

	_, err := WriterForFormat("pdf")
	assert.Error(t, err)
}
