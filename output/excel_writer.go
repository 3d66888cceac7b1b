package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"attendlog/report"
)

const (
	activitySheet = "Activity"
	detailSheet   = "Consolidated Records"
	totalsSheet   = "Daily Totals"
)

// ExcelWriter writes the activity log, the records behind consolidated rows
// and the daily totals to separate sheets of one workbook.
type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, rows []report.Row) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), activitySheet); err != nil {
		return fmt.Errorf("rename excel sheet: %w", err)
	}
	values := make([][]string, 0, len(rows))
	details := make([][]string, 0)
	for _, row := range rows {
		values = append(values, rowValues(row))
		for _, sub := range row.SubRows {
			details = append(details, rowValues(sub))
		}
	}
	if err := writeSheet(file, activitySheet, rowHeaders, values); err != nil {
		return err
	}

	if len(details) > 0 {
		if _, err := file.NewSheet(detailSheet); err != nil {
			return fmt.Errorf("create excel sheet %s: %w", detailSheet, err)
		}
		if err := writeSheet(file, detailSheet, rowHeaders, details); err != nil {
			return err
		}
	}

	if _, err := file.NewSheet(totalsSheet); err != nil {
		return fmt.Errorf("create excel sheet %s: %w", totalsSheet, err)
	}
	totals := BuildDailyTotals(rows)
	totalValues := make([][]string, 0, len(totals))
	for _, total := range totals {
		totalValues = append(totalValues, total.values())
	}
	if err := writeSheet(file, totalsSheet, totalHeaders, totalValues); err != nil {
		return err
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}

	return nil
}

func writeSheet(file *excelize.File, sheet string, headers []string, rows [][]string) error {
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s!%s: %w", sheet, cell, err)
		}
	}

	for i, values := range rows {
		row := i + 2
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s!%s: %w", sheet, cell, err)
			}
		}
	}

	if len(rows) > 0 {
		if err := file.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("freeze excel header %s: %w", sheet, err)
		}
	}
	return nil
}
