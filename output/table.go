package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"attendlog/report"
)

// WriteTable prints the rows as an aligned terminal table followed by the
// daily totals. Consolidated rows list their records indented below.
func WriteTable(w io.Writer, rows []report.Row, withDetails bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "DATE\tEMPLOYEE\tEVENT\tSTATUS\tDETAILS\tIN\tOUT\tHOURS\tNOTES")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.Date, row.EmployeeName, row.EventType, dash(row.Status), dash(row.Details),
			row.CheckIn, row.CheckOut, row.WorkedHours, dash(row.Notes))
		if !withDetails || !row.Consolidated() {
			continue
		}
		for _, sub := range row.SubRows {
			fmt.Fprintf(tw, "\t  record\t\t%s\t\t%s\t%s\t%s\t%s\n",
				dash(sub.Status), sub.CheckIn, sub.CheckOut, sub.WorkedHours, dash(sub.Notes))
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	totals := BuildDailyTotals(rows)
	if len(totals) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tHOURS\tATTENDANCE\tLEAVE\tCONSOLIDATED\tEMPLOYEES")
	for _, total := range totals {
		fmt.Fprintln(tw, strings.Join(total.values(), "\t"))
	}
	fmt.Fprintf(tw, "TOTAL\t%s\t\t\t\t\n", SumHours(totals).StringFixed(2))
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write totals table: %w", err)
	}
	return nil
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
