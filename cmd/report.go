package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"attendlog/output"
	"attendlog/report"
)

var (
	reportOutlet   string
	reportEmployee string
	reportFrom     string
	reportTo       string
	reportOutput   string
	reportFormat   string
	reportMode     string
	reportDetails  bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the consolidated activity log for a date range",
	Long: `Build the activity log: attendance and leave rows for a date range.

Duplicate punches of one employee on one day are consolidated into a single
row. Employees whose inactive date lies before the range start are hidden.
Rows are sorted newest date first.

Scope is one of:
  --employee <id>      a single employee
  --outlet <id>        a single outlet
  --outlet all         every outlet visible to the user (fetched concurrently)
Without --employee or --outlet the selected outlet from the session is used.

Both --from and --to are required; nothing is fetched without a full range.

Without --output the log is printed as a table. With --output it is written as
CSV or Excel (detected from the extension unless --format is given).
--mode daily writes per-day totals instead of rows.`,
	Example: `
  # Print the selected outlet's log for May
  attendlog report --from 2025-05-01 --to 2025-05-31

  # All outlets, with consolidated records expanded
  attendlog report --outlet all --from 2025-05-01 --to 2025-05-31 --details

  # Export to Excel
  attendlog report --outlet 3 --from 2025-05-01 --to 2025-05-31 --output may.xlsx

  # Daily totals as CSV
  attendlog report --outlet all --from 2025-05-01 --to 2025-05-31 --mode daily --output totals.csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := strings.ToLower(strings.TrimSpace(reportMode))
		if mode != "rows" && mode != "daily" {
			return fmt.Errorf("unsupported --mode %q: use rows or daily", reportMode)
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sess, client, err := a.session()
		if err != nil {
			return err
		}

		query, err := buildReportQuery(reportOutlet, reportEmployee, reportFrom, reportTo, sess.OutletID)
		if err != nil {
			return err
		}

		result, err := a.reportService(client).ActivityLog(cmd.Context(), query)
		if err != nil {
			return err
		}
		printReportSummary(os.Stderr, result)

		if strings.TrimSpace(reportOutput) == "" {
			return output.WriteTable(os.Stdout, result.Rows, reportDetails)
		}

		format := strings.TrimSpace(reportFormat)
		if format == "" {
			format = output.DetectFormat(reportOutput)
		}

		if mode == "daily" {
			totals := output.BuildDailyTotals(result.Rows)
			if err := output.WriteDailyTotals(reportOutput, format, totals); err != nil {
				return err
			}
			fmt.Printf("Wrote %d day(s), %s hours to %s\n", len(totals), output.SumHours(totals).StringFixed(2), reportOutput)
			return nil
		}

		writer, err := output.WriterForFormat(format)
		if err != nil {
			return err
		}
		if err := writer.Write(reportOutput, result.Rows); err != nil {
			return err
		}
		fmt.Printf("Wrote %d row(s) to %s\n", len(result.Rows), reportOutput)
		return nil
	},
}

// buildReportQuery maps the CLI flags onto a report query. --employee wins
// over --outlet; without either the session's selected outlet is used.
func buildReportQuery(outlet, employee, from, to string, selectedOutlet int64) (report.Query, error) {
	r, err := report.ParseDateRange(from, to)
	if err != nil {
		return report.Query{}, err
	}
	query := report.Query{Range: r}

	outlet = strings.ToLower(strings.TrimSpace(outlet))
	switch {
	case strings.TrimSpace(employee) != "":
		query.EmployeeID, err = parseIDFlag("employee", employee)
		if err != nil {
			return report.Query{}, err
		}
	case outlet == "all":
		query.All = true
	case outlet != "":
		query.OutletID, err = parseIDFlag("outlet", outlet)
		if err != nil {
			return report.Query{}, err
		}
	case selectedOutlet > 0:
		query.OutletID = selectedOutlet
	default:
		return report.Query{}, fmt.Errorf("no outlet selected: pass --outlet <id|all>, --employee <id>, or run 'attendlog outlet select'")
	}
	return query, query.Validate()
}

func printReportSummary(w io.Writer, result *report.Result) {
	stats := result.Stats
	fmt.Fprintf(w, "Range %s: %d employee(s), %d attendance row(s), %d leave row(s)\n",
		result.Range, stats.Employees, stats.AttendanceRows, stats.LeaveRows)
	if stats.DaysConsolidated > 0 {
		fmt.Fprintf(w, "Consolidated %d day(s) from %d record(s)\n", stats.DaysConsolidated, stats.RecordsProcessed)
	}
	if stats.HiddenInactive > 0 {
		fmt.Fprintf(w, "Hidden inactive employees: %d\n", stats.HiddenInactive)
	}
	if stats.HoursMissing > 0 {
		fmt.Fprintf(w, "Records without worked hours: %d\n", stats.HoursMissing)
	}
	if stats.Dropped > 0 {
		fmt.Fprintf(w, "Warning: %d malformed record(s) skipped\n", stats.Dropped)
	}
	for _, outlet := range result.Outlets {
		if outlet.Failed() {
			fmt.Fprintf(w, "Warning: outlet %s (%d) failed: %s\n", outlet.OutletName, outlet.OutletID, outlet.Error)
		}
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportOutlet, "outlet", "", "Outlet ID or \"all\" (default: selected outlet)")
	reportCmd.Flags().StringVar(&reportEmployee, "employee", "", "Employee ID")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "Start date, format YYYY-MM-DD")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "End date, format YYYY-MM-DD")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Write to file instead of printing a table")
	reportCmd.Flags().StringVar(&reportFormat, "format", "", "Output format: csv or excel (default: from extension)")
	reportCmd.Flags().StringVar(&reportMode, "mode", "rows", "Output mode: rows or daily")
	reportCmd.Flags().BoolVar(&reportDetails, "details", false, "List the records of consolidated rows in the table")
}
