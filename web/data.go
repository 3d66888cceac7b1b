package web

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"attendlog/attendance"
	"attendlog/output"
	"attendlog/report"
)

const outletAll = "all"

// ReportForm holds the raw filter values of the report page.
type ReportForm struct {
	Outlet   string
	Employee string
	From     string
	To       string
	ViewID   string
}

func formFromValues(values url.Values) ReportForm {
	return ReportForm{
		Outlet:   strings.TrimSpace(values.Get("outlet")),
		Employee: strings.TrimSpace(values.Get("employee")),
		From:     strings.TrimSpace(values.Get("from")),
		To:       strings.TrimSpace(values.Get("to")),
		ViewID:   strings.TrimSpace(values.Get("view")),
	}
}

func (f ReportForm) Encode() string {
	values := url.Values{}
	if f.Outlet != "" {
		values.Set("outlet", f.Outlet)
	}
	if f.Employee != "" {
		values.Set("employee", f.Employee)
	}
	values.Set("from", f.From)
	values.Set("to", f.To)
	if f.ViewID != "" {
		values.Set("view", f.ViewID)
	}
	return values.Encode()
}

// Query converts the form. An employee takes precedence over the outlet and
// an empty outlet falls back to defaultOutlet, or all outlets when that is 0.
func (f ReportForm) Query(defaultOutlet int64) (report.Query, error) {
	r, err := report.ParseDateRange(f.From, f.To)
	if err != nil {
		return report.Query{}, err
	}
	q := report.Query{Range: r}

	if f.Employee != "" {
		id, err := parsePositiveInt64(f.Employee)
		if err != nil {
			return report.Query{}, fmt.Errorf("%w: invalid employee %q", errBadRequest, f.Employee)
		}
		q.EmployeeID = id
		return q, nil
	}

	switch {
	case strings.EqualFold(f.Outlet, outletAll):
		q.All = true
	case f.Outlet != "":
		id, err := parsePositiveInt64(f.Outlet)
		if err != nil {
			return report.Query{}, fmt.Errorf("%w: invalid outlet %q", errBadRequest, f.Outlet)
		}
		q.OutletID = id
	case defaultOutlet > 0:
		q.OutletID = defaultOutlet
	default:
		q.All = true
	}
	return q, nil
}

// defaultForm covers the current month up to today.
func defaultForm(now time.Time, outletID int64) ReportForm {
	form := ReportForm{
		From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(attendance.DateLayout),
		To:   now.Format(attendance.DateLayout),
	}
	if outletID > 0 {
		form.Outlet = strconv.FormatInt(outletID, 10)
	} else {
		form.Outlet = outletAll
	}
	return form
}

type reportPageView struct {
	Title      string
	Form       ReportForm
	Outlets    []attendance.Outlet
	Rows       []report.Row
	Totals     []output.DailyTotal
	TotalHours string
	Failed     []report.OutletResult
	Stats      report.Stats
	Error      string
	Role       string
	User       string
	CanDecide  bool
}

// reportResponse is the JSON shape of /api/report.
type reportResponse struct {
	*report.Result
	Totals     []output.DailyTotal   `json:"totals"`
	TotalHours string                `json:"total_hours"`
	Failed     []report.OutletResult `json:"failed_outlets"`
}

func newReportResponse(result *report.Result) reportResponse {
	totals := output.BuildDailyTotals(result.Rows)
	failed := make([]report.OutletResult, 0)
	for _, outlet := range result.Outlets {
		if outlet.Failed() {
			failed = append(failed, outlet)
		}
	}
	return reportResponse{
		Result:     result,
		Totals:     totals,
		TotalHours: output.SumHours(totals).StringFixed(2),
		Failed:     failed,
	}
}

func (v *reportPageView) apply(result *report.Result) {
	response := newReportResponse(result)
	v.Rows = result.Rows
	v.Stats = result.Stats
	v.Totals = response.Totals
	v.TotalHours = response.TotalHours
	v.Failed = response.Failed
}

func parsePositiveInt64(value string) (int64, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, err
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("value must be positive")
	}
	return parsed, nil
}
