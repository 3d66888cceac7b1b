// Package report turns raw attendance and leave data into the consolidated,
// date-filtered activity log.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"attendlog/api"
	"attendlog/attendance"
)

var ErrInvalidQuery = errors.New("query needs exactly one of outlet, all outlets or employee")

// Loader is the part of the API client the report needs.
type Loader interface {
	BundleFetcher
	CurrentUser(ctx context.Context) (api.User, error)
	ListOutlets(ctx context.Context) ([]attendance.Outlet, error)
	EmployeeReport(ctx context.Context, employeeID int64, from, to attendance.Date) (api.EmployeeReport, error)
}

// Query selects the scope of a report. Exactly one of OutletID, All and
// EmployeeID must be set.
type Query struct {
	OutletID   int64
	All        bool
	EmployeeID int64
	Range      DateRange
}

func (q Query) Validate() error {
	scopes := 0
	if q.OutletID > 0 {
		scopes++
	}
	if q.All {
		scopes++
	}
	if q.EmployeeID > 0 {
		scopes++
	}
	if scopes != 1 {
		return ErrInvalidQuery
	}
	return q.Range.Validate()
}

type Stats struct {
	Employees        int `json:"employees"`
	HiddenInactive   int `json:"hidden_inactive"`
	AttendanceRows   int `json:"attendance_rows"`
	LeaveRows        int `json:"leave_rows"`
	RecordsProcessed int `json:"records_processed"`
	DaysConsolidated int `json:"days_consolidated"`
	HoursReported    int `json:"hours_reported"`
	HoursMissing     int `json:"hours_missing"`
	Dropped          int `json:"dropped"`
	FailedOutlets    int `json:"failed_outlets"`
}

type Result struct {
	Range       DateRange      `json:"range"`
	Rows        []Row          `json:"rows"`
	Outlets     []OutletResult `json:"outlets"`
	Stats       Stats          `json:"stats"`
	GeneratedAt time.Time      `json:"generated_at"`
}

type Service struct {
	loader         Loader
	formatter      Formatter
	maxConcurrency int
	logger         *zap.Logger
	now            func() time.Time
}

func NewService(loader Loader, loc *time.Location, maxConcurrency int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &Service{
		loader:         loader,
		formatter:      NewFormatter(loc),
		maxConcurrency: maxConcurrency,
		logger:         logger,
		now:            time.Now,
	}
}

// AccessibleOutlets returns the visible outlets of the current user. Users
// without outlet assignments see every visible outlet.
func (s *Service) AccessibleOutlets(ctx context.Context) ([]attendance.Outlet, error) {
	user, err := s.loader.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("load current user: %w", err)
	}
	outlets, err := s.loader.ListOutlets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list outlets: %w", err)
	}

	visible := attendance.VisibleOutlets(outlets)
	if len(user.Outlets) == 0 {
		return visible, nil
	}

	assigned := make(map[int64]struct{}, len(user.Outlets))
	for _, ref := range user.Outlets {
		assigned[ref.ID] = struct{}{}
	}
	out := make([]attendance.Outlet, 0, len(visible))
	for _, outlet := range visible {
		if _, ok := assigned[outlet.ID]; ok {
			out = append(out, outlet)
		}
	}
	return out, nil
}

// ActivityLog loads the employees in scope and runs the report pipeline.
// Nothing is fetched unless the query and its range are valid.
func (s *Service) ActivityLog(ctx context.Context, q Query) (*Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	result := &Result{Range: q.Range, GeneratedAt: s.now()}
	var employees []attendance.Employee

	switch {
	case q.EmployeeID > 0:
		report, err := s.loader.EmployeeReport(ctx, q.EmployeeID, q.Range.Start, q.Range.End)
		if err != nil {
			return nil, fmt.Errorf("load employee %d: %w", q.EmployeeID, err)
		}
		employees = []attendance.Employee{report.Employee}
		result.Stats.Dropped = report.Dropped

	case q.OutletID > 0:
		bundle, err := s.loader.OutletBundle(ctx, q.OutletID, q.Range.Start, q.Range.End)
		if err != nil {
			return nil, fmt.Errorf("load outlet %d: %w", q.OutletID, err)
		}
		employees = bundle.Employees
		result.Outlets = []OutletResult{{
			OutletID:   q.OutletID,
			OutletName: bundle.OutletName,
			Employees:  len(bundle.Employees),
			Dropped:    bundle.Dropped,
		}}
		result.Stats.Dropped = bundle.Dropped

	default:
		outlets, err := s.AccessibleOutlets(ctx)
		if err != nil {
			return nil, err
		}
		aggregate := Aggregate(ctx, s.loader, outlets, q.Range, s.maxConcurrency, s.logger)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		employees = aggregate.Employees
		result.Outlets = aggregate.Outlets
		result.Stats.Dropped = aggregate.Dropped()
		result.Stats.FailedOutlets = len(aggregate.Failed())
	}

	pipeline := BuildRows(employees, q.Range, s.formatter)
	result.Rows = pipeline.Rows
	result.Stats.Employees = len(employees) - pipeline.HiddenInactive
	result.Stats.HiddenInactive = pipeline.HiddenInactive
	result.Stats.LeaveRows = pipeline.LeaveRows
	result.Stats.AttendanceRows = len(pipeline.Rows) - pipeline.LeaveRows
	result.Stats.RecordsProcessed = pipeline.Reconcile.RecordsProcessed
	result.Stats.DaysConsolidated = pipeline.Reconcile.DaysConsolidated
	result.Stats.HoursReported = pipeline.Reconcile.HoursReported
	result.Stats.HoursMissing = pipeline.Reconcile.HoursMissing

	s.logger.Debug("activity log built",
		zap.String("range", q.Range.String()),
		zap.Int("rows", len(result.Rows)),
		zap.Int("failed_outlets", result.Stats.FailedOutlets),
	)
	return result, nil
}
