package report

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"attendlog/api"
	"attendlog/attendance"
)

// BundleFetcher loads the employees of one outlet for a date range.
type BundleFetcher interface {
	OutletBundle(ctx context.Context, outletID int64, from, to attendance.Date) (api.OutletBundle, error)
}

// OutletResult is the outcome of one outlet fetch.
type OutletResult struct {
	OutletID   int64  `json:"outlet_id"`
	OutletName string `json:"outlet_name"`
	Employees  int    `json:"employees"`
	Dropped    int    `json:"dropped"`
	Error      string `json:"error,omitempty"`

	Err error `json:"-"`
}

// Failed also holds for results decoded from JSON, where only Error survives.
func (o OutletResult) Failed() bool {
	return o.Err != nil || o.Error != ""
}

type AggregateResult struct {
	Employees []attendance.Employee
	Outlets   []OutletResult
}

func (a AggregateResult) Failed() []OutletResult {
	failed := make([]OutletResult, 0)
	for _, outlet := range a.Outlets {
		if outlet.Failed() {
			failed = append(failed, outlet)
		}
	}
	return failed
}

func (a AggregateResult) Dropped() int {
	total := 0
	for _, outlet := range a.Outlets {
		total += outlet.Dropped
	}
	return total
}

// Aggregate fetches every outlet concurrently, at most limit at a time, and
// merges the employees by ID. A failed outlet is recorded and skipped; it
// never cancels the other fetches.
func Aggregate(ctx context.Context, fetcher BundleFetcher, outlets []attendance.Outlet, r DateRange, limit int, logger *zap.Logger) AggregateResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = 1
	}

	results := make([]OutletResult, len(outlets))
	bundles := make([][]attendance.Employee, len(outlets))

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(limit)

	for i, outlet := range outlets {
		g.Go(func() error {
			bundle, err := fetcher.OutletBundle(ctx, outlet.ID, r.Start, r.End)
			outcome := OutletResult{OutletID: outlet.ID, OutletName: outlet.Name}
			if err != nil {
				outcome.Err = err
				outcome.Error = err.Error()
				logger.Warn("outlet fetch failed",
					zap.Int64("outlet_id", outlet.ID),
					zap.String("outlet_name", outlet.Name),
					zap.Error(err),
				)
			} else {
				if outcome.OutletName == "" {
					outcome.OutletName = bundle.OutletName
				}
				outcome.Employees = len(bundle.Employees)
				outcome.Dropped = bundle.Dropped
				logger.Debug("outlet fetched",
					zap.Int64("outlet_id", outlet.ID),
					zap.Int("employees", len(bundle.Employees)),
					zap.Int("dropped", bundle.Dropped),
				)
			}

			mu.Lock()
			results[i] = outcome
			if err == nil {
				bundles[i] = withOutlet(bundle.Employees, outlet.ID)
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return AggregateResult{
		Employees: MergeEmployees(bundles...),
		Outlets:   results,
	}
}

func withOutlet(employees []attendance.Employee, outletID int64) []attendance.Employee {
	out := make([]attendance.Employee, 0, len(employees))
	for _, employee := range employees {
		employee.OutletIDs = unionIDs(employee.OutletIDs, []int64{outletID})
		out = append(out, employee)
	}
	return out
}

// MergeEmployees merges employees that share an ID. Attendance and leave
// entries are concatenated without deduplication and outlet IDs are unioned.
// Employees keep the order of first appearance.
func MergeEmployees(groups ...[]attendance.Employee) []attendance.Employee {
	index := make(map[int64]int)
	merged := make([]attendance.Employee, 0)

	for _, group := range groups {
		for _, employee := range group {
			pos, ok := index[employee.ID]
			if !ok {
				index[employee.ID] = len(merged)
				copied := employee
				copied.OutletIDs = unionIDs(nil, employee.OutletIDs)
				copied.Attendance = append([]attendance.AttendanceRecord(nil), employee.Attendance...)
				copied.Leaves = append([]attendance.LeaveRecord(nil), employee.Leaves...)
				merged = append(merged, copied)
				continue
			}

			existing := &merged[pos]
			existing.Attendance = append(existing.Attendance, employee.Attendance...)
			existing.Leaves = append(existing.Leaves, employee.Leaves...)
			existing.OutletIDs = unionIDs(existing.OutletIDs, employee.OutletIDs)
			if existing.FullName == "" {
				existing.FullName = employee.FullName
			}
			if existing.FirstName == "" && existing.LastName == "" {
				existing.FirstName = employee.FirstName
				existing.LastName = employee.LastName
			}
			if existing.InactiveDate == nil {
				existing.InactiveDate = employee.InactiveDate
			}
		}
	}
	return merged
}

func unionIDs(base, extra []int64) []int64 {
	out := append([]int64(nil), base...)
	seen := make(map[int64]struct{}, len(base)+len(extra))
	for _, id := range out {
		seen[id] = struct{}{}
	}
	for _, id := range extra {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
