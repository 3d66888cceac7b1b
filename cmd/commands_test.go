package cmd

import (
	"errors"
	"strings"
	"testing"

	"attendlog/attendance"
)

func TestCheckLeaveDecision(t *testing.T) {
	t.Parallel()

	next, err := checkLeaveDecision("pending", "Approved")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != attendance.LeaveApproved {
		t.Fatalf("expected approved, got %q", next)
	}

	if _, err := checkLeaveDecision("approved", "rejected"); !errors.Is(err, attendance.ErrInvalidLeaveTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if _, err := checkLeaveDecision("pending", "pending"); !errors.Is(err, attendance.ErrInvalidLeaveTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if _, err := checkLeaveDecision("", "rejected"); err == nil || !strings.Contains(err.Error(), "--current") {
		t.Fatalf("expected --current error, got %v", err)
	}
	if _, err := checkLeaveDecision("pending", "maybe"); err == nil || !strings.Contains(err.Error(), "--status") {
		t.Fatalf("expected --status error, got %v", err)
	}
}

func TestParseIDFlag(t *testing.T) {
	t.Parallel()

	if id, err := parseIDFlag("id", " 42 "); err != nil || id != 42 {
		t.Fatalf("expected 42, got %d %v", id, err)
	}
	for _, raw := range []string{"", "0", "-1", "x"} {
		if _, err := parseIDFlag("id", raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestUniqueEmployees_DropsRepeatsAndSorts(t *testing.T) {
	t.Parallel()

	got := uniqueEmployees([]attendance.Employee{
		{ID: 2, FullName: "zara"},
		{ID: 1, FirstName: "Ana"},
		{ID: 2, FullName: "zara"},
	})
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("unexpected employees %+v", got)
	}
}

func TestFindOutlet(t *testing.T) {
	t.Parallel()

	outlets := []attendance.Outlet{{ID: 1, Name: "Central"}, {ID: 2, Name: "Harbour"}}
	if outlet, ok := findOutlet(outlets, 2); !ok || outlet.Name != "Harbour" {
		t.Fatalf("expected Harbour, got %+v %v", outlet, ok)
	}
	if _, ok := findOutlet(outlets, 3); ok {
		t.Fatalf("expected no outlet for id 3")
	}
}
