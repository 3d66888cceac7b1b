package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"attendlog/attendance"
	"attendlog/session"
)

var (
	leaveDecideID      string
	leaveDecideStatus  string
	leaveDecideCurrent string
)

var leaveCmd = &cobra.Command{
	Use:   "leave",
	Short: "Approve or reject leave requests.",
}

var leaveDecideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Approve or reject a pending leave (Admin or Manager)",
	Long: `Approve or reject a leave request.

Only pending leaves can be decided. --current must be the status shown in the
report; the transition is checked locally before anything is sent to the API.`,
	Example: `
  attendlog leave decide --id 42 --status approved --current pending
  attendlog leave decide --id 42 --status rejected --current pending
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDFlag("id", leaveDecideID)
		if err != nil {
			return err
		}
		next, err := checkLeaveDecision(leaveDecideCurrent, leaveDecideStatus)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		_, client, err := a.requireRole(session.RoleAdmin, session.RoleManager)
		if err != nil {
			return err
		}
		if err := client.UpdateLeaveStatus(cmd.Context(), id, next); err != nil {
			return err
		}
		fmt.Printf("Leave %d %s\n", id, next)
		return nil
	},
}

func checkLeaveDecision(currentValue, nextValue string) (attendance.LeaveStatus, error) {
	if strings.TrimSpace(currentValue) == "" {
		return "", fmt.Errorf("--current is required: pass the leave's status from the report")
	}
	current, err := attendance.ParseLeaveStatus(currentValue)
	if err != nil {
		return "", fmt.Errorf("invalid --current value: %w", err)
	}
	next, err := attendance.ParseLeaveStatus(nextValue)
	if err != nil {
		return "", fmt.Errorf("invalid --status value: %w", err)
	}
	if err := current.TransitionTo(next); err != nil {
		return "", err
	}
	return next, nil
}

func init() {
	rootCmd.AddCommand(leaveCmd)
	leaveCmd.AddCommand(leaveDecideCmd)

	leaveDecideCmd.Flags().StringVar(&leaveDecideID, "id", "", "Leave ID")
	leaveDecideCmd.Flags().StringVar(&leaveDecideStatus, "status", "", "New status: approved or rejected")
	leaveDecideCmd.Flags().StringVar(&leaveDecideCurrent, "current", "", "Current status of the leave, as shown in the report")
	_ = leaveDecideCmd.MarkFlagRequired("id")
	_ = leaveDecideCmd.MarkFlagRequired("status")
	_ = leaveDecideCmd.MarkFlagRequired("current")
}
