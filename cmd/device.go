package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"attendlog/api"
	"attendlog/session"
)

var (
	deviceAssignID       string
	deviceAssignOutlet   int64
	deviceAssignEmployee int64
	deviceDeleteID       string
)

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Assign and remove check-in devices (Admin only).",
}

var deviceAssignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign a device to an outlet and optionally an employee",
	Example: `
  attendlog device assign --device TAB-0042 --outlet 3
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		_, client, err := a.requireRole(session.RoleAdmin)
		if err != nil {
			return err
		}
		device, err := client.AssignDevice(cmd.Context(), api.DeviceAssignment{
			DeviceID:   strings.TrimSpace(deviceAssignID),
			OutletID:   deviceAssignOutlet,
			EmployeeID: deviceAssignEmployee,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Assigned device %s (%d) to outlet %d\n", device.DeviceID, device.ID, device.OutletID)
		return nil
	},
}

var deviceDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove a device assignment",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDFlag("id", deviceDeleteID)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		_, client, err := a.requireRole(session.RoleAdmin)
		if err != nil {
			return err
		}
		if err := client.DeleteDevice(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted device %d\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deviceCmd)
	deviceCmd.AddCommand(deviceAssignCmd)
	deviceCmd.AddCommand(deviceDeleteCmd)

	deviceAssignCmd.Flags().StringVar(&deviceAssignID, "device", "", "Device identifier")
	deviceAssignCmd.Flags().Int64Var(&deviceAssignOutlet, "outlet", 0, "Outlet ID")
	deviceAssignCmd.Flags().Int64Var(&deviceAssignEmployee, "employee", 0, "Employee ID (optional)")
	_ = deviceAssignCmd.MarkFlagRequired("device")
	_ = deviceAssignCmd.MarkFlagRequired("outlet")

	deviceDeleteCmd.Flags().StringVar(&deviceDeleteID, "id", "", "Device assignment ID")
	_ = deviceDeleteCmd.MarkFlagRequired("id")
}
