package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"attendlog/api"
	"attendlog/session"
)

var (
	outletInputName      string
	outletInputLatitude  float64
	outletInputLongitude float64
	outletInputRadius    float64
	outletInputManager   int64
	outletInputAgency    int64
	outletInputDisabled  bool
	outletTargetID       string
)

var outletCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an outlet (Admin only)",
	Example: `
  attendlog outlet create --name "Central" --lat -6.2 --lon 106.8 --radius 150
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
		outlet, err := client.CreateOutlet(cmd.Context(), outletInputFromFlags())
		if err != nil {
			return err
		}
		fmt.Printf("Created outlet %s (%d)\n", outlet.Name, outlet.ID)
		return nil
	},
}

var outletUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update an outlet (Admin only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDFlag("id", outletTargetID)
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
		outlet, err := client.UpdateOutlet(cmd.Context(), id, outletInputFromFlags())
		if err != nil {
			return err
		}
		fmt.Printf("Updated outlet %s (%d)\n", outlet.Name, outlet.ID)
		return nil
	},
}

var outletDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete an outlet (Admin only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDFlag("id", outletTargetID)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sess, client, err := a.requireRole(session.RoleAdmin)
		if err != nil {
			return err
		}
		if err := client.DeleteOutlet(cmd.Context(), id); err != nil {
			return err
		}
		if sess.OutletID == id {
			if err := sess.ClearOutlet(a.store); err != nil {
				return err
			}
		}
		fmt.Printf("Deleted outlet %d\n", id)
		return nil
	},
}

func outletInputFromFlags() api.OutletInput {
	status := 1
	if outletInputDisabled {
		status = 0
	}
	return api.OutletInput{
		Name:         outletInputName,
		Latitude:     outletInputLatitude,
		Longitude:    outletInputLongitude,
		RadiusMeters: outletInputRadius,
		ManagerID:    optionalID(outletInputManager),
		AgencyID:     optionalID(outletInputAgency),
		Status:       status,
	}
}

func init() {
	outletCmd.AddCommand(outletCreateCmd)
	outletCmd.AddCommand(outletUpdateCmd)
	outletCmd.AddCommand(outletDeleteCmd)

	for _, c := range []*cobra.Command{outletCreateCmd, outletUpdateCmd} {
		c.Flags().StringVar(&outletInputName, "name", "", "Outlet name")
		c.Flags().Float64Var(&outletInputLatitude, "lat", 0, "Latitude")
		c.Flags().Float64Var(&outletInputLongitude, "lon", 0, "Longitude")
		c.Flags().Float64Var(&outletInputRadius, "radius", 100, "Check-in radius in meters")
		c.Flags().Int64Var(&outletInputManager, "manager", 0, "Manager user ID")
		c.Flags().Int64Var(&outletInputAgency, "agency", 0, "Agency ID")
		c.Flags().BoolVar(&outletInputDisabled, "disabled", false, "Create or update the outlet as disabled")
		_ = c.MarkFlagRequired("name")
	}
	for _, c := range []*cobra.Command{outletUpdateCmd, outletDeleteCmd} {
		c.Flags().StringVar(&outletTargetID, "id", "", "Outlet ID")
		_ = c.MarkFlagRequired("id")
	}
}
