package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"attendlog/api"
	"attendlog/attendance"
	"attendlog/session"
)

var (
	employeeTargetID        string
	employeeDeactivateDate  string
	employeeInputFirstName  string
	employeeInputLastName   string
	employeeInputFullName   string
	employeeInputOutlets    []int64
	employeeInputAgency     int64
	employeeInputGroup      int64
	employeeInputInactiveOn string
)

var employeeCmd = &cobra.Command{
	Use:   "employee",
	Short: "List and manage employees.",
}

var employeeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees",
	Long: `List employees.

Admins see every employee. Managers see the employees of their assigned
outlets, grouped by outlet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sess, client, err := a.session()
		if err != nil {
			return err
		}

		var employees []attendance.Employee
		if sess.IsAdmin() {
			employees, err = client.ListEmployees(cmd.Context())
			if err != nil {
				return err
			}
		} else {
			groups, err := client.EmployeesByUser(cmd.Context(), sess.User.ID)
			if err != nil {
				return err
			}
			for _, group := range groups {
				employees = append(employees, group.Employees...)
			}
		}
		employees = uniqueEmployees(employees)
		if len(employees) == 0 {
			fmt.Println("No employees found.")
			return nil
		}
		return printEmployees(employees)
	},
}

var employeeDeactivateCmd = &cobra.Command{
	Use:   "deactivate",
	Short: "Set the inactive date of an employee (Admin only)",
	Long: `Set the inactive date of an employee.

Reports hide an employee once the report range starts after this date.`,
	Example: `
  attendlog employee deactivate --id 7 --date 2025-04-30
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDFlag("id", employeeTargetID)
		if err != nil {
			return err
		}
		date, err := attendance.ParseDate(employeeDeactivateDate)
		if err != nil || date.IsZero() {
			return fmt.Errorf("invalid --date value %q: expected YYYY-MM-DD", employeeDeactivateDate)
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
		if err := client.DeactivateEmployee(cmd.Context(), id, date); err != nil {
			return err
		}
		fmt.Printf("Employee %d inactive from %s\n", id, date)
		return nil
	},
}

var employeeCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an employee (Admin only)",
	Example: `
  attendlog employee create --first-name Ana --last-name Putri --outlet 3 --outlet 4
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
		employee, err := client.CreateEmployee(cmd.Context(), employeeInputFromFlags())
		if err != nil {
			return err
		}
		fmt.Printf("Created employee %s (%d)\n", employee.DisplayName(), employee.ID)
		return nil
	},
}

var employeeUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update an employee (Admin only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDFlag("id", employeeTargetID)
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
		employee, err := client.UpdateEmployee(cmd.Context(), id, employeeInputFromFlags())
		if err != nil {
			return err
		}
		fmt.Printf("Updated employee %s (%d)\n", employee.DisplayName(), employee.ID)
		return nil
	},
}

var employeeGroupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List employee groups and agencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		_, client, err := a.session()
		if err != nil {
			return err
		}
		groups, err := client.ListGroups(cmd.Context())
		if err != nil {
			return err
		}
		agencies, err := client.ListAgencies(cmd.Context())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KIND\tID\tNAME")
		for _, group := range groups {
			fmt.Fprintf(tw, "group\t%d\t%s\n", group.ID, group.Name)
		}
		for _, agency := range agencies {
			fmt.Fprintf(tw, "agency\t%d\t%s\n", agency.ID, agency.Name)
		}
		return tw.Flush()
	},
}

func employeeInputFromFlags() api.EmployeeInput {
	return api.EmployeeInput{
		FirstName:    strings.TrimSpace(employeeInputFirstName),
		LastName:     strings.TrimSpace(employeeInputLastName),
		FullName:     strings.TrimSpace(employeeInputFullName),
		OutletIDs:    employeeInputOutlets,
		AgencyID:     optionalID(employeeInputAgency),
		GroupID:      optionalID(employeeInputGroup),
		InactiveDate: strings.TrimSpace(employeeInputInactiveOn),
	}
}

// uniqueEmployees drops repeats of the same ID (an employee can belong to
// several outlets) and sorts by display name.
func uniqueEmployees(employees []attendance.Employee) []attendance.Employee {
	seen := make(map[int64]struct{}, len(employees))
	out := make([]attendance.Employee, 0, len(employees))
	for _, employee := range employees {
		if _, ok := seen[employee.ID]; ok {
			continue
		}
		seen[employee.ID] = struct{}{}
		out = append(out, employee)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].DisplayName()) < strings.ToLower(out[j].DisplayName())
	})
	return out
}

func printEmployees(employees []attendance.Employee) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tOUTLETS\tINACTIVE FROM")
	for _, employee := range employees {
		outlets := make([]string, 0, len(employee.OutletIDs))
		for _, id := range employee.OutletIDs {
			outlets = append(outlets, fmt.Sprintf("%d", id))
		}
		inactive := "-"
		if employee.InactiveDate != nil && !employee.InactiveDate.IsZero() {
			inactive = employee.InactiveDate.String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", employee.ID, employee.DisplayName(), dash(strings.Join(outlets, ",")), inactive)
	}
	return tw.Flush()
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func init() {
	rootCmd.AddCommand(employeeCmd)
	employeeCmd.AddCommand(employeeListCmd)
	employeeCmd.AddCommand(employeeDeactivateCmd)
	employeeCmd.AddCommand(employeeCreateCmd)
	employeeCmd.AddCommand(employeeUpdateCmd)
	employeeCmd.AddCommand(employeeGroupsCmd)

	for _, c := range []*cobra.Command{employeeDeactivateCmd, employeeUpdateCmd} {
		c.Flags().StringVar(&employeeTargetID, "id", "", "Employee ID")
		_ = c.MarkFlagRequired("id")
	}
	employeeDeactivateCmd.Flags().StringVar(&employeeDeactivateDate, "date", "", "Inactive date, format YYYY-MM-DD")
	_ = employeeDeactivateCmd.MarkFlagRequired("date")

	for _, c := range []*cobra.Command{employeeCreateCmd, employeeUpdateCmd} {
		c.Flags().StringVar(&employeeInputFirstName, "first-name", "", "First name")
		c.Flags().StringVar(&employeeInputLastName, "last-name", "", "Last name")
		c.Flags().StringVar(&employeeInputFullName, "full-name", "", "Full name (optional)")
		c.Flags().Int64SliceVar(&employeeInputOutlets, "outlet", nil, "Outlet ID (repeatable)")
		c.Flags().Int64Var(&employeeInputAgency, "agency", 0, "Agency ID")
		c.Flags().Int64Var(&employeeInputGroup, "group", 0, "Group ID")
		c.Flags().StringVar(&employeeInputInactiveOn, "inactive-date", "", "Inactive date, format YYYY-MM-DD")
		_ = c.MarkFlagRequired("first-name")
		_ = c.MarkFlagRequired("outlet")
	}
}
