package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"attendlog/session"
)

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := session.Load(a.store)
		if errors.Is(err, session.ErrNoSession) {
			fmt.Println("Not logged in.")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("User: %s\n", displayUser(sess))
		fmt.Printf("Role: %s\n", displayRole(sess.Role))
		if sess.OutletID > 0 {
			fmt.Printf("Outlet: %s (%d)\n", sess.OutletName, sess.OutletID)
		} else {
			fmt.Println("Outlet: none selected")
		}
		fmt.Printf("Assigned outlets: %d\n", len(sess.User.Outlets))
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := session.Logout(a.store); err != nil {
			return err
		}
		fmt.Println("Logged out. Local session removed.")
		return nil
	},
}

func init() {
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
}
