package cmd

import "github.com/spf13/cobra"

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Log in to the attendance API and manage the local session.",
	Long: `Authentication helpers for the attendance API.

Use "auth login" to obtain tokens and store the session locally.
Use "auth status" to show the stored user, role and selected outlet.
Use "auth logout" to remove the stored session.`,
}

func init() {
	rootCmd.AddCommand(authCmd)
}
