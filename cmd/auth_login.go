package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"attendlog/api"
	"attendlog/session"
)

var (
	authLoginUsername string
	authLoginPassword string
)

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session locally",
	Long: `Exchange username and password for API tokens.

The role is read from the access token, the user profile is loaded, and the
first visible outlet of the user is selected. Everything is stored in the local
session database so later commands and the web UI can reuse it.

The password is read from --password, ATTENDLOG_PASSWORD, or prompted on stdin.`,
	Example: `
  # Prompt for the password
  attendlog auth login --username manager1

  # Non-interactive
  ATTENDLOG_PASSWORD=secret attendlog auth login --username manager1
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		username := strings.TrimSpace(authLoginUsername)
		if username == "" {
			if username, err = readLine(os.Stdin, "Username: "); err != nil {
				return err
			}
		}
		password := authLoginPassword
		if password == "" {
			password = os.Getenv("ATTENDLOG_PASSWORD")
		}
		if password == "" {
			if password, err = readLine(os.Stdin, "Password: "); err != nil {
				return err
			}
		}

		sess, err := session.Login(cmd.Context(), a.store, a.client, api.Credentials{Username: username, Password: password})
		if err != nil {
			return err
		}

		fmt.Printf("Logged in as %s (role: %s)\n", displayUser(sess), displayRole(sess.Role))
		if sess.OutletID > 0 {
			fmt.Printf("Selected outlet: %s (%d)\n", sess.OutletName, sess.OutletID)
		} else {
			fmt.Println("No outlet selected. Use: attendlog outlet select --id <outlet>")
		}
		return nil
	},
}

func displayUser(sess *session.Session) string {
	name := strings.TrimSpace(sess.User.FirstName + " " + sess.User.LastName)
	switch {
	case name != "" && sess.User.Username != "":
		return fmt.Sprintf("%s <%s>", name, sess.User.Username)
	case sess.User.Username != "":
		return sess.User.Username
	case name != "":
		return name
	default:
		return fmt.Sprintf("user %d", sess.User.ID)
	}
}

func displayRole(role string) string {
	if strings.TrimSpace(role) == "" {
		return "none"
	}
	return role
}

func init() {
	authCmd.AddCommand(authLoginCmd)

	authLoginCmd.Flags().StringVarP(&authLoginUsername, "username", "u", "", "API username")
	authLoginCmd.Flags().StringVarP(&authLoginPassword, "password", "p", "", "API password (prefer ATTENDLOG_PASSWORD or the prompt)")
}
