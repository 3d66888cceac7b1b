package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the attendlog configuration file.",
	Long: `Create and display the attendlog configuration file.

The configuration stores:
- api.url / api.timeout
- report.timezone / report.max_concurrency
- storage.path (local session database)
- log.level / log.format

Every value can be overridden with an ATTENDLOG_ environment variable,
e.g. ATTENDLOG_API_URL or ATTENDLOG_REPORT_TIMEZONE.`,
	Example: `
  # Create default config in $HOME/.attendlog.yaml
  attendlog config create

  # Show active config and source file
  attendlog config show
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
