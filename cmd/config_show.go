package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"attendlog/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values. Values set
through ATTENDLOG_ environment variables are included.`,
	Example: `
  # Show active configuration
  attendlog config show
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		} else {
			fmt.Println("No config file loaded; showing defaults and environment overrides.")
		}
		fmt.Println("Configuration:")
		fmt.Printf("api.url: %s\n", cfg.API.URL)
		fmt.Printf("api.timeout: %s\n", cfg.API.Timeout)
		fmt.Printf("report.timezone: %s\n", cfg.Report.Timezone)
		fmt.Printf("report.max_concurrency: %d\n", cfg.Report.MaxConcurrency)
		fmt.Printf("storage.path: %s\n", cfg.Storage.Path)
		fmt.Printf("log.level: %s\n", cfg.Log.Level)
		fmt.Printf("log.format: %s\n", cfg.Log.Format)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
