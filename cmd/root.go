/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"attendlog/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "attendlog",
	Short: "Consolidated attendance and leave activity logs for outlets and employees.",
	Long: `
**********************************************
*              ATTENDLOG                     *
**********************************************

This CLI talks to the attendance REST API and turns raw attendance punches and
leave records into one consolidated, date-filtered activity log per employee.
Reports can be printed, exported to CSV or Excel, or browsed in a local web UI.

Administrators can also manage outlets, employees, devices and leave decisions.
`,
	Example: `
  # Create configuration file
  attendlog config create

  # Log in and store the session locally
  attendlog auth login --username manager1

  # Activity log of the selected outlet for May 2025
  attendlog report --from 2025-05-01 --to 2025-05-31

  # All accessible outlets, exported to Excel
  attendlog report --outlet all --from 2025-05-01 --to 2025-05-31 --output ./may.xlsx

  # Per-day totals as CSV
  attendlog report --outlet all --from 2025-05-01 --to 2025-05-31 --mode daily --output ./may-daily.csv

  # Browse reports in the local web UI
  attendlog serve
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.attendlog.yaml, then ./.attendlog.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".attendlog" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".attendlog")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: attendlog config create")
	}
}
