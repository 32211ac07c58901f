package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"pft/internal/cli"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "pft",
	Short: "Personal finance tracker front end",
	Long: `pft serves the personal finance tracker UI on top of an external finance API
and prints the student marks cards.

Available commands:
  serve      Start the web UI
  students   Print the student marks cards

Settings come from the environment (and an optional .env file).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if envFile != "" {
			cli.LoadEnvFile(envFile)
		} else {
			cli.LoadEnvFile()
		}
	},
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env)")
}
