package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "estq",
	Short: "Estimating CLI for AV integration projects",
	Long: `estq manages AV integration estimates: per-project location trees,
a shared component catalog with team customizations, reusable versioned
packages, change-control revisions, and consolidated exports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to database file (overrides ESTQ_DB_PATH)")
	rootCmd.PersistentFlags().String("as", "", "Actor to perform action as")
	rootCmd.PersistentFlags().String("team", "", "Team scope (overrides ESTQ_TEAM)")
	rootCmd.PersistentFlags().String("output", "", "Output format: table, json, yaml")
}
