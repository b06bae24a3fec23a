package main

import (
	"github.com/spf13/cobra"
)

var (
	databasePath     string
	requirementPaths []string
)

var rootCmd = &cobra.Command{
	Use:           "seiseki-cli",
	Short:         "operator tooling for the grade report service",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&databasePath, "database", "gpadata.db",
		"path or libsql:// url of the database",
	)
	rootCmd.PersistentFlags().StringSliceVar(
		&requirementPaths, "requirements", []string{"list/hisshu.csv", "../list/hisshu.csv"},
		"candidate paths of the required-course csv",
	)

	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(migrateHashesCmd)
}
