package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/WasedaCreators/seiseki-viewer/services/gradereport"
)

// parse runs the extraction and aggregation stages over a saved page,
// the fast loop when re-tuning the required-course list.
var parseCmd = &cobra.Command{
	Use:   "parse <page.html>",
	Short: "compute the report from saved grade page markup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		markup, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read page: %w", err)
		}

		records, err := gradereport.ExtractRecords(string(markup))
		if err != nil {
			return err
		}

		identity, found := gradereport.ResolveIdentity(string(markup))
		if found {
			fmt.Printf("student id: %s\n", identity.Raw)
		} else {
			fmt.Println("student id: not found")
		}

		required, err := gradereport.LoadRequirements(requirementPaths...)
		if err != nil {
			return err
		}

		rules := gradereport.DefaultRules()
		result := gradereport.Aggregate(records, required, rules)
		unmatched := gradereport.DiagnoseUnmatched(result, required, records)

		printReport(gradereport.Report{
			StudentID: identity.Raw,
			Grades:    records,
			Average:   result.Average,
			Unmatched: unmatched,
		})
		return nil
	},
}
