package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/WasedaCreators/seiseki-viewer/lib/sqliteutil"
	"github.com/WasedaCreators/seiseki-viewer/services/gradereport"
	"github.com/WasedaCreators/seiseki-viewer/services/gradereport/db"
	"github.com/WasedaCreators/seiseki-viewer/services/gradereport/portal"
)

var scrapeHeadful bool

var scrapeCmd = &cobra.Command{
	Use:   "scrape <username>",
	Short: "run one full scrape and print the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(os.Stderr, "password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}

		database, err := sqliteutil.OpenDB(db.Schema, databasePath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}

		svc := gradereport.NewService(database, gradereport.Options{
			RequirementPaths: requirementPaths,
			Rules:            gradereport.DefaultRules(),
			Pages:            portal.DefaultPages(),
			Headful:          scrapeHeadful,
		})

		report, err := svc.FetchGrades(cmd.Context(), args[0], string(password))
		if err != nil {
			return err
		}

		printReport(report)
		return nil
	},
}

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeHeadful, "headful", false, "run chrome with a window")
}

func printReport(report gradereport.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Subject", "Year", "Semester", "Credit", "Grade", "GP"})
	for _, rec := range report.Grades {
		t.AppendRow(table.Row{
			rec.Subject, rec.Year, rec.Semester, rec.Credit, rec.Grade, rec.GradePoint,
		})
	}
	t.AppendFooter(table.Row{
		"", "", "", "", "Average", fmt.Sprintf("%.2f", report.Average),
	})
	t.Render()

	if len(report.Unmatched) > 0 {
		fmt.Println()
		fmt.Println("requirements with no matching course:")
		for _, miss := range report.Unmatched {
			fmt.Printf(
				"  %s (closest: %s, similarity %.2f)\n",
				miss.Name, miss.ClosestSubject, miss.Similarity,
			)
		}
	}
}
