package main

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/WasedaCreators/seiseki-viewer/lib/sqliteutil"
	"github.com/WasedaCreators/seiseki-viewer/services/gradereport"
	"github.com/WasedaCreators/seiseki-viewer/services/gradereport/db"
)

var rawIdPattern = regexp.MustCompile(`^1[A-Z]\d{2}[A-Z]\d+$`)

// migrate-hashes rekeys rows written before student ids were hashed
// at all. Rows already keyed by hash are left alone.
var migrateHashesCmd = &cobra.Command{
	Use:   "migrate-hashes",
	Short: "rekey plaintext student ids to their hashed form",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := sqliteutil.OpenDB(db.Schema, databasePath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		qry := db.New(database)

		rows, err := qry.GetAllGPA(cmd.Context())
		if err != nil {
			return fmt.Errorf("list rows: %w", err)
		}

		migrated := 0
		for _, row := range rows {
			if !rawIdPattern.MatchString(row.StudentID) {
				continue
			}
			err = qry.UpdateStudentID(
				cmd.Context(),
				row.StudentID,
				gradereport.HashID(row.StudentID),
			)
			if err != nil {
				return fmt.Errorf("rekey %s: %w", row.StudentID, err)
			}
			migrated++
		}

		fmt.Printf("migrated %d of %d rows\n", migrated, len(rows))
		return nil
	},
}
