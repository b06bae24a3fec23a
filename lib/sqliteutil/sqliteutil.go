package sqliteutil

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// OpenDB opens (creating if necessary) a sqlite database at the given
// path and applies the schema. `libsql://` urls are handed to the
// libsql driver instead of the local one.
func OpenDB(schema, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("a database path was not specified")
	}

	driver := "sqlite"
	if strings.HasPrefix(path, "libsql://") {
		driver = "libsql"
	} else if path != ":memory:" {
		_, statErr := os.Stat(path)
		if os.IsNotExist(statErr) {
			f, err := os.Create(path)
			if err != nil {
				return nil, err
			}
			f.Close()
		}
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// see this stackoverflow post for information on why the following
		// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
		db.SetMaxOpenConns(1)
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			return nil, err
		}
	}

	if schema != "" {
		_, err = db.Exec(schema)
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			return nil, err
		}
	}

	return db, nil
}
