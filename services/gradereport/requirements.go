package gradereport

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
)

// RequiredCourse is one entry of the required-course list. Name is
// matched as a substring of transcript subjects, in list order.
type RequiredCourse struct {
	Name   string
	Weight float64
}

const defaultWeight = 1.0

// LoadRequirements reads the required-course csv from the first path
// that exists. No path existing is not an error, the computation just
// proceeds with an empty list (and matches nothing).
//
// The csv has a header row; the "name" column is required, the "重み"
// column is optional and defaults to 1.0 per row.
func LoadRequirements(paths ...string) ([]RequiredCourse, error) {
	for _, path := range paths {
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("open requirements list: %w", err)
		}
		defer f.Close()

		courses, err := parseRequirements(f)
		if err != nil {
			return nil, fmt.Errorf("parse requirements list %q: %w", path, err)
		}
		return courses, nil
	}

	slog.Warn("no requirements list found, proceeding with an empty one", "paths", paths)
	return nil, nil
}

func parseRequirements(r io.Reader) ([]RequiredCourse, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	nameCol, weightCol := -1, -1
	for i, col := range header {
		switch col {
		case "name":
			nameCol = i
		case "重み":
			weightCol = i
		}
	}
	if nameCol < 0 {
		return nil, fmt.Errorf("missing required column \"name\"")
	}

	var courses []RequiredCourse
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if nameCol >= len(row) || row[nameCol] == "" {
			continue
		}

		weight := defaultWeight
		if weightCol >= 0 && weightCol < len(row) {
			parsed, err := strconv.ParseFloat(row[weightCol], 64)
			if err == nil {
				weight = parsed
			}
		}
		courses = append(courses, RequiredCourse{Name: row[nameCol], Weight: weight})
	}
	return courses, nil
}
