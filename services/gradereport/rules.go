package gradereport

import "strings"

// Rules is the cohort and grading policy in effect for one
// computation. Callers take a snapshot and pass it through, so a
// config reload mid-request can't mix policies.
type Rules struct {
	// letter grade to point value; letters not listed count as zero
	GradeValues map[string]int
	// a grade containing any of these is not a completed letter grade
	// (in-progress, pass/fail conversions) and is skipped entirely
	ExclusionMarkers []string

	// cohort gate on the parsed student id
	RequiredPrefix     string
	RequiredDepartment string
	AllowedYears       []string
}

func DefaultRules() Rules {
	return Rules{
		GradeValues: map[string]int{
			"A+": 9,
			"A":  8,
			"B":  7,
			"C":  6,
			"F":  0,
			"S":  0,
		},
		ExclusionMarkers: []string{"＊", "*", "P"},

		RequiredPrefix:     "1X",
		RequiredDepartment: "B",
		AllowedYears:       []string{"23", "24"},
	}
}

func (r Rules) excluded(grade string) bool {
	for _, marker := range r.ExclusionMarkers {
		if strings.Contains(grade, marker) {
			return true
		}
	}
	return false
}
