package gradereport

import (
	"strconv"
	"strings"
)

// RequirementMatch is the course currently credited against one
// required-course entry.
type RequirementMatch struct {
	Subject string
	Grade   string
	// point value of the letter grade under the rules in effect
	GradeValue int
	// grade value × credits × requirement weight
	Points float64
	// credits × requirement weight
	WeightedCredits float64
}

// AggregateResult is the outcome of folding a transcript against the
// required-course list.
type AggregateResult struct {
	TotalWeightedPoints  float64
	TotalWeightedCredits float64
	// weighted average, zero when no credits accumulated
	Average float64
	// keyed by required-course name; requirements with no matching
	// transcript row are absent
	Matches map[string]RequirementMatch
}

// Aggregate computes the weighted required-course average for one
// transcript. Each transcript row is credited against the first
// required course whose name is a substring of the row's subject, so
// the order of the required list matters. When several rows hit the
// same requirement (retakes, cross-listed sections) the one with the
// strictly highest grade value wins; ties keep the earlier row.
func Aggregate(records []CourseRecord, required []RequiredCourse, rules Rules) AggregateResult {
	matches := make(map[string]RequirementMatch)

	for _, rec := range records {
		if rules.excluded(rec.Grade) {
			continue
		}
		credit, err := strconv.ParseFloat(rec.Credit, 64)
		if err != nil {
			continue
		}

		var req *RequiredCourse
		for i := range required {
			if strings.Contains(rec.Subject, required[i].Name) {
				req = &required[i]
				break
			}
		}
		if req == nil {
			continue
		}

		value := rules.GradeValues[rec.Grade]
		candidate := RequirementMatch{
			Subject:         rec.Subject,
			Grade:           rec.Grade,
			GradeValue:      value,
			Points:          float64(value) * credit * req.Weight,
			WeightedCredits: credit * req.Weight,
		}

		prev, seen := matches[req.Name]
		if !seen || candidate.GradeValue > prev.GradeValue {
			matches[req.Name] = candidate
		}
	}

	var result AggregateResult
	result.Matches = matches
	for _, m := range matches {
		result.TotalWeightedPoints += m.Points
		result.TotalWeightedCredits += m.WeightedCredits
	}
	if result.TotalWeightedCredits > 0 {
		result.Average = result.TotalWeightedPoints / result.TotalWeightedCredits
	}
	return result
}
