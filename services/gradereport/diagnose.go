package gradereport

import "github.com/antzucaro/matchr"

// UnmatchedRequirement reports a required course that no transcript
// row was credited against, together with the most similar subject
// actually seen. Near misses usually mean the list's name drifted from
// the portal's (renamed course, different width characters).
type UnmatchedRequirement struct {
	Name           string
	ClosestSubject string
	Similarity     float64
}

// DiagnoseUnmatched lists the requirements absent from an aggregation
// result, each paired with its closest transcript subject by
// Jaro-Winkler similarity.
func DiagnoseUnmatched(result AggregateResult, required []RequiredCourse, records []CourseRecord) []UnmatchedRequirement {
	var unmatched []UnmatchedRequirement
	for _, req := range required {
		if _, ok := result.Matches[req.Name]; ok {
			continue
		}

		var closest string
		var best float64
		for _, rec := range records {
			similarity := matchr.JaroWinkler(req.Name, rec.Subject, false)
			if similarity > best {
				best = similarity
				closest = rec.Subject
			}
		}
		unmatched = append(unmatched, UnmatchedRequirement{
			Name:           req.Name,
			ClosestSubject: closest,
			Similarity:     best,
		})
	}
	return unmatched
}
