package gradereport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregateWeightedAverage(t *testing.T) {
	records := []CourseRecord{
		{Subject: "数学A", Credit: "2", Grade: "A+"},
		{Subject: "基礎物理学", Credit: "2", Grade: "B"},
		{Subject: "英語コミュニケーション", Credit: "1", Grade: "A"},
	}
	required := []RequiredCourse{
		{Name: "数学A", Weight: 1},
		{Name: "物理", Weight: 2},
	}

	result := Aggregate(records, required, DefaultRules())

	// 数学A: 9 * 2 * 1, 物理: 7 * 2 * 2; the english course is not
	// required and contributes nothing
	require.InDelta(t, 46.0, result.TotalWeightedPoints, 1e-9)
	require.InDelta(t, 6.0, result.TotalWeightedCredits, 1e-9)
	require.InDelta(t, 46.0/6.0, result.Average, 1e-9)
	require.Len(t, result.Matches, 2)
}

func TestAggregateBestGradeWins(t *testing.T) {
	records := []CourseRecord{
		{Subject: "数学A", Credit: "2", Grade: "C"},
		{Subject: "数学A演習", Credit: "2", Grade: "A+"},
		{Subject: "数学A再履修", Credit: "2", Grade: "B"},
	}
	required := []RequiredCourse{{Name: "数学A", Weight: 1}}

	result := Aggregate(records, required, DefaultRules())

	require.Len(t, result.Matches, 1)
	match := result.Matches["数学A"]
	require.Equal(t, "数学A演習", match.Subject)
	require.Equal(t, 9, match.GradeValue)
	require.InDelta(t, 18.0, result.TotalWeightedPoints, 1e-9)
	require.InDelta(t, 2.0, result.TotalWeightedCredits, 1e-9)
}

func TestAggregateTieKeepsFirstRow(t *testing.T) {
	records := []CourseRecord{
		{Subject: "数学A前半", Credit: "2", Grade: "A"},
		{Subject: "数学A後半", Credit: "2", Grade: "A"},
	}
	required := []RequiredCourse{{Name: "数学A", Weight: 1}}

	result := Aggregate(records, required, DefaultRules())
	require.Equal(t, "数学A前半", result.Matches["数学A"].Subject)
}

func TestAggregateFirstRequirementWins(t *testing.T) {
	// both names are substrings of the subject, list order decides
	records := []CourseRecord{
		{Subject: "応用数学A", Credit: "2", Grade: "A"},
	}
	required := []RequiredCourse{
		{Name: "応用数学", Weight: 2},
		{Name: "数学A", Weight: 1},
	}

	result := Aggregate(records, required, DefaultRules())
	require.Len(t, result.Matches, 1)
	require.Contains(t, result.Matches, "応用数学")
}

func TestAggregateSkipsExcludedAndUnparsable(t *testing.T) {
	records := []CourseRecord{
		{Subject: "数学A", Credit: "2", Grade: "P"},
		{Subject: "物理学", Credit: "2", Grade: "A＊"},
		{Subject: "化学", Credit: "－", Grade: "A"},
	}
	required := []RequiredCourse{
		{Name: "数学A", Weight: 1},
		{Name: "物理学", Weight: 1},
		{Name: "化学", Weight: 1},
	}

	result := Aggregate(records, required, DefaultRules())
	require.Empty(t, result.Matches)
	require.Zero(t, result.Average)
}

func TestAggregateFailedCourseDragsAverage(t *testing.T) {
	records := []CourseRecord{
		{Subject: "数学A", Credit: "2", Grade: "A"},
		{Subject: "物理学", Credit: "2", Grade: "F"},
	}
	required := []RequiredCourse{
		{Name: "数学A", Weight: 1},
		{Name: "物理学", Weight: 1},
	}

	result := Aggregate(records, required, DefaultRules())
	// the F contributes zero points but its credits still count
	require.InDelta(t, 4.0, result.Average, 1e-9)
}

func TestAggregateNoCredits(t *testing.T) {
	result := Aggregate(nil, []RequiredCourse{{Name: "数学A", Weight: 1}}, DefaultRules())
	require.Zero(t, result.Average)
	require.Empty(t, result.Matches)
}

func TestDiagnoseUnmatched(t *testing.T) {
	records := []CourseRecord{
		{Subject: "数学A", Credit: "2", Grade: "A"},
		{Subject: "基礎物理学実験", Credit: "1", Grade: "B"},
	}
	required := []RequiredCourse{
		{Name: "数学A", Weight: 1},
		{Name: "基礎物理学実習", Weight: 1},
	}

	result := Aggregate(records, required, DefaultRules())
	unmatched := DiagnoseUnmatched(result, required, records)

	require.Len(t, unmatched, 1)
	require.Equal(t, "基礎物理学実習", unmatched[0].Name)
	require.Equal(t, "基礎物理学実験", unmatched[0].ClosestSubject)
	require.Greater(t, unmatched[0].Similarity, 0.8)
}

func TestDiagnoseAllMatched(t *testing.T) {
	records := []CourseRecord{{Subject: "数学A", Credit: "2", Grade: "A"}}
	required := []RequiredCourse{{Name: "数学A", Weight: 1}}

	result := Aggregate(records, required, DefaultRules())
	require.Empty(t, DiagnoseUnmatched(result, required, records))
}
