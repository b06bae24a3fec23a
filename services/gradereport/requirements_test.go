package gradereport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func writeCsv(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hisshu.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadRequirements(t *testing.T) {
	path := writeCsv(t, "name,重み\n数学A,2\n物理学,1.5\n化学,\n")

	courses, err := LoadRequirements(path)
	require.NoError(t, err)

	expected := []RequiredCourse{
		{Name: "数学A", Weight: 2},
		{Name: "物理学", Weight: 1.5},
		// blank weight falls back to the default
		{Name: "化学", Weight: 1},
	}
	require.Empty(t, cmp.Diff(expected, courses))
}

func TestLoadRequirementsNameOnly(t *testing.T) {
	path := writeCsv(t, "name\n数学A\n物理学\n")

	courses, err := LoadRequirements(path)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	require.Equal(t, 1.0, courses[0].Weight)
}

func TestLoadRequirementsFirstPathWins(t *testing.T) {
	first := writeCsv(t, "name,重み\n数学A,1\n")
	second := writeCsv(t, "name,重み\n物理学,1\n")

	courses, err := LoadRequirements("/does/not/exist.csv", first, second)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Equal(t, "数学A", courses[0].Name)
}

func TestLoadRequirementsMissing(t *testing.T) {
	courses, err := LoadRequirements("/does/not/exist.csv")
	require.NoError(t, err)
	require.Empty(t, courses)
}

func TestLoadRequirementsBadHeader(t *testing.T) {
	path := writeCsv(t, "subject,weight\n数学A,1\n")

	_, err := LoadRequirements(path)
	require.Error(t, err)
}
