package gradereport

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><body>
<span>学籍番号&nbsp;1X23B044</span>
<table>
<tr class="operationboxf">
  <td>&nbsp;共通科目&nbsp;</td><td>&nbsp;</td><td>&nbsp;</td><td>&nbsp;</td><td>&nbsp;</td><td>&nbsp;</td>
</tr>
<tr class="operationboxf">
  <td>数学A</td><td>2023</td><td>春学期</td><td>2</td><td>A+</td><td>4.0</td>
</tr>
<tr class="operationboxf">
  <td>&nbsp;物理学実験&nbsp;</td><td>2023</td><td>秋学期</td><td>1</td><td>B</td><td>3.0</td>
</tr>
<tr class="operationboxf">
  <td>欠けている行</td><td>2023</td>
</tr>
<tr>
  <td>別の表の行</td><td>2023</td><td>春学期</td><td>1</td><td>A</td><td>4.0</td>
</tr>
</table>
</body></html>`

func TestExtractRecords(t *testing.T) {
	records, err := ExtractRecords(samplePage)
	require.NoError(t, err)

	expected := []CourseRecord{
		{
			Subject:    "数学A",
			Year:       "2023",
			Semester:   "春学期",
			Credit:     "2",
			Grade:      "A+",
			GradePoint: "4.0",
		},
		{
			Subject:    "物理学実験",
			Year:       "2023",
			Semester:   "秋学期",
			Credit:     "1",
			Grade:      "B",
			GradePoint: "3.0",
		},
	}
	require.Empty(t, cmp.Diff(expected, records))
}

func TestExtractRecordsEmptyPage(t *testing.T) {
	records, err := ExtractRecords("<html><body><p>nothing here</p></body></html>")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestExtractRecordsIdempotent(t *testing.T) {
	first, err := ExtractRecords(samplePage)
	require.NoError(t, err)
	second, err := ExtractRecords(samplePage)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(first, second))
}
