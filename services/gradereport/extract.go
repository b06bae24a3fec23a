package gradereport

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/WasedaCreators/seiseki-viewer/lib/htmlutil"
)

// CourseRecord is one row of the grade listing, kept as the portal
// renders it. Credit and GradePoint stay strings here; parsing happens
// where the numbers are actually needed.
type CourseRecord struct {
	Subject    string `json:"subject"`
	Year       string `json:"year"`
	Semester   string `json:"semester"`
	Credit     string `json:"credit"`
	Grade      string `json:"grade"`
	GradePoint string `json:"gp"`
}

// every data row of the grade listing carries this class, section
// headers included
const dataRowSelector = "tr.operationboxf"

const minCells = 6

// ExtractRecords pulls the course rows out of captured grade page
// markup. Rows with fewer than six cells and section header rows
// (empty year cell) are skipped. A page with no matching rows yields
// an empty slice, not an error; only unparseable markup fails.
func ExtractRecords(markup string) ([]CourseRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse grade page markup: %w", err)
	}

	var records []CourseRecord
	doc.Find(dataRowSelector).Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, htmlutil.CellText(cell.Text()))
		})
		if len(cells) < minCells {
			return
		}
		if cells[1] == "" {
			// category header row, spans the table width with padded
			// blanks
			return
		}
		records = append(records, CourseRecord{
			Subject:    cells[0],
			Year:       cells[1],
			Semester:   cells[2],
			Credit:     cells[3],
			Grade:      cells[4],
			GradePoint: cells[5],
		})
	})
	return records, nil
}
