package extraction

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/williampepple1/swimtimes/pkg/models"
)

// MinColumns is the narrowest row that carries a result
const MinColumns = 9

// Column offsets in the portal's results table. Column 3 is not exported.
const (
	colEvent        = 0
	colTime         = 1
	colAge          = 2
	colTimeStandard = 4
	colMeet         = 5
	colLSC          = 6
	colTeam         = 7
	colDate         = 8
)

// Extractor turns a results table into records
type Extractor struct{}

// NewExtractor creates a new data extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract maps each row with at least MinColumns cells to a ResultRecord
// tagged with the athlete's display name. Shorter rows are dropped.
func (e *Extractor) Extract(table models.Table, athlete models.Athlete) []models.ResultRecord {
	name := athlete.DisplayName()
	records := make([]models.ResultRecord, 0, len(table.Rows))

	for _, row := range table.Rows {
		if len(row) < MinColumns {
			continue
		}
		records = append(records, models.ResultRecord{
			Name:         name,
			Event:        strings.TrimSpace(row[colEvent]),
			Time:         strings.TrimSpace(row[colTime]),
			Age:          strings.TrimSpace(row[colAge]),
			Date:         strings.TrimSpace(row[colDate]),
			Meet:         strings.TrimSpace(row[colMeet]),
			TimeStandard: strings.TrimSpace(row[colTimeStandard]),
			LSC:          strings.TrimSpace(row[colLSC]),
			Team:         strings.TrimSpace(row[colTeam]),
		})
	}

	return records
}

// ParseTable reads the body rows of the first table matched by selector in html.
// Cell text is kept as rendered; trimming happens in Extract.
func ParseTable(html, selector string) (models.Table, bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.Table{}, false, fmt.Errorf("parsing table HTML: %w", err)
	}

	tables := doc.Find(selector)
	if tables.Length() == 0 {
		// the markup may itself be the table
		tables = doc.Find("table")
	}
	if tables.Length() == 0 {
		return models.Table{}, false, nil
	}

	var table models.Table
	tables.First().Find("tbody tr").Each(func(i int, tr *goquery.Selection) {
		cells := tr.Find("td")
		row := make(models.Row, 0, cells.Length())
		cells.Each(func(j int, td *goquery.Selection) {
			row = append(row, td.Text())
		})
		table.Rows = append(table.Rows, row)
	})

	return table, true, nil
}
