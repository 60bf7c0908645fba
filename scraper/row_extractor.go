// scraper/row_extractor.go
package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MinRowCells is the fewest cells a usable row can have: category, China, global.
const MinRowCells = 3

// RawRow is one <tr> of a source table as raw <td> inner fragments.
type RawRow struct {
	Cells       []string
	TableOffset int // byte offset of the enclosing <table> in the document
	TableIndex  int // position of the enclosing table among all tables
}

// RowExtractor turns an HTML document into raw table rows in source order.
type RowExtractor interface {
	ExtractRows(html string) ([]RawRow, error)
}

// NewRowExtractor returns the extractor registered under name.
func NewRowExtractor(name string) (RowExtractor, error) {
	switch name {
	case "", "regex":
		return RegexExtractor{}, nil
	case "goquery":
		return GoqueryExtractor{}, nil
	}
	return nil, fmt.Errorf("unknown row extractor %q", name)
}

var (
	tableRegex     = regexp.MustCompile(`(?is)<table\b[^>]*>(.*?)</table>`)
	rowRegex       = regexp.MustCompile(`(?is)<tr\b[^>]*>(.*?)</tr>`)
	cellRegex      = regexp.MustCompile(`(?is)<td\b[^>]*>(.*?)</td>`)
	tableOpenRegex = regexp.MustCompile(`(?i)<table\b`)
)

// RegexExtractor is a permissive non-greedy scan of table/tr/td spans. It
// relies on the source page being well-formed for these three tags.
type RegexExtractor struct{}

func (RegexExtractor) ExtractRows(html string) ([]RawRow, error) {
	var rows []RawRow
	for ti, tm := range tableRegex.FindAllStringSubmatchIndex(html, -1) {
		tableStart := tm[0]
		body := html[tm[2]:tm[3]]
		for _, rm := range rowRegex.FindAllStringSubmatch(body, -1) {
			cellMatches := cellRegex.FindAllStringSubmatch(rm[1], -1)
			if len(cellMatches) < MinRowCells {
				continue
			}
			cells := make([]string, 0, len(cellMatches))
			for _, cm := range cellMatches {
				cells = append(cells, cm[1])
			}
			rows = append(rows, RawRow{Cells: cells, TableOffset: tableStart, TableIndex: ti})
		}
	}
	return rows, nil
}

// GoqueryExtractor walks the parsed DOM instead of scanning text. Table
// offsets are taken from the n-th "<table" in the source so both extractors
// feed the same classifiers.
type GoqueryExtractor struct{}

func (GoqueryExtractor) ExtractRows(html string) ([]RawRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	openings := tableOpenRegex.FindAllStringIndex(html, -1)

	var rows []RawRow
	var cellErr error
	doc.Find("table").Each(func(ti int, table *goquery.Selection) {
		offset := len(html)
		if ti < len(openings) {
			offset = openings[ti][0]
		}
		// Rows of nested tables belong to the nested table.
		table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
			return tr.Closest("table").IsSelection(table)
		}).Each(func(_ int, tr *goquery.Selection) {
			tds := tr.ChildrenFiltered("td")
			if tds.Length() < MinRowCells {
				return
			}
			cells := make([]string, 0, tds.Length())
			tds.Each(func(_ int, td *goquery.Selection) {
				inner, err := td.Html()
				if err != nil && cellErr == nil {
					cellErr = fmt.Errorf("failed to render cell: %w", err)
				}
				cells = append(cells, inner)
			})
			rows = append(rows, RawRow{Cells: cells, TableOffset: offset, TableIndex: ti})
		})
	})
	if cellErr != nil {
		return nil, cellErr
	}
	return rows, nil
}
