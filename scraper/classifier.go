// scraper/classifier.go
package scraper

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gewnthar/visabulletin/models"
	"github.com/gewnthar/visabulletin/utils"
)

// TableClassifier decides which bulletin table a row's enclosing table feeds.
type TableClassifier interface {
	Classify(row RawRow, markerOffsets []int) models.TableKind
}

// OffsetClassifier assigns a table to filing dates when any filing marker
// appears before the table's start in the document. It assumes the page
// places the filing marker between the action table and the filing table.
type OffsetClassifier struct{}

func (OffsetClassifier) Classify(row RawRow, markerOffsets []int) models.TableKind {
	for _, off := range markerOffsets {
		if off < row.TableOffset {
			return models.TableFilingDates
		}
	}
	return models.TableActionDates
}

// IndexClassifier assigns tables at or after FilingFromIndex to filing dates,
// counting only tables that contain category rows.
type IndexClassifier struct {
	FilingFromIndex int
	seen            map[int]int
}

func NewIndexClassifier(filingFromIndex int) *IndexClassifier {
	return &IndexClassifier{FilingFromIndex: filingFromIndex, seen: map[int]int{}}
}

func (c *IndexClassifier) Classify(row RawRow, _ []int) models.TableKind {
	pos, ok := c.seen[row.TableIndex]
	if !ok {
		pos = len(c.seen)
		c.seen[row.TableIndex] = pos
	}
	if pos >= c.FilingFromIndex {
		return models.TableFilingDates
	}
	return models.TableActionDates
}

// NewTableClassifier builds the classifier named by strategy.
func NewTableClassifier(strategy string, filingIndex int) (TableClassifier, error) {
	switch strategy {
	case "", "offset":
		return OffsetClassifier{}, nil
	case "index":
		return NewIndexClassifier(filingIndex), nil
	}
	return nil, fmt.Errorf("unknown table strategy %q", strategy)
}

// MarkerOffsets returns every byte offset at which any marker occurs, ascending.
func MarkerOffsets(html string, markers []string) []int {
	var offsets []int
	for _, m := range markers {
		if m == "" {
			continue
		}
		start := 0
		for {
			i := strings.Index(html[start:], m)
			if i < 0 {
				break
			}
			offsets = append(offsets, start+i)
			start += i + len(m)
		}
	}
	sort.Ints(offsets)
	return offsets
}

// columnLayout gives the cell index of each country column.
type columnLayout struct {
	china, india, mexico, philippines, global int
}

var (
	// category | China | global; India, Mexico and the Philippines are not published separately.
	compactLayout = columnLayout{china: 1, india: 1, mexico: 2, philippines: 2, global: 2}
	// category | all chargeability | China | India | Mexico | Philippines
	// Any row with six or more cells is read in this order, whatever the
	// page's language. A page that puts China first and appends extra
	// columns would have China and global swapped.
	fullLayout = columnLayout{global: 1, china: 2, india: 3, mexico: 4, philippines: 5}
)

func layoutFor(cells int) columnLayout {
	if cells >= 6 {
		return fullLayout
	}
	return compactLayout
}

// ParseCategoryRow converts a raw row into a category row. ok is false when
// the first cell names no known category.
func ParseCategoryRow(row RawRow) (models.VisaCategoryRow, bool) {
	if len(row.Cells) < MinRowCells {
		return models.VisaCategoryRow{}, false
	}
	category, ok := models.MatchCategory(utils.CellText(row.Cells[0]))
	if !ok {
		return models.VisaCategoryRow{}, false
	}

	l := layoutFor(len(row.Cells))
	return models.VisaCategoryRow{
		Category:           category,
		ChinaCurrent:       ParseDateToken(row.Cells[l.china]),
		IndiaCurrent:       ParseDateToken(row.Cells[l.india]),
		MexicoCurrent:      ParseDateToken(row.Cells[l.mexico]),
		PhilippinesCurrent: ParseDateToken(row.Cells[l.philippines]),
		GlobalCurrent:      ParseDateToken(row.Cells[l.global]),
	}, true
}
