// models/bulletin.go
package models

import "strings"

// Category codes accepted in the first cell of a bulletin row.
const (
	CategoryEB1              = "EB-1"
	CategoryEB2              = "EB-2"
	CategoryEB3              = "EB-3"
	CategoryEB4              = "EB-4"
	CategoryEB5              = "EB-5"
	CategoryOtherWorkers     = "Other Workers"
	CategoryReligiousWorkers = "Certain Religious Workers"
)

// Categories is the closed set of category codes, in match order.
var Categories = []string{
	CategoryEB1,
	CategoryEB2,
	CategoryEB3,
	CategoryEB4,
	CategoryEB5,
	CategoryReligiousWorkers,
	CategoryOtherWorkers,
}

// Status sentinels stored in place of a date.
const (
	StatusCurrent     = "C" // no waiting required
	StatusUnavailable = "U" // no visa numbers available
)

const UnknownCategoryDescription = "Unknown Category"

var categoryDescriptions = map[string]string{
	CategoryEB1:              "Priority Workers",
	CategoryEB2:              "Professionals Holding Advanced Degrees or Persons of Exceptional Ability",
	CategoryEB3:              "Skilled Workers and Professionals",
	CategoryEB4:              "Certain Special Immigrants",
	CategoryEB5:              "Immigrant Investors",
	CategoryOtherWorkers:     "Other Workers (Unskilled)",
	CategoryReligiousWorkers: "Certain Religious Workers",
}

// DescribeCategory returns the display description for a stored category code.
func DescribeCategory(category string) string {
	if d, ok := categoryDescriptions[category]; ok {
		return d
	}
	return UnknownCategoryDescription
}

// MatchCategory returns the first category code contained in text.
func MatchCategory(text string) (string, bool) {
	for _, c := range Categories {
		if strings.Contains(text, c) {
			return c, true
		}
	}
	return "", false
}

// TableKind names one of the two bulletin tables.
type TableKind string

const (
	TableActionDates TableKind = "action"
	TableFilingDates TableKind = "filing"
)

// TableName returns the persisted table backing the kind.
func (k TableKind) TableName() string {
	switch k {
	case TableFilingDates:
		return "visa_bulletin_filing_dates"
	default:
		return "visa_bulletin_action_dates"
	}
}

// ParseTableKind accepts "action"/"filing" and the long forms used by the API.
func ParseTableKind(s string) (TableKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "action", "action_dates", "action-dates", "final_action":
		return TableActionDates, true
	case "filing", "filing_dates", "filing-dates", "dates_for_filing":
		return TableFilingDates, true
	}
	return "", false
}

// VisaCategoryRow is one category's priority dates. A nil field means the
// source cell could not be parsed.
type VisaCategoryRow struct {
	ID                 int64   `db:"id" json:"-" csv:"-"`
	Category           string  `db:"category" json:"category" csv:"category"`
	ChinaCurrent       *string `db:"china_current" json:"china_current" csv:"china_current"`
	IndiaCurrent       *string `db:"india_current" json:"india_current" csv:"india_current"`
	MexicoCurrent      *string `db:"mexico_current" json:"mexico_current" csv:"mexico_current"`
	PhilippinesCurrent *string `db:"philippines_current" json:"philippines_current" csv:"philippines_current"`
	GlobalCurrent      *string `db:"global_current" json:"global_current" csv:"global_current"`
}

// PresentationRow is a stored row plus its display description. Never persisted.
type PresentationRow struct {
	VisaCategoryRow
	Description string `json:"description"`
}

// NewPresentationRows decorates stored rows for display.
func NewPresentationRows(rows []VisaCategoryRow) []PresentationRow {
	out := make([]PresentationRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, PresentationRow{VisaCategoryRow: r, Description: DescribeCategory(r.Category)})
	}
	return out
}

// Bulletin is the result of extracting one source document.
type Bulletin struct {
	ActionDates []VisaCategoryRow
	FilingDates []VisaCategoryRow
}

// Rows returns the rows destined for kind.
func (b Bulletin) Rows(kind TableKind) []VisaCategoryRow {
	if kind == TableFilingDates {
		return b.FilingDates
	}
	return b.ActionDates
}
