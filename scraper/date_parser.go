// scraper/date_parser.go
package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gewnthar/visabulletin/models"
	"github.com/gewnthar/visabulletin/utils"
)

var (
	unavailablePhrases = []string{"暂无排期", "不可用"}
	currentPhrases     = []string{"无需排期"}
)

// Gregorian dates written with Chinese unit characters, e.g. 2022年11月15日.
var chineseDateRegex = regexp.MustCompile(`(\d{4})\s*年\s*(\d{1,2})\s*月\s*(\d{1,2})\s*日`)

// State Department notation, e.g. 15NOV22.
var bulletinDateRegex = regexp.MustCompile(`\b(\d{2})([A-Za-z]{3})(\d{2})\b`)

const bulletinDateLayout = "02Jan06"

// ParseDateToken normalizes one table cell to a YYYY-MM-DD date, "C", "U" or
// nil. Sentinel phrases win over dates. When a cell carries more than one
// date the second one is the current value; the first is last month's. An
// unparseable current date yields nil rather than the previous one.
func ParseDateToken(cell string) *string {
	for _, p := range unavailablePhrases {
		if strings.Contains(cell, p) {
			return strPtr(models.StatusUnavailable)
		}
	}
	for _, p := range currentPhrases {
		if strings.Contains(cell, p) {
			return strPtr(models.StatusCurrent)
		}
	}

	if m := pickCurrent(chineseDateRegex.FindAllStringSubmatch(cell, -1)); m != nil {
		if d, err := formatChineseDate(m); err == nil {
			return &d
		}
	}

	text := utils.CellText(cell)
	if m := pickCurrent(bulletinDateRegex.FindAllStringSubmatch(text, -1)); m != nil {
		if d, err := formatBulletinDate(m[0]); err == nil {
			return &d
		}
	}

	switch strings.ToUpper(text) {
	case models.StatusCurrent:
		return strPtr(models.StatusCurrent)
	case models.StatusUnavailable:
		return strPtr(models.StatusUnavailable)
	}
	return nil
}

func pickCurrent(matches [][]string) []string {
	switch {
	case len(matches) == 0:
		return nil
	case len(matches) == 1:
		return matches[0]
	default:
		return matches[1]
	}
}

func formatChineseDate(m []string) (string, error) {
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return "", fmt.Errorf("bad year %q: %w", m[1], err)
	}
	month, err := strconv.Atoi(m[2])
	if err != nil || month < 1 || month > 12 {
		return "", fmt.Errorf("bad month %q", m[2])
	}
	day, err := strconv.Atoi(m[3])
	if err != nil || day < 1 || day > 31 {
		return "", fmt.Errorf("bad day %q", m[3])
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
}

func formatBulletinDate(token string) (string, error) {
	normalized := token[:2] + strings.ToUpper(token[2:3]) + strings.ToLower(token[3:5]) + token[5:]
	t, err := time.Parse(bulletinDateLayout, normalized)
	if err != nil {
		return "", fmt.Errorf("failed to parse bulletin date %q: %w", token, err)
	}
	return t.Format("2006-01-02"), nil
}

func strPtr(s string) *string {
	return &s
}
