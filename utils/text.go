// utils/text.go
package utils

import (
	"regexp"
	"strings"
)

var tagRegex = regexp.MustCompile(`<[^>]*>`)

// CellText converts a raw HTML cell fragment to plain text: tags and &nbsp;
// become spaces and runs of whitespace collapse to one.
func CellText(cell string) string {
	text := tagRegex.ReplaceAllString(cell, " ")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	return strings.Join(strings.Fields(text), " ")
}
