// scraper/bulletin_parser.go
package scraper

import (
	"fmt"

	"github.com/gewnthar/visabulletin/config"
	"github.com/gewnthar/visabulletin/logger"
	"github.com/gewnthar/visabulletin/models"
)

// BulletinParser turns a fetched page into action and filing rows.
type BulletinParser struct {
	Extractor RowExtractor
	// NewClassifier is called once per document; classifiers may keep per-document state.
	NewClassifier func() TableClassifier
	Markers       []string
	Log           logger.Logger
}

// NewBulletinParser wires the extractor and table strategy named in cfg.
func NewBulletinParser(cfg config.ScraperConfig, log logger.Logger) (BulletinParser, error) {
	extractor, err := NewRowExtractor(cfg.Extractor)
	if err != nil {
		return BulletinParser{}, err
	}
	if _, err := NewTableClassifier(cfg.TableStrategy, cfg.FilingIndex); err != nil {
		return BulletinParser{}, err
	}
	return BulletinParser{
		Extractor: extractor,
		NewClassifier: func() TableClassifier {
			c, _ := NewTableClassifier(cfg.TableStrategy, cfg.FilingIndex)
			return c
		},
		Markers: cfg.FilingMarkers,
		Log:     log,
	}, nil
}

// Parse extracts every category row of html and assigns it to a table.
// Unknown rows are dropped silently; an empty result is not an error.
func (p BulletinParser) Parse(html string) (models.Bulletin, error) {
	rows, err := p.Extractor.ExtractRows(html)
	if err != nil {
		return models.Bulletin{}, fmt.Errorf("failed to extract table rows: %w", err)
	}
	markers := MarkerOffsets(html, p.Markers)
	classifier := p.NewClassifier()

	var b models.Bulletin
	dropped := 0
	for _, raw := range rows {
		row, ok := ParseCategoryRow(raw)
		if !ok {
			dropped++
			continue
		}
		switch classifier.Classify(raw, markers) {
		case models.TableFilingDates:
			b.FilingDates = append(b.FilingDates, row)
		default:
			b.ActionDates = append(b.ActionDates, row)
		}
	}

	if p.Log != nil {
		p.Log.Debug("Parsed bulletin document",
			logger.Int("raw_rows", len(rows)),
			logger.Int("dropped_rows", dropped),
			logger.Int("marker_hits", len(markers)),
			logger.Int("action_rows", len(b.ActionDates)),
			logger.Int("filing_rows", len(b.FilingDates)),
		)
	}
	return b, nil
}
