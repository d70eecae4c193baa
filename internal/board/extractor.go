package board

import (
	"log/slog"
	"time"
)

// Extractor turns a board document into cards aged against a reference date.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an extractor. A nil logger falls back to slog.Default.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger.With("component", "board_extractor")}
}

// ExtractStats counts what a single pass kept and skipped.
type ExtractStats struct {
	Columns        int `json:"columns"`
	HeaderlessSkip int `json:"headerless_skipped"`
	Candidates     int `json:"candidates"`
	EmptySkip      int `json:"empty_skipped"`
	UndatedSkip    int `json:"undated_skipped"`
	Cards          int `json:"cards"`
	Priced         int `json:"priced"`
}

// Extract walks doc column by column and returns its cards in document order.
// Every card is aged against the same reference date.
func (e *Extractor) Extract(doc Document, reference time.Time) []Card {
	cards, _ := e.ExtractWithStats(doc, reference)
	return cards
}

// ExtractWithStats is Extract plus the skip counters of the pass.
func (e *Extractor) ExtractWithStats(doc Document, reference time.Time) ([]Card, ExtractStats) {
	var stats ExtractStats
	cards := []Card{}
	if doc == nil {
		return cards, stats
	}

	ref := calendarDate(reference)
	for _, column := range doc.Columns() {
		name, ok := column.Name()
		if !ok {
			stats.HeaderlessSkip++
			continue
		}
		stats.Columns++

		for _, handle := range column.Cards() {
			stats.Candidates++
			text := handle.Text()
			if text == "" {
				stats.EmptySkip++
				continue
			}

			received, ok := ParseReceivedDate(text)
			if !ok {
				stats.UndatedSkip++
				continue
			}

			card := Card{
				Column:       name,
				Text:         text,
				ReceivedDate: received,
				AgeDays:      daysBetween(received, ref),
			}
			if price, ok := ParseQuotedPrice(text); ok {
				card.QuotedPrice = price
				card.HasQuote = true
				stats.Priced++
			}
			cards = append(cards, card)
		}
	}
	stats.Cards = len(cards)

	e.logger.Debug("board extracted",
		"columns", stats.Columns,
		"headerless_skipped", stats.HeaderlessSkip,
		"candidates", stats.Candidates,
		"empty_skipped", stats.EmptySkip,
		"undated_skipped", stats.UndatedSkip,
		"cards", stats.Cards,
		"priced", stats.Priced,
	)
	return cards, stats
}

// ExtractHTML parses raw export bytes and extracts their cards. Empty or
// unparseable input yields an empty slice.
func (e *Extractor) ExtractHTML(data []byte, reference time.Time) []Card {
	cards, _ := e.ExtractWithStats(ParseHTMLBytes(data), reference)
	return cards
}
