package board

import "time"

// Card is one unit of work extracted from a board export.
type Card struct {
	Column       string    `json:"column"`
	Text         string    `json:"text"`
	ReceivedDate time.Time `json:"received_date"`
	AgeDays      int       `json:"age_days"`
	QuotedPrice  int64     `json:"quoted_price,omitempty"`
	HasQuote     bool      `json:"has_quote"`
}

// Quote returns the quoted price and whether the card carried one.
func (c Card) Quote() (int64, bool) {
	return c.QuotedPrice, c.HasQuote
}

// calendarDate drops the clock and location so that day arithmetic is exact.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole number of days from "from" to "to". It works
// on Unix seconds because time.Duration saturates at about 292 years.
func daysBetween(from, to time.Time) int {
	return int((calendarDate(to).Unix() - calendarDate(from).Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60
