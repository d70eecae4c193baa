package board

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	receivedPattern = regexp.MustCompile(`(?i)Received[:\s]+(\d{4}-\d{1,2}-\d{1,2}|\d{1,2}/\d{1,2}/\d{2,4})`)
	quotePattern    = regexp.MustCompile(`(?i)Quoted Price[\s$:]*(\d[\d,]*)`)
)

// receivedLayouts are tried in order; the first one that parses wins.
var receivedLayouts = []string{
	"1/2/06",
	"1/2/2006",
	"2006-1-2",
}

// ParseReceivedDate finds the "Received" marker in text and parses the date
// token that follows it. The boolean is false when the marker is missing or
// the token matches none of the accepted layouts.
func ParseReceivedDate(text string) (time.Time, bool) {
	m := receivedPattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}

	for _, layout := range receivedLayouts {
		if d, err := time.Parse(layout, m[1]); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// ParseQuotedPrice extracts the whole-unit amount following the "Quoted Price"
// marker, with thousands separators removed.
func ParseQuotedPrice(text string) (int64, bool) {
	m := quotePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}

	value, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
