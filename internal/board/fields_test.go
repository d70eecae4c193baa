package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseReceivedDate(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   time.Time
		wantOK bool
	}{
		{
			name:   "two digit year",
			text:   "Received: 01/02/23 Quoted Price $1,200",
			want:   time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "four digit year",
			text:   "Received 12/31/2022",
			want:   time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "iso date",
			text:   "Job 42 received: 2023-03-05 call first",
			want:   time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "single digit month and day",
			text:   "RECEIVED: 3/7/24",
			want:   time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "two digit year before pivot",
			text:   "Received: 05/06/70",
			want:   time.Date(1970, 5, 6, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "not a date",
			text:   "Received: not-a-date",
			wantOK: false,
		},
		{
			name:   "impossible calendar date",
			text:   "Received: 13/45/23",
			wantOK: false,
		},
		{
			name:   "marker missing",
			text:   "Quoted Price $300",
			wantOK: false,
		},
		{
			name:   "empty",
			text:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseReceivedDate(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseQuotedPrice(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   int64
		wantOK bool
	}{
		{"dollar and thousands", "Quoted Price $1,200", 1200, true},
		{"colon", "quoted price: 450", 450, true},
		{"colon and dollar", "Quoted Price: $12,345,678", 12345678, true},
		{"no separator", "Quoted Price 99", 99, true},
		{"trailing text", "Quoted Price $75 approved", 75, true},
		{"marker without digits", "Quoted Price $TBD", 0, false},
		{"separator only", "Quoted Price ,", 0, false},
		{"missing marker", "Price $500", 0, false},
		{"overflow", "Quoted Price 99999999999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseQuotedPrice(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDaysBetween(t *testing.T) {
	received := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 10, daysBetween(received, time.Date(2023, 1, 12, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, 0, daysBetween(received, received))
	assert.Equal(t, -3, daysBetween(received, time.Date(2022, 12, 30, 8, 0, 0, 0, time.UTC)))

	// Spans wider than time.Duration can hold
	ancient := time.Date(1023, 1, 2, 0, 0, 0, 0, time.UTC)
	reference := time.Date(2023, 1, 12, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 365253, daysBetween(ancient, reference))
	assert.Equal(t, -365253, daysBetween(reference, ancient))
}
