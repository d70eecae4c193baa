package report

import (
	"strings"

	"github.com/shopspring/decimal"

	"boardanalyzer/internal/board"
)

// Aggregate computes the four report tables from cards. It only reads its
// inputs, so the same cards and config always produce the same tables.
func Aggregate(cards []board.Card, cfg Config) Tables {
	active := make([]board.Card, 0, len(cards))
	for _, c := range cards {
		if !cfg.excluded(c.Column) {
			active = append(active, c)
		}
	}

	tables := Tables{
		Scope:  make([]ScopeRow, 0, len(cfg.FocusedLabels)+1),
		Lanes:  make([]LaneRow, 0, len(cfg.Lanes)),
		Labels: make([]LabelRow, 0, len(cfg.AllLabels)),
	}

	count, avg := ageStats(active)
	tables.Scope = append(tables.Scope, ScopeRow{
		Scope:          AllCardsScope(cfg),
		Count:          count,
		AverageAgeDays: avg,
	})
	for _, label := range cfg.FocusedLabels {
		count, avg := ageStats(withLabel(active, label))
		tables.Scope = append(tables.Scope, ScopeRow{Scope: label, Count: count, AverageAgeDays: avg})
	}

	for _, lane := range cfg.Lanes {
		count, avg := ageStats(inColumn(cards, lane))
		if count == 0 {
			continue
		}
		tables.Lanes = append(tables.Lanes, LaneRow{Lane: lane, Count: count, AverageAgeDays: avg})
	}

	for _, label := range cfg.AllLabels {
		count, avg := ageStats(withLabel(active, label))
		tables.Labels = append(tables.Labels, LabelRow{Label: label, Count: count, AverageAgeDays: avg})
	}

	p := &tables.Prices
	p.ValueCount, p.TotalValue, p.AverageValue = priceStats(active)
	p.WonCount, p.TotalWon, p.AverageWon = priceStats(inColumn(cards, cfg.WonColumn))
	p.LostCount, p.TotalLost, p.AverageLost = priceStats(inColumn(cards, cfg.LostColumn))

	return tables
}

// AllCardsScope names the first Scope row after the excluded columns.
func AllCardsScope(cfg Config) string {
	if len(cfg.ExcludedColumns) == 0 {
		return "All cards"
	}
	return "All cards (excluding " + strings.Join(cfg.ExcludedColumns, "/") + ")"
}

// Mean returns sum/count rounded to two decimals, ties to even (0.125 is
// 0.12, 0.375 is 0.38). An empty population has a mean of zero.
func Mean(sum int64, count int) float64 {
	if count == 0 {
		return 0
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(count))).RoundBank(2).InexactFloat64()
}

func ageStats(cards []board.Card) (int, float64) {
	var sum int64
	for _, c := range cards {
		sum += int64(c.AgeDays)
	}
	return len(cards), Mean(sum, len(cards))
}

func priceStats(cards []board.Card) (int, int64, float64) {
	var (
		count int
		sum   int64
	)
	for _, c := range cards {
		if price, ok := c.Quote(); ok {
			count++
			sum += price
		}
	}
	return count, sum, Mean(sum, count)
}

// withLabel matches label as a case-insensitive substring of the card text.
func withLabel(cards []board.Card, label string) []board.Card {
	needle := strings.ToLower(label)
	var out []board.Card
	for _, c := range cards {
		if strings.Contains(strings.ToLower(c.Text), needle) {
			out = append(out, c)
		}
	}
	return out
}

// inColumn matches the column name exactly.
func inColumn(cards []board.Card, column string) []board.Card {
	var out []board.Card
	for _, c := range cards {
		if c.Column == column {
			out = append(out, c)
		}
	}
	return out
}
