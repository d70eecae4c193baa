package report

// ScopeRow is one line of the Scope table.
type ScopeRow struct {
	Scope          string  `json:"scope"`
	Count          int     `json:"count"`
	AverageAgeDays float64 `json:"average_age_days"`
}

// LaneRow is one line of the Lane table.
type LaneRow struct {
	Lane           string  `json:"lane"`
	Count          int     `json:"count"`
	AverageAgeDays float64 `json:"average_age_days"`
}

// LabelRow is one line of the All Labels table.
type LabelRow struct {
	Label          string  `json:"label"`
	Count          int     `json:"count"`
	AverageAgeDays float64 `json:"average_age_days"`
}

// PriceSummary is the single row of the Quoted Prices table.
type PriceSummary struct {
	ValueCount   int     `json:"total_value_count"`
	TotalValue   int64   `json:"total_value"`
	AverageValue float64 `json:"average_value"`
	WonCount     int     `json:"total_won_count"`
	TotalWon     int64   `json:"total_won"`
	AverageWon   float64 `json:"average_won"`
	LostCount    int     `json:"total_lost_count"`
	TotalLost    int64   `json:"total_lost"`
	AverageLost  float64 `json:"average_lost"`
}

// Tables bundles the four reports computed from one card set.
type Tables struct {
	Scope  []ScopeRow   `json:"scope"`
	Lanes  []LaneRow    `json:"lanes"`
	Labels []LabelRow   `json:"labels"`
	Prices PriceSummary `json:"quoted_prices"`
}

// Sheet names and column headers shared by every renderer.
const (
	SheetScope  = "Scope"
	SheetLane   = "Lane"
	SheetPrices = "Quoted Prices"
	SheetLabels = "All Labels"
)

var (
	ScopeHeaders = []string{"Scope", "Count", "Average Age (days)"}
	LaneHeaders  = []string{"Lane", "Count", "Average Age (days)"}
	LabelHeaders = []string{"Label", "Count", "Average Age (days)"}
	PriceHeaders = []string{
		"Total Value Count", "Total Value", "Average Value",
		"Total Won Count", "Total Won", "Average Won",
		"Total Lost Count", "Total Lost", "Average Lost",
	}
)

// Sheet is one named, rectangular table ready for rendering.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// Sheets flattens the tables in workbook order. All Labels is left out when
// the label sweep produced no rows, which only happens for an empty label list.
func (t Tables) Sheets() []Sheet {
	scope := Sheet{Name: SheetScope, Headers: ScopeHeaders, Rows: [][]any{}}
	for _, r := range t.Scope {
		scope.Rows = append(scope.Rows, []any{r.Scope, r.Count, r.AverageAgeDays})
	}

	lanes := Sheet{Name: SheetLane, Headers: LaneHeaders, Rows: [][]any{}}
	for _, r := range t.Lanes {
		lanes.Rows = append(lanes.Rows, []any{r.Lane, r.Count, r.AverageAgeDays})
	}

	p := t.Prices
	prices := Sheet{Name: SheetPrices, Headers: PriceHeaders, Rows: [][]any{{
		p.ValueCount, p.TotalValue, p.AverageValue,
		p.WonCount, p.TotalWon, p.AverageWon,
		p.LostCount, p.TotalLost, p.AverageLost,
	}}}

	sheets := []Sheet{scope, lanes, prices}
	if len(t.Labels) > 0 {
		labels := Sheet{Name: SheetLabels, Headers: LabelHeaders, Rows: [][]any{}}
		for _, r := range t.Labels {
			labels.Rows = append(labels.Rows, []any{r.Label, r.Count, r.AverageAgeDays})
		}
		sheets = append(sheets, labels)
	}
	return sheets
}
