package report

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds the groupings and exclusions applied by Aggregate.
// It is read-only once built and safe to share across passes.
type Config struct {
	// ExcludedColumns are left out of the age-based tables and the active price population.
	ExcludedColumns []string `yaml:"excluded_columns" json:"excluded_columns" validate:"dive,required"`
	// Lanes are reported in this order; a lane with no cards is omitted.
	Lanes []string `yaml:"lanes" json:"lanes" validate:"dive,required"`
	// FocusedLabels extend the Scope table, one row each.
	FocusedLabels []string `yaml:"focused_labels" json:"focused_labels" validate:"dive,required"`
	// AllLabels drive the full label sweep. An empty list drops the sheet.
	AllLabels []string `yaml:"all_labels" json:"all_labels" validate:"dive,required"`
	WonColumn  string   `yaml:"won_column" json:"won_column" validate:"required"`
	LostColumn string   `yaml:"lost_column" json:"lost_column" validate:"required"`
}

// DefaultConfig returns the groupings used by the service board.
func DefaultConfig() Config {
	return Config{
		ExcludedColumns: []string{"Completed", "Canceled", "New Parts Request"},
		Lanes: []string{
			"Receipt Confirmed <7 days",
			"Aging >7 Days",
			"Stale >14 Days",
			"Assigned to Department",
			"Parts Ordered",
			"Arrived/In-Hand",
			"Contacted",
			"Customer Unreachable",
			"Scheduled",
		},
		FocusedLabels: []string{
			"Demand Repair",
			"Install",
			"Dispatch",
			"NOT COOLING/HEATING",
			"Warranty",
			"Comfort Shield Warranty",
		},
		AllLabels: []string{
			"Backordered",
			"Warranty",
			"Escalation",
			"Prepaid Service",
			"COSTCO ESCALATION",
			"Demand Repair",
			"1st Year Warranty",
			"Install",
			"Comfort Shield Warranty",
			"Recall",
			"Schedule Return Visit",
			"Electrical",
			"Duct Cleaning",
			"Senior Tech Callback",
			"Commercial",
			"Possible Payment Issue",
			"Replacement Opp",
			"Manager Visit",
			"Damage Claim",
			"NOT COOLING/HEATING",
			"Multiple Systems",
			"Missing Quote",
			"READY TO SCHEDULE",
			"Missing Parts",
			"URGENT",
			"Dispatch",
			"ISR - Service",
			"Aging Card",
			"In Service Recovery - Stale",
			"Call Customer",
			"Check Warranty",
			"Plumbing",
			"Truck Stock",
			"Multiple Parts Request",
		},
		WonColumn:  "Completed",
		LostColumn: "Canceled",
	}
}

// Validate checks that the won and lost columns are named and that no list
// contains an empty entry.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid report config: %w", err)
	}
	return nil
}

func (c Config) excluded(column string) bool {
	for _, name := range c.ExcludedColumns {
		if name == column {
			return true
		}
	}
	return false
}
