package engine

import (
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RATE TABLE - Multiplier to label mapping
// =============================================================================

// DefaultRateUpperBound is the largest multiplier accepted by DefaultRates.
// Anything above 10x is treated as a data-entry mistake.
const DefaultRateUpperBound = 10.0

const rateTolerance = 1e-9

// RateEntry names a known multiplier.
type RateEntry struct {
	Multiplier float64
	Label      string
}

// RateTable is an ordered list of known multipliers plus the validity bound.
// Lookups are by tolerance match; the first matching entry wins.
type RateTable struct {
	Entries    []RateEntry
	UpperBound float64
}

// DefaultRates returns the standard rate table.
func DefaultRates() RateTable {
	return RateTable{
		Entries: []RateEntry{
			{Multiplier: 1.0, Label: "Regular"},
			{Multiplier: 1.3, Label: "Overtime (Bracket)"},
			{Multiplier: 1.5, Label: "Extra"},
			{Multiplier: 2.0, Label: "Bank Holiday"},
		},
		UpperBound: DefaultRateUpperBound,
	}
}

func (rt RateTable) upperBound() float64 {
	if rt.UpperBound <= 0 {
		return DefaultRateUpperBound
	}
	return rt.UpperBound
}

// IsValid reports whether m lies in (0, UpperBound].
func (rt RateTable) IsValid(m float64) bool {
	if !finite(m) {
		return false
	}
	return m > 0 && m <= rt.upperBound()
}

// Label returns the canonical label for m, or "<m rounded to 1 decimal>x".
func (rt RateTable) Label(m float64) string {
	for _, e := range rt.Entries {
		if math.Abs(e.Multiplier-m) <= rateTolerance {
			return e.Label
		}
	}
	return FormatMultiplier(m)
}

// LabelFor prefers the shift's own label over the table.
func (rt RateTable) LabelFor(s ShiftRecord) string {
	if s.RateLabel != "" {
		return s.RateLabel
	}
	return rt.Label(s.RateMultiplier)
}

// InvalidMultiplierLabel labels NaN and infinite multipliers.
const InvalidMultiplierLabel = "invalid"

// FormatMultiplier renders m with one decimal, rounding half away from zero.
// Non-finite values yield InvalidMultiplierLabel.
func FormatMultiplier(m float64) string {
	if !finite(m) {
		return InvalidMultiplierLabel
	}
	return decimal.NewFromFloat(m).StringFixed(1) + "x"
}

func finite(m float64) bool {
	return !math.IsNaN(m) && !math.IsInf(m, 0)
}

// IsValidRate checks m against DefaultRates.
func IsValidRate(m float64) bool { return DefaultRates().IsValid(m) }

// RateLabel labels m using DefaultRates.
func RateLabel(m float64) string { return DefaultRates().Label(m) }
