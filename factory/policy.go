/*
Package factory provides JSON/YAML to Go pay policy conversion.

PURPOSE:
  Converts pay policy definitions into engine.PayPolicy values. Payroll
  settings (period length, biweekly anchor, base rate, rate labels,
  timezone) can then live in a config file, a database row or an API
  request body instead of code.

SCHEMA:
  {
    "id": "hospital-biweekly",
    "name": "Hospital biweekly",
    "period_type": "biweekly",
    "reference_date": "2025-01-06",
    "base_rate_cents": 2000,
    "rate_upper_bound": 10,
    "week_start": "monday",
    "timezone": "Europe/London",
    "rates": [
      {"multiplier": 1.0, "label": "Regular"},
      {"multiplier": 1.5, "label": "Extra"}
    ]
  }

  Every field but id is optional. Missing fields take DefaultPolicy values;
  an empty rate list takes engine.DefaultRates.

  The same struct carries yaml tags (config file "pay:" section) and env
  tags (SHIFT_PAY_* overrides).

USAGE:
  f := factory.NewPolicyFactory()
  policy, err := f.ParsePolicy(factory.StandardPolicyJSON("std", "Standard", 2000))

SEE ALSO:
  - engine/policy.go: PayPolicy type definition
  - config/config.go: Loads the pay section from YAML and env
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/warp/shift-engine/engine"
)

// DateLayout is the format of reference_date.
const DateLayout = "2006-01-02"

// ErrInvalidPolicy is returned for definitions that cannot be built.
var ErrInvalidPolicy = errors.New("invalid pay policy")

// =============================================================================
// SCHEMA TYPES
// =============================================================================

// PayPolicyJSON is the serialized form of a pay policy.
type PayPolicyJSON struct {
	ID             string     `json:"id" yaml:"id"`
	Name           string     `json:"name,omitempty" yaml:"name,omitempty"`
	PeriodType     string     `json:"period_type,omitempty" yaml:"period_type,omitempty" env:"PERIOD_TYPE"`
	ReferenceDate  string     `json:"reference_date,omitempty" yaml:"reference_date,omitempty" env:"REFERENCE_DATE"`
	BaseRateCents  *int64     `json:"base_rate_cents,omitempty" yaml:"base_rate_cents,omitempty" env:"BASE_RATE_CENTS"`
	RateUpperBound float64    `json:"rate_upper_bound,omitempty" yaml:"rate_upper_bound,omitempty" env:"RATE_UPPER_BOUND"`
	WeekStart      string     `json:"week_start,omitempty" yaml:"week_start,omitempty" env:"WEEK_START"`
	Timezone       string     `json:"timezone,omitempty" yaml:"timezone,omitempty" env:"TIMEZONE"`
	Rates          []RateJSON `json:"rates,omitempty" yaml:"rates,omitempty"`
}

// RateJSON names one multiplier.
type RateJSON struct {
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
	Label      string  `json:"label" yaml:"label"`
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts serialized policies to engine.PayPolicy.
type PolicyFactory struct{}

// NewPolicyFactory creates a new policy factory.
func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// ParsePolicy parses a JSON string into a PayPolicy.
func (f *PolicyFactory) ParsePolicy(jsonStr string) (*engine.PayPolicy, error) {
	var pj PayPolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse policy JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// ParsePolicyYAML parses a YAML document into a PayPolicy.
func (f *PolicyFactory) ParsePolicyYAML(data []byte) (*engine.PayPolicy, error) {
	var pj PayPolicyJSON
	if err := yaml.Unmarshal(data, &pj); err != nil {
		return nil, fmt.Errorf("failed to parse policy YAML: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON builds a PayPolicy, filling unset fields from DefaultPolicy.
func (f *PolicyFactory) FromJSON(pj PayPolicyJSON) (*engine.PayPolicy, error) {
	policy := engine.DefaultPolicy()
	if pj.ID != "" {
		policy.ID = pj.ID
	}
	if pj.Name != "" {
		policy.Name = pj.Name
	}

	if pj.PeriodType != "" {
		typ, err := engine.ParsePeriodType(strings.ToLower(pj.PeriodType))
		if err != nil {
			return nil, fmt.Errorf("%w: period_type %q", err, pj.PeriodType)
		}
		policy.PeriodType = typ
	}

	if pj.Timezone != "" {
		loc, err := time.LoadLocation(pj.Timezone)
		if err != nil {
			return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidPolicy, pj.Timezone, err)
		}
		policy.Calendar.Location = loc
	}

	if pj.WeekStart != "" {
		day, err := ParseWeekday(pj.WeekStart)
		if err != nil {
			return nil, err
		}
		policy.Calendar.WeekStart = day
	}

	if pj.ReferenceDate != "" {
		ref, err := time.ParseInLocation(DateLayout, pj.ReferenceDate, policy.Calendar.Location)
		if err != nil {
			return nil, fmt.Errorf("%w: reference_date %q: want YYYY-MM-DD", ErrInvalidPolicy, pj.ReferenceDate)
		}
		policy.ReferenceDate = &ref
	}

	if pj.BaseRateCents != nil {
		if *pj.BaseRateCents < 0 {
			return nil, fmt.Errorf("%w: base_rate_cents must not be negative", ErrInvalidPolicy)
		}
		policy.BaseRate = engine.CentsPtr(engine.Cents(*pj.BaseRateCents))
	}

	if pj.RateUpperBound < 0 {
		return nil, fmt.Errorf("%w: rate_upper_bound must be positive", ErrInvalidPolicy)
	}
	if pj.RateUpperBound > 0 {
		policy.Rates.UpperBound = pj.RateUpperBound
	}

	if len(pj.Rates) > 0 {
		policy.Rates.Entries = make([]engine.RateEntry, 0, len(pj.Rates))
		for _, rj := range pj.Rates {
			if !policy.Rates.IsValid(rj.Multiplier) {
				return nil, fmt.Errorf("%w: rate %q multiplier %v", engine.ErrInvalidRate, rj.Label, rj.Multiplier)
			}
			policy.Rates.Entries = append(policy.Rates.Entries, engine.RateEntry{
				Multiplier: rj.Multiplier,
				Label:      rj.Label,
			})
		}
	}

	return policy, nil
}

// ToJSON converts a PayPolicy back to its serialized form.
func (f *PolicyFactory) ToJSON(policy *engine.PayPolicy) PayPolicyJSON {
	pj := PayPolicyJSON{
		ID:             policy.ID,
		Name:           policy.Name,
		PeriodType:     string(policy.PeriodType),
		RateUpperBound: policy.Rates.UpperBound,
		WeekStart:      strings.ToLower(policy.Calendar.WeekStart.String()),
	}
	if policy.Calendar.Location != nil {
		pj.Timezone = policy.Calendar.Location.String()
	}
	if policy.ReferenceDate != nil {
		pj.ReferenceDate = policy.ReferenceDate.Format(DateLayout)
	}
	if policy.BaseRate != nil {
		cents := int64(*policy.BaseRate)
		pj.BaseRateCents = &cents
	}
	for _, e := range policy.Rates.Entries {
		pj.Rates = append(pj.Rates, RateJSON{Multiplier: e.Multiplier, Label: e.Label})
	}
	return pj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

// ParseWeekday accepts full or three-letter English day names, any case.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("%w: week_start %q", ErrInvalidPolicy, s)
}

// =============================================================================
// PRESET POLICIES
// =============================================================================

// StandardPolicyJSON is a weekly, Monday-start policy with the default rates.
func StandardPolicyJSON(id, name string, baseRateCents int64) string {
	return fmt.Sprintf(`{
  "id": %q,
  "name": %q,
  "period_type": "weekly",
  "base_rate_cents": %d,
  "week_start": "monday",
  "timezone": "UTC"
}`, id, name, baseRateCents)
}

// BiweeklyPolicyJSON is a biweekly policy anchored at referenceDate (YYYY-MM-DD).
func BiweeklyPolicyJSON(id, name, referenceDate string, baseRateCents int64) string {
	return fmt.Sprintf(`{
  "id": %q,
  "name": %q,
  "period_type": "biweekly",
  "reference_date": %q,
  "base_rate_cents": %d,
  "week_start": "monday",
  "timezone": "UTC"
}`, id, name, referenceDate, baseRateCents)
}

// MonthlyPolicyJSON is a calendar-month policy with no base rate.
func MonthlyPolicyJSON(id, name string) string {
	return fmt.Sprintf(`{
  "id": %q,
  "name": %q,
  "period_type": "monthly"
}`, id, name)
}
