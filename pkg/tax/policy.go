package tax

import (
	"sort"
	"strings"

	"github.com/iwvelando/fincalc/pkg/validation"
)

// AgeBracket selects the old-regime slab table.
type AgeBracket string

const (
	AgeBelow60     AgeBracket = "below60"
	AgeSenior      AgeBracket = "60to80"
	AgeSuperSenior AgeBracket = "above80"
)

// ParseAgeBracket accepts the canonical bracket names.
func ParseAgeBracket(value string) (AgeBracket, error) {
	switch AgeBracket(strings.TrimSpace(value)) {
	case AgeBelow60:
		return AgeBelow60, nil
	case AgeSenior:
		return AgeSenior, nil
	case AgeSuperSenior:
		return AgeSuperSenior, nil
	case "":
		return AgeBelow60, nil
	}
	return "", validation.Invalid("ageBracket", "must be one of %s, %s or %s, got %q",
		AgeBelow60, AgeSenior, AgeSuperSenior, value)
}

// AgeBracketForAge maps an age in completed years onto its bracket.
func AgeBracketForAge(years int) AgeBracket {
	switch {
	case years >= 80:
		return AgeSuperSenior
	case years >= 60:
		return AgeSenior
	default:
		return AgeBelow60
	}
}

// DeductionCaps are the per-section ceilings applied to claimed deductions.
// A zero cap disallows the deduction; Unbounded leaves it uncapped.
type DeductionCaps struct {
	Section80C       float64
	Section80D       float64
	HomeLoanInterest float64
	NPS              float64
	OtherDeductions  float64
}

// Rebate is the section 87A credit: up to MaxRebate when taxable income is
// at or below Threshold.
type Rebate struct {
	Threshold float64
	MaxRebate float64
}

// RegimePolicy holds everything a regime needs beyond the salary inputs.
type RegimePolicy struct {
	StandardDeduction float64
	Caps              DeductionCaps
	Rebate            Rebate
	Slabs             map[AgeBracket][]Slab
	HRAExemption      HRAExemptionFunc
}

// SlabsFor returns the slab table for an age bracket, falling back to the
// below-60 table for regimes that do not vary by age.
func (p RegimePolicy) SlabsFor(age AgeBracket) []Slab {
	if slabs, ok := p.Slabs[age]; ok {
		return slabs
	}
	return p.Slabs[AgeBelow60]
}

// Policy is one financial year's tax rules.
type Policy struct {
	Year      string
	CessRate  float64
	OldRegime RegimePolicy
	NewRegime RegimePolicy
}

// DefaultPolicyYear is used when no year is requested.
const DefaultPolicyYear = "FY2025-26"

var oldRegimeSlabs = map[AgeBracket][]Slab{
	AgeBelow60: {
		{Min: 0, Max: 250000, Rate: 0},
		{Min: 250000, Max: 500000, Rate: 0.05},
		{Min: 500000, Max: 1000000, Rate: 0.20},
		{Min: 1000000, Max: Unbounded, Rate: 0.30},
	},
	AgeSenior: {
		{Min: 0, Max: 300000, Rate: 0},
		{Min: 300000, Max: 500000, Rate: 0.05},
		{Min: 500000, Max: 1000000, Rate: 0.20},
		{Min: 1000000, Max: Unbounded, Rate: 0.30},
	},
	AgeSuperSenior: {
		{Min: 0, Max: 500000, Rate: 0},
		{Min: 500000, Max: 1000000, Rate: 0.20},
		{Min: 1000000, Max: Unbounded, Rate: 0.30},
	},
}

func oldRegime() RegimePolicy {
	return RegimePolicy{
		StandardDeduction: 50000,
		Caps: DeductionCaps{
			Section80C:       150000,
			Section80D:       25000,
			HomeLoanInterest: 200000,
			NPS:              50000,
			OtherDeductions:  Unbounded,
		},
		Rebate:       Rebate{Threshold: 500000, MaxRebate: 12500},
		Slabs:        oldRegimeSlabs,
		HRAExemption: SimplifiedHRAExemption,
	}
}

// newRegimeCaps allows only the employer NPS contribution.
var newRegimeCaps = DeductionCaps{NPS: 50000}

var policies = map[string]Policy{
	"FY2025-26": {
		Year:      "FY2025-26",
		CessRate:  0.04,
		OldRegime: oldRegime(),
		NewRegime: RegimePolicy{
			StandardDeduction: 75000,
			Caps:              newRegimeCaps,
			Rebate:            Rebate{Threshold: 1200000, MaxRebate: 60000},
			Slabs: map[AgeBracket][]Slab{
				AgeBelow60: {
					{Min: 0, Max: 400000, Rate: 0},
					{Min: 400000, Max: 800000, Rate: 0.05},
					{Min: 800000, Max: 1200000, Rate: 0.10},
					{Min: 1200000, Max: 1600000, Rate: 0.15},
					{Min: 1600000, Max: 2000000, Rate: 0.20},
					{Min: 2000000, Max: 2400000, Rate: 0.25},
					{Min: 2400000, Max: Unbounded, Rate: 0.30},
				},
			},
			HRAExemption: NoHRAExemption,
		},
	},
	"FY2023-24": {
		Year:      "FY2023-24",
		CessRate:  0.04,
		OldRegime: oldRegime(),
		NewRegime: RegimePolicy{
			StandardDeduction: 50000,
			Caps:              newRegimeCaps,
			Rebate:            Rebate{Threshold: 700000, MaxRebate: 25000},
			Slabs: map[AgeBracket][]Slab{
				AgeBelow60: {
					{Min: 0, Max: 300000, Rate: 0},
					{Min: 300000, Max: 600000, Rate: 0.05},
					{Min: 600000, Max: 900000, Rate: 0.10},
					{Min: 900000, Max: 1200000, Rate: 0.15},
					{Min: 1200000, Max: 1500000, Rate: 0.20},
					{Min: 1500000, Max: Unbounded, Rate: 0.30},
				},
			},
			HRAExemption: NoHRAExemption,
		},
	},
}

// DefaultPolicy returns the current year's rules.
func DefaultPolicy() Policy {
	return policies[DefaultPolicyYear]
}

// LookupPolicy returns the rules for a financial year such as "FY2025-26".
// An empty year selects the default.
func LookupPolicy(year string) (Policy, error) {
	year = strings.TrimSpace(year)
	if year == "" {
		return DefaultPolicy(), nil
	}
	policy, ok := policies[year]
	if !ok {
		return Policy{}, validation.Invalid("policyYear", "%q is not supported (available: %s)",
			year, strings.Join(PolicyYears(), ", "))
	}
	return policy, nil
}

// PolicyYears lists the supported financial years, newest first.
func PolicyYears() []string {
	years := make([]string, 0, len(policies))
	for year := range policies {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years
}
