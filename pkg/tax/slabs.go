// Package tax computes Indian salaried income tax under the old and new
// regimes and recommends the cheaper one.
package tax

import "math"

// Slab is one progressive tax band. Income in (Min, Max] is taxed at Rate.
type Slab struct {
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
	Rate float64 `json:"rate" yaml:"rate"`
}

// Unbounded marks the open upper end of the last slab.
var Unbounded = math.Inf(1)

// CalculateIncomeTax applies ascending slabs to taxableIncome. Slabs must
// cover [0, Inf) in order; evaluation stops at the first band whose lower
// bound is not exceeded.
func CalculateIncomeTax(taxableIncome float64, slabs []Slab) float64 {
	tax := 0.0
	for _, slab := range slabs {
		if taxableIncome <= slab.Min {
			break
		}
		tax += (math.Min(taxableIncome, slab.Max) - slab.Min) * slab.Rate
	}
	return math.Max(0, tax)
}
