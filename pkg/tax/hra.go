package tax

import "math"

// HRAExemptionFunc computes the exempt portion of house rent allowance.
// It is part of a Policy so the statutory rule can replace the stand-in
// without touching regime logic.
type HRAExemptionFunc func(salary SalaryDetails) float64

// SimplifiedHRAExemption is min(hra, min(50% of basic, 90% of hra)).
// Rent paid and metro/non-metro city type are not modelled.
func SimplifiedHRAExemption(salary SalaryDetails) float64 {
	return math.Min(salary.HRA, math.Min(salary.BasicSalary*0.5, salary.HRA*0.9))
}

// NoHRAExemption grants nothing; the new regime does not exempt HRA.
func NoHRAExemption(SalaryDetails) float64 {
	return 0
}
