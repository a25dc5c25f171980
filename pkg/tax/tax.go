package tax

import (
	"fmt"
	"math"

	"github.com/iwvelando/fincalc/pkg/mathutil"
	"github.com/iwvelando/fincalc/pkg/validation"
	"go.uber.org/zap"
)

// SalaryDetails holds annual salary components.
type SalaryDetails struct {
	BasicSalary     float64 `json:"basicSalary"`
	DA              float64 `json:"da"`
	HRA             float64 `json:"hra"`
	Bonus           float64 `json:"bonus"`
	OtherAllowances float64 `json:"otherAllowances"`
}

// Gross returns the sum of all salary components.
func (s SalaryDetails) Gross() float64 {
	return s.BasicSalary + s.DA + s.HRA + s.Bonus + s.OtherAllowances
}

// Deductions holds claimed annual deductions before caps are applied.
type Deductions struct {
	Section80C       float64 `json:"section80C"`
	Section80D       float64 `json:"section80D"`
	HomeLoanInterest float64 `json:"homeLoanInterest"`
	NPS              float64 `json:"nps"`
	OtherDeductions  float64 `json:"otherDeductions"`
}

// Regime identifies a tax regime.
type Regime string

const (
	RegimeOld Regime = "old"
	RegimeNew Regime = "new"
)

// Calculation is the outcome of one regime.
type Calculation struct {
	GrossSalary       float64 `json:"grossSalary"`
	StandardDeduction float64 `json:"standardDeduction"`
	TotalDeductions   float64 `json:"totalDeductions"`
	TaxableIncome     float64 `json:"taxableIncome"`
	TaxBeforeRebate   float64 `json:"taxBeforeRebate"`
	Rebate            float64 `json:"rebate"`
	IncomeTax         float64 `json:"incomeTax"`
	Cess              float64 `json:"cess"`
	TotalTax          float64 `json:"totalTax"`
	NetSalary         float64 `json:"netSalary"`
	EffectiveRate     float64 `json:"effectiveRate"`
}

// Result compares both regimes. Savings is old minus new total tax, so a
// positive value means the new regime is cheaper.
type Result struct {
	PolicyYear     string      `json:"policyYear"`
	OldRegime      Calculation `json:"oldRegime"`
	NewRegime      Calculation `json:"newRegime"`
	Recommendation Regime      `json:"recommendation"`
	Savings        float64     `json:"savings"`
}

// Calculator applies one Policy.
type Calculator struct {
	policy Policy
	logger *zap.Logger
}

// NewCalculator creates a calculator bound to a policy.
func NewCalculator(policy Policy, logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{policy: policy, logger: logger}
}

// CalculateTax compares both regimes under the default policy.
func CalculateTax(salary SalaryDetails, deductions Deductions, age AgeBracket) (Result, error) {
	return NewCalculator(DefaultPolicy(), nil).Calculate(salary, deductions, age)
}

// Calculate computes both regimes and recommends the cheaper one; ties go
// to the old regime.
func (c *Calculator) Calculate(salary SalaryDetails, deductions Deductions, age AgeBracket) (Result, error) {
	age, err := ParseAgeBracket(string(age))
	if err != nil {
		return Result{}, err
	}
	if err := validateInputs(salary, deductions); err != nil {
		return Result{}, err
	}

	oldRegime := c.regime(c.policy.OldRegime, salary, deductions, age)
	newRegime := c.regime(c.policy.NewRegime, salary, deductions, age)

	result := Result{
		PolicyYear:     c.policy.Year,
		OldRegime:      oldRegime,
		NewRegime:      newRegime,
		Recommendation: RegimeOld,
		Savings:        oldRegime.TotalTax - newRegime.TotalTax,
	}
	if result.Savings > 0 {
		result.Recommendation = RegimeNew
	}

	c.logger.Debug(fmt.Sprintf("%s: old regime %.2f, new regime %.2f, recommending %s",
		c.policy.Year, oldRegime.TotalTax, newRegime.TotalTax, result.Recommendation),
		zap.String("op", "tax.Calculate"),
		zap.String("age", string(age)),
	)

	return result, nil
}

// OldRegime computes the old-regime liability on its own.
func (c *Calculator) OldRegime(salary SalaryDetails, deductions Deductions, age AgeBracket) Calculation {
	return c.regime(c.policy.OldRegime, salary, deductions, age)
}

// NewRegime computes the new-regime liability on its own.
func (c *Calculator) NewRegime(salary SalaryDetails, deductions Deductions) Calculation {
	return c.regime(c.policy.NewRegime, salary, deductions, AgeBelow60)
}

func (c *Calculator) regime(rp RegimePolicy, salary SalaryDetails, deductions Deductions, age AgeBracket) Calculation {
	gross := salary.Gross()
	standardDeduction := math.Min(rp.StandardDeduction, gross)

	hraExemption := 0.0
	if rp.HRAExemption != nil {
		hraExemption = rp.HRAExemption(salary)
	}

	totalDeductions := standardDeduction +
		math.Min(deductions.Section80C, rp.Caps.Section80C) +
		math.Min(deductions.Section80D, rp.Caps.Section80D) +
		math.Min(deductions.HomeLoanInterest, rp.Caps.HomeLoanInterest) +
		math.Min(deductions.NPS, rp.Caps.NPS) +
		math.Min(deductions.OtherDeductions, rp.Caps.OtherDeductions) +
		hraExemption

	taxable := math.Max(0, gross-totalDeductions)
	beforeRebate := CalculateIncomeTax(taxable, rp.SlabsFor(age))

	rebate := 0.0
	if taxable <= rp.Rebate.Threshold {
		rebate = math.Min(beforeRebate, rp.Rebate.MaxRebate)
	}
	incomeTax := math.Max(0, beforeRebate-rebate)
	cess := incomeTax * c.policy.CessRate
	totalTax := incomeTax + cess

	return Calculation{
		GrossSalary:       gross,
		StandardDeduction: standardDeduction,
		TotalDeductions:   totalDeductions,
		TaxableIncome:     taxable,
		TaxBeforeRebate:   beforeRebate,
		Rebate:            rebate,
		IncomeTax:         incomeTax,
		Cess:              cess,
		TotalTax:          totalTax,
		NetSalary:         gross - totalTax,
		EffectiveRate:     mathutil.CalculatePercentage(totalTax, gross),
	}
}

func validateInputs(salary SalaryDetails, deductions Deductions) error {
	return validation.FirstError(
		validation.NonNegative("basicSalary", salary.BasicSalary),
		validation.NonNegative("da", salary.DA),
		validation.NonNegative("hra", salary.HRA),
		validation.NonNegative("bonus", salary.Bonus),
		validation.NonNegative("otherAllowances", salary.OtherAllowances),
		validation.NonNegative("section80C", deductions.Section80C),
		validation.NonNegative("section80D", deductions.Section80D),
		validation.NonNegative("homeLoanInterest", deductions.HomeLoanInterest),
		validation.NonNegative("nps", deductions.NPS),
		validation.NonNegative("otherDeductions", deductions.OtherDeductions),
	)
}
