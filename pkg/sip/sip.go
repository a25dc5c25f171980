// Package sip projects the future value of systematic (monthly) and
// lump-sum investments, optionally alongside an existing holding.
package sip

import (
	"fmt"
	"math"

	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/mathutil"
	"github.com/iwvelando/fincalc/pkg/validation"
	"go.uber.org/zap"
)

// Input describes one projection. Only the amount matching InvestmentType
// feeds the primary projection.
type Input struct {
	InvestmentType        string  `json:"investmentType"`
	MonthlyAmount         float64 `json:"monthlyAmount"`
	LumpSumAmount         float64 `json:"lumpSumAmount"`
	Duration              int     `json:"duration"`
	ExpectedReturn        float64 `json:"expectedReturn"`
	HasExistingInvestment bool    `json:"hasExistingInvestment"`
	ExistingAmount        float64 `json:"existingAmount"`
	ExistingDuration      int     `json:"existingDuration"`
}

// Result is the projected outcome. TotalInvestment, FutureValue and Wealth
// describe the primary investment only; the Combined fields fold in the
// existing holding.
type Result struct {
	TotalInvestment    float64 `json:"totalInvestment"`
	FutureValue        float64 `json:"futureValue"`
	Wealth             float64 `json:"wealth"`
	MonthlyAmount      float64 `json:"monthlyAmount"`
	LumpSumAmount      float64 `json:"lumpSumAmount"`
	ExistingInvestment float64 `json:"existingInvestment"`
	ExistingValue      float64 `json:"existingValue"`
	TotalFutureValue   float64 `json:"totalFutureValue"`
	CombinedInvestment float64 `json:"combinedInvestment"`
	CombinedWealth     float64 `json:"combinedWealth"`
}

// Projector computes investment projections.
type Projector struct {
	logger *zap.Logger
}

// NewProjector creates a projector.
func NewProjector(logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{logger: logger}
}

// Calculate projects an investment without logging.
func Calculate(input Input) (Result, error) {
	return NewProjector(nil).Project(input)
}

// Project validates input and computes the projection.
func (p *Projector) Project(input Input) (Result, error) {
	if err := Validate(input); err != nil {
		return Result{}, err
	}

	annualRate := mathutil.PercentToDecimal(input.ExpectedReturn)
	monthlyRate := mathutil.MonthlyRate(input.ExpectedReturn)
	totalMonths := input.Duration * constants.MonthsPerYear

	var result Result
	switch input.InvestmentType {
	case constants.InvestmentTypeSIP:
		result.MonthlyAmount = input.MonthlyAmount
		result.TotalInvestment = input.MonthlyAmount * float64(totalMonths)
		result.FutureValue = SIPFutureValue(input.MonthlyAmount, monthlyRate, totalMonths)
	case constants.InvestmentTypeLumpSum:
		result.LumpSumAmount = input.LumpSumAmount
		result.TotalInvestment = input.LumpSumAmount
		result.FutureValue = LumpSumFutureValue(input.LumpSumAmount, annualRate, input.Duration)
	}
	result.Wealth = result.FutureValue - result.TotalInvestment

	if input.HasExistingInvestment && input.ExistingAmount > 0 {
		result.ExistingInvestment = input.ExistingAmount
		result.ExistingValue = LumpSumFutureValue(input.ExistingAmount, annualRate, input.ExistingDuration)
	}

	result.TotalFutureValue = result.FutureValue + result.ExistingValue
	result.CombinedInvestment = result.TotalInvestment + result.ExistingInvestment
	result.CombinedWealth = result.TotalFutureValue - result.CombinedInvestment
	if math.IsInf(result.TotalFutureValue, 0) || math.IsNaN(result.TotalFutureValue) {
		return Result{}, validation.Invalid("expectedReturn", "of %.2f%% over %d years grows past a representable value",
			input.ExpectedReturn, input.Duration)
	}

	p.logger.Debug(fmt.Sprintf("%s of %d years at %.2f%%: invested %.2f, future value %.2f",
		input.InvestmentType, input.Duration, input.ExpectedReturn, result.TotalInvestment, result.FutureValue),
		zap.String("op", "sip.Project"),
		zap.Float64("existing_value", result.ExistingValue),
	)

	return result, nil
}

// SIPFutureValue is the annuity-due value of months contributions made at
// the start of each month. A zero rate yields the plain sum.
func SIPFutureValue(monthlyAmount, monthlyRate float64, months int) float64 {
	if monthlyRate == 0 {
		return monthlyAmount * float64(months)
	}
	growth := math.Pow(1+monthlyRate, float64(months))
	return monthlyAmount * ((growth - 1) / monthlyRate) * (1 + monthlyRate)
}

// LumpSumFutureValue compounds amount annually for years.
func LumpSumFutureValue(amount, annualRate float64, years int) float64 {
	return amount * math.Pow(1+annualRate, float64(years))
}

// Validate reports the first input outside the projection's domain.
func Validate(input Input) error {
	if input.InvestmentType != constants.InvestmentTypeSIP && input.InvestmentType != constants.InvestmentTypeLumpSum {
		return validation.Invalid("investmentType", "must be %s or %s, got %q",
			constants.InvestmentTypeSIP, constants.InvestmentTypeLumpSum, input.InvestmentType)
	}
	if input.Duration <= 0 {
		return validation.Invalid("duration", "must be at least one year, got %d", input.Duration)
	}
	if input.ExistingDuration < 0 {
		return validation.Invalid("existingDuration", "must not be negative, got %d", input.ExistingDuration)
	}
	return validation.FirstError(
		validation.NonNegative("expectedReturn", input.ExpectedReturn),
		validation.NonNegative("monthlyAmount", input.MonthlyAmount),
		validation.NonNegative("lumpSumAmount", input.LumpSumAmount),
		validation.NonNegative("existingAmount", input.ExistingAmount),
	)
}
