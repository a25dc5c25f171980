package loans

import (
	"fmt"
	"math"

	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/validation"
	"go.uber.org/zap"
)

// HomeLoanInputs describes a loan and the optional early-repayment plans to
// compare against it. PrepaymentStartMonth is 1-indexed; zero means month 12.
type HomeLoanInputs struct {
	LoanAmount           float64 `json:"loanAmount"`
	InterestRate         float64 `json:"interestRate"`
	TenureYears          int     `json:"tenureYears"`
	PrepaymentAmount     float64 `json:"prepaymentAmount,omitempty"`
	PrepaymentStartMonth int     `json:"prepaymentStartMonth,omitempty"`
	ExtraEmiCount        int     `json:"extraEmiCount,omitempty"`
}

// PrepaymentResult compares a one-time prepayment against the original loan.
// NewEmi applies when the tenure is kept; NewTenure and TimeReduced (years)
// apply when the EMI is kept.
type PrepaymentResult struct {
	StartMonth         int     `json:"startMonth"`
	OutstandingBalance float64 `json:"outstandingBalance"`
	NewEmi             float64 `json:"newEmi"`
	MonthsRemaining    int     `json:"monthsRemaining"`
	NewTenure          float64 `json:"newTenure"`
	TotalSavings       float64 `json:"totalSavings"`
	InterestSaved      float64 `json:"interestSaved"`
	TimeReduced        float64 `json:"timeReduced"`
}

// ExtraEmiResult compares paying ExtraEmiCount installments upfront.
type ExtraEmiResult struct {
	ExtraAmount   float64 `json:"extraAmount"`
	NewTenure     float64 `json:"newTenure"`
	TotalSavings  float64 `json:"totalSavings"`
	InterestSaved float64 `json:"interestSaved"`
	TimeReduced   float64 `json:"timeReduced"`
}

// HomeLoanResults is the full analysis of a loan.
type HomeLoanResults struct {
	MonthlyEmi           float64           `json:"monthlyEmi"`
	TotalAmount          float64           `json:"totalAmount"`
	TotalInterest        float64           `json:"totalInterest"`
	AmortizationSchedule []ScheduleRow     `json:"amortizationSchedule"`
	WithPrepayment       *PrepaymentResult `json:"withPrepayment,omitempty"`
	WithExtraEmi         *ExtraEmiResult   `json:"withExtraEmi,omitempty"`
}

// HomeLoanAnalyzer computes loan results with logging.
type HomeLoanAnalyzer struct {
	logger *zap.Logger
}

// NewHomeLoanAnalyzer creates a new analyzer instance
func NewHomeLoanAnalyzer(logger *zap.Logger) *HomeLoanAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HomeLoanAnalyzer{logger: logger}
}

// CalculateHomeLoan analyzes a loan without logging.
func CalculateHomeLoan(inputs HomeLoanInputs) (HomeLoanResults, error) {
	return NewHomeLoanAnalyzer(nil).Analyze(inputs)
}

// Analyze computes the EMI, the first year of the schedule and any
// requested prepayment or extra-EMI comparison.
func (a *HomeLoanAnalyzer) Analyze(inputs HomeLoanInputs) (HomeLoanResults, error) {
	if inputs.PrepaymentStartMonth == 0 {
		inputs.PrepaymentStartMonth = constants.DefaultPrepaymentStartMonth
	}
	if err := Validate(inputs); err != nil {
		return HomeLoanResults{}, err
	}

	termMonths := inputs.TenureYears * constants.MonthsPerYear
	emi := CalculateEMI(inputs.LoanAmount, inputs.InterestRate, termMonths)
	totalAmount := emi * float64(termMonths)
	if math.IsInf(totalAmount, 0) || math.IsNaN(totalAmount) {
		return HomeLoanResults{}, validation.Invalid("interestRate", "of %.2f%% over %d months yields no representable EMI",
			inputs.InterestRate, termMonths)
	}

	results := HomeLoanResults{
		MonthlyEmi:           emi,
		TotalAmount:          totalAmount,
		TotalInterest:        totalAmount - inputs.LoanAmount,
		AmortizationSchedule: AmortizationSchedule(inputs.LoanAmount, inputs.InterestRate, termMonths, constants.ScheduleDisplayMonths),
	}

	a.logger.Debug(fmt.Sprintf("loan of %.2f at %.2f%% over %d months: EMI %.2f, interest %.2f",
		inputs.LoanAmount, inputs.InterestRate, termMonths, emi, results.TotalInterest),
		zap.String("op", "loans.Analyze"),
	)

	if inputs.PrepaymentAmount > 0 {
		prepayment, err := a.prepayment(inputs, emi, termMonths)
		if err != nil {
			return HomeLoanResults{}, err
		}
		results.WithPrepayment = prepayment
	}

	if inputs.ExtraEmiCount > 0 {
		extra, err := a.extraEmi(inputs, emi, termMonths)
		if err != nil {
			return HomeLoanResults{}, err
		}
		results.WithExtraEmi = extra
	}

	return results, nil
}

// prepayment applies a one-time payment at the start month and reports both
// the reduced-EMI and the reduced-tenure outcome.
func (a *HomeLoanAnalyzer) prepayment(inputs HomeLoanInputs, emi float64, termMonths int) (*PrepaymentResult, error) {
	start := inputs.PrepaymentStartMonth
	outstanding := BalanceAfter(inputs.LoanAmount, emi, inputs.InterestRate, start-1)
	if inputs.PrepaymentAmount > outstanding+constants.BalanceEpsilon {
		return nil, validation.Invalid("prepaymentAmount", "%.2f exceeds the %.2f outstanding before month %d",
			inputs.PrepaymentAmount, outstanding, start)
	}

	newPrincipal := outstanding - inputs.PrepaymentAmount
	remainingMonths := termMonths - start + 1
	newEmi := CalculateEMI(newPrincipal, inputs.InterestRate, remainingMonths)

	months, err := MonthsToPayoff(newPrincipal, emi, inputs.InterestRate, constants.PayoffIterationFactor*termMonths)
	if err != nil {
		return nil, fmt.Errorf("prepayment of %.2f at month %d: %w", inputs.PrepaymentAmount, start, err)
	}

	originalTotal := emi * float64(termMonths)
	paidBefore := emi * float64(start-1)
	paidAfter := emi*float64(months) + inputs.PrepaymentAmount
	savings := originalTotal - (paidBefore + paidAfter)

	a.logger.Debug(fmt.Sprintf("prepaying %.2f at month %d against %.2f outstanding: EMI %.2f or %d months remaining",
		inputs.PrepaymentAmount, start, outstanding, newEmi, months),
		zap.String("op", "loans.prepayment"),
		zap.Float64("savings", savings),
	)

	return &PrepaymentResult{
		StartMonth:         start,
		OutstandingBalance: outstanding,
		NewEmi:             newEmi,
		MonthsRemaining:    months,
		NewTenure:          float64(start-1+months) / constants.MonthsPerYear,
		TotalSavings:       savings,
		InterestSaved:      savings,
		TimeReduced:        float64(remainingMonths-months) / constants.MonthsPerYear,
	}, nil
}

// extraEmi pays ExtraEmiCount installments against principal upfront and
// keeps the original EMI.
func (a *HomeLoanAnalyzer) extraEmi(inputs HomeLoanInputs, emi float64, termMonths int) (*ExtraEmiResult, error) {
	extraAmount := emi * float64(inputs.ExtraEmiCount)
	if extraAmount > inputs.LoanAmount+constants.BalanceEpsilon {
		return nil, validation.Invalid("extraEmiCount", "%d installments (%.2f) exceed the loan amount %.2f",
			inputs.ExtraEmiCount, extraAmount, inputs.LoanAmount)
	}

	months, err := MonthsToPayoff(inputs.LoanAmount-extraAmount, emi, inputs.InterestRate, constants.PayoffIterationFactor*termMonths)
	if err != nil {
		return nil, fmt.Errorf("%d extra installments: %w", inputs.ExtraEmiCount, err)
	}

	savings := emi*float64(termMonths) - (emi*float64(months) + extraAmount)

	a.logger.Debug(fmt.Sprintf("paying %d extra installments (%.2f) upfront: %d months remaining",
		inputs.ExtraEmiCount, extraAmount, months),
		zap.String("op", "loans.extraEmi"),
		zap.Float64("savings", savings),
	)

	return &ExtraEmiResult{
		ExtraAmount:   extraAmount,
		NewTenure:     float64(months) / constants.MonthsPerYear,
		TotalSavings:  savings,
		InterestSaved: savings,
		TimeReduced:   float64(termMonths-months) / constants.MonthsPerYear,
	}, nil
}

// Validate reports the first input outside the analyzer's domain. A zero
// PrepaymentStartMonth is accepted and means the default month.
func Validate(inputs HomeLoanInputs) error {
	if err := validation.FirstError(
		validation.Positive("loanAmount", inputs.LoanAmount),
		validation.NonNegative("interestRate", inputs.InterestRate),
		validation.IntRange("tenureYears", inputs.TenureYears, 1, constants.MaxTenureYears),
		validation.NonNegative("prepaymentAmount", inputs.PrepaymentAmount),
	); err != nil {
		return err
	}
	if inputs.ExtraEmiCount < 0 {
		return validation.Invalid("extraEmiCount", "must not be negative, got %d", inputs.ExtraEmiCount)
	}
	if inputs.PrepaymentAmount > 0 && inputs.PrepaymentStartMonth != 0 {
		return validation.IntRange("prepaymentStartMonth", inputs.PrepaymentStartMonth, 1, inputs.TenureYears*constants.MonthsPerYear)
	}
	return nil
}
