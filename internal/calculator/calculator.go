// Package calculator runs every calculator configured in a scenario file and
// collects their results into a single report.
package calculator

import (
	"fmt"

	"github.com/iwvelando/fincalc/internal/config"
	"github.com/iwvelando/fincalc/pkg/loans"
	"github.com/iwvelando/fincalc/pkg/sip"
	"github.com/iwvelando/fincalc/pkg/tax"
	"go.uber.org/zap"
)

// Report holds the outcome of each configured calculator. Sections that were
// not configured are nil.
type Report struct {
	Tax      *TaxReport      `json:"tax,omitempty"`
	Sip      *SipReport      `json:"sip,omitempty"`
	HomeLoan *HomeLoanReport `json:"homeLoan,omitempty"`
}

// TaxReport pairs a regime comparison with the inputs that produced it.
type TaxReport struct {
	AgeBracket tax.AgeBracket    `json:"ageBracket"`
	Salary     tax.SalaryDetails `json:"salary"`
	Deductions tax.Deductions    `json:"deductions"`
	Result     tax.Result        `json:"result"`
}

// SipReport pairs an investment projection with its inputs.
type SipReport struct {
	Input  sip.Input  `json:"input"`
	Result sip.Result `json:"result"`
}

// HomeLoanReport pairs a loan analysis with its inputs.
type HomeLoanReport struct {
	Inputs  loans.HomeLoanInputs  `json:"inputs"`
	Results loans.HomeLoanResults `json:"results"`
}

// Empty reports whether no calculator ran.
func (r Report) Empty() bool {
	return r.Tax == nil && r.Sip == nil && r.HomeLoan == nil
}

// Run processes every section present in conf. The first failing section
// aborts the run.
func Run(logger *zap.Logger, conf config.Configuration) (Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var report Report

	if conf.Tax != nil {
		taxReport, err := runTax(logger, conf.Tax)
		if err != nil {
			return report, fmt.Errorf("tax: %w", err)
		}
		report.Tax = taxReport
	} else {
		logger.Debug("skipping tax calculation because it is not configured",
			zap.String("op", "calculator.Run"),
		)
	}

	if conf.Sip != nil {
		input := conf.Sip.ToSipInput()
		result, err := sip.NewProjector(logger).Project(input)
		if err != nil {
			return report, fmt.Errorf("sip: %w", err)
		}
		report.Sip = &SipReport{Input: input, Result: result}
	} else {
		logger.Debug("skipping sip projection because it is not configured",
			zap.String("op", "calculator.Run"),
		)
	}

	if conf.HomeLoan != nil {
		inputs := conf.HomeLoan.ToHomeLoanInputs()
		results, err := loans.NewHomeLoanAnalyzer(logger).Analyze(inputs)
		if err != nil {
			return report, fmt.Errorf("home loan: %w", err)
		}
		report.HomeLoan = &HomeLoanReport{Inputs: inputs, Results: results}
	} else {
		logger.Debug("skipping home loan analysis because it is not configured",
			zap.String("op", "calculator.Run"),
		)
	}

	return report, nil
}

func runTax(logger *zap.Logger, conf *config.TaxConfig) (*TaxReport, error) {
	policy, err := conf.ResolvePolicy()
	if err != nil {
		return nil, err
	}
	age, err := conf.ResolveAgeBracket()
	if err != nil {
		return nil, err
	}

	salary := conf.ToSalaryDetails()
	deductions := conf.ToDeductions()
	result, err := tax.NewCalculator(policy, logger).Calculate(salary, deductions, age)
	if err != nil {
		return nil, err
	}

	return &TaxReport{
		AgeBracket: age,
		Salary:     salary,
		Deductions: deductions,
		Result:     result,
	}, nil
}
