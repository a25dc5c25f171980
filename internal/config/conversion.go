package config

import (
	"strings"

	"github.com/iwvelando/fincalc/pkg/loans"
	"github.com/iwvelando/fincalc/pkg/sip"
	"github.com/iwvelando/fincalc/pkg/tax"
)

// ToSalaryDetails converts the salary section to engine input.
func (t *TaxConfig) ToSalaryDetails() tax.SalaryDetails {
	return tax.SalaryDetails{
		BasicSalary:     t.Salary.BasicSalary,
		DA:              t.Salary.DA,
		HRA:             t.Salary.HRA,
		Bonus:           t.Salary.Bonus,
		OtherAllowances: t.Salary.OtherAllowances,
	}
}

// ToDeductions converts the deductions section to engine input.
func (t *TaxConfig) ToDeductions() tax.Deductions {
	return tax.Deductions{
		Section80C:       t.Deductions.Section80C,
		Section80D:       t.Deductions.Section80D,
		HomeLoanInterest: t.Deductions.HomeLoanInterest,
		NPS:              t.Deductions.NPS,
		OtherDeductions:  t.Deductions.OtherDeductions,
	}
}

// ResolveAgeBracket prefers an explicit bracket and otherwise derives one
// from Age. With neither set the taxpayer is below 60.
func (t *TaxConfig) ResolveAgeBracket() (tax.AgeBracket, error) {
	if t.AgeBracket == "" && t.Age > 0 {
		return tax.AgeBracketForAge(t.Age), nil
	}
	return tax.ParseAgeBracket(t.AgeBracket)
}

// ResolvePolicy returns the configured policy year or the default one.
func (t *TaxConfig) ResolvePolicy() (tax.Policy, error) {
	return tax.LookupPolicy(t.PolicyYear)
}

// ToSipInput converts the sip section to engine input.
func (s *SipConfig) ToSipInput() sip.Input {
	return sip.Input{
		InvestmentType:        strings.ToLower(s.InvestmentType),
		MonthlyAmount:         s.MonthlyAmount,
		LumpSumAmount:         s.LumpSumAmount,
		Duration:              s.Duration,
		ExpectedReturn:        s.ExpectedReturn,
		HasExistingInvestment: s.ExistingAmount > 0,
		ExistingAmount:        s.ExistingAmount,
		ExistingDuration:      s.ExistingDuration,
	}
}

// ToHomeLoanInputs converts the homeLoan section to engine input.
func (h *HomeLoanConfig) ToHomeLoanInputs() loans.HomeLoanInputs {
	return loans.HomeLoanInputs{
		LoanAmount:           h.LoanAmount,
		InterestRate:         h.InterestRate,
		TenureYears:          h.TenureYears,
		PrepaymentAmount:     h.PrepaymentAmount,
		PrepaymentStartMonth: h.PrepaymentStartMonth,
		ExtraEmiCount:        h.ExtraEmiCount,
	}
}
