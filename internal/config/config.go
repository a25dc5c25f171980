// Package config defines the data structures related to configuration and
// includes functions for loading and checking a calculator scenario file.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/tax"
	"github.com/iwvelando/fincalc/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds one scenario for each calculator. Sections left out of
// the file stay nil and are skipped.
type Configuration struct {
	Logging  LoggingConfig   `yaml:"logging,omitempty"`
	Output   OutputConfig    `yaml:"output,omitempty"`
	Tax      *TaxConfig      `yaml:"tax,omitempty"`
	Sip      *SipConfig      `yaml:"sip,omitempty"`
	HomeLoan *HomeLoanConfig `yaml:"homeLoan,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// TaxConfig describes a salary to compare under both regimes. Age is used
// only when AgeBracket is empty.
type TaxConfig struct {
	PolicyYear string           `yaml:"policyYear,omitempty"`
	AgeBracket string           `yaml:"ageBracket,omitempty"`
	Age        int              `yaml:"age,omitempty"`
	Salary     SalaryConfig     `yaml:"salary"`
	Deductions DeductionsConfig `yaml:"deductions,omitempty"`
}

// SalaryConfig holds annual salary components.
type SalaryConfig struct {
	BasicSalary     float64 `yaml:"basicSalary"`
	DA              float64 `yaml:"da,omitempty"`
	HRA             float64 `yaml:"hra,omitempty"`
	Bonus           float64 `yaml:"bonus,omitempty"`
	OtherAllowances float64 `yaml:"otherAllowances,omitempty"`
}

// DeductionsConfig holds claimed deductions before caps are applied.
type DeductionsConfig struct {
	Section80C       float64 `yaml:"section80C,omitempty"`
	Section80D       float64 `yaml:"section80D,omitempty"`
	HomeLoanInterest float64 `yaml:"homeLoanInterest,omitempty"`
	NPS              float64 `yaml:"nps,omitempty"`
	OtherDeductions  float64 `yaml:"otherDeductions,omitempty"`
}

// SipConfig describes an investment plan. An existing holding is included
// whenever ExistingAmount is positive.
type SipConfig struct {
	InvestmentType   string  `yaml:"investmentType"` // sip, lumpsum
	MonthlyAmount    float64 `yaml:"monthlyAmount,omitempty"`
	LumpSumAmount    float64 `yaml:"lumpSumAmount,omitempty"`
	Duration         int     `yaml:"duration"` // years
	ExpectedReturn   float64 `yaml:"expectedReturn"`
	ExistingAmount   float64 `yaml:"existingAmount,omitempty"`
	ExistingDuration int     `yaml:"existingDuration,omitempty"` // years
}

// HomeLoanConfig describes a loan and the early-repayment plans to compare.
type HomeLoanConfig struct {
	LoanAmount           float64 `yaml:"loanAmount"`
	InterestRate         float64 `yaml:"interestRate"`
	TenureYears          int     `yaml:"tenureYears"`
	PrepaymentAmount     float64 `yaml:"prepaymentAmount,omitempty"`
	PrepaymentStartMonth int     `yaml:"prepaymentStartMonth,omitempty"`
	ExtraEmiCount        int     `yaml:"extraEmiCount,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}
	return decode(v)
}

// newViper returns an isolated viper instance so concurrent loads do not
// share state. Environment variables such as FINCALC_OUTPUT_FORMAT override
// keys present in the file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix("FINCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Hard errors surface when the calculators run.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Tax == nil && c.Sip == nil && c.HomeLoan == nil {
		warnings = append(warnings, "no tax, sip or homeLoan section configured; nothing to calculate")
	}

	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, fmt.Sprintf("output format: %v; falling back to %s", err, constants.OutputFormatPretty))
		}
	}

	if c.Tax != nil {
		warnings = append(warnings, c.Tax.warnings()...)
	}
	if c.Sip != nil {
		warnings = append(warnings, c.Sip.warnings()...)
	}
	if c.HomeLoan != nil {
		warnings = append(warnings, c.HomeLoan.warnings()...)
	}

	return warnings
}

func (t *TaxConfig) warnings() []string {
	var warnings []string
	if t.PolicyYear != "" {
		if _, err := tax.LookupPolicy(t.PolicyYear); err != nil {
			warnings = append(warnings, fmt.Sprintf("tax: policy year %q is unknown; available: %s",
				t.PolicyYear, strings.Join(tax.PolicyYears(), ", ")))
		}
	}
	if t.AgeBracket != "" && t.Age > 0 {
		warnings = append(warnings, fmt.Sprintf("tax: both age (%d) and ageBracket (%s) are set; ageBracket is used", t.Age, t.AgeBracket))
	}
	if t.Salary.HRA > 0 && t.Salary.BasicSalary == 0 {
		warnings = append(warnings, "tax: HRA without basic salary earns no old-regime exemption")
	}
	return warnings
}

func (s *SipConfig) warnings() []string {
	var warnings []string
	switch strings.ToLower(s.InvestmentType) {
	case constants.InvestmentTypeSIP:
		if s.LumpSumAmount > 0 {
			warnings = append(warnings, "sip: lumpSumAmount is ignored for a monthly SIP")
		}
	case constants.InvestmentTypeLumpSum:
		if s.MonthlyAmount > 0 {
			warnings = append(warnings, "sip: monthlyAmount is ignored for a lump-sum investment")
		}
	}
	if s.ExistingDuration > 0 && s.ExistingAmount == 0 {
		warnings = append(warnings, "sip: existingDuration is set without an existingAmount")
	}
	return warnings
}

func (h *HomeLoanConfig) warnings() []string {
	var warnings []string
	termMonths := h.TenureYears * constants.MonthsPerYear
	if h.PrepaymentStartMonth != 0 && h.PrepaymentAmount == 0 {
		warnings = append(warnings, "homeLoan: prepaymentStartMonth is set without a prepaymentAmount")
	}
	if h.PrepaymentAmount > 0 && termMonths > 0 && h.PrepaymentStartMonth > termMonths {
		warnings = append(warnings, fmt.Sprintf("homeLoan: prepaymentStartMonth %d is past the %d-month tenure",
			h.PrepaymentStartMonth, termMonths))
	}
	if h.ExtraEmiCount >= termMonths && termMonths > 0 {
		warnings = append(warnings, fmt.Sprintf("homeLoan: %d extra EMIs cover the whole %d-month tenure",
			h.ExtraEmiCount, termMonths))
	}
	return warnings
}
