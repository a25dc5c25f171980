// Package output renders calculator reports for the terminal or for other tools.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/iwvelando/fincalc/internal/calculator"
	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/format"
	"github.com/iwvelando/fincalc/pkg/loans"
	"github.com/iwvelando/fincalc/pkg/mathutil"
	"github.com/iwvelando/fincalc/pkg/tax"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Write renders report in the named format; unknown formats fall back to pretty.
func Write(w io.Writer, outputFormat string, report calculator.Report) error {
	switch outputFormat {
	case constants.OutputFormatCSV:
		return CsvFormat(w, report)
	case constants.OutputFormatJSON:
		return JSONFormat(w, report)
	default:
		return PrettyFormat(w, report)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable summary.
func PrettyFormat(w io.Writer, report calculator.Report) error {
	p := message.NewPrinter(language.English)
	pw := &printer{w: w, p: p}

	if report.Tax != nil {
		pw.tax(report.Tax)
	}
	if report.Sip != nil {
		pw.sip(report.Sip)
	}
	if report.HomeLoan != nil {
		pw.homeLoan(report.HomeLoan)
	}
	return pw.err
}

// printer remembers the first write error so the section renderers stay linear.
type printer struct {
	w   io.Writer
	p   *message.Printer
	err error
}

func (pw *printer) printf(layout string, args ...interface{}) {
	if pw.err != nil {
		return
	}
	_, pw.err = pw.p.Fprintf(pw.w, layout, args...)
}

func (pw *printer) line(label, value string) {
	pw.printf("%-28s %s\n", label, value)
}

func (pw *printer) tax(r *calculator.TaxReport) {
	pw.printf("--- Income tax (%s, age %s) ---\n", r.Result.PolicyYear, r.AgeBracket)
	pw.printf("%-20s | %18s | %18s\n", "", "Old regime", "New regime")
	pw.printf("%-20s | %18s | %18s\n", "____", "__________", "__________")
	rows := []struct {
		label string
		value func(tax.Calculation) float64
	}{
		{"Gross salary", func(c tax.Calculation) float64 { return c.GrossSalary }},
		{"Total deductions", func(c tax.Calculation) float64 { return c.TotalDeductions }},
		{"Taxable income", func(c tax.Calculation) float64 { return c.TaxableIncome }},
		{"Tax before rebate", func(c tax.Calculation) float64 { return c.TaxBeforeRebate }},
		{"Rebate (87A)", func(c tax.Calculation) float64 { return c.Rebate }},
		{"Income tax", func(c tax.Calculation) float64 { return c.IncomeTax }},
		{"Cess", func(c tax.Calculation) float64 { return c.Cess }},
		{"Total tax", func(c tax.Calculation) float64 { return c.TotalTax }},
		{"Net salary", func(c tax.Calculation) float64 { return c.NetSalary }},
	}
	for _, row := range rows {
		pw.printf("%-20s | %18s | %18s\n", row.label,
			format.Currency(row.value(r.Result.OldRegime)), format.Currency(row.value(r.Result.NewRegime)))
	}
	pw.printf("%-20s | %18s | %18s\n", "Effective rate",
		format.Percent(r.Result.OldRegime.EffectiveRate), format.Percent(r.Result.NewRegime.EffectiveRate))

	pw.printf("Recommendation: %s regime, saving %s\n\n", r.Result.Recommendation, format.Currency(math.Abs(r.Result.Savings)))
}

func (pw *printer) sip(r *calculator.SipReport) {
	in, res := r.Input, r.Result
	if in.InvestmentType == constants.InvestmentTypeLumpSum {
		pw.printf("--- Lump sum of %s for %d years at %s ---\n", format.Currency(in.LumpSumAmount), in.Duration, format.Percent(in.ExpectedReturn))
	} else {
		pw.printf("--- SIP of %s/month for %d years at %s ---\n", format.Currency(in.MonthlyAmount), in.Duration, format.Percent(in.ExpectedReturn))
	}
	pw.line("Total investment", format.Currency(res.TotalInvestment))
	pw.line("Future value", format.Currency(res.FutureValue))
	pw.line("Wealth gained", format.Currency(res.Wealth))
	if res.ExistingInvestment > 0 {
		pw.line("Existing investment", format.Currency(res.ExistingInvestment))
		pw.line("Existing value", format.Currency(res.ExistingValue))
		pw.line("Combined investment", format.Currency(res.CombinedInvestment))
		pw.line("Combined wealth gained", format.Currency(res.CombinedWealth))
	}
	pw.line("Total future value", format.Currency(res.TotalFutureValue)+" ("+format.Lakhs(res.TotalFutureValue)+")")
	pw.printf("\n")
}

func (pw *printer) homeLoan(r *calculator.HomeLoanReport) {
	in, res := r.Inputs, r.Results
	pw.printf("--- Home loan of %s at %s for %d years ---\n", format.Currency(in.LoanAmount), format.Percent(in.InterestRate), in.TenureYears)
	pw.line("Monthly EMI", format.Currency(res.MonthlyEmi))
	pw.line("Total interest", format.Currency(res.TotalInterest))
	pw.line("Total amount", format.Currency(res.TotalAmount))

	pw.printf("\nMonth | %14s | %14s | %16s\n", "Principal", "Interest", "Balance")
	pw.printf("_____ | %14s | %14s | %16s\n", "_________", "________", "_______")
	for _, row := range res.AmortizationSchedule {
		pw.printf("%5d | %14s | %14s | %16s\n", row.Month,
			format.Currency(row.Principal), format.Currency(row.Interest), format.Currency(row.Balance))
	}

	if pre := res.WithPrepayment; pre != nil {
		pw.printf("\nPrepayment of %s in month %d (outstanding %s)\n", format.Currency(in.PrepaymentAmount), pre.StartMonth, format.Currency(pre.OutstandingBalance))
		pw.line("  Reduced EMI", format.Currency(pre.NewEmi))
		pw.line("  Or reduced tenure", pw.p.Sprintf("%.2f years (%d months left)", pre.NewTenure, pre.MonthsRemaining))
		pw.line("  Time saved", pw.p.Sprintf("%.2f years", pre.TimeReduced))
		pw.line("  Interest saved", format.Currency(pre.InterestSaved))
	}
	if extra := res.WithExtraEmi; extra != nil {
		pw.printf("\n%d extra EMIs paid upfront (%s)\n", in.ExtraEmiCount, format.Currency(extra.ExtraAmount))
		pw.line("  New tenure", pw.p.Sprintf("%.2f years", extra.NewTenure))
		pw.line("  Time saved", pw.p.Sprintf("%.2f years", extra.TimeReduced))
		pw.line("  Interest saved", format.Currency(extra.InterestSaved))
	}
	pw.printf("\n")
}

// CsvFormat outputs one "section","metric","value" record per figure.
func CsvFormat(w io.Writer, report calculator.Report) error {
	cw := csv.NewWriter(w)
	records := [][]string{{"section", "metric", "value"}}

	if r := report.Tax; r != nil {
		for _, regime := range []struct {
			name string
			calc tax.Calculation
		}{{"old", r.Result.OldRegime}, {"new", r.Result.NewRegime}} {
			section := "tax " + regime.name + " regime"
			records = append(records,
				record(section, "grossSalary", regime.calc.GrossSalary),
				record(section, "totalDeductions", regime.calc.TotalDeductions),
				record(section, "taxableIncome", regime.calc.TaxableIncome),
				record(section, "incomeTax", regime.calc.IncomeTax),
				record(section, "cess", regime.calc.Cess),
				record(section, "totalTax", regime.calc.TotalTax),
				record(section, "netSalary", regime.calc.NetSalary),
				record(section, "effectiveRate", regime.calc.EffectiveRate),
			)
		}
		records = append(records,
			[]string{"tax", "recommendation", string(r.Result.Recommendation)},
			record("tax", "savings", r.Result.Savings),
		)
	}

	if r := report.Sip; r != nil {
		records = append(records,
			record("sip", "totalInvestment", r.Result.TotalInvestment),
			record("sip", "futureValue", r.Result.FutureValue),
			record("sip", "wealth", r.Result.Wealth),
			record("sip", "existingValue", r.Result.ExistingValue),
			record("sip", "totalFutureValue", r.Result.TotalFutureValue),
		)
	}

	if r := report.HomeLoan; r != nil {
		res := r.Results
		records = append(records,
			record("homeLoan", "monthlyEmi", res.MonthlyEmi),
			record("homeLoan", "totalInterest", res.TotalInterest),
			record("homeLoan", "totalAmount", res.TotalAmount),
		)
		for _, row := range res.AmortizationSchedule {
			records = append(records, scheduleRecords(row)...)
		}
		if pre := res.WithPrepayment; pre != nil {
			records = append(records,
				record("homeLoan prepayment", "newEmi", pre.NewEmi),
				record("homeLoan prepayment", "newTenure", pre.NewTenure),
				record("homeLoan prepayment", "timeReduced", pre.TimeReduced),
				record("homeLoan prepayment", "totalSavings", pre.TotalSavings),
			)
		}
		if extra := res.WithExtraEmi; extra != nil {
			records = append(records,
				record("homeLoan extraEmi", "extraAmount", extra.ExtraAmount),
				record("homeLoan extraEmi", "newTenure", extra.NewTenure),
				record("homeLoan extraEmi", "timeReduced", extra.TimeReduced),
				record("homeLoan extraEmi", "totalSavings", extra.TotalSavings),
			)
		}
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func record(section, metric string, value float64) []string {
	return []string{section, metric, strconv.FormatFloat(mathutil.Round(value), 'f', constants.DecimalPlaces, 64)}
}

func scheduleRecords(row loans.ScheduleRow) [][]string {
	section := "homeLoan schedule"
	month := "month " + strconv.Itoa(row.Month) + " "
	return [][]string{
		record(section, month+"principal", row.Principal),
		record(section, month+"interest", row.Interest),
		record(section, month+"balance", row.Balance),
	}
}

// JSONFormat outputs the report as indented JSON.
func JSONFormat(w io.Writer, report calculator.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("writing json: %w", err)
	}
	return nil
}
