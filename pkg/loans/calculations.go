// Package loans provides home-loan EMI, amortization and prepayment analysis.
package loans

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/mathutil"
)

// ErrNonConvergent is returned when a fixed payment never retires a balance
// within the iteration cap, typically because it does not cover interest.
var ErrNonConvergent = errors.New("loan does not amortize")

// ScheduleRow is one month of an amortization schedule.
type ScheduleRow struct {
	Month     int     `json:"month"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
	Emi       float64 `json:"emi"`
}

// CalculateEMI calculates the equated monthly installment using the standard amortization formula.
func CalculateEMI(principal, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}
	if annualInterestRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / float64(termMonths)
	}

	periodicInterestRate := mathutil.MonthlyRate(annualInterestRate)
	power := math.Pow(1.00+periodicInterestRate, float64(termMonths))
	discountFactor := (power - 1.00) / power
	return principal * periodicInterestRate / discountFactor
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * mathutil.MonthlyRate(annualInterestRate)
}

// AmortizationSchedule walks a level-payment loan for min(limit, termMonths)
// months. Reported balances are floored at zero.
func AmortizationSchedule(principal, annualInterestRate float64, termMonths, limit int) []ScheduleRow {
	emi := CalculateEMI(principal, annualInterestRate, termMonths)
	months := termMonths
	if limit < months {
		months = limit
	}
	if months < 0 {
		months = 0
	}

	schedule := make([]ScheduleRow, 0, months)
	balance := principal
	for month := 1; month <= months; month++ {
		interest := CalculateInterestPayment(balance, annualInterestRate)
		principalPaid := emi - interest
		balance -= principalPaid
		schedule = append(schedule, ScheduleRow{
			Month:     month,
			Principal: principalPaid,
			Interest:  interest,
			Balance:   math.Max(0, balance),
			Emi:       emi,
		})
	}
	return schedule
}

// BalanceAfter returns the outstanding balance once months payments of emi
// have been made against principal.
func BalanceAfter(principal, emi, annualInterestRate float64, months int) float64 {
	balance := principal
	for month := 0; month < months; month++ {
		balance -= emi - CalculateInterestPayment(balance, annualInterestRate)
	}
	return balance
}

// MonthsToPayoff counts the payments of emi needed to retire balance. It
// fails with ErrNonConvergent when the first payment does not exceed that
// month's interest or when maxMonths payments leave a balance.
func MonthsToPayoff(balance, emi, annualInterestRate float64, maxMonths int) (int, error) {
	if balance <= constants.BalanceEpsilon {
		return 0, nil
	}

	firstInterest := CalculateInterestPayment(balance, annualInterestRate)
	if emi <= firstInterest {
		return 0, fmt.Errorf("%w: payment %.2f does not exceed first month interest %.2f on balance %.2f",
			ErrNonConvergent, emi, firstInterest, balance)
	}

	months := 0
	for balance > constants.BalanceEpsilon {
		if months >= maxMonths {
			return months, fmt.Errorf("%w: balance %.2f remains after %d payments of %.2f",
				ErrNonConvergent, balance, maxMonths, emi)
		}
		balance -= emi - CalculateInterestPayment(balance, annualInterestRate)
		months++
	}
	return months, nil
}
