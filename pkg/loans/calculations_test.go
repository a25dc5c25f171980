package loans

import (
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/fincalc/pkg/testutil"
)

func TestCalculateEMI(t *testing.T) {
	tests := []struct {
		name               string
		principal          float64
		annualInterestRate float64
		termMonths         int
		expected           float64
		tolerance          float64
	}{
		{
			name:               "Twenty year home loan",
			principal:          5000000,
			annualInterestRate: 8.5,
			termMonths:         240,
			expected:           43391.19,
			tolerance:          0.5,
		},
		{
			name:               "One year loan",
			principal:          1000000,
			annualInterestRate: 10,
			termMonths:         12,
			expected:           87915.89,
			tolerance:          0.01,
		},
		{
			name:               "Zero interest loan",
			principal:          1200000,
			annualInterestRate: 0,
			termMonths:         120,
			expected:           10000,
			tolerance:          0,
		},
		{
			name:               "Zero term",
			principal:          1000,
			annualInterestRate: 5,
			termMonths:         0,
			expected:           0,
			tolerance:          0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateEMI(tt.principal, tt.annualInterestRate, tt.termMonths)
			testutil.AssertClose(t, "CalculateEMI()", result, tt.expected, tt.tolerance)
		})
	}
}

func TestZeroRateEMIIsExact(t *testing.T) {
	for _, tc := range []struct {
		principal float64
		months    int
	}{{1000000, 240}, {777777, 7}, {1, 3}} {
		if got, want := CalculateEMI(tc.principal, 0, tc.months), tc.principal/float64(tc.months); got != want {
			t.Errorf("CalculateEMI(%v, 0, %d) = %v, expected exactly %v", tc.principal, tc.months, got, want)
		}
	}
}

func TestEMICoversPrincipal(t *testing.T) {
	for _, principal := range []float64{100000, 2500000, 50000000} {
		for _, rate := range []float64{0, 0.5, 6.75, 8.5, 12, 18} {
			for _, months := range []int{1, 12, 60, 240, 360} {
				emi := CalculateEMI(principal, rate, months)
				total := emi * float64(months)
				if total < principal-1e-6 {
					t.Errorf("EMI %.4f x %d = %.4f repays less than principal %.2f at %.2f%%",
						emi, months, total, principal, rate)
				}
			}
		}
	}
}

func TestCalculateInterestPayment(t *testing.T) {
	tests := []struct {
		name               string
		remainingPrincipal float64
		annualInterestRate float64
		expected           float64
	}{
		{"Home loan first month", 5000000, 8.5, 35416.67},
		{"Twelve percent", 15000, 12, 150},
		{"Zero interest", 10000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateInterestPayment(tt.remainingPrincipal, tt.annualInterestRate)
			testutil.AssertClose(t, "CalculateInterestPayment()", result, tt.expected, 0.01)
		})
	}
}

func TestAmortizationScheduleFirstYear(t *testing.T) {
	schedule := AmortizationSchedule(5000000, 8.5, 240, 12)
	if len(schedule) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(schedule))
	}

	first := schedule[0]
	if first.Month != 1 {
		t.Errorf("first month = %d, expected 1", first.Month)
	}
	testutil.AssertClose(t, "first interest", first.Interest, 35416.67, 0.01)
	testutil.AssertClose(t, "first principal", first.Principal, 7974.50, 0.01)
	testutil.AssertClose(t, "first balance", first.Balance, 4992025.50, 0.01)

	for i, row := range schedule {
		testutil.AssertClose(t, "row split", row.Principal+row.Interest, row.Emi, 1e-6)
		if i > 0 {
			if row.Principal <= schedule[i-1].Principal {
				t.Errorf("month %d principal %.2f did not grow", row.Month, row.Principal)
			}
			if row.Balance >= schedule[i-1].Balance {
				t.Errorf("month %d balance %.2f did not fall", row.Month, row.Balance)
			}
		}
	}
}

func TestAmortizationScheduleShortTerm(t *testing.T) {
	schedule := AmortizationSchedule(60000, 9, 6, 12)
	if len(schedule) != 6 {
		t.Fatalf("expected 6 rows for a six month loan, got %d", len(schedule))
	}
	if schedule[5].Balance < 0 {
		t.Errorf("display balance went negative: %v", schedule[5].Balance)
	}
	testutil.AssertClose(t, "final balance", schedule[5].Balance, 0, 1e-6)
}

func TestFullScheduleRetiresPrincipal(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		months    int
	}{
		{"Home loan", 5000000, 8.5, 240},
		{"Zero rate", 1200000, 0, 120},
		{"High rate", 300000, 18, 36},
		{"Thirty years", 10000000, 9.25, 360},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := AmortizationSchedule(tt.principal, tt.rate, tt.months, tt.months)
			if len(schedule) != tt.months {
				t.Fatalf("expected %d rows, got %d", tt.months, len(schedule))
			}

			principalSum, interestSum := 0.0, 0.0
			for _, row := range schedule {
				principalSum += row.Principal
				interestSum += row.Interest
			}
			emi := CalculateEMI(tt.principal, tt.rate, tt.months)

			testutil.AssertClose(t, "principal repaid", principalSum, tt.principal, 1e-3)
			testutil.AssertClose(t, "final balance", schedule[len(schedule)-1].Balance, 0, 1e-3)
			testutil.AssertClose(t, "interest paid", interestSum, emi*float64(tt.months)-tt.principal, 1e-3)
		})
	}
}

func TestBalanceAfter(t *testing.T) {
	emi := CalculateEMI(1200000, 0, 120)
	testutil.AssertClose(t, "no payments", BalanceAfter(1200000, emi, 0, 0), 1200000, 0)
	testutil.AssertClose(t, "eleven payments", BalanceAfter(1200000, emi, 0, 11), 1090000, 1e-9)

	schedule := AmortizationSchedule(5000000, 8.5, 240, 12)
	emi = CalculateEMI(5000000, 8.5, 240)
	testutil.AssertClose(t, "matches schedule", BalanceAfter(5000000, emi, 8.5, 12), schedule[11].Balance, 1e-6)
}

func TestMonthsToPayoff(t *testing.T) {
	homeEmi := CalculateEMI(5000000, 8.5, 240)

	tests := []struct {
		name     string
		balance  float64
		emi      float64
		rate     float64
		expected int
	}{
		{"Full term", 5000000, homeEmi, 8.5, 240},
		{"Zero rate exact division", 970000, 10000, 0, 97},
		{"Zero rate with remainder", 975000, 10000, 0, 98},
		{"Nothing owed", 0, 10000, 8.5, 0},
		{"Residue below epsilon", 0.0001, 10000, 8.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			months, err := MonthsToPayoff(tt.balance, tt.emi, tt.rate, 480)
			if err != nil {
				t.Fatalf("MonthsToPayoff() error = %v", err)
			}
			if months != tt.expected {
				t.Errorf("MonthsToPayoff() = %d, expected %d", months, tt.expected)
			}
		})
	}
}

func TestMonthsToPayoffNonConvergent(t *testing.T) {
	tests := []struct {
		name      string
		balance   float64
		emi       float64
		rate      float64
		maxMonths int
	}{
		{"Payment equals interest", 1200000, 12000, 12, 480},
		{"Payment below interest", 1200000, 5000, 12, 480},
		{"Cap reached", 1000000, 10000, 0, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MonthsToPayoff(tt.balance, tt.emi, tt.rate, tt.maxMonths)
			if !errors.Is(err, ErrNonConvergent) {
				t.Errorf("MonthsToPayoff() error = %v, expected ErrNonConvergent", err)
			}
		})
	}
}

func TestScheduleRowsAreFinite(t *testing.T) {
	for _, row := range AmortizationSchedule(2500000, 0, 180, 12) {
		for _, v := range []float64{row.Principal, row.Interest, row.Balance, row.Emi} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("month %d has non-finite value %v", row.Month, v)
			}
		}
	}
}
