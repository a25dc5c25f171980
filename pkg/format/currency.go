// Package format renders amounts the way Indian statements print them.
package format

import (
	"math"
	"strings"

	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/shopspring/decimal"
)

// Currency returns a rupee string with Indian digit grouping (e.g., "-₹12,34,567.89").
func Currency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "₹" + NumericCurrency(amount)
	}
	formatted := groupIndian(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-₹" + formatted
	}
	return "₹" + formatted
}

// NumericCurrency is Currency without the rupee sign (e.g., "-12,34,567.89").
func NumericCurrency(amount float64) string {
	switch {
	case math.IsNaN(amount):
		return "NaN"
	case math.IsInf(amount, 1):
		return "∞"
	case math.IsInf(amount, -1):
		return "-∞"
	}
	formatted := groupIndian(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-" + formatted
	}
	return formatted
}

// Lakhs abbreviates large amounts as crores or lakhs with two decimals
// (e.g., "₹1.25 Cr", "₹43.39 L"). Smaller amounts fall back to Currency.
func Lakhs(amount float64) string {
	abs := math.Abs(amount)
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	switch {
	case abs >= 1e7:
		return sign + "₹" + decimal.NewFromFloat(abs/1e7).StringFixed(constants.DecimalPlaces) + " Cr"
	case abs >= 1e5:
		return sign + "₹" + decimal.NewFromFloat(abs/1e5).StringFixed(constants.DecimalPlaces) + " L"
	default:
		return Currency(amount)
	}
}

// Percent renders a rate such as 8.5 as "8.50%".
func Percent(rate float64) string {
	return decimal.NewFromFloat(rate).StringFixed(constants.DecimalPlaces) + "%"
}

// groupIndian places the first separator after three digits and every two
// digits after that.
func groupIndian(value float64) string {
	formatted := decimal.NewFromFloat(value).StringFixed(constants.DecimalPlaces)
	intPart, decPart, _ := strings.Cut(formatted, ".")

	if len(intPart) <= 3 {
		return intPart + "." + decPart
	}

	head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)
	return strings.Join(groups, ",") + "," + tail + "." + decPart
}
