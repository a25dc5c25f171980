// Package constants provides shared constants for the fincalc application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPlaces is the number of decimal places kept when rounding currency
	DecimalPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// ScheduleDisplayMonths is the number of amortization rows reported with a home loan result
	ScheduleDisplayMonths = 12

	// DefaultPrepaymentStartMonth is the month a one-time prepayment lands on when unspecified
	DefaultPrepaymentStartMonth = 12

	// PayoffIterationFactor bounds payoff simulations to this multiple of the original term
	PayoffIterationFactor = 2

	// BalanceEpsilon absorbs floating residue left on a loan balance after its final payment
	BalanceEpsilon = 1e-3

	// MaxTenureYears is the longest loan tenure accepted
	MaxTenureYears = 50
)

// Investment types
const (
	// InvestmentTypeSIP is a monthly systematic investment plan
	InvestmentTypeSIP = "sip"

	// InvestmentTypeLumpSum is a one-time investment
	InvestmentTypeLumpSum = "lumpsum"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default scenario file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultRequestsPerSecond is the default sustained request rate per client
	DefaultRequestsPerSecond = 5.0

	// DefaultRequestBurst is the default burst size per client
	DefaultRequestBurst = 10

	// DefaultCacheTTL is the default lifetime of a cached calculation
	DefaultCacheTTL = "10m"
)
