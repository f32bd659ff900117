// Package extrapolate holds the derived-metric calculators: pure functions
// over already-fetched provider payloads. Every calculator substitutes a
// documented default for a missing input instead of failing, and reports
// which inputs were defaulted so the formatter can caveat the answer.
package extrapolate

// Recipe names. These double as handler ids in the merged result map.
const (
	InvestmentAnalysis = "investment_analysis"
	OverpricedCheck    = "overpriced_check"
	TrueMonthlyCost    = "true_monthly_cost"
	RedFlagScan        = "red_flags"
)

// Config is the declarative recipe: which providers must be fetched before
// the calculator can run.
type Config struct {
	Type     string
	Required []string
}

// Default assumptions shared across calculators. Percentages are of property
// value per year unless noted.
const (
	DefaultVacancyRate     = 0.05
	DefaultTaxRate         = 0.012
	DefaultInsuranceRate   = 0.003
	DefaultMaintenanceRate = 0.01
	DefaultMortgageRate    = 6.5 // percent, used when the rate feed is absent
	DefaultLTV             = 0.75
	DefaultDownPct         = 0.20 // true-monthly-cost financing assumption
	ClosingCostPct         = 0.03
	LoanTermYears          = 30
)

// num coerces the loosely typed values that arrive from JSON payloads and
// mock fixtures.
func num(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// field digs provider payload pv out of the merged result map and returns
// the named field as a float.
func field(merged map[string]any, provider, name string) (float64, bool) {
	pv, ok := merged[provider].(map[string]any)
	if !ok {
		return 0, false
	}
	return num(pv[name])
}

func strField(merged map[string]any, provider, name string) (string, bool) {
	pv, ok := merged[provider].(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := pv[name].(string)
	return s, ok && s != ""
}
