package extrapolate

import "math"

type InvestmentInputs struct {
	PurchasePrice     float64
	MonthlyRent       float64 // 0 means unknown; defaulted from price
	AnnualTax         float64 // 0 means unknown; defaulted from price
	AnnualInsurance   float64
	AnnualMaintenance float64
	MortgageRatePct   float64 // 0 means unknown; DefaultMortgageRate
	NeighborhoodScore float64 // external 0-100 score; <=0 means unknown
}

type InvestmentResult struct {
	AnnualGrossRent      float64  `json:"annual_gross_rent"`
	EffectiveGrossIncome float64  `json:"effective_gross_income"`
	OperatingExpenses    float64  `json:"operating_expenses"`
	NOI                  float64  `json:"noi"`
	CapRate              float64  `json:"cap_rate"`
	MonthlyMortgage      float64  `json:"monthly_mortgage"`
	AnnualDebtService    float64  `json:"annual_debt_service"`
	AnnualCashFlow       float64  `json:"annual_cash_flow"`
	CashOnCash           float64  `json:"cash_on_cash"`
	DSCR                 float64  `json:"dscr"`
	Score                float64  `json:"score"`
	Verdict              string   `json:"verdict"`
	Defaulted            []string `json:"defaulted,omitempty"`
}

// Investment computes the composite investment picture: NOI, cap rate,
// financed cash flow at DefaultLTV, cash-on-cash against down payment plus
// closing costs, and a 0-100 blended score.
func Investment(in InvestmentInputs) InvestmentResult {
	var res InvestmentResult
	if in.PurchasePrice <= 0 {
		res.Verdict = "Insufficient Data"
		res.Defaulted = append(res.Defaulted, "purchase_price")
		return res
	}

	rent := in.MonthlyRent
	if rent <= 0 {
		// 0.7% rule of thumb as a last resort
		rent = in.PurchasePrice * 0.007
		res.Defaulted = append(res.Defaulted, "monthly_rent")
	}
	tax := in.AnnualTax
	if tax <= 0 {
		tax = in.PurchasePrice * DefaultTaxRate
		res.Defaulted = append(res.Defaulted, "annual_tax")
	}
	ins := in.AnnualInsurance
	if ins <= 0 {
		ins = in.PurchasePrice * DefaultInsuranceRate
		res.Defaulted = append(res.Defaulted, "annual_insurance")
	}
	maint := in.AnnualMaintenance
	if maint <= 0 {
		maint = in.PurchasePrice * DefaultMaintenanceRate
		res.Defaulted = append(res.Defaulted, "annual_maintenance")
	}
	rate := in.MortgageRatePct
	if rate <= 0 {
		rate = DefaultMortgageRate
		res.Defaulted = append(res.Defaulted, "mortgage_rate")
	}
	nscore := in.NeighborhoodScore
	if nscore <= 0 {
		nscore = 50
		res.Defaulted = append(res.Defaulted, "neighborhood_score")
	}

	res.AnnualGrossRent = rent * 12
	res.EffectiveGrossIncome = res.AnnualGrossRent * (1 - DefaultVacancyRate)
	res.OperatingExpenses = tax + ins + maint
	res.NOI = res.EffectiveGrossIncome - res.OperatingExpenses
	res.CapRate = res.NOI / in.PurchasePrice * 100

	loan := in.PurchasePrice * DefaultLTV
	down := in.PurchasePrice - loan
	res.MonthlyMortgage = MonthlyPayment(loan, rate, LoanTermYears)
	res.AnnualDebtService = res.MonthlyMortgage * 12
	res.AnnualCashFlow = res.NOI - res.AnnualDebtService
	invested := down + in.PurchasePrice*ClosingCostPct
	res.CashOnCash = res.AnnualCashFlow / invested * 100
	if res.AnnualDebtService > 0 {
		res.DSCR = res.NOI / res.AnnualDebtService
	}

	res.Score = 0.4*math.Min(res.CapRate*10, 100) +
		0.4*math.Min((res.CashOnCash+10)*5, 100) +
		0.2*nscore

	switch {
	case res.Score > 70:
		res.Verdict = "Good Investment"
	case res.Score > 50:
		res.Verdict = "Average Investment"
	default:
		res.Verdict = "Below Average Investment"
	}
	return res
}

// InvestmentFromMerged pulls calculator inputs out of the merged provider
// result map, preferring structured provider fields and falling back to the
// known list price.
func InvestmentFromMerged(merged map[string]any, listPrice float64) InvestmentInputs {
	in := InvestmentInputs{PurchasePrice: listPrice}
	if v, ok := field(merged, "listing_detail", "list_price"); ok && v > 0 {
		in.PurchasePrice = v
	}
	if in.PurchasePrice <= 0 {
		if v, ok := field(merged, "attom_avm", "value"); ok {
			in.PurchasePrice = v
		}
	}
	if v, ok := field(merged, "rent_estimate", "rent"); ok {
		in.MonthlyRent = v
	}
	if v, ok := field(merged, "attom_tax", "annual_tax"); ok {
		in.AnnualTax = v
	}
	if v, ok := field(merged, "fred_mortgage", "rate_30yr"); ok {
		in.MortgageRatePct = v
	}
	if v, ok := field(merged, "neighborhood_score", "investment_score"); ok {
		in.NeighborhoodScore = v
	}
	return in
}
