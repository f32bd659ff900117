package extrapolate

type MonthlyCostInputs struct {
	Price           float64
	MortgageRatePct float64 // 0 = unknown, DefaultMortgageRate
	AnnualTax       float64 // 0 = unknown, DefaultTaxRate of price
	AnnualInsurance float64
	HOAMonthly      float64 // 0 unless supplied
	AnnualMaint     float64
}

type MonthlyCostResult struct {
	Mortgage             float64  `json:"mortgage"`
	Tax                  float64  `json:"tax"`
	Insurance            float64  `json:"insurance"`
	HOA                  float64  `json:"hoa"`
	Maintenance          float64  `json:"maintenance"`
	Total                float64  `json:"total"`
	DownPayment          float64  `json:"down_payment"`
	RatePct              float64  `json:"rate_pct"`
	RequiredAnnualIncome float64  `json:"required_annual_income"`
	Defaulted            []string `json:"defaulted,omitempty"`
}

// MonthlyCost computes the all-in monthly cost of ownership at a 20%-down
// 30-year loan, plus the gross income needed to keep housing at or under 28%.
func MonthlyCost(in MonthlyCostInputs) MonthlyCostResult {
	var res MonthlyCostResult
	if in.Price <= 0 {
		res.Defaulted = append(res.Defaulted, "price")
		return res
	}
	rate := in.MortgageRatePct
	if rate <= 0 {
		rate = DefaultMortgageRate
		res.Defaulted = append(res.Defaulted, "mortgage_rate")
	}
	tax := in.AnnualTax
	if tax <= 0 {
		tax = in.Price * DefaultTaxRate
		res.Defaulted = append(res.Defaulted, "annual_tax")
	}
	ins := in.AnnualInsurance
	if ins <= 0 {
		ins = in.Price * DefaultInsuranceRate
		res.Defaulted = append(res.Defaulted, "annual_insurance")
	}
	maint := in.AnnualMaint
	if maint <= 0 {
		maint = in.Price * DefaultMaintenanceRate
		res.Defaulted = append(res.Defaulted, "annual_maintenance")
	}

	res.DownPayment = in.Price * DefaultDownPct
	res.RatePct = rate
	res.Mortgage = MonthlyPayment(in.Price-res.DownPayment, rate, LoanTermYears)
	res.Tax = tax / 12
	res.Insurance = ins / 12
	res.HOA = in.HOAMonthly
	res.Maintenance = maint / 12
	res.Total = res.Mortgage + res.Tax + res.Insurance + res.HOA + res.Maintenance
	// housing at no more than 28% of gross income
	res.RequiredAnnualIncome = res.Total * 12 / 0.28
	return res
}

// MonthlyCostFromMerged reads rate, tax and HOA dues from the merged
// provider result map.
func MonthlyCostFromMerged(merged map[string]any, listPrice float64) MonthlyCostInputs {
	in := MonthlyCostInputs{Price: listPrice}
	if v, ok := field(merged, "listing_detail", "list_price"); ok && v > 0 {
		in.Price = v
	}
	if v, ok := field(merged, "fred_mortgage", "rate_30yr"); ok {
		in.MortgageRatePct = v
	}
	if v, ok := field(merged, "attom_tax", "annual_tax"); ok {
		in.AnnualTax = v
	}
	if v, ok := field(merged, "hoa_records", "hoa_monthly"); ok {
		in.HOAMonthly = v
	}
	return in
}
