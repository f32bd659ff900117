package format

import (
	"fmt"
	"strings"

	"github.com/yourorg/ask-api/internal/classify"
	"github.com/yourorg/ask-api/internal/property"
)

var templates = map[classify.Category]template{
	classify.Distance:             distanceTpl,
	classify.Amenities:            amenitiesTpl,
	classify.Commute:              commuteTpl,
	classify.Valuation:            valuationTpl,
	classify.Investment:           investmentTpl,
	classify.MonthlyCost:          monthlyCostTpl,
	classify.MortgageRate:         mortgageRateTpl,
	classify.EnvironmentalRisk:    envRiskTpl,
	classify.EnvironmentalQuality: envQualityTpl,
	classify.Safety:               safetyTpl,
	classify.NeighborhoodVibe:     aiAnswerTpl,
	classify.Demographics:         demographicsTpl,
	classify.SchoolsCat:           schoolsTpl,
	classify.PropertyFeatures:     featuresTpl,
	classify.PropertyCondition:    conditionTpl,
	classify.PropertyHistory:      historyTpl,
	classify.PropertyLegal:        legalTpl,
	classify.Utilities:            utilitiesTpl,
	classify.Comparison:           comparisonTpl,
	classify.RedFlags:             redFlagsTpl,
	classify.General:              aiAnswerTpl,
}

func distanceTpl(data map[string]any, _ property.Context) (string, bool) {
	m, ok := sub(data, "maps_distance")
	if !ok {
		return "", false
	}
	miles, ok := fnum(m, "distance_miles")
	if !ok {
		return "", false
	}
	dest := fstr(m, "destination")
	if dest == "" {
		dest = "that destination"
	}
	line := fmt.Sprintf("**%s** is about **%.1f miles** away", dest, miles)
	if mins, ok := fnum(m, "duration_min"); ok {
		line += fmt.Sprintf(" — roughly a %d minute drive", int(mins))
	}
	return line + ".", true
}

func amenitiesTpl(data map[string]any, _ property.Context) (string, bool) {
	var b strings.Builder
	wrote := false
	if m, ok := sub(data, "maps_nearby"); ok {
		if places := mapSlice(m, "places"); len(places) > 0 {
			b.WriteString("Closest amenities:\n")
			for _, p := range places {
				d, _ := fnum(p, "distance_miles")
				fmt.Fprintf(&b, "- **%s** (%s) — %.1f mi\n", fstr(p, "name"), fstr(p, "type"), d)
			}
			wrote = true
		}
	}
	if m, ok := sub(data, "walkscore"); ok {
		if ws, ok := fnum(m, "walk_score"); ok {
			fmt.Fprintf(&b, "\nWalk Score **%d**", int(ws))
			if bs, ok := fnum(m, "bike_score"); ok {
				fmt.Fprintf(&b, ", Bike Score **%d**", int(bs))
			}
			b.WriteString(".")
			wrote = true
		}
	}
	return strings.TrimSpace(b.String()), wrote
}

func commuteTpl(data map[string]any, _ property.Context) (string, bool) {
	m, ok := sub(data, "transit_commute")
	if !ok {
		return "", false
	}
	drive, dok := fnum(m, "drive_min")
	transit, tok := fnum(m, "transit_min")
	if !dok && !tok {
		return "", false
	}
	var parts []string
	if dok {
		parts = append(parts, fmt.Sprintf("about **%d min driving**", int(drive)))
	}
	if tok {
		parts = append(parts, fmt.Sprintf("**%d min by transit**", int(transit)))
	}
	line := "Typical commute downtown: " + strings.Join(parts, ", ") + "."
	if routes, ok := strSlice(m, "routes"); ok && len(routes) > 0 {
		line += " Nearby routes: " + strings.Join(routes, ", ") + "."
	}
	return line, true
}

func valuationTpl(data map[string]any, _ property.Context) (string, bool) {
	m, ok := sub(data, "overpriced_check")
	if !ok {
		return "", false
	}
	verdict := fstr(m, "verdict")
	if verdict == "" || verdict == "Insufficient Data" {
		return "", false
	}
	list, _ := fnum(m, "list_price")
	avm, _ := fnum(m, "avm_value")
	diff, _ := fnum(m, "difference")
	pdiff, _ := fnum(m, "percent_diff")
	var b strings.Builder
	fmt.Fprintf(&b, "**%s.** Listed at %s against an estimated value of %s", verdict, usd(list), usd(avm))
	if low, ok := fnum(m, "avm_low"); ok {
		if high, ok2 := fnum(m, "avm_high"); ok2 {
			fmt.Fprintf(&b, " (range %s–%s)", usd(low), usd(high))
		}
	}
	fmt.Fprintf(&b, ".\n- Difference: %s (%s)", usd(diff), pct(pdiff))
	if offer, ok := fnum(m, "suggested_offer"); ok && offer > 0 {
		fmt.Fprintf(&b, "\n- A reasonable opening offer would be around %s", usd(offer))
	}
	return b.String(), true
}

func investmentTpl(data map[string]any, _ property.Context) (string, bool) {
	m, ok := sub(data, "investment_analysis")
	if !ok {
		return "", false
	}
	verdict := fstr(m, "verdict")
	if verdict == "" || verdict == "Insufficient Data" {
		return "", false
	}
	score, _ := fnum(m, "score")
	cap, _ := fnum(m, "cap_rate")
	coc, _ := fnum(m, "cash_on_cash")
	noi, _ := fnum(m, "noi")
	cf, _ := fnum(m, "annual_cash_flow")
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** — investment score %.0f/100.\n", verdict, score)
	fmt.Fprintf(&b, "- Cap rate: %s\n", pct(cap))
	fmt.Fprintf(&b, "- Cash-on-cash return: %s\n", pct(coc))
	fmt.Fprintf(&b, "- NOI: %s/yr\n", usd(noi))
	fmt.Fprintf(&b, "- Annual cash flow (financed): %s", usd(cf))
	if mp, ok := fnum(m, "monthly_mortgage"); ok {
		fmt.Fprintf(&b, "\n- Assumed mortgage: %s/mo at 75%% LTV", usd(mp))
	}
	appendDefaultedCaveat(&b, m)
	return b.String(), true
}

func monthlyCostTpl(data map[string]any, _ property.Context) (string, bool) {
	m, ok := sub(data, "true_monthly_cost")
	if !ok {
		return "", false
	}
	total, ok := fnum(m, "total")
	if !ok || total <= 0 {
		return "", false
	}
	mortgage, _ := fnum(m, "mortgage")
	tax, _ := fnum(m, "tax")
	ins, _ := fnum(m, "insurance")
	hoa, _ := fnum(m, "hoa")
	maint, _ := fnum(m, "maintenance")
	var b strings.Builder
	fmt.Fprintf(&b, "True monthly cost: **%s/mo** (20%% down, 30-year loan).\n", usd(total))
	fmt.Fprintf(&b, "- Mortgage: %s\n- Property tax: %s\n- Insurance: %s\n", usd(mortgage), usd(tax), usd(ins))
	if hoa > 0 {
		fmt.Fprintf(&b, "- HOA: %s\n", usd(hoa))
	}
	fmt.Fprintf(&b, "- Maintenance reserve: %s", usd(maint))
	if inc, ok := fnum(m, "required_annual_income"); ok {
		fmt.Fprintf(&b, "\n\nTo keep housing at 28%% of gross income you'd want to earn about **%s/yr**.", usd(inc))
	}
	appendDefaultedCaveat(&b, m)
	return b.String(), true
}

func mortgageRateTpl(data map[string]any, _ property.Context) (string, bool) {
	m, ok := sub(data, "fred_mortgage")
	if !ok {
		return "", false
	}
	r30, ok := fnum(m, "rate_30yr")
	if !ok {
		return "", false
	}
	line := fmt.Sprintf("Current average rates: **%.2f%% (30-year fixed)**", r30)
	if r15, ok := fnum(m, "rate_15yr"); ok {
		line += fmt.Sprintf(", **%.2f%% (15-year fixed)**", r15)
	}
	if asOf := fstr(m, "as_of"); asOf != "" {
		line += " as of " + asOf
	}
	return line + ".", true
}

func envRiskTpl(data map[string]any, _ property.Context) (string, bool) {
	var b strings.Builder
	wrote := false
	if m, ok := sub(data, "fema_flood"); ok {
		if z := fstr(m, "zone"); z != "" {
			risk := "minimal flood risk"
			if z != "X" && z != "C" {
				risk = "a mapped flood hazard area — flood insurance is likely required"
			}
			fmt.Fprintf(&b, "- Flood: FEMA zone **%s** (%s)\n", z, risk)
			wrote = true
		}
	}
	if m, ok := sub(data, "wildfire_risk"); ok {
		if idx, ok := fnum(m, "risk_index"); ok {
			label := fstr(m, "risk_label")
			fmt.Fprintf(&b, "- Wildfire: risk index %d (%s)\n", int(idx), label)
			wrote = true
		}
	}
	if m, ok := sub(data, "usgs_quakes"); ok {
		if n, ok := fnum(m, "quakes_mag4_past_year"); ok {
			fmt.Fprintf(&b, "- Seismic: %d magnitude-4+ earthquakes within 100km in the past year\n", int(n))
			wrote = true
		}
	}
	if m, ok := sub(data, "env_hazards"); ok {
		if rz, ok := fnum(m, "radon_zone"); ok {
			fmt.Fprintf(&b, "- Radon zone %d; superfund sites within 5mi: %d\n", int(rz), intOf(m, "superfund_sites_5mi"))
			wrote = true
		}
	}
	if !wrote {
		return "", false
	}
	return "Environmental risk summary:\n" + strings.TrimRight(b.String(), "\n"), true
}

func envQualityTpl(data map[string]any, _ property.Context) (string, bool) {
	var b strings.Builder
	wrote := false
	if m, ok := sub(data, "air_quality"); ok {
		if aqi, ok := fnum(m, "aqi"); ok {
			fmt.Fprintf(&b, "- Air quality: AQI %d (%s)\n", int(aqi), fstr(m, "category"))
			wrote = true
		}
	}
	if m, ok := sub(data, "noise_score"); ok {
		if s, ok := fnum(m, "sound_score"); ok {
			desc := "quiet"
			if s < 60 {
				desc = "noticeably noisy"
			} else if s < 75 {
				desc = "moderately quiet"
			}
			fmt.Fprintf(&b, "- Noise: sound score %d (%s)\n", int(s), desc)
			wrote = true
		}
	}
	if m, ok := sub(data, "climate_normals"); ok {
		if hi, ok := fnum(m, "avg_high_f"); ok {
			lo, _ := fnum(m, "avg_low_f")
			rain, _ := fnum(m, "annual_rain_in")
			fmt.Fprintf(&b, "- Climate: average highs %.0f°F, lows %.0f°F, %.0f in rain/yr\n", hi, lo, rain)
			wrote = true
		}
	}
	if !wrote {
		return "", false
	}
	return "Environment around the property:\n" + strings.TrimRight(b.String(), "\n"), true
}

func safetyTpl(data map[string]any, _ property.Context) (string, bool) {
	m, ok := sub(data, "crime_grade")
	if !ok {
		return "", false
	}
	overall := fstr(m, "overall_grade")
	if overall == "" {
		return "", false
	}
	line := fmt.Sprintf("The area around this address has an overall crime grade of **%s**", overall)
	if v := fstr(m, "violent_grade"); v != "" {
		line += fmt.Sprintf(" (violent crime %s", v)
		if p := fstr(m, "property_grade"); p != "" {
			line += fmt.Sprintf(", property crime %s", p)
		}
		line += ")"
	}
	return line + ".", true
}

// aiAnswerTpl surfaces the web-search answer for sentiment/history/general
// questions where structured data has no coverage.
func aiAnswerTpl(data map[string]any, _ property.Context) (string, bool) {
	m, ok := sub(data, "ai_answer")
	if !ok {
		return "", false
	}
	content := fstr(m, "content")
	if content == "" {
		return "", false
	}
	return content, true
}

func demographicsTpl(data map[string]any, ctx property.Context) (string, bool) {
	m, ok := sub(data, "census_acs")
	if !ok {
		return "", false
	}
	popV, ok := fnum(m, "population")
	if !ok {
		return "", false
	}
	var b strings.Builder
	where := ctx.Zip
	if where == "" {
		where = "this area"
	} else {
		where = "ZIP " + where
	}
	fmt.Fprintf(&b, "Demographics for %s:\n- Population: %s\n", where, usd(popV)[1:])
	if age, ok := fnum(m, "median_age"); ok {
		fmt.Fprintf(&b, "- Median age: %.1f\n", age)
	}
	if inc, ok := fnum(m, "median_income"); ok {
		fmt.Fprintf(&b, "- Median household income: %s\n", usd(inc))
	}
	if own, ok := fnum(m, "owner_occupied_pct"); ok {
		fmt.Fprintf(&b, "- Owner-occupied: %.1f%%\n", own)
	}
	return strings.TrimRight(b.String(), "\n"), true
}

func schoolsTpl(data map[string]any, _ property.Context) (string, bool) {
	m, ok := sub(data, "schools")
	if !ok {
		return "", false
	}
	schools := mapSlice(m, "schools")
	if len(schools) == 0 {
		return "", false
	}
	var b strings.Builder
	b.WriteString("Assigned/nearby schools:\n")
	for _, s := range schools {
		rating, _ := fnum(s, "rating")
		dist, _ := fnum(s, "distance_miles")
		fmt.Fprintf(&b, "- **%s** (%s) — rated %d/10, %.1f mi\n", fstr(s, "name"), fstr(s, "level"), int(rating), dist)
	}
	return strings.TrimRight(b.String(), "\n"), true
}

func featuresTpl(data map[string]any, ctx property.Context) (string, bool) {
	m, ok := sub(data, "attom_records")
	if !ok {
		return "", false
	}
	beds, bok := fnum(m, "beds")
	if !bok {
		return "", false
	}
	baths, _ := fnum(m, "baths")
	sqft, _ := fnum(m, "sqft")
	yr, _ := fnum(m, "year_built")
	var b strings.Builder
	fmt.Fprintf(&b, "County records for %s:\n", ctx.Address)
	fmt.Fprintf(&b, "- %d bed / %.1f bath, %d sqft\n", int(beds), baths, int(sqft))
	if yr > 0 {
		fmt.Fprintf(&b, "- Built in %d\n", int(yr))
	}
	if lot, ok := fnum(m, "lot_sqft"); ok && lot > 0 {
		fmt.Fprintf(&b, "- Lot: %d sqft\n", int(lot))
	}
	if t := fstr(m, "property_type"); t != "" {
		fmt.Fprintf(&b, "- Type: %s\n", t)
	}
	if ld, ok := sub(data, "listing_detail"); ok {
		if desc := fstr(ld, "description"); desc != "" {
			fmt.Fprintf(&b, "\nListing remarks: %s", desc)
		}
	}
	return strings.TrimRight(b.String(), "\n"), true
}

func conditionTpl(data map[string]any, _ property.Context) (string, bool) {
	var b strings.Builder
	wrote := false
	if m, ok := sub(data, "street_view"); ok {
		if obs, ok := strSlice(m, "observations"); ok && len(obs) > 0 {
			b.WriteString("From imagery of the property:\n")
			for _, o := range obs {
				fmt.Fprintf(&b, "- %s\n", o)
			}
			wrote = true
		}
	}
	if m, ok := sub(data, "permits"); ok {
		if permits := mapSlice(m, "permits"); len(permits) > 0 {
			b.WriteString("\nPermit history suggests maintained systems:\n")
			for _, p := range permits {
				fmt.Fprintf(&b, "- %s: %s (%s)\n", fstr(p, "date"), fstr(p, "description"), fstr(p, "status"))
			}
			wrote = true
		}
	}
	if !wrote {
		return "", false
	}
	return strings.TrimSpace(b.String()), true
}

func historyTpl(data map[string]any, _ property.Context) (string, bool) {
	var b strings.Builder
	wrote := false
	if m, ok := sub(data, "attom_sales"); ok {
		if sales := mapSlice(m, "sales"); len(sales) > 0 {
			b.WriteString("Sale history:\n")
			for _, s := range sales {
				price, _ := fnum(s, "price")
				fmt.Fprintf(&b, "- %s — %s\n", fstr(s, "date"), usd(price))
			}
			wrote = true
		}
	}
	if m, ok := sub(data, "ai_answer"); ok {
		if content := fstr(m, "content"); content != "" {
			fmt.Fprintf(&b, "\n%s", content)
			wrote = true
		}
	}
	if !wrote {
		return "", false
	}
	return strings.TrimSpace(b.String()), true
}

func legalTpl(data map[string]any, _ property.Context) (string, bool) {
	m, ok := sub(data, "county_legal")
	if !ok {
		return "", false
	}
	zoning := fstr(m, "zoning")
	if zoning == "" {
		return "", false
	}
	var b strings.Builder
	fmt.Fprintf(&b, "- Zoning: **%s**\n", zoning)
	if liens, ok := strSlice(m, "liens"); ok {
		if len(liens) == 0 {
			b.WriteString("- No recorded liens\n")
		} else {
			fmt.Fprintf(&b, "- Recorded liens: %s\n", strings.Join(liens, "; "))
		}
	}
	if eas, ok := strSlice(m, "easements"); ok && len(eas) > 0 {
		fmt.Fprintf(&b, "- Easements: %s\n", strings.Join(eas, "; "))
	}
	if hoa, ok := sub(data, "hoa_records"); ok {
		if dues, ok := fnum(hoa, "hoa_monthly"); ok && dues > 0 {
			fmt.Fprintf(&b, "- HOA dues: %s/mo\n", usd(dues))
		}
	}
	return strings.TrimRight(b.String(), "\n"), true
}

func utilitiesTpl(data map[string]any, _ property.Context) (string, bool) {
	var b strings.Builder
	wrote := false
	if m, ok := sub(data, "utility_rates"); ok {
		if kwh, ok := fnum(m, "electric_cents_kwh"); ok {
			fmt.Fprintf(&b, "- Electricity: %.1f¢/kWh\n", kwh)
			wrote = true
		}
		if w, ok := fnum(m, "water_avg_monthly"); ok {
			fmt.Fprintf(&b, "- Water: about %s/mo\n", usd(w))
			wrote = true
		}
	}
	if m, ok := sub(data, "broadband"); ok {
		if down, ok := fnum(m, "max_down_mbps"); ok {
			fiber := ""
			if f, _ := m["fiber"].(bool); f {
				fiber = ", fiber available"
			}
			fmt.Fprintf(&b, "- Internet: up to %d Mbps%s\n", int(down), fiber)
			wrote = true
		}
	}
	if !wrote {
		return "", false
	}
	return "Utilities at this address:\n" + strings.TrimRight(b.String(), "\n"), true
}

func comparisonTpl(data map[string]any, _ property.Context) (string, bool) {
	var b strings.Builder
	wrote := false
	if m, ok := sub(data, "attom_comps"); ok {
		if comps := mapSlice(m, "comps"); len(comps) > 0 {
			b.WriteString("Recent comparable sales:\n")
			for _, c := range comps {
				price, _ := fnum(c, "sold_price")
				sqft, _ := fnum(c, "sqft")
				fmt.Fprintf(&b, "- %s — %s (%d sqft, sold %s)\n", fstr(c, "address"), usd(price), int(sqft), fstr(c, "sold_date"))
			}
			wrote = true
		}
	}
	if m, ok := sub(data, "market_trends"); ok {
		if med, ok := fnum(m, "median_sale_price"); ok {
			yoy, _ := fnum(m, "yoy_change_pct")
			fmt.Fprintf(&b, "\nArea median sale price is %s, %+.1f%% year over year.", usd(med), yoy)
			wrote = true
		}
	}
	if !wrote {
		return "", false
	}
	return strings.TrimSpace(b.String()), true
}

func redFlagsTpl(data map[string]any, _ property.Context) (string, bool) {
	m, ok := sub(data, "red_flags")
	if !ok {
		return "", false
	}
	assessment := fstr(m, "assessment")
	if assessment == "" {
		return "", false
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**%s.**\n", assessment)
	for _, f := range mapSlice(m, "flags") {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", strings.ToUpper(fstr(f, "severity")), fstr(f, "category"), fstr(f, "detail"))
	}
	if missing, _ := strSlice(m, "missing"); len(missing) > 0 {
		fmt.Fprintf(&b, "\nNot yet checked: %s.", strings.Join(missing, ", "))
	}
	return strings.TrimSpace(b.String()), true
}

// appendDefaultedCaveat notes which calculator inputs were assumed rather
// than fetched.
func appendDefaultedCaveat(b *strings.Builder, m map[string]any) {
	if names, _ := strSlice(m, "defaulted"); len(names) > 0 {
		fmt.Fprintf(b, "\n\n_Assumed defaults were used for: %s._", strings.Join(names, ", "))
	}
}

func intOf(m map[string]any, key string) int {
	v, _ := fnum(m, key)
	return int(v)
}
