package providers

// Static mock fixtures, one per provider id. Served whenever a provider is
// not configured live, or as the degraded fallback when a live call fails.
// Values are intentionally plausible so formatted answers read naturally in
// development.
var mockPayloads = map[string]map[string]any{
	MapsDistance: {
		"destination":    "Whole Foods Market",
		"distance_miles": 1.2,
		"duration_min":   6,
	},
	MapsNearby: {
		"places": []map[string]any{
			{"name": "Safeway", "type": "grocery", "distance_miles": 0.8},
			{"name": "Peet's Coffee", "type": "coffee", "distance_miles": 0.5},
			{"name": "Lincoln Park", "type": "park", "distance_miles": 0.3},
		},
	},
	TransitCommute: {
		"drive_min":   28,
		"transit_min": 44,
		"routes":      []string{"BART Red Line", "Bus 18"},
	},
	WalkScore: {
		"walk_score":    72,
		"bike_score":    65,
		"transit_score": 58,
	},
	AttomAVM: {
		"value":            512000.0,
		"low":              486000.0,
		"high":             538000.0,
		"confidence_score": 87,
	},
	RentEstimate: {
		"rent":      2850.0,
		"rent_low":  2600.0,
		"rent_high": 3100.0,
	},
	AttomComps: {
		"comps": []map[string]any{
			{"address": "412 Oak St", "sold_price": 498000, "sqft": 1540, "sold_date": "2026-05-14"},
			{"address": "87 Elm Ave", "sold_price": 525000, "sqft": 1610, "sold_date": "2026-06-02"},
			{"address": "19 Birch Ct", "sold_price": 507500, "sqft": 1575, "sold_date": "2026-07-21"},
		},
	},
	AttomRecords: {
		"beds":          3,
		"baths":         2.0,
		"sqft":          1560,
		"year_built":    1987,
		"lot_sqft":      5200,
		"property_type": "Single Family Residence",
	},
	AttomTax: {
		"annual_tax":     6150.0,
		"assessed_value": 472000.0,
		"tax_year":       2025,
	},
	AttomSales: {
		"sales": []map[string]any{
			{"date": "2018-08-10", "price": 405000},
			{"date": "2009-03-22", "price": 289000},
		},
	},
	FredMortgage: {
		"rate_30yr": 6.62,
		"rate_15yr": 5.89,
		"as_of":     "2026-08-28",
	},
	FemaFlood: {
		"zone":           "X",
		"panel":          "06081C0312F",
		"effective_date": "2019-04-05",
	},
	WildfireRisk: {
		"risk_index": 2,
		"risk_label": "Low",
	},
	USGSQuakes: {
		"quakes_mag4_past_year": 1,
		"largest_magnitude":     4.2,
	},
	AirQuality: {
		"aqi":       42,
		"category":  "Good",
		"pollutant": "PM2.5",
	},
	NoiseScore: {
		"sound_score": 74,
		"traffic":     "moderate",
		"airports":    "low",
	},
	ClimateNormals: {
		"avg_high_f":     68.4,
		"avg_low_f":      48.1,
		"annual_rain_in": 23.6,
		"annual_snow_in": 0.0,
	},
	CrimeGrade: {
		"overall_grade":  "B",
		"violent_grade":  "B+",
		"property_grade": "C+",
	},
	Schools: {
		"schools": []map[string]any{
			{"name": "Jefferson Elementary", "level": "elementary", "rating": 8, "distance_miles": 0.6},
			{"name": "Roosevelt Middle", "level": "middle", "rating": 7, "distance_miles": 1.1},
			{"name": "Washington High", "level": "high", "rating": 6, "distance_miles": 1.8},
		},
	},
	CensusACS: {
		"population":         38420,
		"median_age":         36.8,
		"median_income":      91250,
		"owner_occupied_pct": 58.3,
	},
	Broadband: {
		"max_down_mbps": 1200,
		"fiber":         true,
		"providers":     []string{"AT&T Fiber", "Comcast"},
	},
	UtilityRates: {
		"electric_cents_kwh": 24.1,
		"gas_rate":           2.18,
		"water_avg_monthly":  78.0,
	},
	ListingDetail: {
		"list_price":     529000.0,
		"status":         "for_sale",
		"days_on_market": 23,
		"description":    "Updated 3/2 with remodeled kitchen and fenced yard.",
	},
	StreetView: {
		"observations": []string{
			"composition shingle roof appears intact",
			"mature street trees, sidewalks present",
			"driveway with attached single garage",
		},
	},
	Permits: {
		"permits": []map[string]any{
			{"date": "2021-06-11", "type": "electrical", "description": "200A panel upgrade", "status": "finaled"},
			{"date": "2016-02-03", "type": "reroof", "description": "tear-off reroof", "status": "finaled"},
		},
	},
	HOARecords: {
		"hoa_monthly": 0.0,
		"association": "",
	},
	CountyLegal: {
		"zoning":    "R-1",
		"liens":     []string{},
		"easements": []string{"standard utility easement, rear 5ft"},
	},
	NeighborhoodScore: {
		"investment_score": 64,
		"trend":            "improving",
	},
	EnvHazards: {
		"radon_zone":          3,
		"superfund_sites_5mi": 0,
	},
	MarketTrends: {
		"median_sale_price": 498000,
		"yoy_change_pct":    3.4,
		"median_dom":        19,
	},
}

// MockPayload returns a deep copy of the fixture for id. Copy matters:
// callers merge results into per-request maps and must not share fixture
// memory, nested maps and slices included.
func MockPayload(id string) (map[string]any, bool) {
	src, ok := mockPayloads[id]
	if !ok {
		return nil, false
	}
	return copyMap(src), true
}

func copyMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, m := range t {
			out[i] = copyMap(m)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	}
	return v
}
