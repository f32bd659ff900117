// Package format renders the merged, validated data map into the final
// natural-language answer per category. Templates degrade to a category
// placeholder when their fields are absent; unknown categories fall back to
// pretty-printing small payloads.
package format

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/yourorg/ask-api/internal/classify"
	"github.com/yourorg/ask-api/internal/property"
)

type FormattedResponse struct {
	Answer              string   `json:"answer"`
	Sources             []string `json:"sources"`
	Confidence          string   `json:"confidence"`
	FollowUpSuggestions []string `json:"followUpSuggestions"`
	// AskSeller signals the UI that structured data could not answer a
	// property-specific question and a human-sourced answer may be needed.
	AskSeller bool `json:"askSeller,omitempty"`
}

type template func(data map[string]any, ctx property.Context) (string, bool)

// Format renders data for the category. Confidence is stamped by the caller;
// it is part of the response contract, not derived here. Provenance, when the
// caller has it, lists the handler ids that contributed to data.
func Format(question string, cat classify.Category, data map[string]any, ctx property.Context, provenance ...string) FormattedResponse {
	resp := FormattedResponse{
		Sources:             Sources(data, provenance...),
		FollowUpSuggestions: followUps(cat),
	}
	if tpl, ok := templates[cat]; ok {
		if answer, ok := tpl(data, ctx); ok {
			resp.Answer = answer
			return resp
		}
		resp.Answer = placeholder(cat)
		resp.AskSeller = askSellerCategory[cat] && len(data) == 0
		return resp
	}
	resp.Answer = fallback(data)
	return resp
}

var askSellerCategory = map[classify.Category]bool{
	classify.PropertyFeatures:  true,
	classify.PropertyCondition: true,
	classify.PropertyHistory:   true,
}

// fallback pretty-prints small payloads verbatim, otherwise asks for a more
// specific question.
func fallback(data map[string]any) string {
	if len(data) > 0 {
		if b, err := json.MarshalIndent(data, "", "  "); err == nil && len(b) < 300 {
			return "Here's what I found:\n```\n" + string(b) + "\n```"
		}
	}
	return "I wasn't sure how to interpret that — could you ask me something more specific about this property? For example its value, monthly cost, schools, or any risks."
}

func placeholder(cat classify.Category) string {
	if p, ok := placeholders[cat]; ok {
		return p
	}
	return "I'm still gathering data to answer that. Try again in a moment."
}

var placeholders = map[classify.Category]string{
	classify.Distance:             "I'm still gathering map data for this address, so I can't measure that distance yet.",
	classify.Amenities:            "I'm still gathering nearby-places data for this address.",
	classify.Commute:              "I'm still gathering commute and transit data for this address.",
	classify.Valuation:            "I don't have a valuation for this property yet — the automated value model hasn't returned.",
	classify.Investment:           "I can't run investment numbers yet; rent and valuation data are still loading.",
	classify.MonthlyCost:          "I'm still collecting the tax, rate and fee data needed to estimate the monthly cost.",
	classify.MortgageRate:         "I'm still fetching current mortgage rates.",
	classify.EnvironmentalRisk:    "Environmental risk lookups (flood, wildfire, seismic) haven't come back yet.",
	classify.EnvironmentalQuality: "Air-quality and noise data for this address are still loading.",
	classify.Safety:               "Crime data for this area hasn't come back yet.",
	classify.NeighborhoodVibe:     "I couldn't find neighborhood sentiment for this area yet.",
	classify.Demographics:         "Census data for this ZIP is still loading.",
	classify.SchoolsCat:           "School data for this address hasn't come back yet.",
	classify.PropertyFeatures:     "I don't have detailed property records for this home yet.",
	classify.PropertyCondition:    "I don't have condition information for this home yet.",
	classify.PropertyHistory:      "I don't have sale or permit history for this home yet.",
	classify.PropertyLegal:        "I don't have zoning or title records for this property yet.",
	classify.Utilities:            "Utility and broadband data for this address are still loading.",
	classify.Comparison:           "Comparable-sale data hasn't come back yet.",
	classify.RedFlags:             "The risk scan hasn't finished; I can't report red flags yet.",
}

// sourceNames maps well-known merged-map keys to display names. Presence of
// a key implies that provider contributed — a heuristic, not a strict
// provenance ledger.
var sourceNames = map[string]string{
	"maps_distance":       "Google Maps",
	"maps_nearby":         "Google Places",
	"transit_commute":     "Transit feeds",
	"walkscore":           "Walk Score",
	"attom_avm":           "ATTOM AVM",
	"rent_estimate":       "RentCast",
	"attom_comps":         "ATTOM comparables",
	"attom_records":       "ATTOM property records",
	"attom_tax":           "ATTOM tax assessor",
	"attom_sales":         "ATTOM sale history",
	"fred_mortgage":       "FRED mortgage rates",
	"fema_flood":          "FEMA flood maps",
	"wildfire_risk":       "USFS wildfire risk",
	"usgs_quakes":         "USGS earthquake catalog",
	"air_quality":         "AirNow",
	"noise_score":         "HowLoud",
	"climate_normals":     "NOAA climate normals",
	"crime_grade":         "CrimeGrade",
	"schools":             "GreatSchools",
	"census_acs":          "US Census ACS",
	"broadband":           "FCC broadband map",
	"utility_rates":       "OpenEI utility rates",
	"listing_detail":      "MLS listing",
	"street_view":         "Street-view imagery analysis",
	"permits":             "County permit records",
	"hoa_records":         "HOA records",
	"county_legal":        "County recorder",
	"neighborhood_score":  "Neighborhood scores",
	"env_hazards":         "EPA hazard data",
	"market_trends":       "Market trend feeds",
	"investment_analysis": "Derived investment analysis",
	"overpriced_check":    "Derived price analysis",
	"true_monthly_cost":   "Derived cost analysis",
	"red_flags":           "Derived risk scan",
	"ai_answer":           "Web search (AI)",
	"enrichment":          "AI enrichment",
}

// Sources derives the attribution list: the union of the merged data's
// well-known keys and the handler ids in provenance, mapped through the
// display-name table above. Unknown keys are surfaced verbatim so nothing
// silently disappears.
func Sources(data map[string]any, provenance ...string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(key string) {
		name, ok := sourceNames[key]
		if !ok {
			name = key
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for key := range data {
		add(key)
	}
	for _, id := range provenance {
		add(id)
	}
	sort.Strings(out)
	return out
}

func usd(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	whole := fmt.Sprintf("%.0f", v)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}

func pct(v float64) string { return fmt.Sprintf("%.2f%%", v) }

func sub(data map[string]any, key string) (map[string]any, bool) {
	m, ok := data[key].(map[string]any)
	return m, ok
}

func fnum(m map[string]any, key string) (float64, bool) {
	switch n := m[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func fstr(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// mapSlice reads a list-of-objects field, tolerating both the in-memory
// fixture shape and the []any shape a JSON round trip (redis envelope,
// caller-supplied cached payload) produces.
func mapSlice(m map[string]any, key string) []map[string]any {
	switch v := m[key].(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, e := range v {
			if mm, ok := e.(map[string]any); ok {
				out = append(out, mm)
			}
		}
		return out
	}
	return nil
}

// strSlice is mapSlice for lists of strings. The second return reports
// whether the key was present at all, for templates that distinguish an
// empty list from a missing one.
func strSlice(m map[string]any, key string) ([]string, bool) {
	switch v := m[key].(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}
