// Package selector maps (category, question) to the set of providers worth
// querying. Keyword hits win; the static category table is the fallback when
// no keyword matches.
package selector

import (
	"sort"
	"strings"

	"github.com/yourorg/ask-api/internal/classify"
	"github.com/yourorg/ask-api/providers"
)

// categoryDefaults is consulted only when the keyword pass yields nothing.
var categoryDefaults = map[classify.Category][]string{
	classify.Distance:             {providers.MapsDistance, providers.MapsNearby},
	classify.Amenities:            {providers.MapsNearby, providers.WalkScore},
	classify.Commute:              {providers.TransitCommute, providers.MapsDistance},
	classify.Valuation:            {providers.AttomAVM, providers.ListingDetail, providers.AttomComps},
	classify.Investment:           {providers.RentEstimate, providers.AttomAVM, providers.AttomTax, providers.NeighborhoodScore, providers.FredMortgage},
	classify.MonthlyCost:          {providers.FredMortgage, providers.AttomTax, providers.HOARecords, providers.ListingDetail},
	classify.MortgageRate:         {providers.FredMortgage},
	classify.EnvironmentalRisk:    {providers.FemaFlood, providers.WildfireRisk, providers.USGSQuakes, providers.EnvHazards},
	classify.EnvironmentalQuality: {providers.AirQuality, providers.NoiseScore, providers.ClimateNormals},
	classify.Safety:               {providers.CrimeGrade},
	classify.NeighborhoodVibe:     {providers.NeighborhoodScore, providers.CensusACS},
	classify.Demographics:         {providers.CensusACS},
	classify.SchoolsCat:           {providers.Schools},
	classify.PropertyFeatures:     {providers.AttomRecords, providers.ListingDetail},
	classify.PropertyCondition:    {providers.StreetView, providers.Permits, providers.AttomRecords},
	classify.PropertyHistory:      {providers.AttomSales, providers.Permits},
	classify.PropertyLegal:        {providers.CountyLegal, providers.HOARecords},
	classify.Utilities:            {providers.UtilityRates, providers.Broadband},
	classify.Comparison:           {providers.AttomComps, providers.MarketTrends, providers.AttomAVM},
	classify.RedFlags:             {providers.FemaFlood, providers.WildfireRisk, providers.USGSQuakes, providers.NoiseScore, providers.CrimeGrade},
	classify.General:              {},
}

// Select returns a deduplicated provider set. Result order is normalized
// (sorted) so callers can treat it as a set; nothing downstream depends on
// order.
func Select(cat classify.Category, question string) []string {
	q := strings.ToLower(question)
	seen := make(map[string]bool)
	var out []string

	for _, d := range providers.Table {
		for _, kw := range d.Keywords {
			if strings.Contains(q, kw) {
				if !seen[d.ID] {
					seen[d.ID] = true
					out = append(out, d.ID)
				}
				break
			}
		}
	}

	if len(out) == 0 {
		for _, id := range categoryDefaults[cat] {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}

	sort.Strings(out)
	return out
}

// aiKeywords force the AI backend in regardless of structured coverage; this
// information lives in forums, county portals and listing remarks, not in
// any structured provider.
var aiKeywords = []string{"permit", "hoa", "reddit", "nextdoor", "rumor", "people say", "gossip", "story", "haunted"}

var aiCategories = map[classify.Category]bool{
	classify.NeighborhoodVibe: true,
	classify.PropertyHistory:  true,
	classify.General:          true,
}

// NeedsAIFallback reports whether the AI backend must be queried alongside
// (or instead of) structured providers.
func NeedsAIFallback(cat classify.Category, question string) bool {
	if aiCategories[cat] {
		return true
	}
	q := strings.ToLower(question)
	for _, kw := range aiKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
