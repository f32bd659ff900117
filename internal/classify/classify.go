// Package classify maps a free-form question to one semantic category using
// an ordered regex rule table. First match wins; order is load-bearing
// because categories share trigger words ("risk" is both environmental and
// red-flag territory).
package classify

import (
	"regexp"
	"strings"
)

type Category string

const (
	Distance             Category = "distance"
	Amenities            Category = "amenities"
	Commute              Category = "commute"
	Valuation            Category = "valuation"
	Investment           Category = "investment"
	MonthlyCost          Category = "monthly_cost"
	MortgageRate         Category = "mortgage_rate"
	EnvironmentalRisk    Category = "environmental_risk"
	EnvironmentalQuality Category = "environmental_quality"
	Safety               Category = "safety"
	NeighborhoodVibe     Category = "neighborhood_sentiment"
	Demographics         Category = "demographics"
	SchoolsCat           Category = "schools"
	PropertyFeatures     Category = "property_features"
	PropertyCondition    Category = "property_condition"
	PropertyHistory      Category = "property_history"
	PropertyLegal        Category = "property_legal"
	Utilities            Category = "utilities"
	Comparison           Category = "comparison"
	RedFlags             Category = "red_flags"
	General              Category = "general"
)

type rule struct {
	cat      Category
	patterns []*regexp.Regexp
}

func pats(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

// Rules is evaluated top to bottom. Do not reorder without updating the
// fixtures in classify_test.go; several categories deliberately shadow later
// ones (red_flags before environmental_risk, investment before valuation).
var Rules = []rule{
	{RedFlags, pats(`red flag`, `deal\s?breaker`, `anything (wrong|concerning)`, `what('| i)?s wrong`, `should i (worry|be concerned)`, `hidden (problem|issue)`, `gotcha`)},
	{Investment, pats(`invest`, `cap rate`, `cash.?on.?cash`, `rental (income|yield|return)`, `cash ?flow`, `roi\b`, `good (rental|buy)\b`, `landlord`)},
	{Comparison, pats(`compare|versus|\bvs\.?\b`, `better (deal|value) than`, `comps\b`, `comparable`, `other (homes|houses|listings) (sold|nearby)`)},
	{Valuation, pats(`overpriced|underpriced`, `fair price`, `worth\b`, `market value`, `apprais`, `avm\b`, `should i offer`, `asking too much`)},
	{MonthlyCost, pats(`monthly (cost|payment|expense)`, `cost per month`, `afford`, `total cost of owning`, `carrying cost`, `income (do i|would i) need`)},
	{MortgageRate, pats(`mortgage rate`, `interest rate`, `\bapr\b`, `refinanc`, `current rates`)},
	{EnvironmentalRisk, pats(`flood`, `wildfire|fire (risk|danger|zone)`, `earthquake|seismic|fault line`, `hurricane|tornado`, `natural disaster`, `radon|superfund|contaminat`)},
	{EnvironmentalQuality, pats(`air quality|aqi|pollution|smog`, `noise|noisy|loud|quiet`, `climate|weather|rainfall|humidity`, `green ?space`)},
	{Safety, pats(`crime`, `\bsafe\b|safety|dangerous`, `break.?ins?\b|burglar|theft`, `sex offender`)},
	{SchoolsCat, pats(`school`, `\bdistrict\b`, `elementary|kindergarten`, `education`)},
	{Demographics, pats(`demographic`, `who lives`, `median (income|age)`, `population`, `diversity`, `family.?friendly`)},
	{NeighborhoodVibe, pats(`neighborhood (like|feel|vibe)`, `what('| i)?s the area like`, `reddit|nextdoor`, `people say`, `up.?and.?coming`, `gentrif`)},
	{Commute, pats(`commute`, `transit|public transportation`, `\bbus\b|train|subway|bart\b`, `drive to (work|downtown)`, `traffic`)},
	{Distance, pats(`how far`, `distance to`, `miles (from|to)`, `close(st)? (to|grocery|store)`, `nearest`)},
	{Amenities, pats(`grocery|supermarket`, `restaurant|coffee|cafe`, `\bgym\b|park\b|playground`, `hospital|pharmacy|urgent care`, `walkab|walk score`, `amenities|nearby`)},
	{PropertyHistory, pats(`(last|previously) s(old|ell)`, `(sale|price|ownership) history`, `how (long|many times).*(market|sold)`, `previous owner`, `permit|renovat|remodel`)},
	{PropertyLegal, pats(`zoning`, `\bliens?\b|easement|encumbrance`, `deed restriction`, `\bhoa\b|association (rules|fees|dues)`, `legal`)},
	{PropertyCondition, pats(`condition`, `\broof\b|foundation|plumbing|electrical panel|hvac\b`, `need (repairs|work)`, `inspect`, `mold|termite`)},
	{PropertyFeatures, pats(`square (feet|footage)|sqft`, `bed(room)?s|bath(room)?s`, `year built|how old`, `lot size|backyard|garage|pool|basement`, `floor ?plan`)},
	{Utilities, pats(`utilit`, `electric|gas bill|water bill|sewer|septic`, `internet|broadband|fiber`, `heating|cooling cost`, `solar`)},
}

// Classify returns exactly one category; General iff no pattern matched.
func Classify(question string) Category {
	q := strings.ToLower(question)
	for _, r := range Rules {
		for _, p := range r.patterns {
			if p.MatchString(q) {
				return r.cat
			}
		}
	}
	return General
}

// All lists every category in rule order, General last. Used by the
// formatter's follow-up tables and by tests asserting full coverage.
func All() []Category {
	out := make([]Category, 0, len(Rules)+1)
	for _, r := range Rules {
		out = append(out, r.cat)
	}
	return append(out, General)
}
