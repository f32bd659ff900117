package format

import "github.com/yourorg/ask-api/internal/classify"

// Static per-category follow-up suggestions. The UI renders these as tappable
// chips under the answer.
var followUpTable = map[classify.Category][]string{
	classify.Distance:             {"What else is within walking distance?", "How long is the commute downtown?"},
	classify.Amenities:            {"How walkable is this neighborhood?", "Where is the nearest grocery store?"},
	classify.Commute:              {"Is there public transit nearby?", "How bad is rush hour traffic here?"},
	classify.Valuation:            {"Is this a good investment?", "What have similar homes sold for?"},
	classify.Investment:           {"What would my true monthly cost be?", "Is this home overpriced?"},
	classify.MonthlyCost:          {"What income do I need to afford this?", "What are current mortgage rates?"},
	classify.MortgageRate:         {"What would my monthly payment be?", "Should I consider a 15-year loan?"},
	classify.EnvironmentalRisk:    {"Are there any other red flags?", "What would flood insurance cost?"},
	classify.EnvironmentalQuality: {"How noisy is this street?", "What's the climate like here?"},
	classify.Safety:               {"How does crime here compare to the city average?", "Are the schools good?"},
	classify.NeighborhoodVibe:     {"What are the demographics of this area?", "Is this area up and coming?"},
	classify.Demographics:         {"What do people say about this neighborhood?", "How are the schools rated?"},
	classify.SchoolsCat:           {"What's the school district boundary?", "Is this area family friendly?"},
	classify.PropertyFeatures:     {"What condition is the property in?", "When was it last renovated?"},
	classify.PropertyCondition:    {"Are there any open permits?", "What should I ask the inspector to check?"},
	classify.PropertyHistory:      {"Why did the previous owners sell?", "Has the price changed since listing?"},
	classify.PropertyLegal:        {"Are there HOA restrictions?", "What is the property zoned for?"},
	classify.Utilities:            {"What internet speeds are available?", "What are typical utility bills here?"},
	classify.Comparison:           {"Is this home overpriced?", "How is the local market trending?"},
	classify.RedFlags:             {"Tell me more about the flood risk", "Is the neighborhood safe?"},
	classify.General:              {"Is this a good investment?", "Are there any red flags?", "What's the true monthly cost?"},
}

func followUps(cat classify.Category) []string {
	if f, ok := followUpTable[cat]; ok {
		return f
	}
	return followUpTable[classify.General]
}
