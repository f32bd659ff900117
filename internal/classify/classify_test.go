package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		question string
		want     Category
	}{
		{"Are there any red flags I should know about?", RedFlags},
		{"Is this a good investment?", Investment},
		{"What's the cap rate if I rent it out?", Investment},
		{"How does this compare to other homes sold nearby?", Comparison},
		{"Is this home overpriced?", Valuation},
		{"What is this house really worth?", Valuation},
		{"What would my total monthly cost be?", MonthlyCost},
		{"Can I afford this place?", MonthlyCost},
		{"What are current mortgage rates?", MortgageRate},
		{"Is this in a flood zone?", EnvironmentalRisk},
		{"How bad is the air quality here?", EnvironmentalQuality},
		{"Is this street quiet at night?", EnvironmentalQuality},
		{"Is this neighborhood safe?", Safety},
		{"How are the schools?", SchoolsCat},
		{"What's the median income around here?", Demographics},
		{"What do people say about the area on reddit?", NeighborhoodVibe},
		{"How long is the commute downtown?", Commute},
		{"How far is the nearest grocery store?", Distance},
		{"Are there restaurants and coffee shops nearby?", Amenities},
		{"When did this house last sell?", PropertyHistory},
		{"Are there any liens on the property?", PropertyLegal},
		{"What condition is the roof in?", PropertyCondition},
		{"How many bedrooms and bathrooms?", PropertyFeatures},
		{"What internet speeds are available?", Utilities},
		{"Tell me about this house", General},
		{"", General},
	}
	for _, tc := range cases {
		t.Run(tc.question, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.question), "question: %q", tc.question)
		})
	}
}

// Shared trigger words must resolve by rule order, not by accident: "risk"
// language belongs to red_flags only when phrased as a concern scan.
func TestClassifyFirstMatchWins(t *testing.T) {
	assert.Equal(t, RedFlags, Classify("Any red flags like flood risk?"))
	assert.Equal(t, EnvironmentalRisk, Classify("What's the flood risk?"))
	assert.Equal(t, Investment, Classify("Is the rental income worth it?"))
}

func TestClassifyDeterministic(t *testing.T) {
	q := "Is this a good investment or is it overpriced?"
	first := Classify(q)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Classify(q))
	}
}

func TestAllCoversEveryRule(t *testing.T) {
	all := All()
	assert.Len(t, all, len(Rules)+1)
	assert.Equal(t, General, all[len(all)-1])
	seen := make(map[Category]bool)
	for _, c := range all {
		assert.False(t, seen[c], "duplicate category %s", c)
		seen[c] = true
	}
}
