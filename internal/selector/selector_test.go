package selector

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourorg/ask-api/internal/classify"
	"github.com/yourorg/ask-api/providers"
)

func TestSelectKeywordPass(t *testing.T) {
	got := Select(classify.Distance, "How far is the nearest grocery store?")
	assert.ElementsMatch(t, []string{providers.MapsDistance, providers.MapsNearby}, got)
}

func TestSelectFloodKeyword(t *testing.T) {
	// a single keyword hit should not drag in the category defaults
	got := Select(classify.EnvironmentalRisk, "Is this in a flood zone?")
	assert.Equal(t, []string{providers.FemaFlood}, got)
}

func TestSelectCategoryFallback(t *testing.T) {
	got := Select(classify.Safety, "Should I worry at night around here?")
	assert.Equal(t, []string{providers.CrimeGrade}, got)
}

func TestSelectGeneralNoMatch(t *testing.T) {
	got := Select(classify.General, "Tell me about this house")
	assert.Empty(t, got)
}

func TestSelectDeduplicates(t *testing.T) {
	// "how far", "closest" and "nearest" all map to the same provider
	got := Select(classify.Distance, "How far is the closest school, and what's the nearest school district?")
	assert.ElementsMatch(t, []string{providers.MapsDistance, providers.Schools}, got)
}

func TestSelectSortedAndDeterministic(t *testing.T) {
	q := "Is this overpriced given the property tax and mortgage rate right now?"
	first := Select(classify.Valuation, q)
	assert.True(t, sort.StringsAreSorted(first))
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Select(classify.Valuation, q))
	}
}

func TestSelectKnownProviders(t *testing.T) {
	for _, cat := range classify.All() {
		for _, id := range Select(cat, "") {
			_, ok := providers.Lookup(id)
			assert.True(t, ok, "category %s selected unknown provider %s", cat, id)
		}
	}
}

func TestNeedsAIFallback(t *testing.T) {
	tests := []struct {
		cat      classify.Category
		question string
		want     bool
	}{
		{classify.NeighborhoodVibe, "What's the neighborhood like?", true},
		{classify.General, "Tell me about this house", true},
		{classify.PropertyHistory, "When was this house last sold?", true},
		{classify.RedFlags, "Anything on Reddit about this street?", true},
		{classify.PropertyLegal, "What are the HOA rules?", true},
		{classify.Safety, "Is this neighborhood safe?", false},
		{classify.MortgageRate, "What are current mortgage rates?", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NeedsAIFallback(tt.cat, tt.question), "%s / %q", tt.cat, tt.question)
	}
}
