package extrapolate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strp(s string) *string { return &s }
func fp(f float64) *float64 { return &f }

func TestRedFlagsFloodZones(t *testing.T) {
	tests := []struct {
		zone     string
		wantFlag bool
		wantSev  string
	}{
		{"X", false, ""},
		{"C", false, ""},
		{"AE", true, "high"},
		{"VE", true, "high"},
		{"D", true, "medium"},
	}
	for _, tt := range tests {
		res := RedFlags(RedFlagInputs{FloodZone: strp(tt.zone)})
		if !tt.wantFlag {
			assert.Empty(t, res.Flags, "zone %s", tt.zone)
			continue
		}
		if assert.Len(t, res.Flags, 1, "zone %s", tt.zone) {
			assert.Equal(t, "Environmental", res.Flags[0].Category)
			assert.Equal(t, tt.wantSev, res.Flags[0].Severity)
		}
	}
}

func TestRedFlagsThresholds(t *testing.T) {
	// each axis below threshold raises nothing
	res := RedFlags(RedFlagInputs{
		FloodZone:    strp("X"),
		WildfireIdx:  fp(3),
		QuakesMag4:   fp(2),
		SoundScore:   fp(75),
		CrimeOverall: strp("B+"),
	})
	assert.Empty(t, res.Flags)
	assert.Empty(t, res.Missing)
	assert.Equal(t, "No major red flags", res.Assessment)

	// and above threshold each raises exactly one
	res = RedFlags(RedFlagInputs{
		FloodZone:    strp("X"),
		WildfireIdx:  fp(4),
		QuakesMag4:   fp(3),
		SoundScore:   fp(55),
		CrimeOverall: strp("F"),
	})
	assert.Len(t, res.Flags, 4)
	assert.Equal(t, "Significant concerns", res.Assessment)
}

func TestRedFlagsSeveritySort(t *testing.T) {
	res := RedFlags(RedFlagInputs{
		SoundScore:   fp(50),    // low
		FloodZone:    strp("D"), // medium
		CrimeOverall: strp("F"), // high
	})
	if assert.Len(t, res.Flags, 3) {
		assert.Equal(t, "high", res.Flags[0].Severity)
		assert.Equal(t, "medium", res.Flags[1].Severity)
		assert.Equal(t, "low", res.Flags[2].Severity)
	}
}

func TestRedFlagsMissingInputs(t *testing.T) {
	res := RedFlags(RedFlagInputs{})
	assert.Empty(t, res.Flags)
	assert.ElementsMatch(t, []string{"flood_zone", "wildfire_risk", "seismic", "noise", "crime"}, res.Missing)
	assert.Equal(t, "No major red flags", res.Assessment)
}

func TestRedFlagsFromMerged(t *testing.T) {
	merged := map[string]any{
		"fema_flood":  map[string]any{"zone": "AE"},
		"usgs_quakes": map[string]any{"quakes_mag4_past_year": 0.0},
		"crime_grade": map[string]any{"overall_grade": "C"},
	}
	in := RedFlagsFromMerged(merged)
	if assert.NotNil(t, in.FloodZone) {
		assert.Equal(t, "AE", *in.FloodZone)
	}
	if assert.NotNil(t, in.QuakesMag4) {
		assert.Zero(t, *in.QuakesMag4)
	}
	assert.Nil(t, in.WildfireIdx)
	assert.Nil(t, in.SoundScore)

	res := RedFlags(in)
	if assert.Len(t, res.Flags, 1) {
		assert.Equal(t, "high", res.Flags[0].Severity)
	}
	assert.ElementsMatch(t, []string{"wildfire_risk", "noise"}, res.Missing)
}
