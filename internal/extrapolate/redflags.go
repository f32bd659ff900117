package extrapolate

import (
	"sort"
	"strings"
)

type Flag struct {
	Category string `json:"category"`
	Severity string `json:"severity"` // high, medium, low
	Detail   string `json:"detail"`
}

type RedFlagInputs struct {
	FloodZone    *string
	WildfireIdx  *float64 // ordinal risk index
	QuakesMag4   *float64 // magnitude-4+ events within 100km, trailing year
	SoundScore   *float64 // composite, higher is quieter
	CrimeOverall *string  // letter grade
}

type RedFlagResult struct {
	Flags      []Flag   `json:"flags"`
	Assessment string   `json:"assessment"`
	Missing    []string `json:"missing,omitempty"`
}

var severityRank = map[string]int{"high": 0, "medium": 1, "low": 2}

// RedFlags evaluates the five risk axes independently. A missing input skips
// its axis and is reported in Missing rather than guessed at.
func RedFlags(in RedFlagInputs) RedFlagResult {
	var res RedFlagResult

	if in.FloodZone == nil {
		res.Missing = append(res.Missing, "flood_zone")
	} else if z := strings.ToUpper(strings.TrimSpace(*in.FloodZone)); z != "" && z != "X" && z != "C" {
		sev := "medium"
		if strings.HasPrefix(z, "A") || strings.HasPrefix(z, "V") {
			sev = "high"
		}
		res.Flags = append(res.Flags, Flag{Category: "Environmental", Severity: sev,
			Detail: "Property is in FEMA flood zone " + z + "; flood insurance is likely required."})
	}

	if in.WildfireIdx == nil {
		res.Missing = append(res.Missing, "wildfire_risk")
	} else if *in.WildfireIdx >= 4 {
		res.Flags = append(res.Flags, Flag{Category: "Environmental", Severity: "high",
			Detail: "Elevated wildfire risk for this location."})
	}

	if in.QuakesMag4 == nil {
		res.Missing = append(res.Missing, "seismic")
	} else if *in.QuakesMag4 > 2 {
		res.Flags = append(res.Flags, Flag{Category: "Environmental", Severity: "medium",
			Detail: "Multiple magnitude-4+ earthquakes within 100km in the past year."})
	}

	if in.SoundScore == nil {
		res.Missing = append(res.Missing, "noise")
	} else if *in.SoundScore < 60 {
		res.Flags = append(res.Flags, Flag{Category: "Quality of Life", Severity: "low",
			Detail: "Below-average sound score; expect noticeable traffic or airport noise."})
	}

	if in.CrimeOverall == nil {
		res.Missing = append(res.Missing, "crime")
	} else if g := strings.ToUpper(strings.TrimSpace(*in.CrimeOverall)); strings.HasPrefix(g, "D") || strings.HasPrefix(g, "F") {
		res.Flags = append(res.Flags, Flag{Category: "Safety", Severity: "high",
			Detail: "Overall crime grade of " + g + " for the surrounding area."})
	}

	sort.SliceStable(res.Flags, func(i, j int) bool {
		return severityRank[res.Flags[i].Severity] < severityRank[res.Flags[j].Severity]
	})

	high := 0
	for _, f := range res.Flags {
		if f.Severity == "high" {
			high++
		}
	}
	switch {
	case high > 0:
		res.Assessment = "Significant concerns"
	case len(res.Flags) > 3:
		res.Assessment = "Several minor concerns"
	default:
		res.Assessment = "No major red flags"
	}
	return res
}

// RedFlagsFromMerged builds calculator inputs from whichever risk providers
// actually responded.
func RedFlagsFromMerged(merged map[string]any) RedFlagInputs {
	var in RedFlagInputs
	if z, ok := strField(merged, "fema_flood", "zone"); ok {
		in.FloodZone = &z
	}
	if v, ok := field(merged, "wildfire_risk", "risk_index"); ok {
		in.WildfireIdx = &v
	}
	if v, ok := field(merged, "usgs_quakes", "quakes_mag4_past_year"); ok {
		in.QuakesMag4 = &v
	}
	if v, ok := field(merged, "noise_score", "sound_score"); ok {
		in.SoundScore = &v
	}
	if g, ok := strField(merged, "crime_grade", "overall_grade"); ok {
		in.CrimeOverall = &g
	}
	return in
}
