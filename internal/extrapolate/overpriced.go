package extrapolate

import "math"

type OverpricedResult struct {
	ListPrice      float64  `json:"list_price"`
	AVMValue       float64  `json:"avm_value"`
	AVMLow         float64  `json:"avm_low"`
	AVMHigh        float64  `json:"avm_high"`
	Difference     float64  `json:"difference"`
	PercentDiff    float64  `json:"percent_diff"`
	Verdict        string   `json:"verdict"`
	Confidence     string   `json:"confidence"`
	SuggestedOffer float64  `json:"suggested_offer,omitempty"`
	Defaulted      []string `json:"defaulted,omitempty"`
}

// Overpriced compares the list price against the AVM band. Verdict rules are
// evaluated in order: at-or-below low, at-or-below point value, within the
// high band, above it.
func Overpriced(listPrice, avmValue, avmLow, avmHigh float64) OverpricedResult {
	res := OverpricedResult{ListPrice: listPrice, AVMValue: avmValue, AVMLow: avmLow, AVMHigh: avmHigh}
	if listPrice <= 0 || avmValue <= 0 {
		res.Verdict = "Insufficient Data"
		res.Confidence = "low"
		if listPrice <= 0 {
			res.Defaulted = append(res.Defaulted, "list_price")
		}
		if avmValue <= 0 {
			res.Defaulted = append(res.Defaulted, "avm_value")
		}
		return res
	}
	if avmLow <= 0 {
		res.AVMLow = avmValue * 0.95
		res.Defaulted = append(res.Defaulted, "avm_low")
	}
	if avmHigh <= 0 {
		res.AVMHigh = avmValue * 1.05
		res.Defaulted = append(res.Defaulted, "avm_high")
	}

	res.Difference = listPrice - avmValue
	res.PercentDiff = res.Difference / avmValue * 100

	switch {
	case listPrice <= res.AVMLow:
		res.Verdict = "Potentially Underpriced"
		res.Confidence = "medium"
	case listPrice <= avmValue:
		res.Verdict = "Fair Price"
		res.Confidence = "high"
	case listPrice <= res.AVMHigh:
		res.Verdict = "Slightly Above Market"
		res.Confidence = "medium"
	default:
		res.Verdict = "Overpriced"
		res.Confidence = "high"
	}

	if math.Abs(res.PercentDiff) > 10 {
		res.SuggestedOffer = math.Round(avmValue)
	}
	return res
}

// OverpricedFromMerged reads the list price and AVM band from the merged
// provider result map.
func OverpricedFromMerged(merged map[string]any, listPrice float64) OverpricedResult {
	if v, ok := field(merged, "listing_detail", "list_price"); ok && v > 0 {
		listPrice = v
	}
	value, _ := field(merged, "attom_avm", "value")
	low, _ := field(merged, "attom_avm", "low")
	high, _ := field(merged, "attom_avm", "high")
	return Overpriced(listPrice, value, low, high)
}
