package extrapolate

import "math"

// MonthlyPayment computes the standard 30-year (or termYears) amortizing
// payment for principal at annualRatePct. Zero-rate degenerates to straight
// principal division.
func MonthlyPayment(principal, annualRatePct float64, termYears int) float64 {
	if principal <= 0 || termYears <= 0 {
		return 0
	}
	n := float64(termYears * 12)
	if annualRatePct <= 0 {
		return principal / n
	}
	r := annualRatePct / 100 / 12
	f := math.Pow(1+r, n)
	return principal * r * f / (f - 1)
}
