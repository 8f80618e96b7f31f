package odds

// RemoveVig removes the vig/juice from a two-way market
// Returns the true probabilities that sum to 1.0
//
// Method: Multiplicative vig removal (proportional)
// trueProbA = impliedA / (impliedA + impliedB)
// trueProbB = impliedB / (impliedA + impliedB)
func RemoveVig(impliedA, impliedB float64) (float64, float64) {
	if impliedA <= 0 || impliedB <= 0 {
		return 0, 0
	}

	total := impliedA + impliedB
	return impliedA / total, impliedB / total
}

// SideProbability returns the probability for the chosen side of an
// over/under prop. When both prices are known the vig is removed,
// otherwise the raw implied probability of the chosen price is returned.
// ok is false when the chosen side has no usable price.
func SideProbability(chosen, other *float64, format Format) (prob float64, ok bool) {
	if chosen == nil {
		return 0, false
	}

	implied := ToImplied(*chosen, format)
	if implied <= 0 {
		return 0, false
	}

	if other != nil {
		if otherImplied := ToImplied(*other, format); otherImplied > 0 {
			fair, _ := RemoveVig(implied, otherImplied)
			return fair, true
		}
	}

	return implied, true
}
