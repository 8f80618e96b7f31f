package odds

import "math"

// Format is the price format requested from the odds provider.
type Format string

const (
	FormatAmerican Format = "american"
	FormatDecimal  Format = "decimal"
)

// ToImplied converts a price in the given format to implied probability.
// Returns 0 for prices that cannot be converted.
func ToImplied(price float64, format Format) float64 {
	switch format {
	case FormatDecimal:
		return DecimalToImplied(price)
	default:
		return AmericanToImplied(price)
	}
}

// AmericanToImplied converts American odds to implied probability
// Example: -150 → 0.6 (60%), +150 → 0.4 (40%)
func AmericanToImplied(odds float64) float64 {
	if odds == 0 || math.IsNaN(odds) || math.IsInf(odds, 0) {
		return 0
	}

	if odds > 0 {
		// Underdog: probability = 100 / (odds + 100)
		return 100.0 / (odds + 100.0)
	}
	// Favorite: probability = |odds| / (|odds| + 100)
	return math.Abs(odds) / (math.Abs(odds) + 100.0)
}

// DecimalToImplied converts decimal odds to implied probability
// Example: 2.0 → 0.5, 1.5 → 0.667
func DecimalToImplied(odds float64) float64 {
	if odds <= 1 || math.IsNaN(odds) || math.IsInf(odds, 0) {
		return 0
	}
	return 1.0 / odds
}
