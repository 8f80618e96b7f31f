package models

import "fmt"

// Side is the wager direction an edge favors.
type Side string

const (
	SideOver  Side = "over"
	SideUnder Side = "under"
	SidePush  Side = "push"
)

// SideForEdge maps the sign of an edge to a side. Positive edge means the
// model expects more than the posted line.
func SideForEdge(edge float64) Side {
	switch {
	case edge > 0:
		return SideOver
	case edge < 0:
		return SideUnder
	default:
		return SidePush
	}
}

// Prediction is the model output for one PropLine.
type Prediction struct {
	Prop           PropLine  `json:"prop"`
	Features       []float64 `json:"features"`
	PredictedValue float64   `json:"predicted_value"`

	// PredictedStd is zero when the bundle carries no posterior covariance.
	PredictedStd float64 `json:"predicted_std,omitempty"`
}

// EdgeRecord is the unit presented to the user
type EdgeRecord struct {
	Player         string   `json:"player"`
	Game           string   `json:"game"`
	StatCategory   string   `json:"stat_category"`
	Prop           string   `json:"prop"`
	MarketLine     float64  `json:"line"`
	PredictedValue float64  `json:"mu"`
	PredictedStd   float64  `json:"mu_std,omitempty"`
	Edge           float64  `json:"edge"`
	Side           Side     `json:"side"`
	Confidence     int      `json:"conf"`
	Price          *float64 `json:"price,omitempty"`
	ImpliedProb    *float64 `json:"implied_prob,omitempty"`
	Book           string   `json:"book"`
}

// PropLabel renders the short prop description, e.g. "PTS O 24.5".
func PropLabel(stat string, line float64) string {
	abbr := stat
	if stat == StatPoints {
		abbr = "PTS"
	}
	return fmt.Sprintf("%s O %s", abbr, formatLine(line))
}

func formatLine(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	if v == float64(int64(v)) {
		return s
	}
	return fmt.Sprintf("%g", v)
}
