// Package ranker turns predictions into edge records and orders them.
package ranker

import (
	"math"
	"sort"

	"nba_props/refresh/internal/models"
	"nba_props/refresh/internal/odds"
)

// DefaultTopN is the number of edges reported when no limit is configured.
const DefaultTopN = 10

// Ranker computes edges and keeps the strongest ones.
type Ranker struct {
	topN   int
	format odds.Format
}

// New creates a Ranker. topN below 1 falls back to DefaultTopN.
func New(topN int, format odds.Format) *Ranker {
	if topN < 1 {
		topN = DefaultTopN
	}
	return &Ranker{topN: topN, format: format}
}

// Rank builds an EdgeRecord per prediction, orders them by absolute edge
// (largest first) and returns at most topN records. Ties break on player
// name, then line, then game, so the same input always yields the same order.
func (r *Ranker) Rank(preds []models.Prediction) []models.EdgeRecord {
	records := make([]models.EdgeRecord, 0, len(preds))
	for _, p := range preds {
		records = append(records, r.Edge(p))
	}

	Sort(records)

	if len(records) > r.topN {
		records = records[:r.topN]
	}
	return records
}

// Edge computes the edge record for one prediction.
// edge = predicted - line; a positive edge favors the over.
func (r *Ranker) Edge(p models.Prediction) models.EdgeRecord {
	edge := p.PredictedValue - p.Prop.Line
	side := models.SideForEdge(edge)

	rec := models.EdgeRecord{
		Player:         p.Prop.Player,
		Game:           p.Prop.Game,
		StatCategory:   p.Prop.StatCategory,
		Prop:           models.PropLabel(p.Prop.StatCategory, p.Prop.Line),
		MarketLine:     p.Prop.Line,
		PredictedValue: p.PredictedValue,
		PredictedStd:   p.PredictedStd,
		Edge:           edge,
		Side:           side,
		Confidence:     Confidence(edge),
		Book:           p.Prop.BookTitle,
	}

	chosen, other := p.Prop.OverPrice, p.Prop.UnderPrice
	if side == models.SideUnder {
		chosen, other = other, chosen
	}
	if side != models.SidePush && chosen != nil {
		price := *chosen
		rec.Price = &price
		if prob, ok := odds.SideProbability(chosen, other, r.format); ok {
			rec.ImpliedProb = &prob
		}
	}

	return rec
}

// Confidence maps an edge to a 0-100 score: |edge|*10 + 50, rounded and
// clamped.
func Confidence(edge float64) int {
	c := math.Round(math.Abs(edge)*10 + 50)
	switch {
	case c < 0:
		return 0
	case c > 100:
		return 100
	}
	return int(c)
}

// Sort orders records in place by absolute edge descending with the
// deterministic tie-breakers used by Rank.
func Sort(records []models.EdgeRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		ea, eb := math.Abs(a.Edge), math.Abs(b.Edge)
		if ea != eb {
			return ea > eb
		}
		if a.Player != b.Player {
			return a.Player < b.Player
		}
		if a.MarketLine != b.MarketLine {
			return a.MarketLine < b.MarketLine
		}
		return a.Game < b.Game
	})
}
