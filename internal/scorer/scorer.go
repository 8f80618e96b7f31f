package scorer

import (
	"strings"

	"github.com/rs/zerolog"

	"nba_props/refresh/internal/metrics"
	"nba_props/refresh/internal/models"
)

// Model turns a feature vector ordered as FeatureContract into a
// prediction. std may be 0 when the model has no uncertainty estimate.
type Model interface {
	Predict(x []float64) (mean, std float64)
}

// FeatureSource looks up the feature row for an odds-feed player name.
type FeatureSource interface {
	Lookup(player string) (models.PlayerFeatureRow, bool)
}

// Scorer joins prop lines with player features and runs the model.
type Scorer struct {
	model    Model
	features FeatureSource
	log      zerolog.Logger
}

// New creates a Scorer
func New(model Model, features FeatureSource, logger zerolog.Logger) *Scorer {
	return &Scorer{
		model:    model,
		features: features,
		log:      logger.With().Str("component", "scorer").Logger(),
	}
}

// Score produces one Prediction per line that has a feature row and a
// finite prediction. Other lines are skipped and logged at debug.
func (s *Scorer) Score(lines []models.PropLine) []models.Prediction {
	predictions := make([]models.Prediction, 0, len(lines))

	for _, line := range lines {
		row, ok := s.features.Lookup(line.Player)
		if !ok {
			s.log.Debug().
				Str("player", line.Player).
				Str("game", line.Game).
				Msg("No feature row for player, skipping prop")
			metrics.PropsSkipped.WithLabelValues(metrics.SkipNoFeatures).Inc()
			continue
		}

		x := FeatureVector(row, line)
		mean, std := s.model.Predict(x)
		if !finite(mean) {
			s.log.Debug().
				Str("player", line.Player).
				Floats64("features", x).
				Msg("Non-finite prediction, skipping prop")
			metrics.PropsSkipped.WithLabelValues(metrics.SkipNonFinite).Inc()
			continue
		}
		if !finite(std) {
			std = 0
		}

		predictions = append(predictions, models.Prediction{
			Prop:           line,
			Features:       x,
			PredictedValue: mean,
			PredictedStd:   std,
		})
		metrics.PropsScored.Inc()
	}

	s.log.Info().
		Int("props", len(lines)).
		Int("scored", len(predictions)).
		Int("skipped", len(lines)-len(predictions)).
		Msg("Props scored")

	return predictions
}

// FeatureVector builds the model input in FeatureContract order.
// The home flag is 1 for any "Away @ Home" game label, which is every label
// the odds fetcher produces.
func FeatureVector(row models.PlayerFeatureRow, line models.PropLine) []float64 {
	home := 0.0
	if strings.Contains(line.Game, " @ ") {
		home = 1
	}
	return []float64{row.SeasonPts, row.Rolling5Pts, home}
}
