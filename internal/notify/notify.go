// Package notify delivers a run's edges to optional downstream sinks.
// A sink failure never fails the run.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"nba_props/refresh/internal/models"
)

// Sink receives the ranked edges of a run. payload is the JSON array the
// run wrote to stdout.
type Sink interface {
	Name() string
	Notify(ctx context.Context, records []models.EdgeRecord, payload []byte) error
}

// Dispatcher fans a result out to every configured sink.
type Dispatcher struct {
	sinks []Sink
	log   zerolog.Logger
}

// NewDispatcher creates a Dispatcher. nil sinks are ignored.
func NewDispatcher(logger zerolog.Logger, sinks ...Sink) *Dispatcher {
	d := &Dispatcher{log: logger.With().Str("component", "notify").Logger()}
	for _, s := range sinks {
		if s != nil {
			d.sinks = append(d.sinks, s)
		}
	}
	return d
}

// Len returns the number of configured sinks.
func (d *Dispatcher) Len() int {
	return len(d.sinks)
}

// Dispatch sends to each sink in turn and logs failures at warn.
// It returns the number of sinks that succeeded.
func (d *Dispatcher) Dispatch(ctx context.Context, records []models.EdgeRecord, payload []byte) int {
	delivered := 0
	for _, s := range d.sinks {
		if err := s.Notify(ctx, records, payload); err != nil {
			d.log.Warn().Err(err).Str("sink", s.Name()).Msg("Failed to deliver edges")
			continue
		}
		d.log.Debug().Str("sink", s.Name()).Int("edges", len(records)).Msg("Edges delivered")
		delivered++
	}
	return delivered
}
