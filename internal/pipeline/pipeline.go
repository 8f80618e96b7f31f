// Package pipeline runs one refresh: load artifacts, fetch prop lines,
// score, rank and present.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"nba_props/refresh/internal/client"
	"nba_props/refresh/internal/config"
	"nba_props/refresh/internal/features"
	"nba_props/refresh/internal/metrics"
	"nba_props/refresh/internal/models"
	"nba_props/refresh/internal/notify"
	"nba_props/refresh/internal/odds"
	"nba_props/refresh/internal/presenter"
	"nba_props/refresh/internal/ranker"
	"nba_props/refresh/internal/scorer"
)

// Run outcomes for metrics.RunsTotal.
const (
	StatusSuccess = "success"
	StatusEmpty   = "empty"
	StatusFailure = "failure"
)

// Fetcher supplies today's prop lines.
type Fetcher interface {
	FetchPropLines(ctx context.Context, opts client.OddsOptions) ([]models.PropLine, error)
}

// Result summarizes a finished run.
type Result struct {
	Props  int
	Scored int
	Edges  []models.EdgeRecord
}

// Pipeline wires the refresh components for a single run.
type Pipeline struct {
	cfg     *config.Config
	fetcher Fetcher
	sinks   *notify.Dispatcher
	out     io.Writer
	log     zerolog.Logger
}

// New creates a Pipeline. sinks may be nil; out defaults to stdout.
func New(cfg *config.Config, fetcher Fetcher, sinks *notify.Dispatcher, out io.Writer, logger zerolog.Logger) *Pipeline {
	if sinks == nil {
		sinks = notify.NewDispatcher(logger)
	}
	return &Pipeline{
		cfg:     cfg,
		fetcher: fetcher,
		sinks:   sinks,
		out:     out,
		log:     logger,
	}
}

// Run executes the pipeline and returns the first fatal error. Artifacts
// are loaded before the odds API is called, so a missing file never costs
// quota.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	defer func() {
		metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	res, err := p.run(ctx)
	switch {
	case err != nil:
		metrics.RunsTotal.WithLabelValues(StatusFailure).Inc()
	case res.Props == 0:
		metrics.RunsTotal.WithLabelValues(StatusEmpty).Inc()
	default:
		metrics.RunsTotal.WithLabelValues(StatusSuccess).Inc()
	}
	return res, err
}

func (p *Pipeline) run(ctx context.Context) (*Result, error) {
	model, bundle, err := scorer.LoadBundle(p.cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	p.log.Info().
		Str("path", p.cfg.ModelPath).
		Str("model", bundle.Model).
		Strs("features", bundle.Features).
		Bool("has_std", bundle.Sigma != nil).
		Msg("Model loaded")

	aliases, err := features.LoadAliases(p.cfg.AliasesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load aliases: %w", err)
	}

	store, err := features.Load(p.cfg.PlayerLogsPath, p.cfg.Last5Path, aliases, p.log)
	if err != nil {
		return nil, fmt.Errorf("failed to load features: %w", err)
	}

	lines, err := p.fetcher.FetchPropLines(ctx, client.OddsOptions{
		Regions:    p.cfg.OddsRegions,
		Markets:    p.cfg.OddsMarket,
		OddsFormat: p.cfg.OddsFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch props: %w", err)
	}
	metrics.PropsFetched.Set(float64(len(lines)))

	res := &Result{Props: len(lines)}
	if len(lines) == 0 {
		p.log.Info().Msg("No player-points markets for today.")
	} else {
		p.log.Info().Int("props", len(lines)).Msg("Props fetched")
	}

	preds := scorer.New(model, store, p.log).Score(lines)
	res.Scored = len(preds)

	res.Edges = ranker.New(p.cfg.TopN, odds.Format(p.cfg.OddsFormat)).Rank(preds)
	metrics.EdgesReported.Set(float64(len(res.Edges)))

	payload, err := presenter.New(p.log, p.out).Present(res.Edges)
	if err != nil {
		return nil, err
	}

	if p.sinks.Len() > 0 {
		p.sinks.Dispatch(ctx, res.Edges, payload)
	}

	return res, nil
}
