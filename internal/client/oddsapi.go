package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"nba_props/refresh/internal/metrics"
	"nba_props/refresh/internal/models"
)

const (
	endpointEvents    = "events"
	endpointEventOdds = "event_odds"

	maxErrorBody = 200
)

// Options configures a Client
type Options struct {
	BaseURL           string
	APIKey            string
	Sport             string
	Timeout           time.Duration
	RequestsPerSecond float64
	Logger            zerolog.Logger
}

// OddsOptions represents options for fetching event odds
type OddsOptions struct {
	Regions    string
	Markets    string
	OddsFormat string
}

// Client is The Odds API v4 client
type Client struct {
	baseURL    string
	apiKey     string
	sport      string
	httpClient *http.Client
	limiter    *rate.Limiter
	retryDelay time.Duration
	log        zerolog.Logger
}

// NewClient creates a new odds API client
func NewClient(opts Options) *Client {
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	return &Client{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		sport:      opts.Sport,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		retryDelay: 500 * time.Millisecond,
		log:        opts.Logger.With().Str("component", "odds_client").Logger(),
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

// get performs a GET request and decodes the JSON body into out.
// A network failure is retried exactly once; HTTP statuses are never retried.
func (c *Client) get(ctx context.Context, endpoint, path string, params map[string]string, out interface{}) error {
	const maxAttempts = 2

	var lastErr *FetchError
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			c.log.Warn().
				Str("path", path).
				Int("attempt", attempt).
				Dur("backoff", c.retryDelay).
				Err(lastErr.Err).
				Msg("Retrying odds API request after network error")

			select {
			case <-ctx.Done():
				return &FetchError{Kind: KindNetwork, Path: path, Err: ctx.Err()}
			case <-time.After(c.retryDelay):
			}
		}

		body, fetchErr := c.do(ctx, endpoint, path, params)
		if fetchErr == nil {
			if err := json.Unmarshal(body, out); err != nil {
				return &FetchError{Kind: KindParse, Path: path, Err: err}
			}
			return nil
		}

		lastErr = fetchErr
		if fetchErr.Kind != KindNetwork || ctx.Err() != nil {
			return fetchErr
		}
	}

	return lastErr
}

// do issues one request and classifies the outcome.
func (c *Client) do(ctx context.Context, endpoint, path string, params map[string]string) ([]byte, *FetchError) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Kind: KindNetwork, Path: path, Err: err}
	}

	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	for key, value := range params {
		if value != "" {
			q.Set(key, value)
		}
	}
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Path: path, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "nba-props-refresh/1.0")

	c.log.Debug().
		Str("path", path).
		Str("method", req.Method).
		Msg("Making API request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.APICallDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APICallsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &FetchError{Kind: KindNetwork, Path: path, Err: redact(err, path)}
	}
	defer resp.Body.Close()

	metrics.APICallsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	c.recordQuota(resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Status: resp.StatusCode, Path: path, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		c.log.Debug().
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("size", len(body)).
			Msg("API request successful")
		return body, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &FetchError{Kind: KindRateLimit, Status: resp.StatusCode, Path: path, Err: errors.New(snippet(body))}

	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, &FetchError{Kind: KindAuth, Status: resp.StatusCode, Path: path, Err: errors.New(snippet(body))}

	default:
		return nil, &FetchError{Kind: KindStatus, Status: resp.StatusCode, Path: path, Err: errors.New(snippet(body))}
	}
}

func (c *Client) recordQuota(h http.Header) {
	remaining := h.Get("x-requests-remaining")
	if remaining == "" {
		return
	}
	if v, err := strconv.ParseFloat(remaining, 64); err == nil {
		metrics.APIRequestsRemaining.Set(v)
	}
	c.log.Debug().
		Str("remaining", remaining).
		Str("used", h.Get("x-requests-used")).
		Msg("Odds API quota")
}

// redact drops the request URL, which carries the api key, from
// transport errors.
func redact(err error, path string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &url.Error{Op: urlErr.Op, URL: path, Err: urlErr.Err}
	}
	return err
}

func snippet(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}

// FetchEvents fetches the sport's upcoming events
func (c *Client) FetchEvents(ctx context.Context) ([]models.EventInput, error) {
	path := fmt.Sprintf("sports/%s/events", c.sport)

	var events []models.EventInput
	if err := c.get(ctx, endpointEvents, path, map[string]string{"dateFormat": "iso"}, &events); err != nil {
		return nil, err
	}

	return events, nil
}

// FetchEventOdds fetches the requested markets for one event
func (c *Client) FetchEventOdds(ctx context.Context, eventID string, opts OddsOptions) (*models.EventOddsInput, error) {
	path := fmt.Sprintf("sports/%s/events/%s/odds", c.sport, url.PathEscape(eventID))

	params := map[string]string{
		"regions":    opts.Regions,
		"markets":    opts.Markets,
		"oddsFormat": opts.OddsFormat,
		"dateFormat": "iso",
	}

	var odds models.EventOddsInput
	if err := c.get(ctx, endpointEventOdds, path, params, &odds); err != nil {
		return nil, err
	}

	return &odds, nil
}

// FetchPropLines collects the market's prop lines for every event.
// The first failed call aborts the whole fetch.
func (c *Client) FetchPropLines(ctx context.Context, opts OddsOptions) ([]models.PropLine, error) {
	events, err := c.FetchEvents(ctx)
	if err != nil {
		return nil, err
	}
	c.log.Info().Int("count", len(events)).Msg("Events fetched")

	var lines []models.PropLine
	for _, ev := range events {
		odds, err := c.FetchEventOdds(ctx, ev.ID, opts)
		if err != nil {
			return nil, err
		}
		if odds.ID == "" {
			odds.EventInput = ev
		}

		eventLines := odds.ToPropLines(opts.Markets, time.Now().UTC())
		c.log.Debug().
			Str("event_id", ev.ID).
			Str("game", ev.GameLabel()).
			Int("props", len(eventLines)).
			Msg("Event props fetched")
		lines = append(lines, eventLines...)
	}

	deduped := models.DedupePropLines(lines)
	if dropped := len(lines) - len(deduped); dropped > 0 {
		c.log.Debug().Int("dropped", dropped).Msg("Dropped duplicate props")
	}

	return deduped, nil
}
